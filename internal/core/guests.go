package core

import "strings"

// GuestSummary counts a wedding's guests by RSVP state.
type GuestSummary struct {
	Total          int `json:"total"`
	Confirmed      int `json:"confirmed"`
	Pending        int `json:"pending"`
	Declined       int `json:"declined"`
	TotalAttendees int `json:"total_attendees"`
}

// SummarizeGuests counts guests per invite status. TotalAttendees sums the
// party size of confirmed guests only.
func SummarizeGuests(guests []Guest) GuestSummary {
	var s GuestSummary
	for _, g := range guests {
		s.Total++
		switch g.InviteStatus {
		case InviteConfirmed:
			s.Confirmed++
			s.TotalAttendees += g.MembersCount
		case InviteDeclined:
			s.Declined++
		default:
			s.Pending++
		}
	}
	return s
}

// GuestFilter narrows a guest list. Zero values match everything.
type GuestFilter struct {
	Status InviteStatus
	Side   Side
	Search string
}

// FilterGuests returns the guests matching f, keeping input order.
func FilterGuests(guests []Guest, f GuestFilter) []Guest {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]Guest, 0, len(guests))
	for _, g := range guests {
		if f.Status != "" && g.InviteStatus != f.Status {
			continue
		}
		if f.Side != "" && g.Side != f.Side {
			continue
		}
		if term != "" && !guestMatches(g, term) {
			continue
		}
		out = append(out, g)
	}
	return out
}

func guestMatches(g Guest, term string) bool {
	for _, field := range []string{g.Name, g.Email, g.Group, g.Role} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
