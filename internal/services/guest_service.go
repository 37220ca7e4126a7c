package services

import (
	"context"
	"fmt"
	"strings"

	"wedplan/internal/amqp"
	"wedplan/internal/core"
	"wedplan/internal/storage"
)

// GuestList is the guest page: the filtered rows and the summary of the
// whole list.
type GuestList struct {
	Guests  []core.Guest      `json:"guests"`
	Summary core.GuestSummary `json:"summary"`
	Filter  core.GuestFilter  `json:"-"`
}

type GuestService struct {
	base
	store storage.GuestStore
}

func NewGuestService(store storage.GuestStore, events Publisher) *GuestService {
	return &GuestService{base: newBase(events), store: store}
}

// List returns the wedding's guests matching f. The summary always counts
// every guest.
func (s *GuestService) List(ctx context.Context, weddingID string, f core.GuestFilter) (GuestList, error) {
	ctx, span := startSpan(ctx, "GuestService.List", weddingID)
	guests, err := s.store.ListGuests(ctx, weddingID)
	if err = endSpan(span, err); err != nil {
		return GuestList{}, fmt.Errorf("list guests: %w", err)
	}
	return GuestList{
		Guests:  core.FilterGuests(guests, f),
		Summary: core.SummarizeGuests(guests),
		Filter:  f,
	}, nil
}

// Get returns the guest when it belongs to weddingID, core.ErrNotFound
// otherwise.
func (s *GuestService) Get(ctx context.Context, weddingID, id string) (core.Guest, error) {
	g, err := s.store.GetGuest(ctx, id)
	if err != nil {
		return core.Guest{}, err
	}
	if g.WeddingID != weddingID {
		return core.Guest{}, fmt.Errorf("guest %s: %w", id, core.ErrNotFound)
	}
	return g, nil
}

func (s *GuestService) Create(ctx context.Context, weddingID string, in core.Guest) (core.Guest, error) {
	ctx, span := startSpan(ctx, "GuestService.Create", weddingID)
	g, err := s.create(ctx, weddingID, in)
	return g, endSpan(span, err)
}

func (s *GuestService) create(ctx context.Context, weddingID string, in core.Guest) (core.Guest, error) {
	g := normalizeGuest(in)
	if g.InviteStatus == "" {
		g.InviteStatus = core.InvitePending
	}
	if g.MembersCount == 0 {
		g.MembersCount = 1
	}
	if err := g.Validate(); err != nil {
		return core.Guest{}, err
	}

	now := s.now()
	g.ID = core.NewID()
	g.WeddingID = weddingID
	g.CreatedAt, g.UpdatedAt = now, now
	if err := s.store.CreateGuest(ctx, g); err != nil {
		return core.Guest{}, fmt.Errorf("create guest: %w", err)
	}
	s.publish(ctx, amqp.GuestCreated, weddingID, g.ID)
	return g, nil
}

// Update replaces the editable fields of the guest. An omitted invite status
// or party size keeps the stored value.
func (s *GuestService) Update(ctx context.Context, weddingID, id string, in core.Guest) (core.Guest, error) {
	ctx, span := startSpan(ctx, "GuestService.Update", weddingID)
	g, err := s.update(ctx, weddingID, id, in)
	return g, endSpan(span, err)
}

func (s *GuestService) update(ctx context.Context, weddingID, id string, in core.Guest) (core.Guest, error) {
	existing, err := s.Get(ctx, weddingID, id)
	if err != nil {
		return core.Guest{}, err
	}
	g := normalizeGuest(in)
	if g.InviteStatus == "" {
		g.InviteStatus = existing.InviteStatus
	}
	if g.MembersCount == 0 {
		g.MembersCount = existing.MembersCount
	}
	if err := g.Validate(); err != nil {
		return core.Guest{}, err
	}

	g.ID = existing.ID
	g.WeddingID = existing.WeddingID
	g.CreatedAt = existing.CreatedAt
	g.UpdatedAt = s.now()
	if err := s.store.UpdateGuest(ctx, g); err != nil {
		return core.Guest{}, fmt.Errorf("update guest: %w", err)
	}
	s.publish(ctx, amqp.GuestUpdated, weddingID, g.ID)
	return g, nil
}

func (s *GuestService) Delete(ctx context.Context, weddingID, id string) error {
	ctx, span := startSpan(ctx, "GuestService.Delete", weddingID)
	if _, err := s.Get(ctx, weddingID, id); err != nil {
		return endSpan(span, err)
	}
	if err := s.store.DeleteGuest(ctx, id); err != nil {
		return endSpan(span, fmt.Errorf("delete guest: %w", err))
	}
	s.publish(ctx, amqp.GuestDeleted, weddingID, id)
	return endSpan(span, nil)
}

func normalizeGuest(g core.Guest) core.Guest {
	g.Name = strings.TrimSpace(g.Name)
	g.Email = strings.TrimSpace(g.Email)
	g.Phone = strings.TrimSpace(g.Phone)
	g.Group = strings.TrimSpace(g.Group)
	g.Role = strings.TrimSpace(g.Role)
	g.DietaryRestrictions = strings.TrimSpace(g.DietaryRestrictions)
	return g
}
