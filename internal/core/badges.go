package core

// Badge is the display style of an enumerated value.
type Badge struct {
	Label string
	Class string // CSS modifier, e.g. "badge--green"
	Color string // hex foreground for terminal output
}

var neutralBadge = Badge{Class: "badge--gray", Color: "#9ca3af"}

var badges = map[string]Badge{
	string(InvitePending):   {Class: "badge--amber", Color: "#f59e0b"},
	string(InviteConfirmed): {Class: "badge--green", Color: "#10b981"},
	string(InviteDeclined):  {Class: "badge--red", Color: "#ef4444"},

	string(ExpensePaid):    {Class: "badge--green", Color: "#10b981"},
	string(ExpenseOverdue): {Class: "badge--red", Color: "#ef4444"},

	string(TaskTodo):       {Class: "badge--gray", Color: "#9ca3af"},
	string(TaskInProgress): {Class: "badge--blue", Color: "#3b82f6"},
	string(TaskCompleted):  {Class: "badge--green", Color: "#10b981"},

	string(PriorityLow):    {Class: "badge--gray", Color: "#9ca3af"},
	string(PriorityMedium): {Class: "badge--amber", Color: "#f59e0b"},
	string(PriorityHigh):   {Class: "badge--red", Color: "#ef4444"},

	string(SideBride): {Class: "badge--pink", Color: "#ec4899"},
	string(SideGroom): {Class: "badge--indigo", Color: "#6366f1"},
}

// BadgeFor looks up the style of a status, priority or side value.
// Unknown values get a neutral badge.
func BadgeFor(value string) Badge {
	b, ok := badges[value]
	if !ok {
		b = neutralBadge
	}
	b.Label = Label(value)
	return b
}
