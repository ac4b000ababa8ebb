package view

// Event is a view state transition.
type Event interface {
	apply(State) State
}

// GroupChanged selects another group.
type GroupChanged struct{ Group string }

// ActionChanged switches sub-view.
type ActionChanged struct{ Action Action }

// TimeChanged commits a relative time, usually on scrub release or seek.
type TimeChanged struct{ RelativeMs int64 }

// PageChanged moves through submissions.
type PageChanged struct{ Number, Size int }

// FilterField names one submissions filter.
type FilterField string

const (
	FilterSchool   FilterField = "school"
	FilterTeam     FilterField = "team"
	FilterLanguage FilterField = "language"
	FilterStatus   FilterField = "status"
)

// FilterChanged sets or clears one filter.
type FilterChanged struct {
	Field FilterField
	Value string
}

// FiltersReset clears every filter.
type FiltersReset struct{}

// Reduce applies e to s and returns the next state with its query key.
func Reduce(s State, e Event) (State, QueryKey) {
	next := normalize(e.apply(s))
	return next, next.Key()
}

func (e GroupChanged) apply(s State) State {
	s.Group = e.Group
	return s
}

func (e ActionChanged) apply(s State) State {
	s.Action = e.Action
	return s
}

func (e TimeChanged) apply(s State) State {
	s.RelativeMs = e.RelativeMs
	s.HasTime = true
	return s
}

func (e PageChanged) apply(s State) State {
	s.Page.Number = e.Number
	if e.Size > 0 {
		s.Page.Size = e.Size
	}
	return s
}

func (e FilterChanged) apply(s State) State {
	switch e.Field {
	case FilterSchool:
		s.Filters.School = e.Value
	case FilterTeam:
		s.Filters.Team = e.Value
	case FilterLanguage:
		s.Filters.Language = e.Value
	case FilterStatus:
		s.Filters.Status = e.Value
	default:
		return s
	}
	s.Page.Number = 1
	return s
}

func (FiltersReset) apply(s State) State {
	s.Filters = Filters{}
	s.Page.Number = 1
	return s
}

func normalize(s State) State {
	if s.Group == "" {
		s.Group = GroupAll
	}
	if a, err := ParseAction(string(s.Action)); err == nil {
		s.Action = a
	} else {
		s.Action = ActionRank
	}
	if s.RelativeMs < 0 {
		s.RelativeMs = 0
	}
	if s.Page.Number < 1 {
		s.Page.Number = 1
	}
	if s.Page.Size <= 0 {
		s.Page.Size = DefaultPageSize
	}
	return s
}
