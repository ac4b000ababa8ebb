// Package view holds the viewer's state: which group, which sub-view, which
// point in time, and for submissions the page and filters. Every change goes
// through Reduce, which also yields the key identifying the data to show.
package view

import (
	"fmt"
	"strconv"
	"strings"
)

// Action selects a sub-view.
type Action string

const (
	ActionRank   Action = "rank"
	ActionSubmit Action = "submit"
	ActionStats  Action = "stats"
	ActionExport Action = "export"
)

// Actions lists every sub-view in display order.
var Actions = []Action{ActionRank, ActionSubmit, ActionStats, ActionExport}

// ParseAction resolves a name. The empty string is the ranking.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return ActionRank, nil
	case ActionRank, ActionSubmit, ActionStats, ActionExport:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// GroupAll is the implicit group covering every team.
const GroupAll = "all"

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 50

// Filters narrow the submissions list.
type Filters struct {
	School   string `json:"school,omitempty"`
	Team     string `json:"team,omitempty"`
	Language string `json:"language,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Empty reports whether no filter is set.
func (f Filters) Empty() bool { return f == Filters{} }

// Page is a 1-based page of submissions.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"size"`
}

// State is the whole view state.
type State struct {
	Group  string `json:"group"`
	Action Action `json:"action"`
	// RelativeMs is meaningful only when HasTime is set.
	RelativeMs int64   `json:"t"`
	HasTime    bool    `json:"has_time"`
	Page       Page    `json:"page"`
	Filters    Filters `json:"filters"`
}

// NewState returns the state a fresh viewer starts in.
func NewState(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{
		Group:  GroupAll,
		Action: ActionRank,
		Page:   Page{Number: 1, Size: pageSize},
	}
}

// QueryKey identifies the data a State needs. Two states with equal keys
// show the same data, so keys compare with ==.
type QueryKey struct {
	Group      string
	Action     Action
	RelativeMs int64
	HasTime    bool
	Page       Page
	Filters    Filters
}

// Key derives the query key. Pagination and filters only matter to submissions.
func (s State) Key() QueryKey {
	k := QueryKey{
		Group:      s.Group,
		Action:     s.Action,
		RelativeMs: s.RelativeMs,
		HasTime:    s.HasTime,
	}
	if !k.HasTime {
		k.RelativeMs = 0
	}
	if s.Action == ActionSubmit {
		k.Page = s.Page
		k.Filters = s.Filters
	}
	return k
}

// Signature is a stable string form of the key.
func (k QueryKey) Signature() string {
	var b strings.Builder
	b.WriteString(string(k.Action))
	b.WriteString("|g=")
	b.WriteString(k.Group)
	b.WriteString("|t=")
	if k.HasTime {
		b.WriteString(strconv.FormatInt(k.RelativeMs, 10))
	} else {
		b.WriteString("-")
	}
	if k.Action == ActionSubmit {
		fmt.Fprintf(&b, "|p=%d/%d|s=%s|team=%s|l=%s|st=%s",
			k.Page.Number, k.Page.Size,
			k.Filters.School, k.Filters.Team, k.Filters.Language, k.Filters.Status)
	}
	return b.String()
}
