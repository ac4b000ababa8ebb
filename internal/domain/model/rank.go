package model

// Rank is a ranking snapshot at one relative time.
type Rank struct {
	Rows        []Row     `json:"rows"`
	Submitted   []int     `json:"submitted"`
	Attempted   []int     `json:"attempted"`
	Accepted    []int     `json:"accepted"`
	Dirt        []int     `json:"dirt"`
	Dirty       []float64 `json:"dirty"`
	FirstSolved []int64   `json:"first_solved"`
	LastSolved  []int64   `json:"last_solved"`
}

// Row is one team in the ranking.
type Row struct {
	TeamID       string    `json:"team_id"`
	Team         string    `json:"team"`
	Organization string    `json:"organization"`
	Place        int       `json:"place"`
	OrgPlace     int       `json:"org_place"`
	Solved       int       `json:"solved"`
	Penalty      int64     `json:"penalty"`
	Dirty        float64   `json:"dirty"`
	Problems     []Problem `json:"problems"`
	Group        string    `json:"group,omitempty"`
	Girl         bool      `json:"girl,omitempty"`
	Unofficial   bool      `json:"unofficial,omitempty"`
}

// Problem is one team's state on one problem.
type Problem struct {
	FirstSolved bool  `json:"first_solved"`
	Solved      bool  `json:"solved"`
	Attempted   bool  `json:"attempted"`
	Pending     bool  `json:"pending"`
	Frozen      bool  `json:"frozen"`
	Submitted   int   `json:"submitted"`
	Penalty     int64 `json:"penalty"`
	Timestamp   int64 `json:"timestamp"`
	Dirt        int   `json:"dirt"`
}

// Empty reports whether the ranking has no rows.
func (r Rank) Empty() bool { return len(r.Rows) == 0 }
