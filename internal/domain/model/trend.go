package model

// TrendPoint is a team's place at a relative time in milliseconds.
type TrendPoint struct {
	Place int   `json:"place"`
	Time  int64 `json:"time"`
}
