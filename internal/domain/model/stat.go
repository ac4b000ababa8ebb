package model

// Heatmap bucket statuses.
const (
	HeatAccepted = "accepted"
	HeatRejected = "rejected"
)

// Stat holds aggregate counts and heatmaps.
type Stat struct {
	ProblemCount   int            `json:"problem_count"`
	TeamCount      int            `json:"team_count"`
	RunCount       int            `json:"run_count"`
	AcceptedCount  int            `json:"accepted_count"`
	RejectedCount  int            `json:"rejected_count"`
	AcceptedRate   float64        `json:"accepted_rate"`
	ContestHeatmap ContestHeatmap `json:"contest_heatmap"`
}

// ContestHeatmap is the contest-wide and per-problem submission density.
type ContestHeatmap struct {
	Total    ProblemHeatmap   `json:"total"`
	Problems []ProblemHeatmap `json:"problems"`
}

// ProblemHeatmap is the submission series of one problem.
type ProblemHeatmap struct {
	ProblemID   string        `json:"problem_id"`
	Submissions []HeatmapItem `json:"submissions"`
}

// HeatmapItem is one bucket.
type HeatmapItem struct {
	Timestamp int64  `json:"timestamp"`
	Status    string `json:"status"`
	Count     int    `json:"count"`
}
