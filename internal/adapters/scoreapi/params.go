package scoreapi

// ContestsQuery filters the contest list.
type ContestsQuery struct {
	ContestName string `url:"contest_name,omitempty"`
}

// ConfigQuery selects a configuration snapshot.
type ConfigQuery struct {
	T *int64 `url:"t,omitempty"`
}

// RankQuery selects a ranking snapshot. The group is always sent.
type RankQuery struct {
	T     *int64 `url:"t,omitempty"`
	Group string `url:"group"`
}

// RunQuery selects one page of submissions.
type RunQuery struct {
	Group    string `url:"group,omitempty"`
	T        *int64 `url:"t,omitempty"`
	Page     int    `url:"page"`
	Size     int    `url:"size"`
	School   string `url:"school,omitempty"`
	TeamID   string `url:"team_id,omitempty"`
	Language string `url:"language,omitempty"`
	Status   string `url:"status,omitempty"`
}

// StatQuery selects aggregate statistics.
type StatQuery struct {
	Group string `url:"group,omitempty"`
	T     *int64 `url:"t,omitempty"`
}

// ExportQuery selects an export download.
type ExportQuery struct {
	Format string `url:"format"`
	Group  string `url:"group,omitempty"`
	T      *int64 `url:"t,omitempty"`
}

// TrendQuery selects a team's place history.
type TrendQuery struct {
	TeamID string `url:"team_id"`
}

// Export formats the backend renders.
var ExportFormats = []string{"xlsx", "csv", "html", "json", "dat"}

// OptionalGroup maps the implicit all-teams group to an omitted parameter.
func OptionalGroup(group string) string {
	if group == "all" {
		return ""
	}
	return group
}

// Time returns a pointer to ms for the optional t parameters.
func Time(ms int64) *int64 { return &ms }
