package model

// Submission verdicts as the backend reports them.
const (
	StatusAccepted            = "Accepted"
	StatusCompilationError    = "Compilation Error"
	StatusMemoryLimitExceeded = "Memory Limit Exceeded"
	StatusPresentationError   = "Presentation Error"
	StatusRuntimeError        = "Runtime Error"
	StatusTimeLimitExceeded   = "Time Limit Exceeded"
	StatusWrongAnswer         = "Wrong Answer"
	StatusPending             = "Pending"
	StatusFrozen              = "Frozen"
)

// Submission is one run.
type Submission struct {
	ID           string `json:"id"`
	TeamID       string `json:"team_id"`
	ProblemID    string `json:"problem_id"`
	Team         string `json:"team"`
	Organization string `json:"organization"`
	Girl         bool   `json:"girl"`
	Language     string `json:"language"`
	Status       string `json:"status"`
	Timestamp    int64  `json:"timestamp"`
}

// Participant is a filterable team.
type Participant struct {
	TeamID string `json:"team_id"`
	Team   string `json:"team"`
}

// RunPage is one page of submissions plus the filter facets.
type RunPage struct {
	Total        int           `json:"total"`
	Data         []Submission  `json:"data"`
	Schools      []string      `json:"schools"`
	Participants []Participant `json:"participants"`
	Languages    []string      `json:"languages,omitempty"`
	Statuses     []string      `json:"statuses,omitempty"`
}

// Empty reports whether the page has no submissions.
func (p RunPage) Empty() bool { return len(p.Data) == 0 }
