package board

import (
	"sort"

	"github.com/okian/scoreview/internal/domain/model"
)

// Series is a heatmap split into accepted and rejected counts over shared timestamps.
type Series struct {
	Timestamps []int64 `json:"timestamps"`
	Accepted   []int   `json:"accepted"`
	Rejected   []int   `json:"rejected"`
}

// AlignHeatmap lines up both statuses on the same sorted timestamps, with
// missing buckets counted as zero.
func AlignHeatmap(h model.ProblemHeatmap) Series {
	acc := map[int64]int{}
	rej := map[int64]int{}
	seen := map[int64]struct{}{}
	for _, it := range h.Submissions {
		seen[it.Timestamp] = struct{}{}
		switch it.Status {
		case model.HeatAccepted:
			acc[it.Timestamp] += it.Count
		case model.HeatRejected:
			rej[it.Timestamp] += it.Count
		}
	}
	s := Series{Timestamps: make([]int64, 0, len(seen))}
	for ts := range seen {
		s.Timestamps = append(s.Timestamps, ts)
	}
	sort.Slice(s.Timestamps, func(i, j int) bool { return s.Timestamps[i] < s.Timestamps[j] })
	s.Accepted = make([]int, len(s.Timestamps))
	s.Rejected = make([]int, len(s.Timestamps))
	for i, ts := range s.Timestamps {
		s.Accepted[i] = acc[ts]
		s.Rejected[i] = rej[ts]
	}
	return s
}
