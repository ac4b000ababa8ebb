package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/okian/scoreview/internal/adapters/cache"
	"github.com/okian/scoreview/internal/adapters/scoreapi"
	"github.com/okian/scoreview/internal/domain/board"
	"github.com/okian/scoreview/internal/domain/model"
	"github.com/okian/scoreview/internal/domain/timeline"
	"github.com/okian/scoreview/internal/domain/view"
)

// Backend is the scoreboard REST contract the service reads from.
type Backend interface {
	Contests(ctx context.Context, q scoreapi.ContestsQuery) ([]model.Contest, error)
	Config(ctx context.Context, path string, t *int64) (model.ContestConfig, error)
	Rank(ctx context.Context, path string, q scoreapi.RankQuery) (model.Rank, error)
	Runs(ctx context.Context, path string, q scoreapi.RunQuery) (model.RunPage, error)
	Stats(ctx context.Context, path string, q scoreapi.StatQuery) (model.Stat, error)
	Export(ctx context.Context, path string, q scoreapi.ExportQuery) (*scoreapi.Download, error)
	TeamTrend(ctx context.Context, path, teamID string) ([]model.TrendPoint, error)
}

// ProblemHeader describes one problem column.
type ProblemHeader struct {
	Label     string        `json:"label"`
	Balloon   board.Balloon `json:"balloon"`
	Submitted int           `json:"submitted"`
	Accepted  int           `json:"accepted"`
	Dirt      string        `json:"dirt"`
}

// RankRow is a ranking row with its rendered cells.
type RankRow struct {
	model.Row
	Cells []board.Cell `json:"cells"`
	Dirt  string       `json:"dirt_percent"`
}

// RankView is the ranking sub-view.
type RankView struct {
	Problems []ProblemHeader `json:"problems"`
	Rows     []RankRow       `json:"rows"`
}

// SubmissionRow is one rendered submission.
type SubmissionRow struct {
	model.Submission
	Problem string `json:"problem"`
	Verdict string `json:"verdict"`
	At      string `json:"at"`
}

// SubmitView is the submissions sub-view.
type SubmitView struct {
	Page         view.Page           `json:"page"`
	Total        int                 `json:"total"`
	Rows         []SubmissionRow     `json:"rows"`
	Schools      []string            `json:"schools"`
	Participants []model.Participant `json:"participants"`
	Languages    []string            `json:"languages,omitempty"`
	Statuses     []string            `json:"statuses,omitempty"`
}

// ProblemSeries is one problem's aligned heatmap.
type ProblemSeries struct {
	Label  string       `json:"label"`
	Series board.Series `json:"series"`
}

// StatsView is the statistics sub-view.
type StatsView struct {
	model.Stat
	Total    board.Series    `json:"total"`
	Problems []ProblemSeries `json:"problems"`
}

// ExportLink is one downloadable format.
type ExportLink struct {
	Format string `json:"format"`
	URL    string `json:"url"`
}

// ExportView is the export sub-view.
type ExportView struct {
	Links []ExportLink `json:"links"`
}

// viewFetcher loads and composes sub-view data for one contest.
type viewFetcher struct {
	backend Backend
	path    string
	cfg     model.ContestConfig
	cache   cache.Cache
}

func (f *viewFetcher) Fetch(ctx context.Context, key view.QueryKey) (any, error) {
	ck := f.path + "|" + key.Signature()
	if f.cache != nil {
		if v, ok := f.cache.Get(ctx, ck); ok {
			return v, nil
		}
	}
	v, err := f.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if f.cache != nil && key.Action != view.ActionExport {
		f.cache.Set(ctx, ck, v)
	}
	return v, nil
}

func (f *viewFetcher) load(ctx context.Context, key view.QueryKey) (any, error) {
	var t *int64
	if key.HasTime {
		t = scoreapi.Time(key.RelativeMs)
	}
	switch key.Action {
	case view.ActionRank:
		r, err := f.backend.Rank(ctx, f.path, scoreapi.RankQuery{T: t, Group: key.Group})
		if err != nil {
			return nil, err
		}
		return composeRank(f.cfg, r), nil
	case view.ActionSubmit:
		p, err := f.backend.Runs(ctx, f.path, scoreapi.RunQuery{
			Group:    key.Group,
			T:        t,
			Page:     key.Page.Number,
			Size:     key.Page.Size,
			School:   key.Filters.School,
			TeamID:   key.Filters.Team,
			Language: key.Filters.Language,
			Status:   key.Filters.Status,
		})
		if err != nil {
			return nil, err
		}
		return composeSubmit(f.cfg, key.Page, p), nil
	case view.ActionStats:
		s, err := f.backend.Stats(ctx, f.path, scoreapi.StatQuery{Group: key.Group, T: t})
		if err != nil {
			return nil, err
		}
		return composeStats(f.cfg, s), nil
	case view.ActionExport:
		return composeExport(f.path, key), nil
	}
	return nil, fmt.Errorf("%w: %s", view.ErrUnknownAction, key.Action)
}

func composeRank(cfg model.ContestConfig, r model.Rank) RankView {
	labels := board.ProblemLabels(cfg)
	n := len(labels)
	if len(r.Rows) > 0 && len(r.Rows[0].Problems) > n {
		n = len(r.Rows[0].Problems)
	}
	rv := RankView{Problems: make([]ProblemHeader, n), Rows: make([]RankRow, len(r.Rows))}
	for i := range rv.Problems {
		h := ProblemHeader{Label: board.ProblemLetter(i), Balloon: board.BalloonFor(cfg, i)}
		if i < len(labels) {
			h.Label = labels[i]
		}
		if i < len(r.Submitted) {
			h.Submitted = r.Submitted[i]
		}
		if i < len(r.Accepted) {
			h.Accepted = r.Accepted[i]
		}
		if i < len(r.Dirty) {
			h.Dirt = board.DirtPercent(r.Dirty[i])
		}
		rv.Problems[i] = h
	}
	for i, row := range r.Rows {
		cells := make([]board.Cell, len(row.Problems))
		for j, p := range row.Problems {
			cells[j] = board.CellFor(p)
		}
		rv.Rows[i] = RankRow{Row: row, Cells: cells, Dirt: board.DirtPercent(row.Dirty)}
	}
	return rv
}

func composeSubmit(cfg model.ContestConfig, page view.Page, p model.RunPage) SubmitView {
	index := make(map[string]string, len(cfg.ProblemID))
	for i, id := range board.ProblemLabels(cfg) {
		index[id] = board.ProblemLetter(i)
	}
	sv := SubmitView{
		Page:         page,
		Total:        p.Total,
		Rows:         make([]SubmissionRow, len(p.Data)),
		Schools:      p.Schools,
		Participants: p.Participants,
		Languages:    p.Languages,
		Statuses:     p.Statuses,
	}
	for i, s := range p.Data {
		label := index[s.ProblemID]
		if label == "" {
			label = s.ProblemID
		}
		sv.Rows[i] = SubmissionRow{
			Submission: s,
			Problem:    label,
			Verdict:    board.FormatStatus(s.Status),
			At:         timeline.ToClock(s.Timestamp),
		}
	}
	return sv
}

func composeStats(cfg model.ContestConfig, s model.Stat) StatsView {
	sv := StatsView{
		Stat:     s,
		Total:    board.AlignHeatmap(s.ContestHeatmap.Total),
		Problems: make([]ProblemSeries, len(s.ContestHeatmap.Problems)),
	}
	labels := board.ProblemLabels(cfg)
	for i, h := range s.ContestHeatmap.Problems {
		label := h.ProblemID
		if label == "" && i < len(labels) {
			label = labels[i]
		}
		sv.Problems[i] = ProblemSeries{Label: label, Series: board.AlignHeatmap(h)}
	}
	return sv
}

func composeExport(path string, key view.QueryKey) ExportView {
	ev := ExportView{Links: make([]ExportLink, len(scoreapi.ExportFormats))}
	for i, format := range scoreapi.ExportFormats {
		q := url.Values{"format": {format}}
		if key.Group != "" && key.Group != view.GroupAll {
			q.Set("group", key.Group)
		}
		if key.HasTime {
			q.Set("t", strconv.FormatInt(key.RelativeMs, 10))
		}
		ev.Links[i] = ExportLink{Format: format, URL: "/export/" + path + "?" + q.Encode()}
	}
	return ev
}
