package boardcli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/okian/scoreview/internal/adapters/scoreapi"
	"github.com/okian/scoreview/internal/domain/board"
	"github.com/okian/scoreview/internal/domain/model"
	"github.com/okian/scoreview/internal/domain/timeline"
	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w)
}

// writeBanner prints the contest name and where on the timeline the data is from.
func writeBanner(w io.Writer, cfg model.ContestConfig, relativeMs int64, group string) {
	win := cfg.Window()
	pos := timeline.RelativeMsToPosition(relativeMs, win)
	_, _ = fmt.Fprintf(w, "%s [%s] %s / %s (%.1f%%)\n",
		cfg.ContestName, group, timeline.ToClock(relativeMs), timeline.DurationLabel(win), pos)
}

func renderContests(w io.Writer, contests []model.Contest, loc *time.Location) error {
	table := newTable(w)
	table.Header("Contest", "Board", "Start", "Duration", "Groups")
	for _, c := range contests {
		groups := make([]string, 0, len(c.Config.Group))
		for _, g := range c.Config.Groups() {
			groups = append(groups, g.Key)
		}
		if err := table.Append([]string{
			c.Config.ContestName,
			c.BoardLink,
			timeline.AbsoluteLabel(c.Config.StartTime, loc),
			timeline.DurationLabel(c.Config.Window()),
			strings.Join(groups, ","),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderRank(w io.Writer, cfg model.ContestConfig, rank model.Rank) error {
	labels := board.ProblemLabels(cfg)

	table := newTable(w)
	header := []any{"Place", "Team", "Organization", "Solved", "Penalty"}
	for _, l := range labels {
		header = append(header, l)
	}
	header = append(header, "Dirt")
	table.Header(header...)

	for _, row := range rank.Rows {
		line := []string{
			strconv.Itoa(row.Place),
			row.Team,
			row.Organization,
			strconv.Itoa(row.Solved),
			strconv.FormatInt(row.Penalty, 10),
		}
		for i := range labels {
			var cell board.Cell
			if i < len(row.Problems) {
				cell = board.CellFor(row.Problems[i])
			}
			line = append(line, strings.TrimSpace(cell.Symbol+" "+cell.Label))
		}
		line = append(line, board.DirtPercent(row.Dirty))
		if err := table.Append(line); err != nil {
			return err
		}
	}

	totals := []string{"", "", "", "", "AC/Sub"}
	for i := range labels {
		totals = append(totals, fmt.Sprintf("%d/%d", at(rank.Accepted, i), at(rank.Submitted, i)))
	}
	totals = append(totals, "")
	if err := table.Append(totals); err != nil {
		return err
	}
	return table.Render()
}

func renderRuns(w io.Writer, cfg model.ContestConfig, page model.RunPage, number, size int) error {
	table := newTable(w)
	table.Header("Run", "Time", "Team", "Organization", "Problem", "Language", "Verdict")
	letters := problemLetters(cfg)
	for _, s := range page.Data {
		if err := table.Append([]string{
			s.ID,
			timeline.ToClock(s.Timestamp),
			s.Team,
			s.Organization,
			orDefault(letters[s.ProblemID], s.ProblemID),
			s.Language,
			board.FormatStatus(s.Status),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	pages := 1
	if size > 0 && page.Total > size {
		pages = (page.Total + size - 1) / size
	}
	_, err := fmt.Fprintf(w, "page %d of %d, %s submissions\n", number, pages, humanize.Comma(int64(page.Total)))
	return err
}

func renderStats(w io.Writer, cfg model.ContestConfig, st model.Stat) error {
	_, _ = fmt.Fprintf(w, "teams %s, runs %s, accepted %s, rejected %s, rate %.1f%%\n",
		humanize.Comma(int64(st.TeamCount)), humanize.Comma(int64(st.RunCount)),
		humanize.Comma(int64(st.AcceptedCount)), humanize.Comma(int64(st.RejectedCount)),
		st.AcceptedRate*100)

	table := newTable(w)
	table.Header("Problem", "Accepted", "Rejected", "Buckets")
	labels := board.ProblemLabels(cfg)
	for i, p := range st.ContestHeatmap.Problems {
		s := board.AlignHeatmap(p)
		label := p.ProblemID
		if label == "" && i < len(labels) {
			label = labels[i]
		}
		if err := table.Append([]string{
			label,
			strconv.Itoa(sum(s.Accepted)),
			strconv.Itoa(sum(s.Rejected)),
			strconv.Itoa(len(s.Timestamps)),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderTrend(w io.Writer, teamID string, trend []model.TrendPoint) error {
	_, _ = fmt.Fprintf(w, "team %s\n", teamID)
	table := newTable(w)
	table.Header("Time", "Place")
	for _, p := range trend {
		if err := table.Append([]string{timeline.ToClock(p.Time), strconv.Itoa(p.Place)}); err != nil {
			return err
		}
	}
	return table.Render()
}

func describeDownload(w io.Writer, path string, dl *scoreapi.Download) error {
	_, err := fmt.Fprintf(w, "wrote %s (%s)\n", path, humanize.Bytes(uint64(len(dl.Body))))
	return err
}

// problemLetters maps configured problem ids to their column letters.
func problemLetters(cfg model.ContestConfig) map[string]string {
	out := make(map[string]string, len(cfg.ProblemID))
	for i, id := range board.ProblemLabels(cfg) {
		out[id] = board.ProblemLetter(i)
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func at(xs []int, i int) int {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}

func sum(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}
