// Package boardcli implements the board command line tool: a terminal view of
// an ICPC scoreboard backend at any point of the contest.
package boardcli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/okian/scoreview/internal/adapters/scoreapi"
	service "github.com/okian/scoreview/internal/app"
	"github.com/okian/scoreview/internal/domain/model"
	"github.com/okian/scoreview/internal/domain/view"
	"github.com/okian/scoreview/pkg/logger"
	"github.com/spf13/cobra"
)

// File permission constants.
const (
	exportFilePermission = 0o600
)

// app carries what every command needs once flags are parsed.
type app struct {
	cfg     *Config
	backend service.Backend
	loc     *time.Location
	log     logger.Logger
}

// Execute runs the board command with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the board command tree.
func NewRootCommand() *cobra.Command {
	a := &app{cfg: newConfig()}

	root := &cobra.Command{
		Use:           "board",
		Short:         "Inspect an ICPC scoreboard at any point of the contest",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.BaseURL, "url", a.cfg.BaseURL, "scoreboard backend base URL")
	flags.DurationVar(&a.cfg.Timeout, "timeout", a.cfg.Timeout, "per-request timeout")
	flags.IntVar(&a.cfg.RateLimit, "rate", a.cfg.RateLimit, "max requests per second (0 for unlimited)")
	flags.StringVarP(&a.cfg.Group, "group", "g", a.cfg.Group, "team group")
	flags.StringVar(&a.cfg.Location, "tz", a.cfg.Location, "timezone for absolute times")
	flags.Float64Var(&a.cfg.At, "at", a.cfg.At, "timeline position in percent, 0-100")
	flags.Int64Var(&a.cfg.T, "t", a.cfg.T, "milliseconds since contest start")
	flags.BoolVarP(&a.cfg.Verbose, "verbose", "v", false, "log backend requests")

	root.AddCommand(
		a.contestsCmd(),
		a.rankCmd(),
		a.runsCmd(),
		a.statsCmd(),
		a.trendCmd(),
		a.exportCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := a.cfg.validate(); err != nil {
		return err
	}

	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if a.cfg.Verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)
	a.log = logger.Get()

	loc, err := time.LoadLocation(a.cfg.Location)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", a.cfg.Location, err)
	}
	a.loc = loc

	client, err := scoreapi.New(a.cfg.BaseURL,
		scoreapi.WithTimeout(a.cfg.Timeout),
		scoreapi.WithRateLimit(a.cfg.RateLimit),
		scoreapi.WithLogger(a.log.Named("scoreapi")),
	)
	if err != nil {
		return err
	}
	a.backend = client
	return nil
}

func (a *app) contestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contests [name]",
		Short: "List contests",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			contests, err := a.backend.Contests(cmd.Context(), scoreapi.ContestsQuery{ContestName: name})
			if err != nil {
				return err
			}
			return renderContests(cmd.OutOrStdout(), contests, a.loc)
		},
	}
}

func (a *app) rankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank <path>",
		Short: "Show the ranking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadAt(cmd.Context(), a.backend, a.cfg, args[0],
				func(ctx context.Context, t *int64) (model.Rank, error) {
					return a.backend.Rank(ctx, args[0], scoreapi.RankQuery{T: t, Group: a.cfg.Group})
				})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writeBanner(out, snap.cfg, snap.relativeMs, a.cfg.Group)
			return renderRank(out, snap.cfg, snap.data)
		},
	}
}

func (a *app) runsCmd() *cobra.Command {
	var (
		page    = view.Page{Number: 1, Size: view.DefaultPageSize}
		filters view.Filters
	)
	cmd := &cobra.Command{
		Use:   "runs <path>",
		Short: "List submissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if page.Number < 1 || page.Size < 1 {
				return fmt.Errorf("%w: page %d size %d", view.ErrInvalidPage, page.Number, page.Size)
			}
			snap, err := loadAt(cmd.Context(), a.backend, a.cfg, args[0],
				func(ctx context.Context, t *int64) (model.RunPage, error) {
					return a.backend.Runs(ctx, args[0], scoreapi.RunQuery{
						Group:    scoreapi.OptionalGroup(a.cfg.Group),
						T:        t,
						Page:     page.Number,
						Size:     page.Size,
						School:   filters.School,
						TeamID:   filters.Team,
						Language: filters.Language,
						Status:   filters.Status,
					})
				})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writeBanner(out, snap.cfg, snap.relativeMs, a.cfg.Group)
			return renderRuns(out, snap.cfg, snap.data, page.Number, page.Size)
		},
	}
	f := cmd.Flags()
	f.IntVar(&page.Number, "page", page.Number, "page number")
	f.IntVar(&page.Size, "size", page.Size, "page size")
	f.StringVar(&filters.School, "school", "", "filter by school")
	f.StringVar(&filters.Team, "team", "", "filter by team id")
	f.StringVar(&filters.Language, "language", "", "filter by language")
	f.StringVar(&filters.Status, "status", "", "filter by verdict")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <path>",
		Short: "Show submission statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadAt(cmd.Context(), a.backend, a.cfg, args[0],
				func(ctx context.Context, t *int64) (model.Stat, error) {
					return a.backend.Stats(ctx, args[0], scoreapi.StatQuery{
						Group: scoreapi.OptionalGroup(a.cfg.Group),
						T:     t,
					})
				})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writeBanner(out, snap.cfg, snap.relativeMs, a.cfg.Group)
			return renderStats(out, snap.cfg, snap.data)
		},
	}
}

func (a *app) trendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trend <path> <team-id>",
		Short: "Show a team's place over time",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			trend, err := a.backend.TeamTrend(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return renderTrend(cmd.OutOrStdout(), args[1], trend)
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var (
		format = scoreapi.ExportFormats[0]
		dir    = "."
	)
	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Download the scoreboard as a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(scoreapi.ExportFormats, format) {
				return fmt.Errorf("%w: %q", service.ErrUnknownFormat, format)
			}
			q := scoreapi.ExportQuery{Format: format, Group: scoreapi.OptionalGroup(a.cfg.Group)}
			if a.cfg.explicitTime() {
				q.T = scoreapi.Time(a.cfg.T)
			} else {
				cfg, err := a.backend.Config(cmd.Context(), args[0], nil)
				if err != nil {
					return err
				}
				q.T = scoreapi.Time(a.cfg.relativeMs(cfg.Window()))
			}

			dl, err := a.backend.Export(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, dl.Filename)
			if err := os.WriteFile(path, dl.Body, exportFilePermission); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			return describeDownload(cmd.OutOrStdout(), path, dl)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", format, "xlsx, csv, html, json or dat")
	cmd.Flags().StringVarP(&dir, "out", "o", dir, "directory to write the file to")
	return cmd
}
