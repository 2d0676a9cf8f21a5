package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"growth/internal/chart"
	"growth/internal/core"
	applog "growth/internal/log"
	"growth/internal/theme"
)

// ProjectOptions are the flags of the project command.
type ProjectOptions struct {
	Input      core.InputSet
	Theme      string
	Width      int
	PixelRatio float64
	SVGPath    string
	PNGPath    string
}

// NewRootCommand builds the growthctl command tree.
func NewRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "growthctl",
		Short:         "Project the growth of a monthly investment plan",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			SetupLogger(cmd.ErrOrStderr(), logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "Log level (debug/info/warn/error)")
	root.AddCommand(newProjectCommand())
	return root
}

func newProjectCommand() *cobra.Command {
	opts := ProjectOptions{}

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Print the projected balance and optionally export the chart",
		Example: "  growthctl project --deposit 500 --years 30 --rate 7 --starting 1000\n" +
			"  growthctl project --years 20 --svg growth.svg --png growth.png --dpr 2 --theme light",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunProject(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.Input.MonthlyDeposit, "deposit", 500, "Monthly deposit in dollars")
	f.IntVar(&opts.Input.Years, "years", 30, "Investment horizon in years (1-60)")
	f.Float64Var(&opts.Input.AnnualReturnRatePercent, "rate", 7, "Annual return rate in percent (0-20)")
	f.Float64Var(&opts.Input.StartingAmount, "starting", 1000, "Starting amount in dollars")
	f.StringVar(&opts.Theme, "theme", theme.Default.String(), "Chart theme (light/dark)")
	f.IntVar(&opts.Width, "width", 600, "Logical chart width (200-2000)")
	f.Float64Var(&opts.PixelRatio, "dpr", 1, "Device pixel ratio for exports (1-4)")
	f.StringVar(&opts.SVGPath, "svg", "", "Write the chart as SVG to this file")
	f.StringVar(&opts.PNGPath, "png", "", "Write the chart as PNG to this file")
	return cmd
}

// RunProject validates the inputs, prints the figures, the yearly table and
// the copy summary, then writes any requested chart files.
func RunProject(ctx context.Context, out io.Writer, opts ProjectOptions) error {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentCLI)

	if err := opts.Input.Validate(); err != nil {
		for _, f := range core.Fields {
			if msg := opts.Input.FieldErrors().Message(f); msg != "" {
				fmt.Fprintf(out, "  %s: %s\n", f, msg)
			}
		}
		return fmt.Errorf("project: %w", err)
	}
	if opts.Theme != "" && !theme.IsValid(opts.Theme) {
		return fmt.Errorf("project: unknown theme %q", opts.Theme)
	}

	res := core.ProjectAll(opts.Input)
	logger.DebugContext(ctx, "Projection computed",
		applog.FieldYears, opts.Input.Years,
		applog.FieldFutureValue, res.FutureValue)

	fmt.Fprintf(out, "Future value:      %s\n", core.FormatCurrency(res.FutureValue))
	fmt.Fprintf(out, "Total contributed: %s\n", core.FormatCurrency(res.TotalContributed))
	fmt.Fprintf(out, "Total growth:      %s\n\n", core.FormatCurrency(res.TotalGrowth))

	if err := writeYearlyTable(out, opts.Input, res); err != nil {
		return fmt.Errorf("project: %w", err)
	}

	if summary, ok := core.Summary(opts.Input); ok {
		fmt.Fprintf(out, "\n%s\n", summary)
	}

	return exportCharts(ctx, logger, res.Series, opts)
}

func writeYearlyTable(out io.Writer, in core.InputSet, res core.ProjectionResult) error {
	table := tablewriter.NewWriter(out)
	table.Header("Year", "Balance", "Contributed", "Growth")
	for _, p := range res.Series {
		contributed := in.StartingAmount + in.MonthlyDeposit*float64(p.Year*12)
		if err := table.Append([]string{
			strconv.Itoa(p.Year),
			core.FormatCurrency(p.Balance),
			core.FormatCurrency(contributed),
			core.FormatCurrency(p.Balance - contributed),
		}); err != nil {
			return fmt.Errorf("table row %d: %w", p.Year, err)
		}
	}
	return table.Render()
}

// exportCharts renders the requested files concurrently, one canvas each.
func exportCharts(ctx context.Context, logger *applog.Logger, series []core.ProjectionPoint, opts ProjectOptions) error {
	if opts.SVGPath == "" && opts.PNGPath == "" {
		return nil
	}

	t := theme.Parse(opts.Theme)
	width := float64(min(max(opts.Width, 200), 2000))
	renderOpts := chart.Options{
		PixelRatio: min(max(opts.PixelRatio, 1), 4),
		Theme:      t,
	}
	pal := chart.PaletteFor(t)

	g, ctx := errgroup.WithContext(ctx)
	if opts.SVGPath != "" {
		g.Go(func() error {
			canvas := chart.NewSVGCanvas(width).WithBackground(pal.Background)
			chart.Render(canvas, series, renderOpts)
			return writeFile(ctx, opts.SVGPath, canvas.Bytes())
		})
	}
	if opts.PNGPath != "" {
		g.Go(func() error {
			canvas := chart.NewRasterCanvas(width, pal.Background)
			chart.Render(canvas, series, renderOpts)
			var buf bytes.Buffer
			if err := canvas.EncodePNG(&buf); err != nil {
				return fmt.Errorf("encode png: %w", err)
			}
			return writeFile(ctx, opts.PNGPath, buf.Bytes())
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("export chart: %w", err)
	}

	for _, p := range []string{opts.SVGPath, opts.PNGPath} {
		if p != "" {
			logger.InfoContext(ctx, "Chart written", "path", p)
		}
	}
	return nil
}

func writeFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ExitCode maps a command error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, core.ErrInvalidInput):
		return 2
	default:
		return 1
	}
}
