package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/covrun/internal/application"
	"github.com/felixgeelhaar/covrun/internal/domain"
	"github.com/felixgeelhaar/covrun/internal/infrastructure/artifacts"
	"github.com/felixgeelhaar/covrun/internal/infrastructure/badge"
	"github.com/felixgeelhaar/covrun/internal/infrastructure/cargotool"
	"github.com/felixgeelhaar/covrun/internal/infrastructure/config"
	"github.com/felixgeelhaar/covrun/internal/infrastructure/covfix"
	"github.com/felixgeelhaar/covrun/internal/infrastructure/gitmeta"
	"github.com/felixgeelhaar/covrun/internal/infrastructure/grcov"
	"github.com/felixgeelhaar/covrun/internal/infrastructure/history"
	"github.com/felixgeelhaar/covrun/internal/infrastructure/lcov"
	"github.com/felixgeelhaar/covrun/internal/infrastructure/report"
	"github.com/felixgeelhaar/covrun/internal/infrastructure/watcher"
	"github.com/felixgeelhaar/covrun/internal/infrastructure/wizard"
	"github.com/felixgeelhaar/covrun/internal/mcp"
)

type Service interface {
	Run(ctx context.Context, opts application.RunOptions) (application.RunResult, error)
	Clean(ctx context.Context, opts application.CleanOptions) (application.CleanResult, error)
	Detect(ctx context.Context, opts application.DetectOptions) (application.DetectResult, error)
	Report(ctx context.Context, opts application.ReportOptions) error
	Record(ctx context.Context, opts application.RecordOptions, store application.HistoryStore) error
	Trend(ctx context.Context, opts application.TrendOptions, store application.HistoryStore) (application.TrendResult, error)
	Watch(ctx context.Context, opts application.WatchOptions, watcher application.FileWatcher, callback application.WatchCallback) error
	ReportResult(ctx context.Context, opts application.ReportOptions) (application.ReportResult, error)
	Badge(ctx context.Context, opts application.BadgeOptions) (application.BadgeResult, error)
}

var initWizard = wizard.Run

func Run(args []string, stdout, stderr io.Writer, svc Service) int {
	if len(args) < 2 {
		usage(stderr)
		return 2
	}

	ctx := context.Background()

	switch args[1] {
	case "run":
		fs := flag.NewFlagSet("run", flag.ExitOnError)
		configPath := fs.String("config", ".covrun.yaml", "Config file path")
		output := fs.String("output", "", "Final report path (overrides config)")
		keepTemp := fs.Bool("keep-temp", false, "Keep the intermediate report directory")
		record := fs.Bool("record", false, "Record the run summary to history")
		watch := fs.Bool("watch", false, "Watch for file changes and re-run the pipeline")
		_ = fs.Parse(args[2:])

		// Everything after the scope is forwarded to cargo test verbatim.
		rest := fs.Args()
		var scope string
		var extra []string
		if len(rest) > 0 {
			scope = rest[0]
			extra = rest[1:]
		}

		if *watch {
			return runWatch(ctx, stdout, stderr, svc, application.WatchOptions{
				ConfigPath: *configPath,
				Scope:      scope,
				ExtraArgs:  extra,
				Output:     *output,
			})
		}

		result, err := svc.Run(ctx, application.RunOptions{
			ConfigPath: *configPath,
			Scope:      scope,
			ExtraArgs:  extra,
			Output:     *output,
			KeepTemp:   *keepTemp,
		})
		if err != nil {
			return exitCode(err, 3, stderr)
		}
		fmt.Fprintf(stdout, "Corrected report written to %s\n", result.ReportPath)
		if *record {
			store := history.FileStore{Path: historyPath(*configPath)}
			if err := svc.Record(ctx, application.RecordOptions{
				ConfigPath:  *configPath,
				ProfilePath: result.ReportPath,
			}, &store); err != nil {
				return exitCode(err, 3, stderr)
			}
			fmt.Fprintln(stdout, "Coverage recorded to history")
		}
		return 0
	case "clean":
		fs := flag.NewFlagSet("clean", flag.ExitOnError)
		configPath := fs.String("config", ".covrun.yaml", "Config file path")
		_ = fs.Parse(args[2:])
		result, err := svc.Clean(ctx, application.CleanOptions{ConfigPath: *configPath})
		if err != nil {
			return exitCode(err, 3, stderr)
		}
		fmt.Fprintf(stdout, "Removed %d stale artifacts under %s\n", result.Removed, result.Dir)
		return 0
	case "report":
		fs := flag.NewFlagSet("report", flag.ExitOnError)
		configPath := fs.String("config", ".covrun.yaml", "Config file path")
		output := outputFlags(fs)
		profile := fs.String("profile", "", "Coverage report path")
		historyFlag := fs.String("history", "", "History file path for delta display")
		showDelta := fs.Bool("show-delta", false, "Show coverage change from the last recorded run")
		_ = fs.Parse(args[2:])
		opts := application.ReportOptions{ConfigPath: *configPath, Output: *output, Profile: *profile}
		if *showDelta {
			histPath := *historyFlag
			if histPath == "" {
				histPath = historyPath(*configPath)
			}
			opts.HistoryStore = &history.FileStore{Path: histPath}
		}
		err := svc.Report(ctx, opts)
		return exitCode(err, 3, stderr)
	case "record":
		fs := flag.NewFlagSet("record", flag.ExitOnError)
		configPath := fs.String("config", ".covrun.yaml", "Config file path")
		profile := fs.String("profile", "", "Coverage report path")
		historyFlag := fs.String("history", "", "History file path")
		commit := fs.String("commit", "", "Git commit SHA (default: current HEAD)")
		branch := fs.String("branch", "", "Git branch name (default: current branch)")
		_ = fs.Parse(args[2:])
		histPath := *historyFlag
		if histPath == "" {
			histPath = historyPath(*configPath)
		}
		git := gitmeta.Resolver{}
		if *commit == "" {
			*commit = git.Commit(ctx)
		}
		if *branch == "" {
			*branch = git.Branch(ctx)
		}
		store := history.FileStore{Path: histPath}
		err := svc.Record(ctx, application.RecordOptions{
			ConfigPath:  *configPath,
			ProfilePath: *profile,
			Commit:      *commit,
			Branch:      *branch,
		}, &store)
		if err != nil {
			return exitCode(err, 3, stderr)
		}
		fmt.Fprintln(stdout, "Coverage recorded to history")
		return 0
	case "trend":
		fs := flag.NewFlagSet("trend", flag.ExitOnError)
		configPath := fs.String("config", ".covrun.yaml", "Config file path")
		profile := fs.String("profile", "", "Coverage report path")
		historyFlag := fs.String("history", "", "History file path")
		_ = fs.Parse(args[2:])
		histPath := *historyFlag
		if histPath == "" {
			histPath = historyPath(*configPath)
		}
		store := history.FileStore{Path: histPath}
		result, err := svc.Trend(ctx, application.TrendOptions{
			ConfigPath:  *configPath,
			ProfilePath: *profile,
		}, &store)
		if err != nil {
			return exitCode(err, 3, stderr)
		}
		printTrendResult(result, stdout)
		return 0
	case "init":
		fs := flag.NewFlagSet("init", flag.ExitOnError)
		configPath := fs.String("config", ".covrun.yaml", "Config file path")
		force := fs.Bool("force", false, "Overwrite existing config file")
		noInteractive := fs.Bool("no-interactive", false, "Skip the interactive init wizard")
		_ = fs.Parse(args[2:])
		detected, err := svc.Detect(ctx, application.DetectOptions{})
		if err != nil {
			return exitCode(err, 3, stderr)
		}
		cfg := detected.Config
		if !*noInteractive {
			var confirmed bool
			cfg, confirmed, err = initWizard(cfg, detected.Members, stdout, os.Stdin)
			if err != nil {
				return exitCode(err, 5, stderr)
			}
			if !confirmed {
				fmt.Fprintln(stdout, "Init cancelled; no configuration written.")
				return 0
			}
		}
		if err := writeConfigFile(*configPath, cfg, stdout, *force); err != nil {
			return exitCode(err, 2, stderr)
		}
		return 0
	case "badge":
		fs := flag.NewFlagSet("badge", flag.ExitOnError)
		configPath := fs.String("config", ".covrun.yaml", "Config file path")
		profile := fs.String("profile", "", "Coverage report path")
		output := fs.String("output", "coverage.svg", "Output file path")
		label := fs.String("label", "coverage", "Badge label text")
		style := fs.String("style", "flat", "Badge style: flat|flat-square")
		_ = fs.Parse(args[2:])
		result, err := svc.Badge(ctx, application.BadgeOptions{
			ConfigPath:  *configPath,
			ProfilePath: *profile,
		})
		if err != nil {
			return exitCode(err, 3, stderr)
		}
		if err := writeBadgeFile(*output, result.Percent, *label, *style); err != nil {
			return exitCode(err, 3, stderr)
		}
		fmt.Fprintf(stdout, "Badge written to %s (%.1f%%)\n", *output, result.Percent)
		return 0
	case "watch":
		fs := flag.NewFlagSet("watch", flag.ExitOnError)
		configPath := fs.String("config", ".covrun.yaml", "Config file path")
		output := fs.String("output", "", "Final report path (overrides config)")
		_ = fs.Parse(args[2:])
		rest := fs.Args()
		var scope string
		var extra []string
		if len(rest) > 0 {
			scope = rest[0]
			extra = rest[1:]
		}
		return runWatch(ctx, stdout, stderr, svc, application.WatchOptions{
			ConfigPath: *configPath,
			Scope:      scope,
			ExtraArgs:  extra,
			Output:     *output,
		})
	case "serve":
		fs := flag.NewFlagSet("serve", flag.ExitOnError)
		configPath := fs.String("config", ".covrun.yaml", "Config file path")
		historyFlag := fs.String("history", "", "History file path")
		profile := fs.String("profile", "", "Coverage report path")
		_ = fs.Parse(args[2:])
		server := mcp.New(svc, mcp.Config{
			ConfigPath:  *configPath,
			HistoryPath: *historyFlag,
			ProfilePath: *profile,
		})
		if err := server.Run(ctx); err != nil {
			return exitCode(err, 3, stderr)
		}
		return 0
	case "version":
		fmt.Fprintf(stdout, "covrun %s (commit %s, built %s)\n", Version, Commit, Date)
		return 0
	default:
		usage(stderr)
		return 2
	}
}

func BuildService(out *os.File) *application.Service {
	return &application.Service{
		ConfigLoader: config.Loader{},
		Metadata:     &cargotool.MetadataResolver{Dir: "."},
		Cleaner:      artifacts.Cleaner{},
		Tests:        cargotool.Runner{},
		Aggregator:   grcov.Aggregator{},
		Corrector:    covfix.Corrector{},
		Parser:       lcov.Parser{},
		Reporter:     report.Writer{},
		Out:          out,
	}
}

// historyPath resolves the configured history file location, falling back
// to the default when the config cannot be loaded.
func historyPath(configPath string) string {
	cfg, err := config.Loader{}.Load(configPath)
	if err != nil {
		return application.DefaultConfig().HistoryPath
	}
	return cfg.HistoryPath
}

func outputFlags(fs *flag.FlagSet) *application.OutputFormat {
	output := application.OutputText
	fs.Var((*outputValue)(&output), "output", "Output format: text|json")
	fs.Var((*outputValue)(&output), "o", "Output format: text|json")
	return &output
}

type outputValue application.OutputFormat

func (o *outputValue) String() string { return string(*o) }

func (o *outputValue) Set(value string) error {
	switch value {
	case string(application.OutputText), string(application.OutputJSON):
		*o = outputValue(value)
		return nil
	default:
		return fmt.Errorf("invalid output format: %s", value)
	}
}

func writeConfigFile(path string, cfg application.Config, stdout io.Writer, force bool) error {
	if path == "-" {
		return config.Write(stdout, cfg)
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists", path)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return config.Write(file, cfg)
}

func writeBadgeFile(path string, percent float64, label, style string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	badgeStyle := badge.StyleFlat
	if style == "flat-square" {
		badgeStyle = badge.StyleFlatSquare
	}

	return badge.Generate(file, badge.Options{
		Label:   label,
		Percent: percent,
		Style:   badgeStyle,
	})
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `covrun <command>

Commands:
  run     Run the coverage pipeline: clean, test, aggregate, correct
  clean   Remove stale instrumentation artifacts
  report  Analyze an existing LCOV report
  record  Record current coverage to history
  trend   Show coverage movement against recorded history
  badge   Generate an SVG coverage badge from the report
  init    Detect the workspace and write a starter config
  watch   Re-run the pipeline when source files change
  serve   Run as an MCP server over stdio
  version Print version information

Run usage:
  covrun run [flags] [scope] [extra cargo test args...]

With no scope the whole workspace is tested. With a scope, tests run in
that subdirectory and the extra args are forwarded to cargo test verbatim.`)
}

// exitCode prints err and converts it to a process exit code. When the
// failure came from an external tool, that tool's exit code wins so CI
// sees the original status.
func exitCode(err error, code int, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, err)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return code
}

func printTrendResult(result application.TrendResult, w io.Writer) {
	trendSymbol := "→"
	switch result.Trend.Direction {
	case domain.TrendUp:
		trendSymbol = "↑"
	case domain.TrendDown:
		trendSymbol = "↓"
	}

	fmt.Fprintf(w, "Coverage Trend: %.1f%% %s %.1f%% (%+.1f%%)\n",
		result.Previous, trendSymbol, result.Current, result.Trend.Delta)
	fmt.Fprintf(w, "\nHistory: %d entries\n", len(result.Entries))
}

func runWatch(ctx context.Context, stdout, stderr io.Writer, svc Service, opts application.WatchOptions) int {
	w, err := watcher.New(watcher.WithDebounce(500 * time.Millisecond))
	if err != nil {
		fmt.Fprintf(stderr, "failed to create watcher: %v\n", err)
		return 3
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(stdout, "\nStopping watch mode...")
		cancel()
	}()

	fmt.Fprintln(stdout, "Watching for file changes... (Ctrl+C to stop)")
	fmt.Fprintln(stdout, "")

	callback := func(runNumber int, runErr error) {
		fmt.Fprintf(stdout, "\n--- Run #%d at %s ---\n", runNumber, time.Now().Format("15:04:05"))
		if runErr != nil {
			fmt.Fprintf(stderr, "Coverage run failed: %v\n", runErr)
		} else {
			fmt.Fprintln(stdout, "Coverage run completed successfully")
		}
	}

	if err := svc.Watch(ctx, opts, w, callback); err != nil {
		if ctx.Err() == context.Canceled {
			return 0
		}
		fmt.Fprintf(stderr, "watch error: %v\n", err)
		return 3
	}
	return 0
}
