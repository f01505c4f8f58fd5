package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/loamlabs/branchwatch/config"
	"github.com/loamlabs/branchwatch/internal/constants"
	"github.com/loamlabs/branchwatch/internal/duration"
	"github.com/loamlabs/branchwatch/internal/ghsource"
	"github.com/loamlabs/branchwatch/internal/gitsource"
	"github.com/loamlabs/branchwatch/internal/log"
	"github.com/loamlabs/branchwatch/internal/model"
	"github.com/loamlabs/branchwatch/internal/notify"
	"github.com/loamlabs/branchwatch/internal/report"
	"github.com/loamlabs/branchwatch/internal/scan"
	"github.com/loamlabs/branchwatch/internal/tracker"
	"github.com/loamlabs/branchwatch/internal/tui"
)

// scanRuntime bundles TUI-related state that's threaded through the scan command.
type scanRuntime struct {
	useTUI  bool
	events  chan tui.Event
	tuiDone chan error
}

// startTUI initializes and starts the TUI goroutine if TUI mode is enabled.
func (rt *scanRuntime) startTUI(opts ...tui.ModelOption) {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, 100)
	rt.tuiDone = make(chan error, 1)
	go func() {
		rt.tuiDone <- tui.Run(rt.events, opts...)
	}()
}

// close closes the event channel and waits for the TUI to finish.
// Calling it again is a no-op.
func (rt *scanRuntime) close() {
	if rt.events == nil {
		return
	}
	close(rt.events)
	rt.events = nil
	if rt.tuiDone != nil {
		<-rt.tuiDone
	}
}

// sendEvent sends a task event to the TUI channel if it exists.
func (rt *scanRuntime) sendEvent(task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	tui.SendTaskEvent(rt.events, task, status, opts...)
}

// scanClients bundles the branch source and ticket resolver built during
// startup authentication.
type scanClients struct {
	source   scan.Source
	tickets  scan.StatusResolver
	username string
}

// noTracker reports every ticket as unknown, so no branch is protected.
type noTracker struct{}

func (noTracker) ResolveStatus(context.Context, string) (string, error) {
	return "", model.ErrNotFound
}

// NewCmdScan creates the scan command.
func NewCmdScan(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan repositories for stale branches (same as root branchwatch)",
		Long: `Scans the configured repositories, flags feature and hotfix branches
that fell behind the integration branch once their ticket was resolved
(or was never referenced), and prints the aggregate report.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, opts)
		},
	}

	addScanFlags(cmd, opts)
	return cmd
}

// addScanFlags adds the scan-specific flags to a command.
func addScanFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (text, json)")
	cmd.Flags().StringVar(&opts.MinAge, "min-age", "", "Skip branches with commits newer than this (e.g., 2w, 30d)")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "Repositories scanned concurrently")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug)")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable TUI progress (default: auto-detect)")

	// Profiling flags
	cmd.Flags().StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	cmd.Flags().StringVar(&opts.Trace, "trace", "", "Write execution trace to file")
}

func runScan(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	// Setup
	rt, cleanup, err := setupRuntime(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, err := loadScanConfig()
	if err != nil {
		return err
	}

	// The publish task row only appears when a Slack target is configured.
	if cfg.HasNotifyTarget() {
		rt.startTUI()
	} else {
		rt.startTUI(tui.WithTasks(tui.ScanOnlyTasks()))
	}

	// Authenticate
	clients, err := authenticate(ctx, rt, cfg)
	if err != nil {
		rt.close()
		return err
	}

	sc, err := engineConfig(cfg, opts)
	if err != nil {
		rt.close()
		return err
	}

	// Scan
	rep, err := runEngine(ctx, clients, cfg, sc, rt)
	if err != nil {
		rt.close()
		return err
	}

	// Publish
	publishReport(ctx, cfg, rep, rt)

	// Output
	rt.close()
	return renderOutput(rep, opts, cfg)
}

// setupRuntime creates the runtime struct and returns a cleanup function for profiling.
func setupRuntime(opts *Options) (*scanRuntime, func(), error) {
	profiler := NewProfiler(opts.CPUProfile, opts.MemProfile, opts.Trace)
	if err := profiler.Start(); err != nil {
		return nil, nil, err
	}

	useTUI := shouldUseTUI(opts)

	// Initialize logging - suppress logs during TUI to avoid interleaving with display
	if useTUI {
		log.Initialize(opts.Verbosity, io.Discard)
	} else {
		log.Initialize(opts.Verbosity, os.Stderr)
	}

	rt := &scanRuntime{useTUI: useTUI}
	return rt, profiler.Stop, nil
}

// loadScanConfig loads and validates the configuration. Validation lists
// every missing key at once and aborts before any scanning.
func loadScanConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// authenticate builds the branch source and the ticket resolver, verifying
// credentials up front so a broken setup fails before any scanning.
func authenticate(ctx context.Context, rt *scanRuntime, cfg *config.Config) (*scanClients, error) {
	rt.sendEvent(tui.TaskAuth, tui.StatusRunning)

	clients := &scanClients{}

	switch cfg.SourceKind() {
	case config.SourceLocal:
		clients.source = gitsource.New(cfg.LocalRoot)
	default:
		gh, err := ghsource.NewClient(ctx, cfg.GetGitHubToken(), cfg.Account)
		if err != nil {
			rt.sendEvent(tui.TaskAuth, tui.StatusError, tui.WithError(err))
			return nil, err
		}
		user, err := gh.AuthenticatedUser(ctx)
		if err != nil {
			rt.sendEvent(tui.TaskAuth, tui.StatusError, tui.WithError(err))
			return nil, fmt.Errorf("failed to authenticate with GitHub: %w", err)
		}
		clients.source = gh
		clients.username = user
	}

	if cfg.Tracker.Disabled {
		log.Warn("tracker disabled, no ticket can protect a branch")
		clients.tickets = noTracker{}
	} else {
		creds, err := tracker.CredentialsFromEnv()
		if err != nil {
			rt.sendEvent(tui.TaskAuth, tui.StatusError, tui.WithError(err))
			return nil, err
		}
		jc, err := tracker.NewClient(ctx, cfg.Tracker.URL, creds)
		if err != nil {
			rt.sendEvent(tui.TaskAuth, tui.StatusError, tui.WithError(err))
			return nil, err
		}
		self, err := jc.Self(ctx)
		if err != nil {
			rt.sendEvent(tui.TaskAuth, tui.StatusError, tui.WithError(err))
			return nil, fmt.Errorf("failed to authenticate with Jira: %w", err)
		}
		if clients.username == "" {
			clients.username = self
		}
		clients.tickets = jc
	}

	rt.sendEvent(tui.TaskAuth, tui.StatusComplete, tui.WithMessage(clients.username))
	return clients, nil
}

// engineConfig assembles the engine configuration from config file values
// and command-line flags. Flags win where both are set.
func engineConfig(cfg *config.Config, opts *Options) (scan.Config, error) {
	sc := scan.Config{
		Prefixes:     cfg.GetBranchPrefixes(),
		DoneStatuses: cfg.GetDoneStatuses(),
		Workers:      cfg.Workers,
	}

	if opts.Workers > 0 {
		sc.Workers = opts.Workers
	}
	if sc.Workers < 1 {
		sc.Workers = constants.DefaultWorkers
	}
	if sc.Workers > constants.MaxWorkers {
		sc.Workers = constants.MaxWorkers
	}

	if opts.MinAge != "" {
		d, err := duration.Parse(opts.MinAge)
		if err != nil {
			return scan.Config{}, fmt.Errorf("invalid min-age: %w", err)
		}
		sc.MinAge = d
	} else {
		d, err := cfg.GetMinAge()
		if err != nil {
			return scan.Config{}, err
		}
		sc.MinAge = d
	}

	return sc, nil
}

// runEngine executes the scan with progress bridged to the TUI or the log.
func runEngine(ctx context.Context, clients *scanClients, cfg *config.Config, sc scan.Config, rt *scanRuntime) (*model.Report, error) {
	rt.sendEvent(tui.TaskScan, tui.StatusRunning)

	engine := scan.New(clients.source, clients.tickets, sc, scan.WithProgress(scanProgress(rt)))
	rep, err := engine.Scan(ctx, cfg.Repos)
	if err != nil {
		rt.sendEvent(tui.TaskScan, tui.StatusError, tui.WithError(err))
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if !rt.useTUI {
		log.ProgressDone()
	}

	rt.sendEvent(tui.TaskScan, tui.StatusComplete,
		tui.WithMessage(fmt.Sprintf("%d stale branches in %d repositories", rep.Total, len(cfg.Repos))))
	return rep, nil
}

// scanProgress bridges engine progress callbacks to the TUI or the log.
// The engine may call it from multiple goroutines, so updates are
// throttled with atomics rather than locks.
func scanProgress(rt *scanRuntime) scan.ProgressFunc {
	var lastLogPercent int64 = -1
	var lastTUIUpdate int64 // Unix nanoseconds
	tuiUpdateInterval := int64(constants.TUIUpdateInterval)

	return func(done, total int, repo string) {
		if total == 0 {
			return
		}
		if rt.useTUI {
			// Throttle TUI updates to every 50ms for smooth progress without overhead
			now := time.Now().UnixNano()
			lastUpdate := atomic.LoadInt64(&lastTUIUpdate)
			if now-lastUpdate >= tuiUpdateInterval || done == total {
				if atomic.CompareAndSwapInt64(&lastTUIUpdate, lastUpdate, now) {
					rt.sendEvent(tui.TaskScan, tui.StatusRunning,
						tui.WithProgress(float64(done)/float64(total)),
						tui.WithMessage(fmt.Sprintf("%d/%d %s", done, total, repo)))
				}
			}
		} else {
			// Throttle log output to configured percent intervals
			percent := int64(done*100) / int64(total)
			if percent != atomic.LoadInt64(&lastLogPercent) && percent%constants.LogThrottlePercent == 0 {
				atomic.StoreInt64(&lastLogPercent, percent)
				log.Progress("Scanning repositories: %d/%d (%d%%)...", done, total, percent)
			}
		}
	}
}

// publishReport delivers the report to Slack when a target is configured.
// Delivery failure is logged, not fatal: the report was already produced.
func publishReport(ctx context.Context, cfg *config.Config, rep *model.Report, rt *scanRuntime) {
	if !cfg.HasNotifyTarget() {
		return
	}

	rt.sendEvent(tui.TaskPublish, tui.StatusRunning)

	var notifier *notify.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhook(cfg.Notify.WebhookURL)
	} else {
		notifier = notify.NewBot(cfg.GetSlackToken(), cfg.Notify.Channel)
	}

	if err := notifier.Send(ctx, report.Overview(rep), report.Details(rep)); err != nil {
		log.Error("failed to deliver report", "error", err)
		rt.sendEvent(tui.TaskPublish, tui.StatusError, tui.WithError(err))
		return
	}

	rt.sendEvent(tui.TaskPublish, tui.StatusComplete)
}

// renderOutput writes the report to stdout in the requested format.
func renderOutput(rep *model.Report, opts *Options, cfg *config.Config) error {
	format := report.Format(opts.Format)
	if format == "" {
		format = report.Format(cfg.DefaultFormat)
	}
	return report.NewRenderer(format).Render(rep, os.Stdout)
}
