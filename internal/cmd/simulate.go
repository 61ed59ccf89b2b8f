package cmd

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/adamancini/devsim/internal/config"
	"github.com/adamancini/devsim/internal/device"
	"github.com/adamancini/devsim/internal/output"
	"github.com/adamancini/devsim/internal/types"
	"github.com/adamancini/devsim/internal/update"
)

var (
	commandFile string
	deviceIDs   []string
	autostart   bool
	actionFlag  string
	delayFlag   time.Duration
	workersFlag int
	strict      bool
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run an update command against simulated devices",
		Long: `Simulate delivers an update command to one or more simulated devices.

Each device waits for the configured delay, downloads and verifies every
artifact of the command and reports its status after each step. Devices that
do not exist yet are created on first use.

Examples:
  devsim simulate -f update.yaml --device dev1 --device dev2
  devsim simulate -f update.yaml --autostart
  devsim simulate -f update.yaml --autostart --action download -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd)
		},
	}

	cmd.Flags().StringVarP(&commandFile, "file", "f", "", "Update command file (yaml, toml or json)")
	cmd.Flags().StringSliceVar(&deviceIDs, "device", nil, "Target device id (repeatable)")
	cmd.Flags().BoolVar(&autostart, "autostart", false, "Create the configured autostart devices and target them when no device is given")
	cmd.Flags().StringVar(&actionFlag, "action", "", "Override the command action: download_and_install, download")
	cmd.Flags().DurationVar(&delayFlag, "delay", update.DefaultDelay, "Delay before each session starts")
	cmd.Flags().IntVar(&workersFlag, "workers", update.DefaultWorkers, "Number of concurrent sessions")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when any session fails")
	_ = cmd.MarkFlagRequired("file")

	_ = cmd.RegisterFlagCompletionFunc("action", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var actions []string
		for _, a := range types.AllActionTypes() {
			actions = append(actions, a.String())
		}
		return actions, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// target identifies a device to update.
type target struct {
	tenant string
	id     string
}

func runSimulate(cmd *cobra.Command) error {
	logger := slog.Default()

	cfg, path, err := config.Resolve(configPath)
	if err != nil {
		return err
	}
	if path != "" {
		logger.Debug("loaded config", "path", path)
	}

	command, err := config.LoadCommand(commandFile, cfg.DefaultTenant)
	if err != nil {
		return err
	}
	if actionFlag != "" {
		action, err := types.ParseActionType(actionFlag)
		if err != nil {
			return err
		}
		command.Action = action
	}

	opts := cfg.SchedulerOptions()
	if cmd.Flags().Changed("delay") {
		opts.Delay = delayFlag
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = workersFlag
	}
	if opts.Delay < 0 || opts.Workers < 1 {
		return fmt.Errorf("invalid scheduling options: workers=%d delay=%s", opts.Workers, opts.Delay)
	}
	opts.Logger = logger

	registry := device.NewMemoryRegistry()
	factory := device.NewFactory(cfg.DeviceAttributes())

	var targets []target
	for _, id := range append(append([]string(nil), command.DeviceIDs...), deviceIDs...) {
		targets = append(targets, target{tenant: command.Tenant, id: id})
	}
	if autostart {
		created := device.Populate(registry, factory, cfg.DeviceAutostarts())
		logger.Info("autostart devices created", "count", len(created))
		if len(targets) == 0 {
			for _, d := range created {
				targets = append(targets, target{tenant: d.Tenant(), id: d.ID()})
			}
		}
	}
	if len(targets) == 0 {
		return fmt.Errorf("no target devices: set device_ids in the command, pass --device, or use --autostart")
	}

	w := newWriter(cmd)
	downloader := update.NewHTTPDownloader(cfg.Download.Timeout.Std()).WithLogger(logger)
	scheduler := update.NewScheduler(registry, factory, downloader, opts)

	var feedback update.Callback
	if !quiet {
		feedback = update.FeedbackFunc(func(d *device.Device) {
			status, _ := d.UpdateStatus()
			if err := w.Write(output.Feedback{
				Time:     time.Now(),
				Tenant:   d.Tenant(),
				DeviceID: d.ID(),
				Status:   status.Status.String(),
				Messages: status.Messages,
			}); err != nil {
				logger.Error("failed to write feedback", "error", err)
			}
		})
	}

	var (
		mu      sync.Mutex
		results []update.Result
	)
	done := func(r update.Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}

	logger.Info("starting simulation",
		"devices", len(targets),
		"modules", len(command.Modules),
		"artifacts", command.ArtifactCount(),
		"action", command.Action.Default(),
	)

	start := time.Now()
	for _, t := range targets {
		req := command.Request(t.id)
		req.Tenant = t.tenant
		req.Callback = feedback
		req.Done = done
		scheduler.StartUpdate(req)
	}
	scheduler.Close()

	summary := summarize(results, time.Since(start))
	if err := w.Write(summary); err != nil {
		return err
	}

	if strict && summary.Failed > 0 {
		return fmt.Errorf("%d of %d sessions failed", summary.Failed, summary.Sessions)
	}
	return nil
}

func summarize(results []update.Result, elapsed time.Duration) output.Summary {
	s := output.Summary{Sessions: len(results), Elapsed: elapsed}
	for _, r := range results {
		switch r.Outcome {
		case update.OutcomeInstalled:
			s.Installed++
		case update.OutcomeDeferred:
			s.Deferred++
		case update.OutcomeFailed:
			s.Failed++
			s.FailedOn = append(s.FailedOn, device.Key(r.Tenant, r.DeviceID))
		}
	}
	return s
}
