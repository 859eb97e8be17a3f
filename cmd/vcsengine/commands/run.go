package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanchriswhite/vcsengine/internal/antitear"
	"github.com/bryanchriswhite/vcsengine/internal/capturedriver"
	capturedrivergst "github.com/bryanchriswhite/vcsengine/internal/capturedriver/gst"
	"github.com/bryanchriswhite/vcsengine/internal/capturedriver/simulated"
	"github.com/bryanchriswhite/vcsengine/internal/config"
	"github.com/bryanchriswhite/vcsengine/internal/engine"
	"github.com/bryanchriswhite/vcsengine/internal/logger"
	"github.com/bryanchriswhite/vcsengine/internal/metrics"
	"github.com/bryanchriswhite/vcsengine/internal/modestore"
	"github.com/bryanchriswhite/vcsengine/internal/persistence"
	"github.com/bryanchriswhite/vcsengine/internal/pipeline"
	"github.com/bryanchriswhite/vcsengine/internal/scaler"
	"github.com/bryanchriswhite/vcsengine/internal/statusbus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run [aliases-file] [mode-params-file] [filter-graph-file]",
	Short: "Start the capture pipeline",
	Long: `Start the capture pipeline: open the configured capture device, load
any of the three optional state files named positionally (a file not
named falls back to the matching persistence path in the config file;
nothing is loaded when neither names one), then run the event loop
until interrupted.`,
	Args: cobra.MaximumNArgs(3),
	Example: `  # Run with defaults, no pre-loaded state
  vcsengine run

  # Run loading all three state files
  vcsengine run aliases.csv modeparams.csv graph.json`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to initialize config manager: %w", err)
	}

	cfg := configMgr.Get()
	if viper.IsSet("log_level") && viper.GetString("log_level") != "" {
		cfg.LogLevel = viper.GetString("log_level")
	}
	if viper.IsSet("status_port") && viper.GetInt("status_port") > 0 {
		cfg.StatusBus.Port = viper.GetInt("status_port")
	}
	if viper.IsSet("driver_model") && viper.GetString("driver_model") != "" {
		cfg.Driver.Model = viper.GetString("driver_model")
	}

	logger.Init(cfg.LogLevel, true)
	log := logger.WithComponent("run")

	var aliasesPath, modeParamsPath, filterGraphPath string
	if len(args) > 0 {
		aliasesPath = args[0]
	}
	if len(args) > 1 {
		modeParamsPath = args[1]
	}
	if len(args) > 2 {
		filterGraphPath = args[2]
	}
	if aliasesPath == "" {
		aliasesPath = cfg.Persistence.AliasesFile
	}
	if modeParamsPath == "" {
		modeParamsPath = cfg.Persistence.ModeParamsFile
	}
	if filterGraphPath == "" {
		filterGraphPath = cfg.Persistence.FilterGraphFile
	}

	var driver capturedriver.Driver
	switch cfg.Driver.Model {
	case "gst":
		driver = capturedrivergst.New(cfg.Driver.Device)
	default:
		driver = simulated.New()
	}

	if err := driver.Load(); err != nil {
		return fmt.Errorf("failed to load capture driver: %w", err)
	}
	if err := driver.OpenInput(cfg.Driver.Channel); err != nil {
		return fmt.Errorf("failed to open input channel %d: %w", cfg.Driver.Channel, err)
	}
	driver.SetFrameDropping(cfg.Driver.FrameDropPct)

	caps := driver.Capabilities()
	bounds := capturedriver.Bounds(driver)
	log.Info().Str("model", caps.ModelName).Str("version", caps.DriverVersion).Msg("capture driver opened")

	eng := engine.New(driver, bounds, cfg.FrameBufferBytes)
	eng.SetFilteringEnabled(cfg.FilteringEnabled)
	if !cfg.AntiTearEnabled {
		eng.AntiTear.SetMode(antitear.Off)
	}
	applyScalerConfig(&eng.Scaler, cfg.Scaler)

	if aliasesPath != "" {
		aliases, err := persistence.LoadAliases(aliasesPath)
		if err != nil {
			return fmt.Errorf("failed to load aliases file %q: %w", aliasesPath, err)
		}
		eng.Store().SetAliases(aliases)
		for _, a := range aliases {
			eng.Bus.NewKnownAlias(a)
		}
	}
	if modeParamsPath != "" {
		modes, err := persistence.LoadModeParams(modeParamsPath)
		if err != nil {
			return fmt.Errorf("failed to load mode-params file %q: %w", modeParamsPath, err)
		}
		for _, mp := range modes {
			eng.Store().Upsert(mp.Resolution, &mp.Color, &mp.Geometry)
		}
		eng.Bus.NewModeSettingsSourceFile(modeParamsPath)
	}
	if filterGraphPath != "" {
		g, err := persistence.LoadFilterGraph(filterGraphPath)
		if err != nil {
			return fmt.Errorf("failed to load filter-graph file %q: %w", filterGraphPath, err)
		}
		eng.ReplaceGraph(g)
	}

	var watcher *persistence.Watcher
	if cfg.Persistence.WatchForChanges && filterGraphPath != "" {
		watcher = persistence.NewWatcher(filterGraphPath, func() {
			g, err := persistence.LoadFilterGraph(filterGraphPath)
			if err != nil {
				log.Warn().Err(err).Msg("filter graph hot-reload failed to parse, keeping prior graph")
				return
			}
			eng.ReplaceGraph(g)
			log.Info().Msg("filter graph hot-reloaded")
		})
		if err := watcher.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start filter graph watcher")
			watcher = nil
		}
	}

	server := statusbus.NewServer(eng.Bus)
	server.Router().Handle("/metrics", metrics.Handler())

	go func() {
		addr := fmt.Sprintf(":%d", cfg.StatusBus.Port)
		log.Info().Str("addr", addr).Msg("status bus listening")
		if err := server.Start(addr); err != nil {
			log.Error().Err(err).Msg("status bus server stopped")
		}
	}()

	if err := driver.Start(); err != nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}

	pd := pipeline.New(eng, time.Duration(cfg.PollYieldMillis)*time.Millisecond, nil)

	go pd.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down")
	if watcher != nil {
		watcher.Stop()
	}
	return eng.Shutdown()
}

// applyScalerConfig copies the persisted scaler knobs (spec.md §4.7's
// force_base_resolution/force_scaling/forced_aspect controls) onto the
// running scaler.Config, resolving the YAML string fields to their
// typed constants. MinOut/MaxOut stay at engine.New's defaults.
func applyScalerConfig(sc *scaler.Config, cfg config.ScalerConfig) {
	sc.Upscaler = resolveKernelName(cfg.Upscaler, sc.Upscaler)
	sc.Downscaler = resolveKernelName(cfg.Downscaler, sc.Downscaler)

	sc.ForceBaseResolution = cfg.ForceBaseResolution
	sc.BaseResolution = modestore.Resolution{W: cfg.BaseWidth, H: cfg.BaseHeight, BPP: 32}

	sc.ForceScaling = cfg.ForceScaling
	sc.OutputScaling = cfg.OutputScaling

	sc.ForcedAspect = cfg.ForcedAspect
	sc.AspectMode = resolveAspectMode(cfg.AspectMode)
}

func resolveKernelName(name string, fallback scaler.Kernel) scaler.Kernel {
	switch name {
	case string(scaler.Nearest):
		return scaler.Nearest
	case string(scaler.Linear):
		return scaler.Linear
	case string(scaler.Area):
		return scaler.Area
	case string(scaler.Cubic):
		return scaler.Cubic
	case string(scaler.Lanczos):
		return scaler.Lanczos
	default:
		return fallback
	}
}

func resolveAspectMode(mode string) scaler.AspectMode {
	switch mode {
	case "always_4_3":
		return scaler.AspectAlways4x3
	case "traditional_4_3":
		return scaler.AspectTraditional4x3
	default:
		return scaler.AspectNative
	}
}
