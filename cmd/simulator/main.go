// Command simulator runs the solar-array production simulation: it loads
// a scenario, binds collector adapters, and drives the tick loop while
// exposing Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/helioworks/solararray-simulator/adapter"
	"github.com/helioworks/solararray-simulator/core"
	"github.com/helioworks/solararray-simulator/internal/logging"
	"github.com/helioworks/solararray-simulator/internal/observability"
	"github.com/helioworks/solararray-simulator/timectrl"
)

// duration lets YAML carry Go duration strings ("1s", "500ms").
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = duration(parsed)
	return nil
}

type config struct {
	Tick     duration `yaml:"tick"`
	Warp     float64  `yaml:"warp"`
	Duration duration `yaml:"duration"`

	Scenario string `yaml:"scenario"`
	Snapshot string `yaml:"snapshot"`

	MetricsAddr string `yaml:"metricsAddr"`

	// Bodies are additional stars a concentrator can target, beyond the
	// primary sun.
	Bodies []starBodyConfig `yaml:"bodies"`

	Log struct {
		Level     string `yaml:"level"`
		Format    string `yaml:"format"`
		AddSource bool   `yaml:"addSource"`
	} `yaml:"log"`
}

type starBodyConfig struct {
	Name         string  `yaml:"name"`
	DirX         float64 `yaml:"dirX"`
	DirY         float64 `yaml:"dirY"`
	DirZ         float64 `yaml:"dirZ"`
	FluxFraction float64 `yaml:"fluxFraction"`
}

func defaultConfig() config {
	var cfg config
	cfg.Tick = duration(time.Second)
	cfg.Warp = 1
	cfg.Duration = duration(60 * time.Second)
	cfg.Scenario = "configs/scenario.json"
	cfg.MetricsAddr = ":9090"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return cfg, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "simulator: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to the simulator YAML config")
	scenarioPath := flag.String("scenario", "", "scenario file (overrides config)")
	snapshotPath := flag.String("snapshot", "", "snapshot file to restore and save (overrides config)")
	tick := flag.Duration("tick", 0, "tick interval (overrides config)")
	warp := flag.Float64("warp", 0, "time compression factor (overrides config)")
	simDuration := flag.Duration("duration", 0, "simulated run time, 0 runs forever (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *scenarioPath != "" {
		cfg.Scenario = *scenarioPath
	}
	if *snapshotPath != "" {
		cfg.Snapshot = *snapshotPath
	}
	if *tick > 0 {
		cfg.Tick = duration(*tick)
	}
	if *warp > 0 {
		cfg.Warp = *warp
	}
	if flagPassed("duration") {
		cfg.Duration = duration(*simDuration)
	}

	log := logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	metrics, err := observability.NewProductionCollector(nil)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	store := core.NewStore()
	ledger := core.NewLedger()
	ledger.SetRecorder(metrics)

	start := time.Now().UTC()
	tc := timectrl.NewTimeController(start, time.Duration(cfg.Tick), cfg.Warp)

	env := core.NewSunService(store, tc)
	for _, b := range cfg.Bodies {
		if err := env.RegisterStarBody(core.StarBody{
			Name:         b.Name,
			DirECI:       r3.Vec{X: b.DirX, Y: b.DirY, Z: b.DirZ},
			FluxFraction: b.FluxFraction,
		}); err != nil {
			return fmt.Errorf("registering star body: %w", err)
		}
	}
	evaluator := core.NewExposureEvaluator(store)
	registry := adapter.DefaultRegistry(adapter.Deps{
		Evaluator: evaluator,
		Bodies:    env,
	})

	engine := core.NewEngine(store, ledger, env, registry.ReferenceCurve, log)
	engine.SetStatusRecorder(metrics)

	scenario, err := core.LoadScenario(cfg.Scenario)
	if err != nil {
		return err
	}
	if err := scenario.Populate(store); err != nil {
		return fmt.Errorf("populating scenario: %w", err)
	}
	log.Info(ctx, "scenario loaded",
		logging.String("name", scenario.Name),
		logging.Int("vehicles", len(scenario.Vehicles)),
		logging.Int("parts", len(scenario.Parts)))

	if cfg.Snapshot != "" {
		if snap, err := core.ReadSnapshotFile(cfg.Snapshot); err == nil {
			if err := core.RestoreSnapshot(ctx, store, snap, log); err != nil {
				return fmt.Errorf("restoring snapshot: %w", err)
			}
			log.Info(ctx, "snapshot restored",
				logging.String("path", cfg.Snapshot),
				logging.Int("collectors", len(snap.Collectors)))
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	for _, v := range scenario.Vehicles {
		engine.SetMotionModel(v.ID, core.NewMotionModel(v))
	}

	bound := 0
	for _, part := range scenario.Parts {
		if part.ComponentType == "" {
			continue
		}
		native := scenario.Components[part.ID]
		if err := engine.BindCollector(ctx, part, native, registry.Binder(), start); err != nil {
			// A part that fails to bind simply never produces; the run
			// continues.
			continue
		}
		bound++
	}
	log.Info(ctx, "collectors bound", logging.Int("count", bound))

	tc.AddListener(func(simTime time.Time, simDelta time.Duration) {
		t0 := time.Now()
		engine.Tick(simTime, simDelta)
		metrics.ObserveTick(time.Since(t0))
		metrics.SetFleetCounts(len(store.ListVehicles()), len(store.ListCollectorRecords()))
	})

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn(ctx, "metrics server stopped", logging.String("error", err.Error()))
			}
		}()
		log.Info(ctx, "metrics endpoint up", logging.String("addr", cfg.MetricsAddr))
	}

	log.Info(ctx, "simulation starting",
		logging.Duration("tick", time.Duration(cfg.Tick)),
		logging.Float64("warp", cfg.Warp),
		logging.Duration("duration", time.Duration(cfg.Duration)))

	<-tc.Start(time.Duration(cfg.Duration))

	for _, v := range store.ListVehicles() {
		log.Info(ctx, "vehicle energy total",
			logging.String("vehicle", v.ID),
			logging.Float64("total_ec", ledger.Total(v.ID)))
	}

	if cfg.Snapshot != "" {
		if err := core.WriteSnapshotFile(cfg.Snapshot, core.TakeSnapshot(store, tc.Now())); err != nil {
			return err
		}
		log.Info(ctx, "snapshot saved", logging.String("path", cfg.Snapshot))
	}
	return nil
}

func flagPassed(name string) bool {
	passed := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}
