// Command manalysis simulates how reliably a deck casts its spells and
// reports per-card casting statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	appconfig "github.com/mtgcrafter/manalysis/internal/config"

	"github.com/mtgcrafter/manalysis/internal/cardlookup"
	"github.com/mtgcrafter/manalysis/internal/cards/scryfall"
	"github.com/mtgcrafter/manalysis/internal/charts"
	"github.com/mtgcrafter/manalysis/internal/deck"
	"github.com/mtgcrafter/manalysis/internal/display"
	"github.com/mtgcrafter/manalysis/internal/simulation"
	"github.com/mtgcrafter/manalysis/internal/storage"
	"github.com/mtgcrafter/manalysis/internal/version"
)

var (
	deckPath   = flag.String("deck", "", "Path to decklist file (lines like \"4 Lightning Bolt\")")
	trials     = flag.Int("trials", 0, "Number of simulated games (0 = config default)")
	seed       = flag.Int64("seed", 0, "Base seed for reproducible runs (0 = derive from time)")
	sequential = flag.Bool("sequential", false, "Use the sequential backend instead of the parallel one")
	workers    = flag.Int("workers", 0, "Worker goroutines for the parallel backend (0 = all CPUs)")
	samples    = flag.Int("samples", -1, "Sample game logs to collect (-1 = config default)")
	showCurve  = flag.Bool("curve", false, "Print the ASCII mana curve")
	chartPath  = flag.String("chart", "", "Export a castability line chart to this HTML file")
	curvePath  = flag.String("curve-chart", "", "Export a mana curve bar chart to this HTML file")
	openChart  = flag.Bool("open", false, "Open exported charts in the browser")
	watch      = flag.Bool("watch", false, "Re-run the analysis whenever the decklist file changes")
	dbPath     = flag.String("db", "", "Card cache database path (default: ~/.manalysis/cards.db)")
	refresh    = flag.Bool("refresh-cache", false, "Re-fetch stale cached cards and exit")
	showVer    = flag.Bool("version", false, "Print the version and exit")
)

// runSettings is the merged flag and config state one analysis run consumes.
type runSettings struct {
	opts       simulation.Options
	sequential bool
	chartOut   string
	curveOut   string
}

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("manalysis", version.GetVersion())
		return
	}

	cfg, err := appconfig.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	cachePath := *dbPath
	if cachePath == "" {
		cachePath = cfg.Cache.Path
	}
	if cachePath == "" {
		cachePath, err = appconfig.DefaultCachePath()
		if err != nil {
			log.Fatalf("Failed to resolve cache path: %v", err)
		}
	}

	dbConfig := storage.DefaultConfig(cachePath)
	dbConfig.AutoMigrate = true
	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("Failed to open card cache: %v", err)
	}
	defer func() { _ = db.Close() }()

	staleAfter, err := cfg.GetStaleAfter()
	if err != nil {
		log.Fatalf("Invalid stale_after: %v", err)
	}

	lookup := cardlookup.NewService(
		storage.NewService(db),
		scryfall.NewClient(),
		cardlookup.ServiceOptions{StaleThreshold: staleAfter},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *refresh {
		stats, err := lookup.Refresh(ctx)
		if err != nil {
			log.Fatalf("Cache refresh failed: %v", err)
		}
		log.Printf("Cache refresh: %d refreshed, %d removed, %d cards cached",
			stats.Refreshed, stats.Removed, stats.Cached)
		return
	}

	if *deckPath == "" {
		flag.Usage()
		log.Fatal("a decklist is required: -deck path/to/deck.txt")
	}

	settings := runSettings{
		opts:       optionsFromFlags(cfg),
		sequential: !useParallel(cfg.Simulation.Parallel, *sequential),
		chartOut:   chartOutputPath(cfg.Output.ChartDir, *chartPath),
		curveOut:   chartOutputPath(cfg.Output.ChartDir, *curvePath),
	}

	if err := runAnalysis(ctx, lookup, settings); err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	if *watch {
		if err := watchDeck(ctx, lookup, settings); err != nil && ctx.Err() == nil {
			log.Fatalf("Watch failed: %v", err)
		}
	}
}

// optionsFromFlags merges config defaults with command line overrides.
func optionsFromFlags(cfg *appconfig.Config) simulation.Options {
	opts := simulation.Options{
		Trials:  cfg.Simulation.Trials,
		Seed:    cfg.Simulation.Seed,
		Workers: cfg.Simulation.Workers,
	}

	if *trials > 0 {
		opts.Trials = *trials
	}
	if opts.Trials == 0 {
		opts.Trials = simulation.DefaultTrials
	}
	if *seed != 0 {
		opts.Seed = *seed
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if *workers > 0 {
		opts.Workers = *workers
	}

	sampleCount := cfg.Output.SampleGames
	if *samples >= 0 {
		sampleCount = *samples
	}
	opts.SampleIndices = sampleIndices(sampleCount, opts.Trials)

	return opts
}

// useParallel decides the backend: the -sequential flag forces the
// sequential engine, otherwise the config's parallel setting applies.
func useParallel(cfgParallel, sequentialFlag bool) bool {
	return cfgParallel && !sequentialFlag
}

// chartOutputPath places a bare chart filename inside the configured chart
// directory. Paths that already carry a directory are kept as given.
func chartOutputPath(chartDir, path string) string {
	if path == "" || chartDir == "" || filepath.Dir(path) != "." {
		return path
	}
	return filepath.Join(chartDir, path)
}

// sampleIndices expands a sample count into the first count trial indices.
// A negative count returns nil, which lets the engine pick its own samples.
func sampleIndices(count, trials int) []int {
	if count < 0 {
		return nil
	}
	indices := make([]int, 0, count)
	for i := 0; i < count && i < trials; i++ {
		indices = append(indices, i)
	}
	return indices
}

// runAnalysis parses the decklist, runs one simulation batch, and renders
// every requested output.
func runAnalysis(ctx context.Context, lookup *cardlookup.Service, settings runSettings) error {
	data, err := os.ReadFile(*deckPath)
	if err != nil {
		return fmt.Errorf("read decklist: %w", err)
	}
	list, err := deck.Parse(string(data))
	if err != nil {
		return fmt.Errorf("parse decklist: %w", err)
	}

	// Prefetch under the caller's context so network work is cancellable;
	// the engine's lookups then hit the warm cache.
	if err := lookup.Warm(ctx, list.Names()); err != nil {
		return fmt.Errorf("resolve cards: %w", err)
	}

	opts := settings.opts
	log.Printf("Simulating %d games of a %d card deck (seed %d)", opts.Trials, list.Size(), opts.Seed)

	start := time.Now()
	var stats *simulation.AggregateStatistics
	if settings.sequential {
		stats, err = simulation.Run(ctx, list, lookup, opts)
	} else {
		stats, err = simulation.RunParallel(ctx, list, lookup, opts)
	}
	if err != nil {
		return err
	}
	log.Printf("Finished in %s", time.Since(start).Round(time.Millisecond))

	out := display.NewDisplayer(os.Stdout)
	if *showCurve {
		out.ManaCurve(stats)
	}
	out.Results(stats)

	if settings.chartOut != "" {
		if err := charts.CastabilityChart(stats, charts.DefaultChartConfig(), settings.chartOut); err != nil {
			return err
		}
		log.Printf("Castability chart written to %s", settings.chartOut)
		maybeOpen(settings.chartOut)
	}
	if settings.curveOut != "" {
		if err := charts.ManaCurveChart(stats, charts.DefaultChartConfig(), settings.curveOut); err != nil {
			return err
		}
		log.Printf("Mana curve chart written to %s", settings.curveOut)
		maybeOpen(settings.curveOut)
	}

	return nil
}

func maybeOpen(path string) {
	if !*openChart {
		return
	}
	if err := charts.OpenInBrowser(path); err != nil {
		log.Printf("Failed to open %s: %v", path, err)
	}
}

// watchDeck re-runs the analysis whenever the decklist file changes.
func watchDeck(ctx context.Context, lookup *cardlookup.Service, settings runSettings) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(*deckPath); err != nil {
		return fmt.Errorf("failed to watch decklist: %w", err)
	}

	log.Printf("Watching %s for changes (Ctrl-C to stop)", *deckPath)

	// Editors fire several events per save; debounce before re-running.
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending = time.After(250 * time.Millisecond)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watch error: %v", err)

		case <-pending:
			pending = nil
			if err := runAnalysis(ctx, lookup, settings); err != nil {
				log.Printf("Analysis failed: %v", err)
			}
			// Re-add in case the editor replaced the file.
			_ = watcher.Add(*deckPath)
		}
	}
}
