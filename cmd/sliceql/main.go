package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/sliceql/internal/cache"
	"github.com/sliceql/internal/config"
	"github.com/sliceql/internal/logging"
	"github.com/sliceql/internal/report"
	"github.com/sliceql/internal/version"
)

func main() {
	// Command line flags
	var (
		reportPath  = flag.String("report", "", "Path to report definition YAML (required)")
		configPath  = flag.String("config", "config.yaml", "Path to configuration file")
		outPath     = flag.String("out", "", "Write compiled SQL to file instead of stdout")
		noCache     = flag.Bool("no-cache", false, "Bypass the compiled-query cache")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	// Handle version flag
	if *showVersion {
		fmt.Printf("sliceql %s\n", version.GetVersionInfo())
		os.Exit(0)
	}

	if *reportPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -report is required\n")
		flag.Usage()
		os.Exit(1)
	}

	// Load configuration first
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging from configuration
	if err := logging.Initialize(cfg.Logging.ToLoggingConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Close()

	def, err := report.Load(*reportPath)
	if err != nil {
		logging.Error("Failed to load report definition", slog.Any("error", err))
		os.Exit(1)
	}

	sql, fromCache, err := compileReport(cfg, def, *noCache)
	if err != nil {
		logging.Error("Failed to compile report", slog.Any("error", err))
		os.Exit(1)
	}

	logging.Info("Report compiled",
		slog.String("report", *reportPath),
		slog.String("table", def.Table),
		slog.Bool("cached", fromCache))

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(sql), 0644); err != nil {
			logging.Error("Failed to write output file", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}
	fmt.Println(sql)
}

// compileReport compiles the definition, consulting the compiled-query
// cache first when it is enabled. A cache that fails to open degrades to
// direct compilation with a warning rather than failing the run.
func compileReport(cfg *config.Config, def *report.Definition, noCache bool) (string, bool, error) {
	useCache := cfg.Cache.Enabled && !noCache
	if !useCache {
		sql, err := def.Compile()
		return sql, false, err
	}

	cacheCfg, err := cfg.Cache.ToCacheConfig()
	if err != nil {
		return "", false, err
	}
	ttl, err := cfg.Cache.TTLDuration()
	if err != nil {
		return "", false, err
	}

	c, err := cache.New(cacheCfg)
	if err != nil {
		logging.Warn("Cache unavailable, compiling directly", slog.Any("error", err))
		sql, err := def.Compile()
		return sql, false, err
	}
	defer c.Close()

	ctx := context.Background()
	keys := cache.NewKeyGenerator("sliceql")
	key := keys.ReportKey(keys.HashDefinition(def))

	if cached, err := c.Get(ctx, key); err == nil {
		return string(cached), true, nil
	}

	sql, err := def.Compile()
	if err != nil {
		return "", false, err
	}

	if err := c.Set(ctx, key, []byte(sql), ttl); err != nil {
		logging.Warn("Failed to cache compiled query", slog.Any("error", err))
	}

	return sql, false, nil
}
