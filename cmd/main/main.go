// Command onoma trains a character-level name model from a corpus file
// and synthesizes new names from it.
//
// Usage:
//
//	onoma train -names names.txt [-config config.json]
//	onoma generate [-n 20] [-t 1.0] [-new names.txt] [-seed 7] [-config config.json]
//	onoma stats [-config config.json]
//	onoma export -out model.json [-config config.json]
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tkellerman/onoma/pkg/corpus"
	"github.com/tkellerman/onoma/pkg/model"
	"github.com/tkellerman/onoma/pkg/names"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(os.Args[2:])
	case "generate":
		err = runGenerate(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "version":
		fmt.Printf("onoma %s (%s, %s)\n", Version, Commit, BuildDate)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: onoma <train|generate|stats|export|version> [flags]")
}

// setup loads the config and builds the logger every subcommand shares.
func setup(configPath string) (*Config, *slog.Logger, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var logLevel slog.Level
	switch strings.ToLower(config.LogLevel) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	return config, logger, nil
}

// openModel opens the database and constructs the n-gram model over
// the default vocabulary. The caller closes both.
func openModel(config *Config, logger *slog.Logger) (*sql.DB, *model.Model, *names.Vocabulary, error) {
	if dir := filepath.Dir(config.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := initDB(config.DatabasePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = model.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("failed to set up model schema: %w", err)
	}

	vocab := names.DefaultVocabulary()
	m, err := model.New(db, vocab, config.Order)
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("failed to create model: %w", err)
	}
	m.SetLogger(logger)
	return db, m, vocab, nil
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	configPath := fs.String("config", "./config.json", "path to the config file")
	namesPath := fs.String("names", "", "path to the newline-delimited corpus file")
	_ = fs.Parse(args)

	if *namesPath == "" {
		return errors.New("train requires -names")
	}

	config, logger, err := setup(*configPath)
	if err != nil {
		return err
	}

	db, m, vocab, err := openModel(config, logger)
	if err != nil {
		return err
	}
	defer func() {
		m.Close()
		_ = db.Close()
	}()

	c, err := corpus.LoadFile(*namesPath, vocab)
	if err != nil {
		return err
	}
	logger.Info("corpus loaded",
		slog.String("path", *namesPath),
		slog.Int("names", c.Len()),
		slog.Int("skipped", c.Skipped()),
	)
	if c.Len() == 0 {
		return errors.New("corpus contains no usable names")
	}

	ctx := context.Background()
	if err := m.Train(ctx, c.Names()); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	stats, err := m.Stats(ctx)
	if err != nil {
		return err
	}
	logger.Info("model ready",
		slog.Int("prefixes", stats.Prefixes),
		slog.Int("transitions", stats.Transitions),
		slog.Int("total_frequency", stats.TotalFrequency),
	)
	return nil
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", "./config.json", "path to the config file")
	n := fs.Int("n", 20, "number of generation attempts")
	temperature := fs.Float64("t", 1.0, "sampling temperature (>1 flattens, <1 sharpens, 0 is argmax)")
	newOnly := fs.String("new", "", "corpus file; only names not in it are kept, deduplicated and sorted")
	seed := fs.Uint64("seed", 0, "seed for reproducible batches (0 uses a random seed)")
	_ = fs.Parse(args)

	config, logger, err := setup(*configPath)
	if err != nil {
		return err
	}

	db, m, vocab, err := openModel(config, logger)
	if err != nil {
		return err
	}
	defer func() {
		m.Close()
		_ = db.Close()
	}()

	g := names.NewGenerator(m, vocab, config.WindowLen)
	g.SetLogger(logger)

	opts := []names.GenerateOption{
		names.WithTemperature(*temperature),
		names.WithMaxLength(config.MaxLength),
	}
	if *seed != 0 {
		opts = append(opts, names.WithSeed(*seed))
	}

	ctx := context.Background()
	var generated []string
	if *newOnly != "" {
		c, err := corpus.LoadFile(*newOnly, vocab)
		if err != nil {
			return err
		}
		generated, err = g.GenerateManyNew(ctx, *n, c.Names(), opts...)
		if err != nil {
			return err
		}
	} else {
		generated, err = g.GenerateMany(ctx, *n, opts...)
		if err != nil {
			return err
		}
	}

	for _, name := range generated {
		fmt.Println(name)
	}
	return nil
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", "./config.json", "path to the config file")
	_ = fs.Parse(args)

	config, logger, err := setup(*configPath)
	if err != nil {
		return err
	}

	db, m, _, err := openModel(config, logger)
	if err != nil {
		return err
	}
	defer func() {
		m.Close()
		_ = db.Close()
	}()

	stats, err := m.Stats(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("order:           %d\n", m.Order())
	fmt.Printf("prefixes:        %d\n", stats.Prefixes)
	fmt.Printf("transitions:     %d\n", stats.Transitions)
	fmt.Printf("total frequency: %d\n", stats.TotalFrequency)
	return nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", "./config.json", "path to the config file")
	out := fs.String("out", "", "path for the JSON model export")
	_ = fs.Parse(args)

	if *out == "" {
		return errors.New("export requires -out")
	}

	config, logger, err := setup(*configPath)
	if err != nil {
		return err
	}

	db, m, _, err := openModel(config, logger)
	if err != nil {
		return err
	}
	defer func() {
		m.Close()
		_ = db.Close()
	}()

	return m.ExportFile(context.Background(), *out)
}
