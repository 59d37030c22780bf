// Package main provides a CLI tool that prepares the identifier history.
//
// Without flags it creates the history schema of the configured driver.
// With -import it bulk-loads identifiers issued by a previous system, one per
// line, so sequences resume after them.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"idforge/internal/config"
	corenumerator "idforge/internal/core/numerator"
	"idforge/internal/infrastructure/storage"
	"idforge/pkg/logger"
)

// options are the command line flags.
type options struct {
	importPath  string
	typeName    string
	skipInvalid bool
}

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	var opts options
	flag.StringVar(&opts.importPath, "import", "", "file with previously issued identifiers, one per line")
	flag.StringVar(&opts.typeName, "type", "", "identifier type the imported identifiers belong to")
	flag.BoolVar(&opts.skipInvalid, "skip-invalid", false, "skip identifiers that do not match the type instead of aborting")
	flag.Parse()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	ctx := logger.WithLogger(context.Background(), log)
	if err := run(ctx, cfg, opts); err != nil {
		log.Fatalw("seed failed", "error", err)
	}
}

// run opens the history, creating its schema, and imports opts.importPath when set.
// The store is closed before run returns.
func run(ctx context.Context, cfg *config.Config, opts options) error {
	log := logger.FromContext(ctx)

	if cfg.Storage.Driver == config.DriverMemory {
		return fmt.Errorf("the memory driver keeps nothing to seed, configure postgres or sqlite")
	}

	storageCfg := cfg.Storage
	storageCfg.Migrate = true
	store, err := storage.Open(ctx, storageCfg)
	if err != nil {
		return fmt.Errorf("open identifier history: %w", err)
	}
	defer store.Close()

	log.Infow("identifier history schema ready", "driver", store.Driver)

	if opts.importPath == "" {
		return nil
	}

	spec, err := findSpec(cfg, opts.typeName)
	if err != nil {
		return fmt.Errorf("cannot import: %w", err)
	}

	f, err := os.Open(opts.importPath)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	identifiers, rejected, err := readIdentifiers(f, spec)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	if len(rejected) > 0 {
		if !opts.skipInvalid {
			return fmt.Errorf("import file has %d identifiers that do not match type %s, first %q",
				len(rejected), spec.Name, rejected[0])
		}
		log.Warnw("skipping invalid identifiers", "type", spec.Name, "count", len(rejected))
	}

	n, err := store.History.Import(ctx, spec.Name, identifiers, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("import %s identifiers after %d: %w", spec.Name, n, err)
	}

	last, _, err := store.History.FindLast(ctx, spec.Name)
	if err != nil {
		return fmt.Errorf("read back the last identifier: %w", err)
	}
	log.Infow("identifiers imported", "type", spec.Name, "count", n, "last", last)
	return nil
}

func findSpec(cfg *config.Config, typeName string) (corenumerator.Spec, error) {
	if typeName == "" {
		return corenumerator.Spec{}, fmt.Errorf("-type is required with -import")
	}
	specs, err := cfg.Specs()
	if err != nil {
		return corenumerator.Spec{}, err
	}
	for _, spec := range specs {
		if spec.Name == typeName {
			return spec, nil
		}
	}
	return corenumerator.Spec{}, fmt.Errorf("identifier type %q is not configured", typeName)
}

// readIdentifiers returns the identifiers of r in order. Blank lines and lines
// starting with # are ignored; lines that are not valid for spec are rejected.
func readIdentifiers(r io.Reader, spec corenumerator.Spec) (valid, rejected []string, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if corenumerator.Validate(line, spec) {
			valid = append(valid, line)
		} else {
			rejected = append(rejected, line)
		}
	}
	return valid, rejected, scanner.Err()
}
