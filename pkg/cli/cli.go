// Package cli wires flags, config, the track reader and the batch runner
// into the batchgeotag command.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/nperony/batchgeotag/pkg/config"
	"github.com/nperony/batchgeotag/pkg/geotag"
	"github.com/nperony/batchgeotag/pkg/logging"
	"github.com/nperony/batchgeotag/pkg/track"
)

// RunCLI is the whole command. It returns the process exit code so main
// stays a one-liner.
func RunCLI() int {
	// A local .env can hold BATCHGEOTAG_* variables; absence is fine.
	_ = godotenv.Load()

	flags, err := config.ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "batchgeotag: %v\n", err)
		return 2
	}

	if flags.ShowVersion {
		fmt.Printf("batchgeotag %s\n", Version)
		return 0
	}
	if flags.Update {
		if err := CheckForUpdates(); err != nil {
			fmt.Fprintf(os.Stderr, "batchgeotag: %v\n", err)
			return 1
		}
		return 0
	}

	cfg := flags.Config
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "batchgeotag: %v\n", err)
		return 2
	}
	log := logging.New(os.Stdout, cfg.Verbosity)

	interp, err := loadTrack(&cfg)
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	first, last := interp.Span()
	log.Debug("track spans %s to %s, resampled every %s",
		first.Format("2006-01-02 15:04:05"), last.Format("2006-01-02 15:04:05"), interp.Step())

	files, err := geotag.Discover(cfg.Folder, cfg.Recursive)
	if err != nil {
		log.Error("listing %s: %v", cfg.Folder, err)
		return 1
	}
	if len(files) == 0 {
		log.Info("no JPEG files found in %s", cfg.Folder)
		return 0
	}

	if !cfg.AssumeYes {
		prompt := fmt.Sprintf("About to rewrite up to %d file(s) in %s. Continue? (y/N): ", len(files), cfg.Folder)
		if !confirm(os.Stdin, prompt) {
			fmt.Println("Cancelled.")
			return 0
		}
	}

	tagger := &geotag.Tagger{
		Interp:    interp,
		Overwrite: cfg.Overwrite,
		Location:  cfg.Location(),
	}
	stats, runErr := geotag.Run(tagger, files, cfg.Workers, log)
	log.Info("%s", stats.Summary())
	if runErr != nil {
		return 1
	}
	return 0
}

func loadTrack(cfg *config.Config) (*track.Interpolator, error) {
	f, err := os.Open(cfg.CoordinatesPath)
	if err != nil {
		return nil, fmt.Errorf("opening coordinates file: %w", err)
	}
	defer f.Close()
	t, err := track.ReadCSV(f, cfg.NoHeader, cfg.Location())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", cfg.CoordinatesPath, err)
	}
	return track.NewInterpolator(t, cfg.Step())
}
