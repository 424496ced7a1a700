package config

import (
	"flag"
	"fmt"
	"io"
)

// Flags captures the CLI surface: the resulting Config plus the few
// flag-only actions that never reach the pipeline.
type Flags struct {
	Config Config

	ConfigFile  string // -config: optional YAML file, loaded before flag overrides
	ShowVersion bool   // -version
	Update      bool   // -update: self-update and exit
}

// ParseFlags parses args (without the program name) into a Flags. Flags
// override YAML file and environment values because the flag set is applied
// twice: defaults are registered from the already-layered Config, then the
// second parse re-applies anything the user set explicitly.
func ParseFlags(args []string, output io.Writer) (Flags, error) {
	var f Flags
	f.Config = Default()

	fs := newFlagSet(&f, output)
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if fs.NArg() > 0 {
		return f, fmt.Errorf("config: unexpected argument %q", fs.Arg(0))
	}

	if f.ConfigFile != "" {
		if err := LoadFile(&f.Config, f.ConfigFile); err != nil {
			return f, err
		}
	}
	FromEnv(&f.Config)

	// Re-parse so explicit flags win over the file and environment.
	fs = newFlagSet(&f, output)
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	return f, nil
}

func newFlagSet(f *Flags, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("batchgeotag", flag.ContinueOnError)
	fs.SetOutput(output)
	c := &f.Config

	fs.StringVar(&c.CoordinatesPath, "coordinates", c.CoordinatesPath, "coordinates CSV file (datetime, latitude, longitude)")
	fs.StringVar(&c.CoordinatesPath, "c", c.CoordinatesPath, "shorthand for -coordinates")
	fs.StringVar(&c.Folder, "folder", c.Folder, "folder where images are located (images will be overwritten)")
	fs.StringVar(&c.Folder, "f", c.Folder, "shorthand for -folder")
	fs.BoolVar(&c.NoHeader, "no-header", c.NoHeader, "coordinates file has no header line")
	fs.BoolVar(&c.NoHeader, "n", c.NoHeader, "shorthand for -no-header")
	fs.BoolVar(&c.Overwrite, "overwrite", c.Overwrite, "overwrite geodata for images that already have coordinates")
	fs.BoolVar(&c.Overwrite, "o", c.Overwrite, "shorthand for -overwrite")
	fs.BoolVar(&c.Recursive, "recursive", c.Recursive, "browse folder recursively")
	fs.BoolVar(&c.Recursive, "r", c.Recursive, "shorthand for -recursive")
	fs.IntVar(&c.StepSeconds, "step", c.StepSeconds, "resampling frequency in seconds")
	fs.IntVar(&c.StepSeconds, "rs", c.StepSeconds, "shorthand for -step")
	fs.IntVar(&c.Verbosity, "verbosity", c.Verbosity, "verbosity level (1-3)")
	fs.IntVar(&c.Verbosity, "v", c.Verbosity, "shorthand for -verbosity")
	fs.IntVar(&c.Workers, "workers", c.Workers, "number of files processed in parallel")
	fs.StringVar(&c.Timezone, "timezone", c.Timezone, "IANA timezone applied to EXIF timestamps")
	fs.BoolVar(&c.AssumeYes, "yes", c.AssumeYes, "do not ask for confirmation before writing")
	fs.BoolVar(&c.AssumeYes, "y", c.AssumeYes, "shorthand for -yes")

	fs.StringVar(&f.ConfigFile, "config", f.ConfigFile, "optional YAML config file")
	fs.BoolVar(&f.ShowVersion, "version", f.ShowVersion, "print version and exit")
	fs.BoolVar(&f.Update, "update", f.Update, "check for updates and self-update")
	return fs
}
