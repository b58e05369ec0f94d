package app

import (
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/midbel/taintkit"
	"github.com/midbel/taintkit/internal/env"
	"github.com/midbel/taintkit/internal/logging"
	"github.com/midbel/taintkit/relocs"
)

type RelocsOptions struct {
	File    string
	EnvFile string

	DynSection string
	PltSection string
	AlwaysPLT  bool
	Split      bool
}

// Relocs prints the relocation flags of the ELF file to stdout.
func Relocs(opts RelocsOptions, stdout io.Writer, logger log.Logger) error {
	logger = logging.OrNop(logger)
	values, err := loadEnv(opts.EnvFile)
	if err != nil {
		return err
	}
	cfg := relocs.Config{
		DynSection: opts.DynSection,
		PltSection: opts.PltSection,
		BindNowEnv: env.Bool(env.Lookup(values, env.BindNow)),
		AlwaysPLT:  opts.AlwaysPLT,
		Logger:     logger,
	}
	level.Debug(logger).Log("msg", "reading relocations", "file", opts.File)
	rp, err := relocs.Open(opts.File, cfg)
	if err != nil {
		return err
	}
	return rp.Print(stdout, opts.Split)
}

func loadEnv(file string) (map[string]string, error) {
	if file == "" {
		return nil, nil
	}
	r, err := os.Open(file)
	if err != nil {
		return nil, taintkit.IOError(err, "open env file")
	}
	defer r.Close()

	values, err := env.Load(r)
	if err != nil {
		return nil, taintkit.FormatError(err, file)
	}
	return values, nil
}
