package main

import (
	"fmt"
	"os"

	"github.com/midbel/cli"

	"github.com/midbel/taintkit/internal/app"
	"github.com/midbel/taintkit/internal/logging"
	"github.com/midbel/taintkit/relocs"
)

func runRelocs(cmd *cli.Command, args []string) error {
	var (
		opts    app.RelocsOptions
		verbose = cmd.Flag.Bool("v", false, "verbose")
	)
	cmd.Flag.StringVar(&opts.EnvFile, "e", "", "read LD_BIND_NOW from env file")
	cmd.Flag.StringVar(&opts.DynSection, "dyn", relocs.DynSection, "dynamic relocation section")
	cmd.Flag.StringVar(&opts.PltSection, "plt", relocs.PltSection, "PLT relocation section")
	cmd.Flag.BoolVar(&opts.AlwaysPLT, "always-plt", false, "report PLT relocations even for lazy binding")
	cmd.Flag.BoolVar(&opts.Split, "split", false, "print one flag per line")
	if err := cmd.Flag.Parse(args); err != nil {
		return err
	}
	if cmd.Flag.NArg() != 1 {
		return fmt.Errorf("relocs: expected one ELF file, got %d", cmd.Flag.NArg())
	}
	opts.File = cmd.Flag.Arg(0)
	return app.Relocs(opts, os.Stdout, logging.New(os.Stderr, *verbose))
}
