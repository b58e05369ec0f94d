package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-kit/log/level"

	"github.com/midbel/taintkit/internal/app"
	"github.com/midbel/taintkit/internal/logging"
	"github.com/midbel/taintkit/relocs"
)

func main() {
	var (
		opts    app.RelocsOptions
		verbose = flag.Bool("v", false, "verbose")
	)
	flag.StringVar(&opts.EnvFile, "e", "", "read LD_BIND_NOW from env file")
	flag.StringVar(&opts.DynSection, "dyn", relocs.DynSection, "dynamic relocation section")
	flag.StringVar(&opts.PltSection, "plt", relocs.PltSection, "PLT relocation section")
	flag.BoolVar(&opts.AlwaysPLT, "always-plt", false, "report PLT relocations even for lazy binding")
	flag.BoolVar(&opts.Split, "split", false, "print one flag per line")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [options] <elf>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}
	opts.File = flag.Arg(0)

	logger := logging.New(os.Stderr, *verbose)
	if err := app.Relocs(opts, os.Stdout, logger); err != nil {
		level.Error(logger).Log("err", err)
		os.Exit(1)
	}
}
