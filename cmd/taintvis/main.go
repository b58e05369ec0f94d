package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-kit/log/level"
	"github.com/spf13/afero"

	"github.com/midbel/taintkit/internal/app"
	"github.com/midbel/taintkit/internal/logging"
	"github.com/midbel/taintkit/shadow"
)

func main() {
	var (
		opts    app.VisOptions
		verbose = flag.Bool("v", false, "verbose")
	)
	flag.StringVar(&opts.Dir, "d", ".", "output directory")
	flag.StringVar(&opts.Archive, "a", "", "bundle images into a tar.gz archive")
	flag.BoolVar(&opts.NoMerge, "no-merge", false, "one image per dump block")
	flag.BoolVar(&opts.Tracer, "tracer", false, "dump lines carry the shadow base before the payload")
	flag.IntVar(&opts.Width, "w", shadow.Width, "image width")
	flag.IntVar(&opts.Rows, "rows", 0, "fixed image height (0: computed from region size)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [options] <dump> [<dump>...]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
	}
	opts.Files = flag.Args()

	logger := logging.New(os.Stderr, *verbose)
	if err := app.Visualize(afero.NewOsFs(), opts, logger); err != nil {
		level.Error(logger).Log("err", err)
		os.Exit(1)
	}
}
