package main

import (
	"fmt"
	"os"

	"github.com/midbel/cli"
	"github.com/spf13/afero"

	"github.com/midbel/taintkit/internal/app"
	"github.com/midbel/taintkit/internal/logging"
	"github.com/midbel/taintkit/shadow"
)

func runVis(cmd *cli.Command, args []string) error {
	var (
		opts    app.VisOptions
		verbose = cmd.Flag.Bool("v", false, "verbose")
	)
	cmd.Flag.StringVar(&opts.Dir, "d", ".", "output directory")
	cmd.Flag.StringVar(&opts.Archive, "a", "", "bundle images into a tar.gz archive")
	cmd.Flag.BoolVar(&opts.NoMerge, "no-merge", false, "one image per dump block")
	cmd.Flag.BoolVar(&opts.Tracer, "tracer", false, "dump lines carry the shadow base before the payload")
	cmd.Flag.IntVar(&opts.Width, "w", shadow.Width, "image width")
	cmd.Flag.IntVar(&opts.Rows, "rows", 0, "fixed image height")
	if err := cmd.Flag.Parse(args); err != nil {
		return err
	}
	if cmd.Flag.NArg() == 0 {
		return fmt.Errorf("vis: no dump given")
	}
	opts.Files = cmd.Flag.Args()
	return app.Visualize(afero.NewOsFs(), opts, logging.New(os.Stderr, *verbose))
}
