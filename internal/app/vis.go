package app

import (
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/afero"

	"github.com/midbel/taintkit"
	"github.com/midbel/taintkit/internal/logging"
	"github.com/midbel/taintkit/shadow"
)

type VisOptions struct {
	Files   []string
	Dir     string
	Archive string

	NoMerge bool
	Tracer  bool
	Width   int
	Rows    int
}

// Visualize renders the dumps into images. Dumps are processed one after
// the other and the first failure stops everything.
func Visualize(fs afero.Fs, opts VisOptions, logger log.Logger) error {
	logger = logging.OrNop(logger)
	sopts := shadow.Options{
		Width: opts.Width,
		Rows:  opts.Rows,
	}
	if opts.Tracer {
		sopts.Layout = shadow.Tracer
	}
	var (
		w   = shadow.NewWriter(fs, opts.Dir, sopts, logger)
		all []string
	)
	for _, file := range opts.Files {
		files, err := convert(fs, w, file, !opts.NoMerge)
		if err != nil {
			return err
		}
		level.Info(logger).Log("msg", "dump rendered", "file", file, "images", len(files))
		all = append(all, files...)
	}
	if opts.Archive == "" {
		return nil
	}
	return shadow.BundleFile(opts.Archive, fs, all, time.Now())
}

func convert(fs afero.Fs, w *shadow.Writer, file string, merge bool) ([]string, error) {
	r, err := fs.Open(file)
	if err != nil {
		return nil, taintkit.IOError(err, "open dump")
	}
	defer r.Close()

	return w.Convert(r, merge)
}
