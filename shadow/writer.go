package shadow

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"runtime"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/midbel/taintkit"
	"github.com/midbel/taintkit/internal/logging"
)

// Writer renders regions into a directory of PNG files.
type Writer struct {
	fs     afero.Fs
	dir    string
	opts   Options
	logger log.Logger
}

func NewWriter(fs afero.Fs, dir string, opts Options, logger log.Logger) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{
		fs:     fs,
		dir:    dir,
		opts:   opts,
		logger: logging.OrNop(logger),
	}
}

// Convert parses the dump read from r and writes one image per region. When
// merge is false, every block of the dump gets its own image.
func (w *Writer) Convert(r io.Reader, merge bool) ([]string, error) {
	records, err := ParseLayout(r, w.opts.Layout)
	if err != nil {
		return nil, err
	}
	var regions []Region
	if merge {
		regions = Merge(records)
	} else {
		regions = Split(records)
	}
	level.Debug(w.logger).Log("msg", "dump parsed", "records", len(records), "regions", len(regions))
	return w.WriteAll(regions)
}

// WriteAll renders every region and writes the images in the order of the
// regions. Images are encoded before anything is written, so a failing
// region leaves the directory untouched. Regions smaller than one row are
// skipped. It returns the paths of the files written.
func (w *Writer) WriteAll(regions []Region) ([]string, error) {
	var (
		group errgroup.Group
		files = make([][]byte, len(regions))
	)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i, reg := range regions {
		group.Go(func() error {
			img, err := Render(reg, w.opts)
			if errors.Is(err, ErrEmptyRegion) {
				level.Warn(w.logger).Log("msg", "region skipped", "addr", Filename(reg.Addr), "size", len(reg.Shadow))
				return nil
			}
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := Encode(&buf, img); err != nil {
				return err
			}
			files[i] = buf.Bytes()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if err := w.fs.MkdirAll(w.dir, 0o755); err != nil {
		return nil, taintkit.IOError(err, "create output directory")
	}
	var names []string
	for i, reg := range regions {
		if files[i] == nil {
			continue
		}
		file := filepath.Join(w.dir, Filename(reg.Addr))
		if err := afero.WriteFile(w.fs, file, files[i], 0o644); err != nil {
			return names, taintkit.IOError(err, "write image")
		}
		level.Debug(w.logger).Log("msg", "image written", "file", file, "bytes", len(reg.Shadow))
		names = append(names, file)
	}
	return names, nil
}
