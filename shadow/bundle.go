package shadow

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/midbel/taintkit"
)

// Bundle packs the given files of fs into a gzipped tar archive written to
// w. Entries are named after the base name of the files.
func Bundle(w io.Writer, fs afero.Fs, files []string, when time.Time) error {
	z, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return err
	}
	wt := tar.NewWriter(z)
	for _, file := range files {
		data, err := afero.ReadFile(fs, file)
		if err != nil {
			return taintkit.IOError(err, "read image")
		}
		h := tar.Header{
			Name:     filepath.Base(file),
			Mode:     0o644,
			Size:     int64(len(data)),
			ModTime:  when,
			Uid:      0,
			Gid:      0,
			Typeflag: tar.TypeReg,
		}
		if err := wt.WriteHeader(&h); err != nil {
			return err
		}
		if _, err := wt.Write(data); err != nil {
			return err
		}
	}
	if err := wt.Close(); err != nil {
		return err
	}
	return z.Close()
}

// BundleFile writes the archive built by Bundle to file, on fs.
func BundleFile(file string, fs afero.Fs, files []string, when time.Time) error {
	w, err := fs.Create(file)
	if err != nil {
		return taintkit.IOError(err, "create archive")
	}
	defer w.Close()

	if err := Bundle(w, fs, files, when); err != nil {
		return err
	}
	return taintkit.IOError(w.Close(), "close archive")
}
