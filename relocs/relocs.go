// Package relocs extracts the dynamic and PLT relocation offsets of an ELF
// binary and formats them as flags for the hardening build step.
//
// Two layouts of the output have been used over time: one line per flag,
// printed only for sections that exist, and a single line carrying every
// flag even when its list is empty. The single line is the default, Print
// with split set gives the older layout.
//
// Likewise, PLT relocations used to be reported only for binaries resolved
// eagerly at load time (bind-now, or LD_BIND_NOW=1 in the environment), and
// later unconditionally. The gated behaviour is the default; set
// Config.AlwaysPLT for the other one.
package relocs

import (
	"debug/elf"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/samber/lo"

	"github.com/midbel/taintkit"
	"github.com/midbel/taintkit/internal/logging"
)

const (
	DynSection = ".rel.dyn"
	PltSection = ".rel.plt"
)

const (
	DynFlag = "-with_dynrel"
	PltFlag = "-with_pltrel"
)

type Config struct {
	// Section names, DynSection and PltSection when empty.
	DynSection string
	PltSection string

	// BindNowEnv is the value of LD_BIND_NOW as seen by the caller.
	BindNowEnv bool
	// AlwaysPLT reports PLT relocations whatever the binding mode.
	AlwaysPLT bool

	Logger log.Logger
}

func (c Config) dynSection() string {
	if c.DynSection == "" {
		return DynSection
	}
	return c.DynSection
}

func (c Config) pltSection() string {
	if c.PltSection == "" {
		return PltSection
	}
	return c.PltSection
}

type Report struct {
	Dyn []uint64
	Plt []uint64

	HasDyn bool
	HasPlt bool

	// BindNow is set when the binary itself requests eager binding.
	BindNow bool
	// PltReported tells whether the PLT flag is part of the output.
	PltReported bool
}

// Open reads the relocation report of the ELF file at path.
func Open(file string, cfg Config) (*Report, error) {
	r, err := os.Open(file)
	if err != nil {
		return nil, taintkit.IOError(err, "open elf")
	}
	defer r.Close()

	s, err := r.Stat()
	if err != nil {
		return nil, taintkit.IOError(err, "open elf")
	}
	if !s.Mode().IsRegular() {
		return nil, taintkit.IOError(fmt.Errorf("%s: not a regular file", file), "open elf")
	}
	return Load(r, cfg)
}

// Load reads the relocation report of the ELF image available from r.
func Load(r io.ReaderAt, cfg Config) (*Report, error) {
	logger := logging.OrNop(cfg.Logger)

	f, err := elf.NewFile(r)
	if err != nil {
		return nil, taintkit.FormatError(err, "parse elf")
	}
	defer f.Close()

	var rp Report
	if rp.Dyn, rp.HasDyn, err = sectionOffsets(f, cfg.dynSection(), logger); err != nil {
		return nil, err
	}
	for _, s := range f.Sections {
		if s.Type != elf.SHT_DYNAMIC {
			continue
		}
		entries, err := readDynamic(f, s)
		if err != nil {
			return nil, taintkit.FormatError(err, s.Name)
		}
		if isBindNow(entries) {
			rp.BindNow = true
			break
		}
	}
	level.Debug(logger).Log("msg", "binding mode", "bind_now", rp.BindNow, "env", cfg.BindNowEnv, "always_plt", cfg.AlwaysPLT)

	rp.PltReported = cfg.AlwaysPLT || rp.BindNow || cfg.BindNowEnv
	if !rp.PltReported {
		return &rp, nil
	}
	if rp.Plt, rp.HasPlt, err = sectionOffsets(f, cfg.pltSection(), logger); err != nil {
		return nil, err
	}
	return &rp, nil
}

func sectionOffsets(f *elf.File, name string, logger log.Logger) ([]uint64, bool, error) {
	s := f.Section(name)
	if s == nil || !isRelocation(s) {
		level.Debug(logger).Log("msg", "no relocation section", "section", name)
		return nil, false, nil
	}
	list, err := readOffsets(f, s)
	if err != nil {
		return nil, false, taintkit.FormatError(err, name)
	}
	level.Debug(logger).Log("msg", "relocations found", "section", name, "count", len(list))
	return list, true, nil
}

// Flags returns the flags to hand to the build step. A missing section
// gives the bare flag without any offset.
func (r *Report) Flags() []string {
	flags := []string{formatFlag(DynFlag, r.Dyn)}
	if r.PltReported {
		flags = append(flags, formatFlag(PltFlag, r.Plt))
	}
	return flags
}

// Print writes the flags to w, all on one line, or one per line when split
// is set. The split layout skips sections that are not in the binary.
func (r *Report) Print(w io.Writer, split bool) error {
	if !split {
		_, err := fmt.Fprintln(w, strings.Join(r.Flags(), " "))
		return err
	}
	if r.HasDyn {
		if _, err := fmt.Fprintln(w, formatFlag(DynFlag, r.Dyn)); err != nil {
			return err
		}
	}
	if r.PltReported && r.HasPlt {
		if _, err := fmt.Fprintln(w, formatFlag(PltFlag, r.Plt)); err != nil {
			return err
		}
	}
	return nil
}

// JoinOffsets formats offsets in decimal, separated by colons.
func JoinOffsets(offsets []uint64) string {
	list := lo.Map(offsets, func(o uint64, _ int) string {
		return strconv.FormatUint(o, 10)
	})
	return strings.Join(list, ":")
}

func formatFlag(flag string, offsets []uint64) string {
	if len(offsets) == 0 {
		return flag
	}
	return flag + " " + JoinOffsets(offsets)
}
