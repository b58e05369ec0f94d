package relocs

import (
	"bytes"
	"debug/elf"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midbel/taintkit"
	"github.com/midbel/taintkit/internal/testelf"
)

func TestLoadNoSections(t *testing.T) {
	for _, class := range []elf.Class{elf.ELFCLASS32, elf.ELFCLASS64} {
		t.Run(class.String(), func(t *testing.T) {
			data := testelf.Build(class)

			rp, err := Load(bytes.NewReader(data), Config{AlwaysPLT: true})
			require.NoError(t, err)
			assert.False(t, rp.HasDyn)
			assert.False(t, rp.HasPlt)
			assert.Empty(t, rp.Dyn)
			assert.Empty(t, rp.Plt)
			assert.Equal(t, []string{"-with_dynrel", "-with_pltrel"}, rp.Flags())

			var out bytes.Buffer
			require.NoError(t, rp.Print(&out, false))
			assert.Equal(t, "-with_dynrel -with_pltrel\n", out.String())

			out.Reset()
			require.NoError(t, rp.Print(&out, true))
			assert.Empty(t, out.String())
		})
	}
}

func TestLoadDynRelocations(t *testing.T) {
	for _, class := range []elf.Class{elf.ELFCLASS32, elf.ELFCLASS64} {
		t.Run(class.String(), func(t *testing.T) {
			data := testelf.Build(class, testelf.Rel(class, DynSection, 0x10, 0x20))

			rp, err := Load(bytes.NewReader(data), Config{})
			require.NoError(t, err)
			assert.True(t, rp.HasDyn)
			assert.Equal(t, []uint64{0x10, 0x20}, rp.Dyn)
			assert.False(t, rp.PltReported)

			var out bytes.Buffer
			require.NoError(t, rp.Print(&out, false))
			assert.Contains(t, out.String(), "-with_dynrel 16:32")
			assert.NotContains(t, out.String(), PltFlag)
		})
	}
}

func TestLoadRelaSections(t *testing.T) {
	data := testelf.Build(elf.ELFCLASS64,
		testelf.Rela(DynSection, 0x3df0, 0x3df8),
		testelf.Rela(PltSection, 0x4018),
	)
	rp, err := Load(bytes.NewReader(data), Config{AlwaysPLT: true})
	require.NoError(t, err)
	assert.Equal(t, []uint64{0x3df0, 0x3df8}, rp.Dyn)
	assert.Equal(t, []uint64{0x4018}, rp.Plt)
	assert.Equal(t, []string{"-with_dynrel 15856:15864", "-with_pltrel 16408"}, rp.Flags())
}

func TestLoadPltPolicy(t *testing.T) {
	tests := []struct {
		Name     string
		Dynamic  []elf.DynTag
		Values   []uint64
		Config   Config
		Reported bool
		BindNow  bool
	}{
		{
			Name:    "lazy",
			Dynamic: []elf.DynTag{elf.DT_NEEDED, elf.DT_PLTGOT},
		},
		{
			Name:     "always",
			Dynamic:  []elf.DynTag{elf.DT_NEEDED},
			Config:   Config{AlwaysPLT: true},
			Reported: true,
		},
		{
			Name:     "environment",
			Dynamic:  []elf.DynTag{elf.DT_NEEDED},
			Config:   Config{BindNowEnv: true},
			Reported: true,
		},
		{
			Name:     "bind-now",
			Dynamic:  []elf.DynTag{elf.DT_NEEDED, elf.DT_BIND_NOW},
			Reported: true,
			BindNow:  true,
		},
		{
			Name:     "flags",
			Dynamic:  []elf.DynTag{elf.DT_FLAGS},
			Values:   []uint64{uint64(elf.DF_BIND_NOW)},
			Reported: true,
			BindNow:  true,
		},
		{
			Name:     "flags-1",
			Dynamic:  []elf.DynTag{elf.DT_FLAGS_1},
			Values:   []uint64{uint64(elf.DF_1_NOW | elf.DF_1_PIE)},
			Reported: true,
			BindNow:  true,
		},
		{
			Name:    "flags-without-now",
			Dynamic: []elf.DynTag{elf.DT_FLAGS, elf.DT_FLAGS_1},
			Values:  []uint64{uint64(elf.DF_TEXTREL), uint64(elf.DF_1_PIE)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			data := testelf.Build(elf.ELFCLASS32,
				testelf.Rel(elf.ELFCLASS32, DynSection, 0x10, 0x20),
				testelf.Rel(elf.ELFCLASS32, PltSection, 123, 456),
				testelf.Dynamic(elf.ELFCLASS32, tt.Dynamic, tt.Values),
			)
			rp, err := Load(bytes.NewReader(data), tt.Config)
			require.NoError(t, err)
			assert.Equal(t, tt.BindNow, rp.BindNow)
			assert.Equal(t, tt.Reported, rp.PltReported)

			var out bytes.Buffer
			require.NoError(t, rp.Print(&out, false))
			if tt.Reported {
				assert.Equal(t, "-with_dynrel 16:32 -with_pltrel 123:456\n", out.String())
			} else {
				assert.Equal(t, "-with_dynrel 16:32\n", out.String())
			}
		})
	}
}

func TestLoadEmptyDynRelocations(t *testing.T) {
	data := testelf.Build(elf.ELFCLASS64,
		testelf.Rel(elf.ELFCLASS64, PltSection, 123, 456),
		testelf.Dynamic(elf.ELFCLASS64, []elf.DynTag{elf.DT_BIND_NOW}, nil),
	)
	rp, err := Load(bytes.NewReader(data), Config{})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, rp.Print(&out, false))
	assert.Equal(t, "-with_dynrel -with_pltrel 123:456\n", out.String())

	out.Reset()
	require.NoError(t, rp.Print(&out, true))
	assert.Equal(t, "-with_pltrel 123:456\n", out.String())
}

func TestLoadSplitLayout(t *testing.T) {
	data := testelf.Build(elf.ELFCLASS32,
		testelf.Rel(elf.ELFCLASS32, DynSection, 8, 12),
		testelf.Rel(elf.ELFCLASS32, PltSection, 16),
	)
	rp, err := Load(bytes.NewReader(data), Config{BindNowEnv: true})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, rp.Print(&out, true))
	assert.Equal(t, "-with_dynrel 8:12\n-with_pltrel 16\n", out.String())
}

func TestLoadIgnoresNonRelocationSection(t *testing.T) {
	data := testelf.Build(elf.ELFCLASS64, testelf.Section{
		Name: DynSection,
		Type: elf.SHT_PROGBITS,
		Data: []byte{1, 2, 3, 4},
	})
	rp, err := Load(bytes.NewReader(data), Config{})
	require.NoError(t, err)
	assert.False(t, rp.HasDyn)
	assert.Equal(t, []string{"-with_dynrel"}, rp.Flags())
}

func TestLoadSectionOverride(t *testing.T) {
	data := testelf.Build(elf.ELFCLASS64,
		testelf.Rela(".rela.dyn", 0x10),
		testelf.Rela(".rela.plt", 0x20),
	)
	cfg := Config{
		DynSection: ".rela.dyn",
		PltSection: ".rela.plt",
		AlwaysPLT:  true,
	}
	rp, err := Load(bytes.NewReader(data), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"-with_dynrel 16", "-with_pltrel 32"}, rp.Flags())
}

func TestLoadInvalid(t *testing.T) {
	t.Run("not-elf", func(t *testing.T) {
		_, err := Load(bytes.NewReader([]byte("#!/bin/sh\necho hello\n")), Config{})
		require.Error(t, err)
		assert.True(t, taintkit.IsFormat(err))
	})
	t.Run("truncated-table", func(t *testing.T) {
		data := testelf.Build(elf.ELFCLASS32, testelf.Section{
			Name: DynSection,
			Type: elf.SHT_REL,
			Data: []byte{0x10, 0, 0, 0, 0x16, 0, 0, 0, 0x20, 0},
		})
		_, err := Load(bytes.NewReader(data), Config{})
		require.Error(t, err)
		assert.True(t, taintkit.IsFormat(err))
		assert.Contains(t, err.Error(), DynSection)
	})
}

func TestOpen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "libapp.so")
	data := testelf.Build(elf.ELFCLASS32, testelf.Rel(elf.ELFCLASS32, DynSection, 0x10, 0x20))
	require.NoError(t, os.WriteFile(file, data, 0o644))

	rp, err := Open(file, Config{})
	require.NoError(t, err)
	assert.Equal(t, []uint64{16, 32}, rp.Dyn)

	_, err = Open(filepath.Join(t.TempDir(), "missing.so"), Config{})
	require.Error(t, err)
	assert.True(t, taintkit.IsIO(err))

	_, err = Open(t.TempDir(), Config{})
	require.Error(t, err)
	assert.True(t, taintkit.IsIO(err))
	assert.False(t, taintkit.IsFormat(err))
}

func TestJoinOffsets(t *testing.T) {
	assert.Equal(t, "", JoinOffsets(nil))
	assert.Equal(t, "16", JoinOffsets([]uint64{16}))
	assert.Equal(t, "16:32:18446744073709551615", JoinOffsets([]uint64{16, 32, ^uint64(0)}))
}
