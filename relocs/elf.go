package relocs

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"
)

func isRelocation(s *elf.Section) bool {
	return s.Type == elf.SHT_REL || s.Type == elf.SHT_RELA
}

// readOffsets decodes the r_offset field of every entry of a SHT_REL or
// SHT_RELA section.
func readOffsets(f *elf.File, s *elf.Section) ([]uint64, error) {
	data, err := s.Data()
	if err != nil {
		return nil, err
	}
	var (
		rs    = bytes.NewReader(data)
		order = f.ByteOrder
	)
	switch {
	case f.Class == elf.ELFCLASS32 && s.Type == elf.SHT_REL:
		return readEntries(rs, order, func(e elf.Rel32) uint64 { return uint64(e.Off) })
	case f.Class == elf.ELFCLASS32 && s.Type == elf.SHT_RELA:
		return readEntries(rs, order, func(e elf.Rela32) uint64 { return uint64(e.Off) })
	case f.Class == elf.ELFCLASS64 && s.Type == elf.SHT_REL:
		return readEntries(rs, order, func(e elf.Rel64) uint64 { return e.Off })
	case f.Class == elf.ELFCLASS64 && s.Type == elf.SHT_RELA:
		return readEntries(rs, order, func(e elf.Rela64) uint64 { return e.Off })
	default:
		return nil, fmt.Errorf("%s: unsupported class %s for %s", s.Name, f.Class, s.Type)
	}
}

func readEntries[T any](r *bytes.Reader, order binary.ByteOrder, offset func(T) uint64) ([]uint64, error) {
	var (
		list  []uint64
		entry T
		size  = binary.Size(entry)
	)
	if r.Len()%size != 0 {
		return nil, fmt.Errorf("table size %d is not a multiple of entry size %d", r.Len(), size)
	}
	for r.Len() > 0 {
		if err := binary.Read(r, order, &entry); err != nil {
			return nil, err
		}
		list = append(list, offset(entry))
	}
	return list, nil
}

type dynEntry struct {
	Tag elf.DynTag
	Val uint64
}

// readDynamic decodes a SHT_DYNAMIC section up to its DT_NULL terminator.
func readDynamic(f *elf.File, s *elf.Section) ([]dynEntry, error) {
	data, err := s.Data()
	if err != nil {
		return nil, err
	}
	var (
		list []dynEntry
		rs   = bytes.NewReader(data)
	)
	for {
		var e dynEntry
		if f.Class == elf.ELFCLASS32 {
			var d elf.Dyn32
			err = binary.Read(rs, f.ByteOrder, &d)
			e = dynEntry{Tag: elf.DynTag(d.Tag), Val: uint64(d.Val)}
		} else {
			var d elf.Dyn64
			err = binary.Read(rs, f.ByteOrder, &d)
			e = dynEntry{Tag: elf.DynTag(d.Tag), Val: d.Val}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if e.Tag == elf.DT_NULL {
			break
		}
		list = append(list, e)
	}
	return list, nil
}

// isBindNow reports whether the dynamic entries ask the loader to resolve
// every symbol at load time. Older linkers emit DT_BIND_NOW, newer ones set
// DF_BIND_NOW in DT_FLAGS or DF_1_NOW in DT_FLAGS_1.
func isBindNow(entries []dynEntry) bool {
	for _, e := range entries {
		switch e.Tag {
		case elf.DT_BIND_NOW:
			return true
		case elf.DT_FLAGS:
			if e.Val&uint64(elf.DF_BIND_NOW) != 0 {
				return true
			}
		case elf.DT_FLAGS_1:
			if e.Val&uint64(elf.DF_1_NOW) != 0 {
				return true
			}
		}
	}
	return false
}
