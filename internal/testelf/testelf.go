// Package testelf assembles small little endian ELF images for tests.
package testelf

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
)

type Section struct {
	Name    string
	Type    elf.SectionType
	Data    []byte
	Entsize uint64
}

// Build returns an ELF image holding the given sections, preceded by the
// null section and followed by .shstrtab. Sections have no address and
// the image has no program headers.
func Build(class elf.Class, sections ...Section) []byte {
	var shstrtab bytes.Buffer
	shstrtab.WriteByte(0)
	names := make([]uint32, 0, len(sections)+1)
	for _, s := range sections {
		names = append(names, uint32(shstrtab.Len()))
		shstrtab.WriteString(s.Name)
		shstrtab.WriteByte(0)
	}
	names = append(names, uint32(shstrtab.Len()))
	shstrtab.WriteString(".shstrtab")
	shstrtab.WriteByte(0)

	all := make([]Section, 0, len(sections)+1)
	all = append(all, sections...)
	all = append(all, Section{
		Name: ".shstrtab",
		Type: elf.SHT_STRTAB,
		Data: shstrtab.Bytes(),
	})

	ehsize, shentsize := 52, 40
	if class == elf.ELFCLASS64 {
		ehsize, shentsize = 64, 64
	}

	var (
		body    bytes.Buffer
		offsets = make([]int, len(all))
	)
	for i, s := range all {
		pad(&body)
		offsets[i] = ehsize + body.Len()
		body.Write(s.Data)
	}
	pad(&body)

	var (
		file     bytes.Buffer
		ident    [elf.EI_NIDENT]byte
		shoff    = ehsize + body.Len()
		shnum    = uint16(len(all) + 1)
		shstrndx = uint16(len(all))
	)
	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(class)
	ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	if class == elf.ELFCLASS64 {
		write(&file, elf.Header64{
			Ident:     ident,
			Type:      uint16(elf.ET_DYN),
			Machine:   uint16(elf.EM_X86_64),
			Version:   uint32(elf.EV_CURRENT),
			Shoff:     uint64(shoff),
			Ehsize:    uint16(ehsize),
			Shentsize: uint16(shentsize),
			Shnum:     shnum,
			Shstrndx:  shstrndx,
		})
	} else {
		write(&file, elf.Header32{
			Ident:     ident,
			Type:      uint16(elf.ET_DYN),
			Machine:   uint16(elf.EM_ARM),
			Version:   uint32(elf.EV_CURRENT),
			Shoff:     uint32(shoff),
			Ehsize:    uint16(ehsize),
			Shentsize: uint16(shentsize),
			Shnum:     shnum,
			Shstrndx:  shstrndx,
		})
	}
	file.Write(body.Bytes())

	if class == elf.ELFCLASS64 {
		write(&file, elf.Section64{})
		for i, s := range all {
			write(&file, elf.Section64{
				Name:      names[i],
				Type:      uint32(s.Type),
				Off:       uint64(offsets[i]),
				Size:      uint64(len(s.Data)),
				Addralign: 8,
				Entsize:   s.Entsize,
			})
		}
	} else {
		write(&file, elf.Section32{})
		for i, s := range all {
			write(&file, elf.Section32{
				Name:      names[i],
				Type:      uint32(s.Type),
				Off:       uint32(offsets[i]),
				Size:      uint32(len(s.Data)),
				Addralign: 4,
				Entsize:   uint32(s.Entsize),
			})
		}
	}
	return file.Bytes()
}

// Rel returns a SHT_REL section whose entries patch the given offsets.
func Rel(class elf.Class, name string, offsets ...uint64) Section {
	var buf bytes.Buffer
	for i, off := range offsets {
		if class == elf.ELFCLASS64 {
			write(&buf, elf.Rel64{Off: off, Info: uint64(i+1)<<32 | uint64(elf.R_X86_64_JMP_SLOT)})
		} else {
			write(&buf, elf.Rel32{Off: uint32(off), Info: uint32(i+1)<<8 | uint32(elf.R_ARM_JUMP_SLOT)})
		}
	}
	s := Section{Name: name, Type: elf.SHT_REL, Data: buf.Bytes(), Entsize: 8}
	if class == elf.ELFCLASS64 {
		s.Entsize = 16
	}
	return s
}

// Rela returns a 64 bits SHT_RELA section whose entries patch the given
// offsets.
func Rela(name string, offsets ...uint64) Section {
	var buf bytes.Buffer
	for _, off := range offsets {
		write(&buf, elf.Rela64{Off: off, Info: uint64(elf.R_X86_64_RELATIVE), Addend: 0x1000})
	}
	return Section{Name: name, Type: elf.SHT_RELA, Data: buf.Bytes(), Entsize: 24}
}

// Dynamic returns a .dynamic section holding tags, paired with values by
// position (zero when missing), and terminated by DT_NULL.
func Dynamic(class elf.Class, tags []elf.DynTag, values []uint64) Section {
	var buf bytes.Buffer
	add := func(tag elf.DynTag, val uint64) {
		if class == elf.ELFCLASS64 {
			write(&buf, elf.Dyn64{Tag: int64(tag), Val: val})
		} else {
			write(&buf, elf.Dyn32{Tag: int32(tag), Val: uint32(val)})
		}
	}
	for i, tag := range tags {
		var val uint64
		if i < len(values) {
			val = values[i]
		}
		add(tag, val)
	}
	add(elf.DT_NULL, 0)

	s := Section{Name: ".dynamic", Type: elf.SHT_DYNAMIC, Data: buf.Bytes(), Entsize: 8}
	if class == elf.ELFCLASS64 {
		s.Entsize = 16
	}
	return s
}

func pad(buf *bytes.Buffer) {
	for buf.Len()%8 != 0 {
		buf.WriteByte(0)
	}
}

// write only fails for values binary can not encode, a bug in this
// package.
func write(buf *bytes.Buffer, v interface{}) {
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		panic(err)
	}
}
