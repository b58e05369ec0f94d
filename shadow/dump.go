// Package shadow reads the taint dumps written by the taint tracer and
// renders the shadow memory they describe as 1-bit PNG images.
//
// A dump is a text file starting with the line "TAINT DUMP". Every other
// line but the last one describes a shadow block:
//
//	APP <hex address> SHADOW <raw shadow bytes>
//
// The tracer itself also writes the base address of the shadow block before
// the payload:
//
//	APP <hex address> SHADOW <hex shadow base> <raw shadow bytes>
//
// Parse expects the first layout, ParseLayout with Tracer reads the second.
//
// The last line is a trailer and is ignored. When the file ends with a
// newline, the trailer is the empty string following it.
package shadow

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/midbel/taintkit"
)

const Header = "TAINT DUMP"

const (
	tagApp    = "APP"
	tagShadow = "SHADOW"
)

var delimiter = []byte(" ")

// Layout tells how the fields of a record line are laid out.
type Layout int

const (
	// Plain lines carry the address and the payload.
	Plain Layout = iota
	// Tracer lines carry the shadow base between the tag and the payload.
	Tracer
)

func (y Layout) fields() int {
	if y == Tracer {
		return 5
	}
	return 4
}

// Record is one block of the dump: the address of the application memory
// and the shadow bytes tracking it. Base is only set by the Tracer layout.
type Record struct {
	Addr   uint64
	Base   uint64
	Shadow []byte
}

// Open parses the dump stored in file, in the Plain layout.
func Open(file string) ([]Record, error) {
	r, err := os.Open(file)
	if err != nil {
		return nil, taintkit.IOError(err, "open dump")
	}
	defer r.Close()

	return Parse(r)
}

// Parse reads a whole dump in the Plain layout. The first malformed line
// aborts the parsing.
func Parse(r io.Reader) ([]Record, error) {
	return ParseLayout(r, Plain)
}

// ParseLayout is Parse for dumps whose lines follow layout.
func ParseLayout(r io.Reader, layout Layout) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, taintkit.IOError(err, "read dump")
	}
	lines := bytes.Split(data, []byte("\n"))
	if head := strings.TrimRight(string(lines[0]), " \t\r\n\v\f"); head != Header {
		return nil, taintkit.Formatf("missing %q header", Header)
	}
	if len(lines) <= 2 {
		return nil, nil
	}
	lines = lines[1 : len(lines)-1]

	records := make([]Record, 0, len(lines))
	for i, line := range lines {
		rec, err := parseRecord(line, layout)
		if err != nil {
			return nil, taintkit.FormatError(err, "line "+strconv.Itoa(i+2))
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseRecord splits a line on single spaces. The payload is raw memory and
// may contain the delimiter itself: such a line can not be split back
// reliably and is rejected.
func parseRecord(line []byte, layout Layout) (Record, error) {
	var (
		rec  Record
		want = layout.fields()
	)
	line = bytes.TrimSuffix(line, []byte("\r"))
	fields := bytes.Split(line, delimiter)
	if len(fields) < want {
		return rec, taintkit.Formatf("expected %d fields, got %d", want, len(fields))
	}
	if tag := string(fields[0]); tag != tagApp {
		return rec, taintkit.Formatf("expected %s tag, got %q", tagApp, tag)
	}
	if tag := string(fields[2]); tag != tagShadow {
		return rec, taintkit.Formatf("expected %s tag, got %q", tagShadow, tag)
	}
	if len(fields) > want {
		if layout == Plain && len(fields) == Tracer.fields() {
			return rec, taintkit.Formatf("shadow payload contains the field delimiter or dump written in tracer layout")
		}
		return rec, taintkit.Formatf("shadow payload contains the field delimiter")
	}
	addr, err := parseHex(fields[1])
	if err != nil {
		return rec, taintkit.FormatError(err, "bad address")
	}
	rec.Addr = addr
	if layout == Tracer {
		base, err := parseHex(fields[3])
		if err != nil {
			return rec, taintkit.FormatError(err, "bad shadow base")
		}
		rec.Base = base
	}
	rec.Shadow = bytes.Clone(fields[want-1])
	return rec, nil
}

func parseHex(field []byte) (uint64, error) {
	str := strings.TrimPrefix(strings.ToLower(string(field)), "0x")
	return strconv.ParseUint(str, 16, 64)
}
