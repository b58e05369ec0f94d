package shadow

// Scale is the number of application bytes tracked by one shadow byte.
const Scale = 4

// Region is a run of contiguous shadow memory.
type Region struct {
	Addr   uint64
	Shadow []byte
}

func newRegion(rec Record) Region {
	shadow := make([]byte, len(rec.Shadow))
	copy(shadow, rec.Shadow)
	return Region{
		Addr:   rec.Addr,
		Shadow: shadow,
	}
}

// End returns the application address following the region.
func (r Region) End() uint64 {
	return r.Addr + Scale*uint64(len(r.Shadow))
}

// Merge joins every record to the region before it when it starts exactly
// where that region ends. Records are never reordered, so two blocks that
// are adjacent in memory but not in the dump stay apart.
func Merge(records []Record) []Region {
	if len(records) == 0 {
		return nil
	}
	var (
		regions []Region
		curr    = newRegion(records[0])
	)
	for _, rec := range records[1:] {
		if rec.Addr == curr.End() {
			curr.Shadow = append(curr.Shadow, rec.Shadow...)
			continue
		}
		regions = append(regions, curr)
		curr = newRegion(rec)
	}
	return append(regions, curr)
}

// Split turns every record into its own region.
func Split(records []Record) []Region {
	regions := make([]Region, 0, len(records))
	for _, rec := range records {
		regions = append(regions, newRegion(rec))
	}
	return regions
}
