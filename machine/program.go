package machine

import (
	"slices"
)

// Segment is a run of bytes generated by a single line of assembly.
type Segment struct {
	LineNo int      // Source line number.
	Addr   uint32   // Load address of the first byte.
	Words  []string // Source words, after expansion.
	Data   []byte   // Generated bytes.
}

// End returns the address following the last byte of the segment.
func (seg *Segment) End() uint32 {
	return seg.Addr + uint32(len(seg.Data))
}

// Program is an assembled BytePusher image.
type Program struct {
	Segments []Segment
}

// Size returns the length of the flat image.
func (prog *Program) Size() (size int) {
	for _, seg := range prog.Segments {
		size = max(size, int(seg.End()))
	}
	return
}

// Debug returns the segment containing addr.
func (prog *Program) Debug(addr uint32) (seg *Segment, ok bool) {
	for n := range prog.Segments {
		s := &prog.Segments[n]
		if addr >= s.Addr && addr < s.End() {
			seg = s
			ok = true
			break
		}
	}

	return
}

// Binary returns the flat image, from address 0 up to the last byte
// written. Gaps are zero filled.
func (prog *Program) Binary() (data []byte) {
	data = make([]byte, prog.Size())
	for _, seg := range prog.Segments {
		copy(data[seg.Addr:], seg.Data)
	}

	return
}

// checkOverlap verifies that no two segments write the same address.
func (prog *Program) checkOverlap() (seg *Segment, err error) {
	sorted := slices.Clone(prog.Segments)
	sorted = slices.DeleteFunc(sorted, func(s Segment) bool { return len(s.Data) == 0 })
	slices.SortStableFunc(sorted, func(a, b Segment) int {
		return int(a.Addr) - int(b.Addr)
	})

	for n := 1; n < len(sorted); n++ {
		if sorted[n].Addr < sorted[n-1].End() {
			seg = &sorted[n]
			err = ErrOverlap(sorted[n].Addr)
			return
		}
	}

	return
}
