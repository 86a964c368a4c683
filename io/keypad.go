package io

import (
	"unicode"
)

// DefaultLayout maps the hex digit keys onto the sixteen machine keys.
var DefaultLayout = map[rune]int{
	'0': 0x0, '1': 0x1, '2': 0x2, '3': 0x3,
	'4': 0x4, '5': 0x5, '6': 0x6, '7': 0x7,
	'8': 0x8, '9': 0x9, 'a': 0xa, 'b': 0xb,
	'c': 0xc, 'd': 0xd, 'e': 0xe, 'f': 0xf,
}

// Keypad maps host keys to machine key indexes.
type Keypad struct {
	Layout map[rune]int // If nil, DefaultLayout is used.
}

// Lookup returns the machine key for a host key. Letters match in either
// case.
func (kp *Keypad) Lookup(key rune) (index int, ok bool) {
	layout := kp.Layout
	if layout == nil {
		layout = DefaultLayout
	}

	index, ok = layout[key]
	if !ok {
		index, ok = layout[unicode.ToLower(key)]
	}

	return
}

// Parse returns the machine keys for a string of host keys.
// Spaces and commas are ignored.
func (kp *Keypad) Parse(keys string) (indexes []int, err error) {
	for _, key := range keys {
		if key == ' ' || key == ',' {
			continue
		}
		index, ok := kp.Lookup(key)
		if !ok {
			err = ErrKeyUnknown(key)
			return
		}
		indexes = append(indexes, index)
	}

	return
}
