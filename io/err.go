package io

import (
	"errors"

	"github.com/ezrec/bytepusher/translate"
)

var f = translate.From

var (
	ErrRomSize     = errors.New(f("rom image larger than memory"))
	ErrImageFormat = errors.New(f("image format unknown"))
)

// ErrKeyUnknown is returned for a host key without a keypad mapping.
type ErrKeyUnknown rune

func (err ErrKeyUnknown) Error() string {
	return f("key '%c' unknown", rune(err))
}
