package emulator

import (
	"github.com/ezrec/bytepusher/translate"
)

var f = translate.From

// ErrFrame indicates the frame of a runtime error.
type ErrFrame struct {
	Frame int
	Err   error
}

func (err *ErrFrame) Error() string {
	return f("frame %d %v", err.Frame, err.Err)
}

func (err *ErrFrame) Unwrap() error {
	return err.Err
}
