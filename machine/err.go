package machine

import (
	"errors"

	"github.com/ezrec/bytepusher/translate"
)

var f = translate.From

var (
	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrDirectiveSyntax    = errors.New(f("directive syntax"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrAddressRange       = errors.New(f("address out of range"))
	ErrByteRange          = errors.New(f("byte out of range"))
)

// ErrProgramSize is returned when a program image does not fit the
// address space.
type ErrProgramSize int

func (err ErrProgramSize) Error() string {
	return f("program size %d exceeds memory size %d", int(err), MEMORY_SIZE)
}

func (err ErrProgramSize) Is(target error) (ok bool) {
	_, ok = target.(ErrProgramSize)
	return
}

// ErrKeyInvalid is returned for a key index outside of [0, KEY_COUNT).
type ErrKeyInvalid int

func (err ErrKeyInvalid) Error() string {
	return f("key %d invalid", int(err))
}

func (err ErrKeyInvalid) Is(target error) (ok bool) {
	_, ok = target.(ErrKeyInvalid)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrLabelMoved is returned when a label's address depends on a label
// defined after it.
type ErrLabelMoved string

func (el ErrLabelMoved) Error() string {
	return f("label %v moved between passes", string(el))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrOverlap is returned when two segments of a program write the same
// address.
type ErrOverlap uint32

func (err ErrOverlap) Error() string {
	return f("address 0x%06x written twice", uint32(err))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
