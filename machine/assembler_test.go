package machine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func doParse(t *testing.T, asm *Assembler, program []string) (prog *Program) {
	assert := assert.New(t)

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	return
}

func segEqual(t *testing.T, expected, segments []Segment) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(segments))
	if len(expected) == len(segments) {
		for n := range len(expected) {
			assert.Equal(expected[n].LineNo, segments[n].LineNo, "segment %d", n)
			assert.Equal(expected[n].Addr, segments[n].Addr, "segment %d", n)
			assert.Equal(expected[n].Data, segments[n].Data, "segment %d", n)
		}
	}
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Segments))
	assert.Equal(0, prog.Size())
	assert.Equal([]byte{}, prog.Binary())

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("0x2", asm.Equate["PROGRAM_COUNTER"])
	assert.Equal("0x5", asm.Equate["PIXEL_PAGE"])
	assert.Equal("0x6", asm.Equate["AUDIO_PAGE"])
	assert.Equal("65536", asm.Equate["FRAME_INSTRUCTIONS"])
}

func TestAssemblerHeader(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"; header",
		".org PROGRAM_COUNTER",
		".addr start",
		".byte 0x05, 0x00, 0x00",
		"start: move 0x0a0000 0x050000",
		"done: halt",
	}

	prog := doParse(t, asm, program)

	expected := []Segment{
		{LineNo: 3, Addr: 2, Data: []byte{0x00, 0x00, 0x08}},
		{LineNo: 4, Addr: 5, Data: []byte{0x05, 0x00, 0x00}},
		{LineNo: 5, Addr: 8, Data: []byte{0x0a, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00, 0x00, 0x11}},
		{LineNo: 6, Addr: 17, Data: []byte{0x00, 0x00, 0x11, 0x00, 0x00, 0x11, 0x00, 0x00, 0x11}},
	}
	segEqual(t, expected, prog.Segments)

	assert.Equal(uint32(8), asm.Label["start"])
	assert.Equal(uint32(17), asm.Label["done"])
	assert.Equal(26, prog.Size())

	binary := prog.Binary()
	assert.Equal([]byte{0x00, 0x00, 0x00, 0x00, 0x08, 0x05, 0x00, 0x00}, binary[:8])

	seg, ok := prog.Debug(20)
	assert.True(ok)
	assert.Equal(6, seg.LineNo)
	assert.Equal([]string{"halt"}, seg.Words)
	_, ok = prog.Debug(0)
	assert.False(ok)

	// And it runs.
	vm := NewMachine()
	assert.NoError(vm.Load(binary))
	vm.Memory.Poke(0x0a0000, 0x99)
	steps := vm.AdvanceFrame()
	assert.Equal(1, steps)
	fb := vm.Framebuffer()
	assert.Equal(uint8(0x99), fb.At(0, 0))
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		".equ PAGE 0x10",
		".byte PAGE",
		".byte $(PAGE * 2)",
		".equ PAGE_3 $(PAGE + PAGE + PAGE)",
		".byte PAGE_3",
		".byte $(LINENO * 8)",
		".byte 'A' '\\n' ' '",
	}

	prog := doParse(t, asm, program)

	assert.Equal([]byte{0x10, 0x20, 0x30, 0x30, 'A', '\n', ' '}, prog.Binary())
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("FRAME_RATE", "60")
	asm.Predefine("SILENCE", "0x80")

	program := []string{
		".byte FRAME_RATE SILENCE",
		".byte $(FRAME_RATE + 1)",
	}

	prog := doParse(t, asm, program)

	assert.Equal([]byte{60, 0x80, 61}, prog.Binary())
}

func TestAssemblerMacro(t *testing.T) {
	asm := &Assembler{}
	program := []string{
		".macro COPY src dst",
		"move src dst",
		".endm",
		".org 0x100",
		"COPY 0x10 0x20",
		"COPY 0x30 0x40",
	}

	prog := doParse(t, asm, program)

	expected := []Segment{
		{LineNo: 2, Addr: 0x100, Data: []byte{0x00, 0x00, 0x10, 0x00, 0x00, 0x20, 0x00, 0x01, 0x09}},
		{LineNo: 2, Addr: 0x109, Data: []byte{0x00, 0x00, 0x30, 0x00, 0x00, 0x40, 0x00, 0x01, 0x12}},
	}
	segEqual(t, expected, prog.Segments)
}

func TestAssemblerMacroLabel(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		".macro IDLE",
		"@wait: jump @wait",
		".endm",
		".org 0x40",
		"IDLE",
		"IDLE",
		"jump IDLE_1_wait",
	}

	prog := doParse(t, asm, program)

	assert.Equal(uint32(0x40), asm.Label["IDLE_1_wait"])
	assert.Equal(uint32(0x49), asm.Label["IDLE_2_wait"])
	assert.Equal(3, len(prog.Segments))
	assert.Equal([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0x40}, prog.Segments[0].Data)
	assert.Equal([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0x49}, prog.Segments[1].Data)
	assert.Equal([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0x40}, prog.Segments[2].Data)
}

func TestAssemblerLabel(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"jump end",
		"table: .byte 1 2 3",
		".addr $(table + 2)",
		".org 0x200",
		"end: start: halt",
	}

	prog := doParse(t, asm, program)

	expected := []Segment{
		{LineNo: 1, Addr: 0x000, Data: []byte{0, 0, 0, 0, 0, 0, 0x00, 0x02, 0x00}},
		{LineNo: 2, Addr: 0x009, Data: []byte{1, 2, 3}},
		{LineNo: 3, Addr: 0x00c, Data: []byte{0x00, 0x00, 0x0b}},
		{LineNo: 5, Addr: 0x200, Data: []byte{0x00, 0x02, 0x00, 0x00, 0x02, 0x00, 0x00, 0x02, 0x00}},
	}
	segEqual(t, expected, prog.Segments)

	assert.Equal(uint32(0x200), asm.Label["end"])
	assert.Equal(uint32(0x200), asm.Label["start"])
	assert.Equal(0x209, prog.Size())
}

func TestAssemblerHere(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		".org 0x30",
		"move HERE HERE HERE",
		"halt",
	}

	prog := doParse(t, asm, program)

	assert.Equal(2, len(prog.Segments))

	first := Instruction{Source: 0x30, Dest: 0x30, Jump: 0x30}
	second := Instruction{Source: 0x39, Dest: 0x39, Jump: 0x39}
	assert.Equal(first.Append(nil), prog.Segments[0].Data)
	assert.Equal(second.Append(nil), prog.Segments[1].Data)
}

func TestAssemblerFill(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		".fill 4 0xaa",
		".fill 2",
		".byte 0x55",
	}

	prog := doParse(t, asm, program)

	assert.Equal([]byte{0xaa, 0xaa, 0xaa, 0xaa, 0, 0, 0x55}, prog.Binary())
}

func TestAssemblerErrSyntax(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// Various syntax errors
	table := [](struct {
		prog string
		line int
	}){
		{"DUP:\nDUP:\n", 2},
		{"halt\nDUP: halt\nDUP: halt\n", 3},
		{"move 1", 1},
		{"move 1 2 3 4", 1},
		{"move nowhere 2", 1},
		{"move 0x1000000 1", 1},
		{"move -1 1", 1},
		{"move $(\"aaa\") 1", 1},
		{"move $(more(\"aaa\")) 1", 1},
		{"move $(0x10000000000000000) 1", 1},
		{"halt 1", 1},
		{"jump", 1},
		{"jump all over", 1},
		{"jump nowhere", 1},
		{"nop", 1},
		{"\n\nnop bad\n", 3},
		{".byte", 1},
		{".byte 256", 1},
		{".addr", 1},
		{".addr 0x1000000", 1},
		{".org", 1},
		{".org 1 2", 1},
		{".org 0x1000000", 1},
		{".fill", 1},
		{".fill 1 2 3", 1},
		{".fill 1 256", 1},
		{".fill 0x1000001", 1},
		{".equ", 1},
		{".equ A", 1},
		{".equ A 1\n.equ A 2\n", 2},
		{".macro", 1},
		{".macro A B C\n.endm\nA 1\n", 3},
		{".macro A B\nB\n.endm\nA halt\nA invalid\n", 5},
		{".macro A B\n.macro C\n.endm\n.endm", 2},
		{".macro A B\n.endm\n.macro A\n.endm\n", 3},
		{".macro A B\n.endm\n.endm\n", 3},
		{".macro A\nhalt\n", 2},
		{".org 0xffffff\n.byte 1 2\n", 2},
		{".byte 1\n.org 0\n.byte 2\n", 3},
		{".fill $(later + 1)\nlater: halt\n", 2},
	}

	for _, entry := range table {
		_, err := asm.Parse(strings.NewReader(entry.prog))
		var se *ErrSyntax
		assert.NotNil(err, entry.prog)
		if err != nil {
			assert.True(errors.As(err, &se), entry.prog)
			assert.Equal(entry.line, se.LineNo, entry.prog)
		}
	}
}

func TestAssemblerErrKind(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	table := [](struct {
		prog string
		err  error
	}){
		{"DUP:\nDUP:\n", ErrLabelDuplicate},
		{"move 1", ErrOpcodeValueMissing},
		{"move 1 2 3 4", ErrOpcodeExtraArgs},
		{"move nowhere 2", ErrLabelMissing("nowhere")},
		{"move $(\"aaa\") 1", ErrParseExpression("\"aaa\"")},
		{".byte 256", ErrByteRange},
		{".addr 0x1000000", ErrAddressRange},
		{".equ A 1\n.equ A 2\n", ErrEquateDuplicate},
		{".macro A\n.macro B\n", ErrMacroNesting},
		{".endm", ErrMacroLonelyEndm},
		{".macro A\n", ErrMacroLonely},
		{"nop", ErrInstructionInvalid},
		{".byte 1\n.org 0\n.byte 2\n", ErrOverlap(0)},
		{".fill $(later + 1)\nlater: halt\n", ErrLabelMoved("later")},
	}

	for _, entry := range table {
		_, err := asm.Parse(strings.NewReader(entry.prog))
		assert.True(errors.Is(err, entry.err), "%v: %v", entry.prog, err)
	}
}

func TestAssemblerVerbose(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{Verbose: true}
	prog, err := asm.Parse(strings.NewReader("halt\n"))
	assert.NoError(err)
	assert.Equal(9, prog.Size())
}
