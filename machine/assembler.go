// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package machine

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates, updated for every line.
var sysEquate = map[string]string{
	"LINENO": "0",
	"HERE":   "0",
}

var (
	reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
)

// Assembler is a two pass macro assembler for BytePusher images.
//
// The first pass assigns an address to every label, the second pass
// generates the image with all labels known.
type Assembler struct {
	Verbose bool      // If set, verbosely logs the assembler actions.
	Segment []Segment // List of generated segments.

	predefine map[string]string   // Predefines
	Label     map[string]uint32   // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	here      uint32          // Current assembly address.
	final     bool            // Set during the second pass.
	defined   map[string]bool // Labels defined in the current pass.
	expansion int             // Macro expansions in the current pass.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	label, ok := asm.Label[word]
	if ok {
		value = label
		return
	}

	if reIdentifier.MatchString(word) {
		// Forward references are resolved in the final pass.
		if asm.final {
			err = ErrLabelMissing(word)
		}
		return
	}

	v64, err := strconv.ParseUint(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = uint32(v64)
	return
}

// address returns the value of a word, which must be a 24-bit address.
func (asm *Assembler) address(word string) (addr uint32, err error) {
	addr, err = asm.valueOf(word)
	if err != nil {
		return
	}

	if addr > ADDRESS_MASK {
		err = ErrAddressRange
		return
	}

	return
}

// parenEval evaluates a $() expression using the current equates and labels.
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(int(addr))
	}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}

	defer func() {
		if err != nil && !asm.final {
			// May refer to a label defined later on.
			value = 0
			err = nil
		}
	}()

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < 0 || st_int64 > 0xffffffff {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// parseLine expands a single line into words, defining labels, equates,
// and expanding macros on the way.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)
	asm.Equate["HERE"] = fmt.Sprintf("0x%x", asm.here)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	words = strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if asm.defined[label] {
			err = ErrLabelDuplicate
			return
		}
		asm.defined[label] = true

		if asm.final {
			if asm.Label[label] != asm.here {
				err = ErrLabelMoved(label)
				return
			}
		} else {
			asm.Label[label] = asm.here
		}

		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansion++
		prefix := fmt.Sprintf("%v_%v_", name, asm.expansion)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", prefix)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// parseWords generates the bytes for the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var data []byte

	// no-op
	if len(words) == 0 {
		return
	}

	args := words[1:]

	switch words[0] {
	case ".org":
		if len(args) != 1 {
			err = ErrDirectiveSyntax
			return
		}
		var addr uint32
		addr, err = asm.address(args[0])
		if err != nil {
			return
		}
		asm.here = addr
		return
	case ".byte":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, arg := range args {
			var value uint32
			value, err = asm.valueOf(arg)
			if err != nil {
				return
			}
			if value > 0xff {
				err = ErrByteRange
				return
			}
			data = append(data, uint8(value))
		}
	case ".addr":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, arg := range args {
			var addr uint32
			addr, err = asm.address(arg)
			if err != nil {
				return
			}
			data = append(data, uint8(addr>>16), uint8(addr>>8), uint8(addr))
		}
	case ".fill":
		if len(args) < 1 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var count, value uint32
		count, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		if count > MEMORY_SIZE {
			err = ErrAddressRange
			return
		}
		if len(args) == 2 {
			value, err = asm.valueOf(args[1])
			if err != nil {
				return
			}
			if value > 0xff {
				err = ErrByteRange
				return
			}
		}
		data = bytes.Repeat([]byte{uint8(value)}, int(count))
	case "move":
		if len(args) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		in := Instruction{Jump: (asm.here + INSTRUCTION_SIZE) & ADDRESS_MASK}
		targets := []*uint32{&in.Source, &in.Dest, &in.Jump}
		for n, arg := range args {
			*targets[n], err = asm.address(arg)
			if err != nil {
				return
			}
		}
		data = in.Append(data)
	case "jump":
		if len(args) < 1 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		in := Instruction{}
		in.Jump, err = asm.address(args[0])
		if err != nil {
			return
		}
		data = in.Append(data)
	case "halt":
		if len(args) != 0 {
			err = ErrOpcodeExtraArgs
			return
		}
		in := Instruction{Source: asm.here, Dest: asm.here, Jump: asm.here}
		data = in.Append(data)
	default:
		err = ErrInstructionInvalid
		return
	}

	if int(asm.here)+len(data) > MEMORY_SIZE {
		err = ErrAddressRange
		return
	}

	asm.Segment = append(asm.Segment, Segment{
		LineNo: lineno,
		Addr:   asm.here,
		Words:  slices.Clone(words),
		Data:   data,
	})
	asm.here += uint32(len(data))

	return
}

// pass runs a single assembly pass over the source lines.
func (asm *Assembler) pass(lines []string) (err error) {
	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.here = 0
	asm.Segment = asm.Segment[:0]
	asm.defined = make(map[string]bool)
	asm.expansion = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	maps.Insert(asm.Equate, Defines())
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for n, text := range lines {
		lineno = n + 1

		if asm.Verbose && asm.final {
			log.Printf("asm: %v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	var lines []string

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	asm.Label = make(map[string]uint32)

	for _, final := range []bool{false, true} {
		asm.final = final
		err = asm.pass(lines)
		if err != nil {
			return
		}
	}

	prog = &Program{
		Segments: slices.Clone(asm.Segment),
	}

	seg, err := prog.checkOverlap()
	if err != nil {
		err = &ErrSyntax{LineNo: seg.LineNo, Line: strings.Join(seg.Words, " "), Err: err}
		prog = nil
		return
	}

	return
}
