package machine

import (
	"fmt"
)

const (
	INSTRUCTION_SIZE = 3 * ADDRESS_SIZE // Bytes in an instruction.
)

// Instruction is the only BytePusher instruction: copy a byte from Source
// to Dest, then continue at Jump.
type Instruction struct {
	Source uint32
	Dest   uint32
	Jump   uint32
}

// Halts reports if the instruction, located at pc, idles until the next
// frame: a no-op copy that jumps to itself.
func (in Instruction) Halts(pc uint32) bool {
	return in.Source == in.Dest && in.Jump == (pc&ADDRESS_MASK)
}

// String formats the instruction as three hex addresses.
func (in Instruction) String() string {
	return fmt.Sprintf("%06X %06X %06X", in.Source, in.Dest, in.Jump)
}

// Encode stores the instruction at pc.
func (in Instruction) Encode(mem *Memory, pc uint32) {
	mem.SetAddress(pc, in.Source)
	mem.SetAddress(pc+ADDRESS_SIZE, in.Dest)
	mem.SetAddress(pc+2*ADDRESS_SIZE, in.Jump)
}

// Append appends the encoded instruction to data.
func (in Instruction) Append(data []byte) []byte {
	for _, addr := range [3]uint32{in.Source, in.Dest, in.Jump} {
		data = append(data, uint8(addr>>16), uint8(addr>>8), uint8(addr))
	}
	return data
}

// Decode reads the instruction at pc.
func Decode(mem *Memory, pc uint32) (in Instruction) {
	in.Source = mem.Address(pc)
	in.Dest = mem.Address(pc + ADDRESS_SIZE)
	in.Jump = mem.Address(pc + 2*ADDRESS_SIZE)
	return
}
