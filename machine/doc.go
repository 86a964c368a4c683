// Package machine implements the BytePusher virtual machine and its
// assembler.
//
// The machine has 16MiB of flat memory and a single instruction: copy the
// byte at one 24-bit address to another, then jump. Each frame executes at
// most 65536 instructions starting from the address stored at
// PROGRAM_COUNTER, stopping early at an instruction that copies an address
// onto itself and jumps to itself. Keys, the framebuffer page and the audio
// page are memory-mapped in the first eight bytes.
//
// The assembler provides a line-oriented source format for BytePusher
// images, with labels, equates, macros, and compile-time expression
// evaluation.
package machine
