// CPU control primitives: interrupt flag and halt. Implemented in
// cpu_amd64.s for the same reason portio.go's primitives are: CLI/STI/HLT
// have no Go-level equivalent.
package main

func disableInterrupts()
func enableInterrupts()
func hlt()
