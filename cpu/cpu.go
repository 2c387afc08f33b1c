/*
 * norisc - 32-bit RISC instruction set interpreter.
 *
 * Copyright 2026, the norisc authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

/*
   Project Oberon RISC: a load/store 32 bit machine with 16 general
   registers, four condition flags (N, Z, C, V) and one auxiliary register H
   used by MUL and DIV to hold the half of the result that doesn't fit in
   the destination register.

   Every instruction is one 32 bit word. The top two bits select the family:

     Register:  0 | q | u | v | a:4 | b:4 | op:4 | .... im:16 or c:4
     Memory:    1 | 0 | u | v | a:4 | b:4 | offset:20
     Branch:    1 | 1 | u | v | inv | cond:3 | .... c:4 or offset:24

   There is no interrupt model and no supervisor mode; the loop below is the
   entire instruction cycle.
*/

package cpu

// Bus is the capability set the CPU needs from its surroundings: word and
// byte loads/stores, plus a separate program fetch (kept distinct from
// ReadWord so a test harness can serve instructions and data from different
// sources). A single concrete implementation backs production use; the
// interface exists so the CPU core can be driven in isolation against a
// mock in tests.
type Bus interface {
	ReadProgram(addr uint32) (uint32, error)
	ReadWord(addr uint32) (uint32, error)
	ReadByte(addr uint32) (uint8, error)
	WriteWord(addr, val uint32) error
	WriteByte(addr uint32, val uint8) error
}

// Register ALU opcodes (bits 19..16 of a register-family instruction).
const (
	opMOV = iota
	opLSL
	opASR
	opROR
	opAND
	opANN
	opIOR
	opXOR
	opADD
	opSUB
	opMUL
	opDIV
	opFAD
	opFSB
	opFML
	opFDV
)

// Branch condition primitives, indexed by bits 26..24.
const (
	condMI = iota // N
	condEQ        // Z
	condCS        // C
	condVS        // V
	condLS        // C or Z
	condLT        // N xor V
	condLE        // (N xor V) or Z
	condT         // always true
)

// CPU holds the full architectural state of one RISC processor: the
// general-purpose register file, the auxiliary register, the four flags and
// the program counter (in word units).
type CPU struct {
	R    [16]uint32
	H    uint32
	PC   uint32
	N, Z, C, V bool

	Bus Bus
}

// New returns a CPU with all state zeroed, PC = 0.
func New(bus Bus) *CPU {
	return &CPU{Bus: bus}
}

// Reset restores the register file and flags to their power-on values,
// matching the boot loader's expectations: PC=0, R12 is the initial
// framework pointer the inner core's runtime convention expects, R14 is the
// stack pointer seeded to stackOrg.
func (c *CPU) Reset(r12, stackOrg uint32) {
	*c = CPU{Bus: c.Bus}
	c.R[12] = r12
	c.R[14] = stackOrg
}

// SetRegister writes a value to a register and updates the Z and N flags
// from it — every ALU and load writeback goes through this single point so
// the Z/N-coherence invariant can never be skipped by accident.
func (c *CPU) SetRegister(reg int, v uint32) {
	c.R[reg] = v
	c.Z = v == 0
	c.N = int32(v) < 0
}

func signExtend(v uint32, bits uint) uint32 {
	shift := 32 - bits
	return uint32(int32(v<<shift) >> shift)
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func msb(v uint32) bool {
	return v&0x80000000 != 0
}

// Step fetches, decodes and executes exactly one instruction. It returns an
// error only when the bus reported a fatal condition (out-of-range memory,
// unknown MMIO slot, and so on); such errors are meant to propagate all the
// way up to process termination, never to be interpreted by the guest.
func (c *CPU) Step() error {
	ir, err := c.Bus.ReadProgram(c.PC)
	if err != nil {
		return err
	}
	c.PC++

	const (
		pbit = 0x80000000
		qbit = 0x40000000
		ubit = 0x20000000
		vbit = 0x10000000
	)

	switch {
	case ir&pbit == 0:
		return c.execRegister(ir, ir&qbit != 0, ir&ubit != 0, ir&vbit != 0)
	case ir&qbit == 0:
		return c.execMemory(ir, ir&ubit != 0, ir&vbit != 0)
	default:
		return c.execBranch(ir, ir&ubit != 0, ir&vbit != 0)
	}
}

func (c *CPU) execRegister(ir uint32, q, u, v bool) error {
	a := int((ir >> 24) & 0xF)
	b := int((ir >> 20) & 0xF)
	op := (ir >> 16) & 0xF
	im := ir & 0xFFFF
	cReg := int(ir & 0xF)

	bVal := c.R[b]
	var cVal uint32
	switch {
	case !q:
		cVal = c.R[cReg]
	case !v:
		cVal = im
	default:
		cVal = 0xFFFF0000 | im
	}

	var aVal uint32
	switch op {
	case opMOV:
		switch {
		case !u:
			aVal = cVal
		case q:
			aVal = cVal << 16
		case v:
			aVal = 0x000000D0 |
				(boolToUint32(c.N) << 31) |
				(boolToUint32(c.Z) << 30) |
				(boolToUint32(c.C) << 29) |
				(boolToUint32(c.V) << 28)
		default:
			aVal = c.H
		}
	case opLSL:
		aVal = bVal << (cVal & 31)
	case opASR:
		aVal = uint32(int32(bVal) >> (cVal & 31))
	case opROR:
		shift := cVal & 31
		aVal = (bVal >> shift) | (bVal << ((32 - shift) & 31))
	case opAND:
		aVal = bVal & cVal
	case opANN:
		aVal = bVal &^ cVal
	case opIOR:
		aVal = bVal | cVal
	case opXOR:
		aVal = bVal ^ cVal
	case opADD:
		r := bVal + cVal
		if u {
			r += boolToUint32(c.C)
		}
		c.C = r < bVal
		c.V = msb((r ^ cVal) & (r ^ bVal))
		aVal = r
	case opSUB:
		r := bVal - cVal
		if u {
			r -= boolToUint32(c.C)
		}
		c.C = r > bVal
		c.V = msb((bVal ^ cVal) & (r ^ bVal))
		aVal = r
	case opMUL:
		if !u {
			tmp := int64(int32(bVal)) * int64(int32(cVal))
			aVal = uint32(tmp)
			c.H = uint32(uint64(tmp) >> 32)
		} else {
			tmp := uint64(bVal) * uint64(cVal)
			aVal = uint32(tmp)
			c.H = uint32(tmp >> 32)
		}
	case opDIV:
		aVal = c.div(bVal, cVal, u)
	case opFAD:
		aVal = fpAdd(bVal, cVal, u, v)
	case opFSB:
		aVal = fpAdd(bVal, cVal^0x80000000, u, v)
	case opFML:
		aVal = fpMul(bVal, cVal)
	case opFDV:
		aVal = fpDiv(bVal, cVal)
	}

	c.SetRegister(a, aVal)
	return nil
}

// div implements DIV: a fast Euclidean path for positive
// divisors, and a bit-exact 32-step non-restoring shift-subtract loop
// (matching the reference hardware) for everything else, including
// division by zero and negative divisors — the guest image depends on the
// specific garbage this loop produces in those cases, so it must not be
// special-cased away.
func (c *CPU) div(bVal, cVal uint32, unsignedMode bool) uint32 {
	if int32(cVal) > 0 {
		if !unsignedMode {
			q := int32(bVal) / int32(cVal)
			r := int32(bVal) % int32(cVal)
			if r < 0 {
				q--
				r += int32(cVal)
			}
			c.H = uint32(r)
			return uint32(q)
		}
		q := bVal / cVal
		c.H = bVal % cVal
		return q
	}

	q, r := nonRestoringDivide(bVal, cVal, unsignedMode)
	c.H = r
	return q
}

// nonRestoringDivide is the 32-step shift-subtract loop used whenever the
// divisor (interpreted as signed) is not strictly positive. It is the
// bit-exact behavior the hardware exhibits for negative divisors and for
// division by zero; there is deliberately no early-out for y == 0.
func nonRestoringDivide(x, y uint32, unsignedMode bool) (quot, rem uint32) {
	signed := !unsignedMode && int32(x) < 0
	x0 := x
	if signed {
		x0 = -x
	}

	rq := uint64(x0)
	for s := 0; s < 32; s++ {
		w0 := uint32(rq >> 31)
		w1 := w0 - y
		if int32(w1) < 0 {
			rq = (uint64(w0) << 32) | uint64((uint32(rq)&0x7FFFFFFF)<<1)
		} else {
			rq = (uint64(w1) << 32) | uint64((uint32(rq)&0x7FFFFFFF)<<1) | 1
		}
	}

	quot = uint32(rq)
	rem = uint32(rq >> 32)
	if signed {
		quot = -quot
		if rem != 0 {
			quot--
			rem = y - rem
		}
	}
	return quot, rem
}

func (c *CPU) execMemory(ir uint32, u, v bool) error {
	a := int((ir >> 24) & 0xF)
	b := int((ir >> 20) & 0xF)
	off := signExtend(ir&0xFFFFF, 20)
	addr := c.R[b] + off

	if !u {
		var aVal uint32
		var err error
		if !v {
			aVal, err = c.Bus.ReadWord(addr)
		} else {
			var byteVal uint8
			byteVal, err = c.Bus.ReadByte(addr)
			aVal = uint32(byteVal)
		}
		if err != nil {
			return err
		}
		c.SetRegister(a, aVal)
		return nil
	}

	if !v {
		return c.Bus.WriteWord(addr, c.R[a])
	}
	return c.Bus.WriteByte(addr, uint8(c.R[a]))
}

func (c *CPU) execBranch(ir uint32, u, v bool) error {
	tIn := (ir>>27)&1 != 0
	var primitive bool
	switch (ir >> 24) & 7 {
	case condMI:
		primitive = c.N
	case condEQ:
		primitive = c.Z
	case condCS:
		primitive = c.C
	case condVS:
		primitive = c.V
	case condLS:
		primitive = c.C || c.Z
	case condLT:
		primitive = c.N != c.V
	case condLE:
		primitive = (c.N != c.V) || c.Z
	case condT:
		primitive = true
	}
	taken := tIn != primitive
	if !taken {
		return nil
	}

	if v {
		c.SetRegister(15, c.PC*4)
	}
	if !u {
		cReg := int(ir & 0xF)
		c.PC = c.R[cReg] / 4
	} else {
		off := signExtend(ir&0xFFFFFF, 24)
		c.PC += off
	}
	return nil
}
