package cpu

import (
	"math/rand"
	"testing"
)

// memBus is a minimal Bus backed by a plain Go slice, used to drive the CPU
// core in isolation from the memory/mmio packages.
type memBus struct {
	words [1024]uint32
}

func (m *memBus) ReadProgram(addr uint32) (uint32, error) { return m.words[addr], nil }
func (m *memBus) ReadWord(addr uint32) (uint32, error)     { return m.words[addr/4], nil }
func (m *memBus) ReadByte(addr uint32) (uint8, error) {
	w := m.words[addr/4]
	return uint8(w >> ((addr & 3) * 8)), nil
}
func (m *memBus) WriteWord(addr, val uint32) error { m.words[addr/4] = val; return nil }
func (m *memBus) WriteByte(addr uint32, val uint8) error {
	shift := (addr & 3) * 8
	w := m.words[addr/4]
	w = (w &^ (0xFF << shift)) | (uint32(val) << shift)
	m.words[addr/4] = w
	return nil
}

func regInstr(u, v, q bool, a, b, op int, imOrC uint32) uint32 {
	var ir uint32
	if u {
		ir |= 0x20000000
	}
	if v {
		ir |= 0x10000000
	}
	if q {
		ir |= 0x40000000
	}
	ir |= uint32(a&0xF) << 24
	ir |= uint32(b&0xF) << 20
	ir |= uint32(op&0xF) << 16
	ir |= imOrC
	return ir
}

func newCPU() (*CPU, *memBus) {
	bus := &memBus{}
	return New(bus), bus
}

func TestSetRegisterZNCoherence(t *testing.T) {
	c, _ := newCPU()
	cases := []uint32{0, 1, 0x80000000, 0xFFFFFFFF, 42}
	for _, v := range cases {
		c.SetRegister(3, v)
		if c.Z != (v == 0) {
			t.Errorf("v=%#x: Z=%v", v, c.Z)
		}
		if c.N != (int32(v) < 0) {
			t.Errorf("v=%#x: N=%v", v, c.N)
		}
	}
}

func TestADDFlags(t *testing.T) {
	c, bus := newCPU()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		b := rng.Uint32()
		cv := rng.Uint32()
		c.R[1] = b
		bus.words[0] = regInstr(false, false, false, 2, 1, opADD, uint32(3))
		c.R[3] = cv
		c.PC = 0
		if err := c.Step(); err != nil {
			t.Fatal(err)
		}
		want := b + cv
		wantC := want < b
		wantV := msb((want ^ cv) & (want ^ b))
		if c.R[2] != want || c.C != wantC || c.V != wantV {
			t.Fatalf("b=%#x c=%#x: got r=%#x C=%v V=%v, want r=%#x C=%v V=%v",
				b, cv, c.R[2], c.C, c.V, want, wantC, wantV)
		}
		if c.Z != (c.R[2] == 0) || c.N != (int32(c.R[2]) < 0) {
			t.Fatalf("Z/N coherence violated after ADD")
		}
	}
}

func TestSUBFlags(t *testing.T) {
	c, bus := newCPU()
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 2000; i++ {
		b := rng.Uint32()
		cv := rng.Uint32()
		c.R[1] = b
		c.R[3] = cv
		bus.words[0] = regInstr(false, false, false, 2, 1, opSUB, uint32(3))
		c.PC = 0
		if err := c.Step(); err != nil {
			t.Fatal(err)
		}
		want := b - cv
		wantC := want > b
		wantV := msb((b ^ cv) & (want ^ b))
		if c.R[2] != want || c.C != wantC || c.V != wantV {
			t.Fatalf("b=%#x c=%#x: got r=%#x C=%v V=%v, want r=%#x C=%v V=%v",
				b, cv, c.R[2], c.C, c.V, want, wantC, wantV)
		}
	}
}

func TestDIVEuclideanPositiveDivisor(t *testing.T) {
	c, bus := newCPU()
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 2000; i++ {
		x := int32(rng.Uint32())
		y := int32(rng.Int31())
		if y <= 0 {
			continue
		}
		c.R[1] = uint32(x)
		c.R[3] = uint32(y)
		bus.words[0] = regInstr(false, false, false, 2, 1, opDIV, uint32(3))
		c.PC = 0
		if err := c.Step(); err != nil {
			t.Fatal(err)
		}
		q := int32(c.R[2])
		r := int32(c.H)
		if r < 0 || r >= y {
			t.Fatalf("x=%d y=%d: remainder %d out of [0,%d)", x, y, r, y)
		}
		if q*y+r != x {
			t.Fatalf("x=%d y=%d: q=%d r=%d -> q*y+r=%d, want %d", x, y, q, r, q*y+r, x)
		}
	}
}

func TestDIVByZeroDoesNotTrap(t *testing.T) {
	c, bus := newCPU()
	c.R[1] = 10
	c.R[3] = 0
	bus.words[0] = regInstr(false, false, false, 2, 1, opDIV, uint32(3))
	if err := c.Step(); err != nil {
		t.Fatalf("division by zero must not fail the step: %v", err)
	}
}

func TestMOVImmediate(t *testing.T) {
	c, bus := newCPU()
	// MOV R0, #0x1234 (q=1,u=0,v=0 -> zero extended immediate)
	bus.words[0] = regInstr(false, false, true, 0, 0, opMOV, 0x1234)
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.R[0] != 0x1234 {
		t.Errorf("got %#x, want 0x1234", c.R[0])
	}
}

func TestMOVHFlags(t *testing.T) {
	c, bus := newCPU()
	c.N, c.Z, c.C, c.V = true, false, true, false
	// MOV R0, flags (u=1,q=0,v=1)
	bus.words[0] = regInstr(true, true, false, 0, 0, opMOV, 0)
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	want := uint32(0x000000D0) | (1 << 31) | (1 << 29)
	if c.R[0] != want {
		t.Errorf("got %#x, want %#x", c.R[0], want)
	}
}

func TestBranchLinkRegisterIsByteUnits(t *testing.T) {
	c, bus := newCPU()
	c.PC = 10
	// Unconditional branch-and-link to register 2 (u=0, v=1, cond=T,
	// t_in clear: setting bit 27 would invert T into "never")
	var ir uint32 = 0xC0000000 // p=1 q=1 -> branch family
	ir |= uint32(condT) << 24
	ir |= 1 << 28 // v: link
	ir |= 2       // c register = R2
	bus.words[10] = ir
	c.R[2] = 40
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.R[15] != 11*4 {
		t.Errorf("R15 = %#x, want %#x (byte units of PC after fetch)", c.R[15], 11*4)
	}
	if c.PC != 10 {
		t.Errorf("PC = %d, want 10 (R2/4)", c.PC)
	}
}

func TestMemoryLoadStoreByte(t *testing.T) {
	c, bus := newCPU()
	c.R[1] = 0x100 // data at word 64, clear of the program words
	c.R[2] = 0xAB
	// store byte: p=1,q=0,u=1,v=1, a=2,b=1, offset=0
	bus.words[0] = 0x80000000 | 0x20000000 | 0x10000000 | (2 << 24) | (1 << 20)
	// load byte: p=1,q=0,u=0,v=1, a=3,b=1, offset=0
	bus.words[1] = 0x80000000 | 0x10000000 | (3 << 24) | (1 << 20)
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if bus.words[0x100/4] != 0xAB {
		t.Errorf("stored word = %#x, want 0xAB in low byte", bus.words[0x100/4])
	}
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.R[3] != 0xAB {
		t.Errorf("loaded byte = %#x, want 0xAB", c.R[3])
	}
}

func TestFPBitExactAddMulDiv(t *testing.T) {
	const one = 0x3F800000
	const two = 0x40000000
	const three = 0x40400000
	const six = 0x40C00000

	if got := fpAdd(one, one, false, false); got != two {
		t.Errorf("1.0+1.0 = %#08x, want %#08x", got, two)
	}
	if got := fpMul(two, three); got != six {
		t.Errorf("2.0*3.0 = %#08x, want %#08x", got, six)
	}
	if got := fpDiv(six, two); got != three {
		t.Errorf("6.0/2.0 = %#08x, want %#08x", got, three)
	}
}
