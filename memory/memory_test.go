package memory

import "testing"

func TestWordRoundTrip(t *testing.T) {
	var m RAM
	for _, addr := range []uint32{0, 4, 8, 1000, Bytes - 4} {
		for _, v := range []uint32{0, 1, 0xFFFFFFFF, 0x12345678} {
			if err := m.WriteWord(addr, v); err != nil {
				t.Fatalf("WriteWord(%#x): %v", addr, err)
			}
			got, err := m.ReadWord(addr)
			if err != nil {
				t.Fatalf("ReadWord(%#x): %v", addr, err)
			}
			if got != v {
				t.Errorf("addr %#x: got %#x, want %#x", addr, got, v)
			}
		}
	}
}

func TestByteOnlyTouchesItsLane(t *testing.T) {
	var m RAM
	if err := m.WriteWord(0, 0x11223344); err != nil {
		t.Fatal(err)
	}
	if err := m.WriteByte(1, 0xAA); err != nil {
		t.Fatal(err)
	}
	got, _ := m.ReadWord(0)
	if want := uint32(0x1122AA44); got != want {
		t.Errorf("got %#08x, want %#08x", got, want)
	}
}

func TestByteLittleEndianLayout(t *testing.T) {
	var m RAM
	_ = m.WriteWord(0, 0x04030201)
	for i := uint32(0); i < 4; i++ {
		b, err := m.ReadByte(i)
		if err != nil {
			t.Fatal(err)
		}
		if want := uint8(i + 1); b != want {
			t.Errorf("byte %d: got %d, want %d", i, b, want)
		}
	}
}

func TestOutOfRange(t *testing.T) {
	var m RAM
	if _, err := m.ReadWord(Bytes); err == nil {
		t.Error("expected error reading at top of RAM")
	}
	if err := m.WriteWord(Bytes-2, 1); err == nil {
		t.Error("expected error writing unaligned-but-out-of-range word")
	}
}

func TestInRangeNoWraparound(t *testing.T) {
	if !InRange(Bytes, 0) {
		t.Error("zero-size access at top of RAM should be in range")
	}
	if InRange(Bytes, 1) {
		t.Error("one-byte access at top of RAM should be out of range")
	}
	if InRange(0xFFFFFFFF, 8) {
		t.Error("overflowing range must not be reported in range")
	}
}

func TestZeroRangeAndBulkCopy(t *testing.T) {
	var m RAM
	data := []byte{1, 2, 3, 4, 5}
	if err := m.WriteBytes(100, data); err != nil {
		t.Fatal(err)
	}
	got, err := m.ReadBytes(100, 5)
	if err != nil {
		t.Fatal(err)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("byte %d: got %d, want %d", i, got[i], data[i])
		}
	}
	if err := m.ZeroRange(102, 3); err != nil {
		t.Fatal(err)
	}
	got, _ = m.ReadBytes(100, 5)
	want := []byte{1, 2, 0, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("after zero: byte %d: got %d, want %d", i, got[i], want[i])
		}
	}
}
