package mmio

import "testing"

type fakeHost struct {
	millis  uint32
	console []uint8
	written []uint8
	leds    []uint8
}

func (h *fakeHost) Millis() uint32 { return h.millis }
func (h *fakeHost) ReadConsoleByte() (uint8, error) {
	if len(h.console) == 0 {
		return 0, nil
	}
	b := h.console[0]
	h.console = h.console[1:]
	return b, nil
}
func (h *fakeHost) WriteConsoleByte(b uint8) error {
	h.written = append(h.written, b)
	return nil
}
func (h *fakeHost) WriteLEDs(bits uint8) { h.leds = append(h.leds, bits) }

func addrOfSlot(slot uint32) uint32 {
	return uint32(-int32(slot * 4))
}

func TestSlotArithmetic(t *testing.T) {
	if got := Slot(addrOfSlot(1)); got != 1 {
		t.Errorf("slot 1 address decoded to %d", got)
	}
	if got := Slot(addrOfSlot(16)); got != 16 {
		t.Errorf("slot 16 address decoded to %d", got)
	}
}

func TestIsMMIO(t *testing.T) {
	if IsMMIO(0) || IsMMIO(100) {
		t.Error("non-negative addresses must route to RAM")
	}
	if !IsMMIO(addrOfSlot(1)) {
		t.Error("negative address must route to MMIO")
	}
}

func TestArgAndResultRoundTrip(t *testing.T) {
	var r Registers
	host := &fakeHost{}
	if err := r.WriteWord(host, addrOfSlot(SlotSysArg0), 0x11); err != nil {
		t.Fatal(err)
	}
	if err := r.WriteWord(host, addrOfSlot(SlotSysArg1), 0x22); err != nil {
		t.Fatal(err)
	}
	r.Result = 0x33
	for slot, want := range map[uint32]uint32{SlotSysArg0: 0x11, SlotSysArg1: 0x22, SlotSysResult: 0x33} {
		got, err := r.ReadWord(host, addrOfSlot(slot))
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("slot %d: got %#x want %#x", slot, got, want)
		}
	}
}

func TestSwitchesConstant(t *testing.T) {
	var r Registers
	got, err := r.ReadWord(&fakeHost{}, addrOfSlot(SlotSwitches))
	if err != nil || got != Switches {
		t.Errorf("switches read %#x, err %v", got, err)
	}
}

func TestConsoleAndClock(t *testing.T) {
	var r Registers
	host := &fakeHost{millis: 12345, console: []uint8{'X'}}
	got, err := r.ReadWord(host, addrOfSlot(SlotConsole))
	if err != nil || got != 'X' {
		t.Errorf("console read got %#x err %v", got, err)
	}
	if err := r.WriteWord(host, addrOfSlot(SlotConsole), 'Y'); err != nil {
		t.Fatal(err)
	}
	if len(host.written) != 1 || host.written[0] != 'Y' {
		t.Errorf("console write = %v", host.written)
	}
	clk, err := r.ReadWord(host, addrOfSlot(SlotClock))
	if err != nil || clk != 12345 {
		t.Errorf("clock read %#x err %v", clk, err)
	}
}

func TestLEDsLatchesValue(t *testing.T) {
	var r Registers
	host := &fakeHost{}
	if err := r.WriteWord(host, addrOfSlot(SlotLEDs), 0xAA); err != nil {
		t.Fatal(err)
	}
	if len(host.leds) != 1 || host.leds[0] != 0xAA {
		t.Errorf("leds = %v", host.leds)
	}
}

func TestUnknownSlotsAreFatal(t *testing.T) {
	var r Registers
	host := &fakeHost{}
	if _, err := r.ReadWord(host, addrOfSlot(5)); err == nil {
		t.Error("expected error reading unknown slot")
	}
	if err := r.WriteWord(host, addrOfSlot(5), 1); err == nil {
		t.Error("expected error writing unknown slot")
	}
	if err := r.WriteWord(host, addrOfSlot(SlotSwitches), 1); err == nil {
		t.Error("switches is read-only, write must fail")
	}
}
