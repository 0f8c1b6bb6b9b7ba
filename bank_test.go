package gpioirq

import "testing"

func TestMemBankLatchHonorsEnable(t *testing.T) {
	b := NewMemBank()

	if b.Latch(8, RisingEdge) {
		t.Fatalf("Expected edge on a disabled pin not to latch")
	}

	b.Write(RegEnableRising, 1<<8)
	if b.Latch(8, FallingEdge) {
		t.Errorf("Expected falling edge not to latch on a rising-only pin")
	}
	if !b.Latch(8, RisingEdge) {
		t.Errorf("Expected rising edge to latch")
	}
	if got := b.Read(RegStatusRising); got != 1<<8 {
		t.Errorf("Rising status = %#x, want %#x", got, 1<<8)
	}
	if b.Latch(32, RisingEdge) || b.Latch(8, NoEdge) {
		t.Errorf("Expected invalid pin or edge not to latch")
	}
}

func TestMemBankWriteOneToClear(t *testing.T) {
	b := NewMemBank()
	b.Force(RegStatusRising, 0b1011)
	b.Force(RegStatusFalling, 0b0110)

	// Status registers are read-only.
	b.Write(RegStatusRising, 0)
	if got := b.Read(RegStatusRising); got != 0b1011 {
		t.Fatalf("Write to status register took effect: %#b", got)
	}

	b.Write(RegClearRising, 0b0010)
	if got := b.Read(RegStatusRising); got != 0b1001 {
		t.Errorf("Rising status after clear = %#b, want 0b1001", got)
	}
	if got := b.Read(RegStatusFalling); got != 0b0110 {
		t.Errorf("Clearing rising touched falling: %#b", got)
	}

	b.Write(RegClearFalling, ^uint32(0))
	if got := b.Read(RegStatusFalling); got != 0 {
		t.Errorf("Falling status after clear = %#b, want 0", got)
	}
	if got := b.Read(RegClearRising); got != 0 {
		t.Errorf("Clear register should read as zero, got %#x", got)
	}
}

func TestMemBankForceOnlyStatus(t *testing.T) {
	b := NewMemBank()
	b.Force(RegEnableRising, 0xFF)
	if got := b.Read(RegEnableRising); got != 0 {
		t.Errorf("Force must not change enable registers, got %#x", got)
	}
}
