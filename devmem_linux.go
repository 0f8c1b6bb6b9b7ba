//go:build linux && !tinygo

package gpioirq

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// LPC40xx GPIO interrupt block, port 0.
const (
	lpcGPIOIntBase = 0x40028000

	lpcIO0IntStatR = 0x084
	lpcIO0IntStatF = 0x088
	lpcIO0IntClr   = 0x08C
	lpcIO0IntEnR   = 0x090
	lpcIO0IntEnF   = 0x094
)

// DevMemConfig describes where a port's interrupt registers live in
// physical memory.
type DevMemConfig struct {
	// Path is the memory device to map.
	// Defaults to "/dev/mem" if not provided.
	Path string
	// Base is the physical address the offsets are relative to.
	// Defaults to the LPC40xx GPIOINT block if neither Base nor Offsets
	// is provided.
	Base uintptr
	// Offsets gives the byte offset of each register from Base. Two
	// registers may share an offset, as the clear registers do on parts
	// with a single write-1-to-clear register.
	// Defaults to the LPC40xx port 0 layout if not provided.
	Offsets map[Reg]uintptr
}

// DevMemBank accesses a real, memory-mapped interrupt register block.
type DevMemBank struct {
	mem  []byte
	offs [numRegs]uintptr
}

// OpenDevMem maps the register block described by c.
func OpenDevMem(c DevMemConfig) (*DevMemBank, error) {
	if c.Path == "" {
		c.Path = "/dev/mem"
	}
	if c.Offsets == nil {
		if c.Base == 0 {
			c.Base = lpcGPIOIntBase
		}
		c.Offsets = map[Reg]uintptr{
			RegEnableRising:  lpcIO0IntEnR,
			RegEnableFalling: lpcIO0IntEnF,
			RegStatusRising:  lpcIO0IntStatR,
			RegStatusFalling: lpcIO0IntStatF,
			RegClearRising:   lpcIO0IntClr,
			RegClearFalling:  lpcIO0IntClr,
		}
	}

	pageSize := uintptr(os.Getpagesize())
	pageBase := c.Base &^ (pageSize - 1)
	delta := c.Base - pageBase

	b := &DevMemBank{}
	var end uintptr
	for r := Reg(0); r < numRegs; r++ {
		off, ok := c.Offsets[r]
		if !ok {
			return nil, fmt.Errorf("%w: no offset for register %s", ErrPkg, r)
		}
		if off%4 != 0 {
			return nil, fmt.Errorf("%w: register %s offset %#x is not word aligned", ErrPkg, r, off)
		}
		b.offs[r] = delta + off
		if b.offs[r]+4 > end {
			end = b.offs[r] + 4
		}
	}
	size := (end + pageSize - 1) &^ (pageSize - 1)

	f, err := os.OpenFile(c.Path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", c.Path, err)
	}
	defer f.Close()

	b.mem, err = unix.Mmap(int(f.Fd()), int64(pageBase), int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("failed to map %s at %#x: %w", c.Path, pageBase, err)
	}
	return b, nil
}

func (b *DevMemBank) Read(r Reg) uint32 {
	if r >= numRegs {
		return 0
	}
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&b.mem[b.offs[r]])))
}

func (b *DevMemBank) Write(r Reg, v uint32) {
	if r >= numRegs {
		return
	}
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&b.mem[b.offs[r]])), v)
}

// Close unmaps the register block.
func (b *DevMemBank) Close() error {
	if b.mem == nil {
		return nil
	}
	err := unix.Munmap(b.mem)
	b.mem = nil
	return err
}
