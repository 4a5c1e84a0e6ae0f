// Package litepcie provides register-level access to a LitePCIe-based M2SDR
// board through its /dev/m2sdrN character device. It exposes the mapped CSR
// space as 32-bit reads/writes plus the two serial masters implemented in
// the gateware: the AD9361 SPI master and the SI5351 I2C master.
package litepcie

import (
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// RegIO is the narrow register transaction seam the rest of the code
// programs against. *Device implements it over the mmap'd BAR; tests
// implement it over a map.
type RegIO interface {
	ReadL(addr uint32) uint32
	WriteL(addr, value uint32)
}

// csrWindowSize is the span of BAR0 covered by the CSR map.
const csrWindowSize = 0x10000

// Device is an open M2SDR board. The handle is exclusive for the lifetime
// of the process; concurrent access from a second process is undefined.
type Device struct {
	file *os.File
	csr  []byte
}

var _ RegIO = (*Device)(nil)

// DevicePath returns the character device path for the given board index.
func DevicePath(num int) string {
	return fmt.Sprintf("/dev/m2sdr%d", num)
}

// Open opens the board's character device and maps its CSR window.
// An open failure is a transport fault: the board is absent, the driver is
// not loaded, or another process holds the device.
func Open(num int) (*Device, error) {
	path := DevicePath(num)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	csr, err := unix.Mmap(int(f.Fd()), 0, csrWindowSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap CSR window of %s: %w", path, err)
	}
	return &Device{file: f, csr: csr}, nil
}

// ReadL reads a 32-bit CSR.
func (d *Device) ReadL(addr uint32) uint32 {
	return *(*uint32)(unsafe.Pointer(&d.csr[addr]))
}

// WriteL writes a 32-bit CSR.
func (d *Device) WriteL(addr, value uint32) {
	*(*uint32)(unsafe.Pointer(&d.csr[addr])) = value
}

// ReadSamples captures n interleaved int16 IQ samples from the RX DMA
// stream. Used for diagnostics only; sustained streaming is out of scope.
func (d *Device) ReadSamples(n int) ([]int16, error) {
	buf := make([]byte, n*2)
	read := 0
	for read < len(buf) {
		m, err := d.file.Read(buf[read:])
		if err != nil {
			return nil, fmt.Errorf("read DMA stream: %w", err)
		}
		read += m
	}
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(buf[2*i:]))
	}
	return samples, nil
}

// Close unmaps the CSR window and releases the device.
func (d *Device) Close() error {
	var firstErr error
	if d.csr != nil {
		if err := unix.Munmap(d.csr); err != nil {
			firstErr = err
		}
		d.csr = nil
	}
	if d.file != nil {
		if err := d.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.file = nil
	}
	return firstErr
}
