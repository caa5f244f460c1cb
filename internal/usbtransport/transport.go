// Package usbtransport wraps a single USB device handle: vendor control
// transfers and bulk reads over one claimed interface and endpoint. It is
// the only part of this repository that talks to libusb.
package usbtransport

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gousb"
)

// Default timeouts applied to control and bulk transfers when the caller
// does not install its own via WithTimeouts. The protocol defines no
// explicit timeout; these are this repository's own choice (spec §5).
const (
	DefaultControlTimeout = 1 * time.Second
	DefaultBulkTimeout    = 2 * time.Second
)

// writeIndexFlag is OR'd into index for vendor writes, per spec §6.
const writeIndexFlag = 0x10

// USB control request type bytes: vendor request, device recipient, IN or
// OUT direction (bit 7). request code is always 0, per spec §6.
const (
	reqTypeVendorDeviceIn  = 0xC0
	reqTypeVendorDeviceOut = 0x40
)

// Error reports a failed USB operation. It is returned verbatim as the
// TransportError kind named in spec §7.
type Error struct {
	Op      string
	Value   uint16
	Index   uint16
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("usbtransport: %s(value=0x%04x, index=0x%04x): %s (code %d)",
		e.Op, e.Value, e.Index, e.Message, e.Code)
}

// Transport owns one interface+endpoint pair on a single USB device.
type Transport struct {
	ctx     *gousb.Context
	dev     *gousb.Device
	cfg     *gousb.Config
	intf    *gousb.Interface
	bulkIn  *gousb.InEndpoint

	controlTimeout time.Duration
	bulkTimeout    time.Duration
}

// Option configures a Transport at construction time.
type Option func(*Transport)

// WithTimeouts overrides the default control/bulk transfer timeouts.
func WithTimeouts(control, bulk time.Duration) Option {
	return func(t *Transport) {
		t.controlTimeout = control
		t.bulkTimeout = bulk
	}
}

// Open finds the first device matching vendor/product, claims
// interfaceNum, and opens inEndpoint as a bulk IN endpoint.
func Open(vendor, product gousb.ID, interfaceNum, inEndpoint int, opts ...Option) (*Transport, error) {
	ctx := gousb.NewContext()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == vendor && desc.Product == product
	})
	if err != nil {
		ctx.Close()
		return nil, &Error{Op: "open", Message: err.Error()}
	}
	if len(devs) == 0 {
		ctx.Close()
		return nil, &Error{Op: "open", Message: "no matching device found"}
	}
	dev := devs[0]
	for _, extra := range devs[1:] {
		extra.Close()
	}

	cfg, err := dev.Config(1)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, &Error{Op: "config", Message: err.Error()}
	}

	intf, err := cfg.Interface(interfaceNum, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, &Error{Op: "claim_interface", Message: err.Error()}
	}

	bulkIn, err := intf.InEndpoint(inEndpoint)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, &Error{Op: "bulk_endpoint", Message: err.Error()}
	}

	t := &Transport{
		ctx:            ctx,
		dev:            dev,
		cfg:            cfg,
		intf:           intf,
		bulkIn:         bulkIn,
		controlTimeout: DefaultControlTimeout,
		bulkTimeout:    DefaultBulkTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// ControlRead performs a vendor/device/IN control transfer, request 0.
func (t *Transport) ControlRead(value, index uint16, length int) ([]byte, error) {
	buf := make([]byte, length)
	n, err := t.controlTransfer(reqTypeVendorDeviceIn, value, index, buf)
	if err != nil {
		return nil, &Error{Op: "control_read", Value: value, Index: index, Message: err.Error()}
	}
	return buf[:n], nil
}

// ControlWrite performs a vendor/device/OUT control transfer, request 0,
// OR'ing the write flag into index per spec §6.
func (t *Transport) ControlWrite(value, index uint16, data []byte) error {
	_, err := t.controlTransfer(reqTypeVendorDeviceOut, value, index|writeIndexFlag, data)
	if err != nil {
		return &Error{Op: "control_write", Value: value, Index: index, Message: err.Error()}
	}
	return nil
}

func (t *Transport) controlTransfer(reqType uint8, value, index uint16, data []byte) (int, error) {
	t.dev.ControlTimeout = t.controlTimeout
	return t.dev.Control(reqType, 0, value, index, data)
}

// BulkRead reads length bytes from the claimed bulk IN endpoint.
func (t *Transport) BulkRead(length int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.bulkTimeout)
	defer cancel()
	buf := make([]byte, length)
	n, err := t.bulkIn.ReadContext(ctx, buf)
	if err != nil {
		return nil, &Error{Op: "bulk_read", Message: err.Error()}
	}
	return buf[:n], nil
}

// ReleaseInterface releases the claimed interface without closing the
// device, so it can be re-claimed later in the same process lifetime.
func (t *Transport) ReleaseInterface() {
	if t.intf != nil {
		t.intf.Close()
		t.intf = nil
	}
}

// Close releases the interface, config, device and libusb context.
func (t *Transport) Close() error {
	t.ReleaseInterface()
	if t.cfg != nil {
		t.cfg.Close()
		t.cfg = nil
	}
	if t.dev != nil {
		t.dev.Close()
		t.dev = nil
	}
	if t.ctx != nil {
		t.ctx.Close()
		t.ctx = nil
	}
	return nil
}
