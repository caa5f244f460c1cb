// Package rtl2832 drives the RTL2832U USB demodulator chip: device
// bring-up, sample-rate and center-frequency programming, and the bulk
// sample pump. It owns the R820T tuner as a sub-component reached through
// the same USB handle's I2C bridge.
package rtl2832

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/gousb"
	"github.com/google/radioreceiver/internal/r820t"
	"github.com/google/radioreceiver/internal/register"
	"github.com/google/radioreceiver/internal/usbtransport"
)

// USB device identity and transfer endpoints, per spec §6.
const (
	VendorID      = gousb.ID(0x0BDA)
	ProductID2832 = gousb.ID(0x2832)
	ProductID2838 = gousb.ID(0x2838)

	usbInterface = 1
	usbInEndpoint = 1
)

// Chip constants, per spec §4.4.
const (
	xtalFreq       = 28_800_000
	ifFreq         = 3_570_000
	bytesPerSample = 2
)

// USB and SYS registers used during bring-up and buffer reset, per spec §6.
const (
	regSysctl     = 0x2000
	regEPACtl     = 0x2148
	regEPAMaxPkt  = 0x2158
	regDemodCtl   = 0x3000
	regDemodCtl1  = 0x300B
)

// ErrUnsupportedTuner is returned by Open when the R820T is not detected at
// the expected I2C address, per spec §4.4/§7.
var ErrUnsupportedTuner = errors.New("rtl2832: unsupported tuner chip")

// Device owns a single RTL2832U dongle: the USB transport, the register
// layer built on it, and the R820T tuner reached over its I2C bridge.
type Device struct {
	transport *usbtransport.Transport
	regs      *register.Registers
	tuner     *r820t.Tuner

	ppm       int
	manualGainDB *float64 // nil means auto gain

	xtalFreq   int // corrected by ppm
	sampleRate int
}

// Open claims the dongle's interface, runs the demod bring-up sequence,
// probes and initializes the R820T, and applies the initial gain setting.
// ppm is a parts-per-million crystal correction; gainDB, if non-nil,
// selects manual gain in dB instead of the tuner's automatic gain control.
func Open(ppm int, gainDB *float64) (*Device, error) {
	transport, err := usbtransport.Open(VendorID, ProductID2838, usbInterface, usbInEndpoint)
	if err != nil {
		transport, err = usbtransport.Open(VendorID, ProductID2832, usbInterface, usbInEndpoint)
		if err != nil {
			return nil, fmt.Errorf("rtl2832: open: %w", err)
		}
	}

	regs := register.New(transport)

	if err := regs.WriteReg(register.BlockUSB, regSysctl, 0x09, 2); err != nil {
		transport.Close()
		return nil, fmt.Errorf("rtl2832: sysctl prelude: %w", err)
	}
	if err := regs.WriteReg(register.BlockUSB, regEPAMaxPkt, 0x0200, 2); err != nil {
		transport.Close()
		return nil, fmt.Errorf("rtl2832: sysctl prelude: %w", err)
	}
	if err := regs.WriteReg(register.BlockSys, regDemodCtl, 0xE8, 1); err != nil {
		transport.Close()
		return nil, fmt.Errorf("rtl2832: demod_ctl: %w", err)
	}
	if err := regs.WriteReg(register.BlockSys, regDemodCtl1, 0x22, 1); err != nil {
		transport.Close()
		return nil, fmt.Errorf("rtl2832: demod_ctl_1: %w", err)
	}

	for _, w := range demodInitTable {
		if err := regs.WriteDemodReg(w.page, w.addr, w.value, w.length); err != nil {
			transport.Close()
			return nil, fmt.Errorf("rtl2832: demod init table: %w", err)
		}
	}

	corrected := int(math.Floor(float64(xtalFreq) * (1 + float64(ppm)/1e6)))

	if err := regs.OpenI2C(); err != nil {
		transport.Close()
		return nil, fmt.Errorf("rtl2832: open i2c: %w", err)
	}

	probe, err := regs.I2CReadReg(r820t.I2CAddr, 0)
	if err != nil {
		regs.CloseI2C()
		transport.Close()
		return nil, fmt.Errorf("rtl2832: probe tuner: %w", err)
	}
	if probe != 0x69 {
		regs.CloseI2C()
		transport.Close()
		return nil, ErrUnsupportedTuner
	}

	ifOffset := -int(math.Floor(float64(ifFreq) * (1 << 22) / float64(corrected)))
	if err := writeIFOffset(regs, ifOffset); err != nil {
		regs.CloseI2C()
		transport.Close()
		return nil, fmt.Errorf("rtl2832: program if offset: %w", err)
	}

	tuner := r820t.New(regs, corrected)
	if err := tuner.Init(); err != nil {
		regs.CloseI2C()
		transport.Close()
		return nil, fmt.Errorf("rtl2832: init tuner: %w", err)
	}

	if err := regs.CloseI2C(); err != nil {
		transport.Close()
		return nil, fmt.Errorf("rtl2832: close i2c: %w", err)
	}

	dev := &Device{
		transport:    transport,
		regs:         regs,
		tuner:        tuner,
		ppm:          ppm,
		manualGainDB: gainDB,
		xtalFreq:     corrected,
	}

	if err := dev.applyGain(); err != nil {
		transport.Close()
		return nil, fmt.Errorf("rtl2832: apply gain: %w", err)
	}
	return dev, nil
}

// writeIFOffset packs a signed 24-bit IF offset multiplier into demod
// registers 0x19..0x1B, most significant byte first.
func writeIFOffset(regs *register.Registers, offset int) error {
	u := uint32(offset) & 0xFFFFFF
	if err := regs.WriteDemodReg(0, 0x19, (u>>16)&0xFF, 1); err != nil {
		return err
	}
	if err := regs.WriteDemodReg(0, 0x1A, (u>>8)&0xFF, 1); err != nil {
		return err
	}
	return regs.WriteDemodReg(0, 0x1B, u&0xFF, 1)
}

func (d *Device) applyGain() error {
	if d.manualGainDB == nil {
		return d.openI2CThen(d.tuner.SetAutoGain)
	}
	gain := *d.manualGainDB
	return d.openI2CThen(func() error { return d.tuner.SetManualGain(gain) })
}

// openI2CThen opens the I2C bridge, runs fn, and closes the bridge
// regardless of fn's outcome, returning fn's error if both failed's worth
// reporting (fn's error takes priority over a close failure).
func (d *Device) openI2CThen(fn func() error) error {
	if err := d.regs.OpenI2C(); err != nil {
		return err
	}
	err := fn()
	if closeErr := d.regs.CloseI2C(); err == nil {
		err = closeErr
	}
	return err
}

// SetSampleRate programs the resampling ratio and PPM offset for rateHz,
// returning the actual achieved rate (which only rarely equals the
// request, since the ratio is rounded to a multiple of 4).
func (d *Device) SetSampleRate(rateHz int) (int, error) {
	ratio := (int(math.Floor(float64(xtalFreq)*(1<<22)/float64(rateHz)))) &^ 0x3
	actual := int(math.Floor(float64(xtalFreq) * (1 << 22) / float64(ratio)))

	if err := d.regs.WriteDemodReg(0, 0x09, uint32(ratio>>16)&0xFFFF, 2); err != nil {
		return 0, err
	}
	if err := d.regs.WriteDemodReg(0, 0x0B, uint32(ratio)&0xFFFF, 2); err != nil {
		return 0, err
	}

	ppmOffset := -int(math.Floor(float64(d.ppm) * (1 << 24) / 1e6))
	if err := d.regs.WriteDemodReg(0, 0x3E, uint32(ppmOffset>>8)&0xFF, 1); err != nil {
		return 0, err
	}
	if err := d.regs.WriteDemodReg(0, 0x3F, uint32(ppmOffset)&0xFF, 1); err != nil {
		return 0, err
	}

	if err := d.regs.WriteDemodReg(0, 0x01, 0x14, 1); err != nil {
		return 0, err
	}
	if err := d.regs.WriteDemodReg(0, 0x01, 0x10, 1); err != nil {
		return 0, err
	}

	d.sampleRate = actual
	return actual, nil
}

// SetCenterFrequency tunes the R820T to hz, accounting for the RTL2832U's
// intermediate frequency.
func (d *Device) SetCenterFrequency(hz int) error {
	return d.openI2CThen(func() error { return d.tuner.SetFrequency(hz + ifFreq) })
}

// ResetBuffer toggles the USB endpoint's FIFO reset control, per spec §4.4.
func (d *Device) ResetBuffer() error {
	if err := d.regs.WriteReg(register.BlockUSB, regEPACtl, 0x0210, 2); err != nil {
		return err
	}
	return d.regs.WriteReg(register.BlockUSB, regEPACtl, 0x0000, 2)
}

// ReadSamples performs one bulk read of n raw 8-bit IQ samples
// (2n bytes: I, Q interleaved).
func (d *Device) ReadSamples(n int) ([]byte, error) {
	return d.transport.BulkRead(n * bytesPerSample)
}

// SetAutoGain re-enables the tuner's automatic gain control.
func (d *Device) SetAutoGain() error {
	d.manualGainDB = nil
	return d.openI2CThen(d.tuner.SetAutoGain)
}

// SetManualGain disables automatic gain control and fixes the tuner gain
// at gainDB.
func (d *Device) SetManualGain(gainDB float64) error {
	d.manualGainDB = &gainDB
	return d.openI2CThen(func() error { return d.tuner.SetManualGain(gainDB) })
}

// Close parks the tuner and releases the USB interface, per spec §4.4.
func (d *Device) Close() error {
	closeErr := d.openI2CThen(d.tuner.Close)
	if err := d.transport.Close(); err != nil && closeErr == nil {
		closeErr = err
	}
	return closeErr
}
