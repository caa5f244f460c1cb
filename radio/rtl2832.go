package radio

import (
	"errors"
	"strings"

	"github.com/google/radioreceiver/internal/r820t"
	"github.com/google/radioreceiver/internal/rtl2832"
	"github.com/google/radioreceiver/internal/usbtransport"
)

// OpenRTL2832 is the production DeviceOpener: it opens a real RTL2832U
// dongle over USB. Tests use a fake DeviceOpener instead.
func OpenRTL2832(ppm int, gainDB *float64) (Device, error) {
	dev, err := rtl2832.Open(ppm, gainDB)
	if err != nil {
		return nil, classifyDeviceError(err)
	}
	return dev, nil
}

// classifyDeviceError maps the raw errors the internal/rtl2832 Device can
// return — both from Open and from later calls like SetCenterFrequency —
// onto this package's typed error kinds (spec §7), so callers can
// discriminate them with errors.As instead of string-matching.
func classifyDeviceError(err error) error {
	switch {
	case errors.Is(err, rtl2832.ErrUnsupportedTuner):
		return &UnsupportedTunerError{Err: err}
	case errors.Is(err, r820t.ErrPLLNotLocked):
		return &PllNotLockedError{Err: err}
	}

	var transportErr *usbtransport.Error
	if errors.As(err, &transportErr) {
		if transportErr.Op == "open" {
			switch {
			case strings.Contains(transportErr.Message, "no matching device found"):
				return &DeviceNotFoundError{Err: err}
			case isPermissionMessage(transportErr.Message):
				return &PermissionDeniedError{Err: err}
			}
		}
		return &TransportError{Err: err}
	}

	return err
}

// isPermissionMessage matches the wording libusb/gousb use for a failed
// open caused by insufficient device permissions, rather than depending on
// an error-code field usbtransport.Error does not itself carry.
func isPermissionMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "access") || strings.Contains(lower, "permission") || strings.Contains(lower, "denied")
}
