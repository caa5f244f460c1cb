package usbtransport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Transport itself wraps concrete *gousb.Device/*gousb.Context handles and
// needs real (or at least attached) USB hardware to construct, exactly
// like the teacher's own dongleState, which is likewise untested without
// hardware. Error formatting is the only pure part of this package.

func TestErrorMessageIncludesOpAndAddresses(t *testing.T) {
	err := &Error{Op: "control_write", Value: 0x0102, Index: 0x0203, Code: -1, Message: "timeout"}
	assert.Contains(t, err.Error(), "control_write")
	assert.Contains(t, err.Error(), "0x0102")
	assert.Contains(t, err.Error(), "0x0203")
	assert.Contains(t, err.Error(), "timeout")
}

func TestDefaultTimeoutsArePositive(t *testing.T) {
	assert.Greater(t, DefaultControlTimeout, time.Duration(0))
	assert.Greater(t, DefaultBulkTimeout, time.Duration(0))
}
