package radio

// Device is the subset of *rtl2832.Device the controller depends on.
// Defined here (the consumer) so tests can drive the state machine with a
// fake dongle instead of real USB hardware.
type Device interface {
	SetSampleRate(rateHz int) (int, error)
	SetCenterFrequency(hz int) error
	ResetBuffer() error
	ReadSamples(n int) ([]byte, error)
	SetAutoGain() error
	SetManualGain(gainDB float64) error
	Close() error
}

// DeviceOpener opens a Device, given a PPM correction and an optional
// manual gain in dB (nil selects automatic gain). Production code wires
// this to rtl2832.Open; tests supply a fake.
type DeviceOpener func(ppm int, gainDB *float64) (Device, error)

// AudioSink receives demodulated audio blocks at 48 kHz as the decoder
// produces them. Per spec §6/§9, the real audio sink and WAV recorder are
// external collaborators; only this interface is this repo's concern.
type AudioSink interface {
	Write(left, right []float32) error
}

// RecordingSink additionally accepts a stop signal when recording ends, so
// implementations that own a file handle can flush and close it.
type RecordingSink interface {
	AudioSink
	Close() error
}
