// Package config loads this repo's ambient daemon configuration: the
// initial frequency, tuner gain/PPM defaults, squelch, output sample rate,
// and listen addresses, from an ini file with CLI-flag and environment
// overrides, following the same precedence the teacher's own config
// loader uses.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	// FileEnvVar names the environment variable that overrides the config
	// file location.
	FileEnvVar = "RADIORECEIVER_CONFIG_FILE"

	// DefaultFileLocation is used when neither a CLI flag nor FileEnvVar
	// names a config file.
	DefaultFileLocation = "/etc/radioreceiver/conf.ini"
)

// ErrNoConfigFound is returned by Load when no config file exists at the
// resolved location.
var ErrNoConfigFound = errors.New("config: unable to find valid configuration file")

// NetIface is a network-facing listener's address and optional basic auth,
// reused for both the control and audio-streaming interfaces.
type NetIface struct {
	ListenHost string
	ListenPort int
	BasicAuth  struct {
		Username string
		Password string
	}
}

// Config is the full set of daemon-level settings `cmd/rtlfm` loads at
// startup.
type Config struct {
	CtrlInterface NetIface

	Audio struct {
		SampleRate string
		Device     string
	}

	Tuner struct {
		PPMError int
		Gain     int // tenths of a dB; -1000 means automatic gain
	}

	Params struct {
		DemodMode string // "wbfm", "nbfm", "am", "ssb"
		Freq      string
		Bandwidth string
		MaxF      string
		Squelch   int
		Stereo    bool
		Upper     bool // SSB sideband selection
	}
}

// Defaults returns the built-in configuration used when no config file is
// found, with every field already populated.
func Defaults() Config { return defaults() }

// defaults mirrors the teacher's getDefaults: every field that the ini file
// might not set gets a reasonable value first.
func defaults() Config {
	var cfg Config
	cfg.CtrlInterface = NetIface{ListenHost: "localhost", ListenPort: 8081}
	cfg.Audio.SampleRate = "48k"
	cfg.Tuner.Gain = -1000
	cfg.Params.DemodMode = "wbfm"
	cfg.Params.Freq = "88.5M"
	cfg.Params.Squelch = 0
	cfg.Params.Stereo = true
	return cfg
}

// fileLocation resolves the config file path with the same precedence as
// the teacher: explicit flag, then env var, then the default location.
func fileLocation(cliFlag string) string {
	if cliFlag != "" {
		return cliFlag
	}
	if envFile := os.Getenv(FileEnvVar); envFile != "" {
		return envFile
	}
	return DefaultFileLocation
}

// Load reads the config file (resolved per fileLocation) over top of
// defaults. cliFlag is the -config flag value, or "" if unset.
func Load(cliFlag string) (*Config, error) {
	cfg := defaults()
	if err := ini.MapToWithMapper(&cfg, ini.TitleUnderscore, fileLocation(cliFlag)); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoConfigFound
		}
		return nil, err
	}
	return &cfg, nil
}

// FrequencyHz returns the tuning frequency the config names, in Hz.
func (c *Config) FrequencyHz() (int, error) {
	return ParseFreq(c.Params.Freq)
}

// GainDB returns the manual gain in dB and true, or (0, false) if the
// config requests automatic gain.
func (c *Config) GainDB() (float64, bool) {
	if c.Tuner.Gain <= -1000 {
		return 0, false
	}
	return float64(c.Tuner.Gain) / 10, true
}

// ParseFreq parses a frequency string with an optional K/M suffix (e.g.
// "100M", "950K", "4.5") into Hz, lifted from the teacher's config.freqHz.
func ParseFreq(freqStr string) (int, error) {
	val := strings.ToUpper(strings.TrimSpace(freqStr))

	switch {
	case strings.HasSuffix(val, "K"):
		f64, err := strconv.ParseFloat(strings.TrimSuffix(val, "K"), 64)
		return int(f64 * 1e3), err
	case strings.HasSuffix(val, "M"):
		f64, err := strconv.ParseFloat(strings.TrimSuffix(val, "M"), 64)
		return int(f64 * 1e6), err
	default:
		f64, err := strconv.ParseFloat(val, 64)
		return int(f64), err
	}
}
