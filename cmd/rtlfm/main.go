// Command rtlfm is the daemon binary: it opens a real RTL2832U dongle
// through radio.Controller, tunes it per flags, and plays decoded audio
// through the host's audio device, optionally teeing a copy to a WAV
// file. Flag and signal handling follow the teacher's own main.go.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/radioreceiver/audiosink"
	"github.com/google/radioreceiver/config"
	"github.com/google/radioreceiver/demod"
	"github.com/google/radioreceiver/radio"
)

const outputSampleRate = 48_000

func main() {
	var (
		cliCfgFile = flag.String("c", "", "configuration file to load parameters from")
		freqFlag   = flag.String("freq", "", "center frequency, e.g. 88.5M (overrides config)")
		modeFlag   = flag.String("mode", "", "WBFM, NBFM, AM, or SSB (overrides config)")
		gainFlag   = flag.Float64("gain", 0, "manual tuner gain in dB (ignored unless -manualgain)")
		manualGain = flag.Bool("manualgain", false, "use -gain instead of automatic gain control")
		ppmFlag    = flag.Int("ppm", 0, "crystal correction in parts per million")
		volumeFlag = flag.Float64("volume", 1.0, "linear output volume")
		recordPath = flag.String("record", "", "also record decoded audio to this WAV file")
	)
	flag.Parse()

	cfg, err := config.Load(*cliCfgFile)
	if err != nil && err != config.ErrNoConfigFound {
		fmt.Fprintf(os.Stderr, "rtlfm: unable to read configuration: %s\n", err)
		os.Exit(1)
	}
	if cfg == nil {
		fmt.Fprintf(os.Stderr, "rtlfm: no configuration file found, using built-in defaults\n")
		defaults := config.Defaults()
		cfg = &defaults
	}

	freqHz, err := resolveFrequency(cfg, *freqFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rtlfm: %s\n", err)
		os.Exit(1)
	}

	sink, err := audiosink.NewOtoSink(outputSampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rtlfm: unable to open audio output: %s\n", err)
		os.Exit(1)
	}

	ctrl := radio.New(radio.OpenRTL2832, sink)
	ctrl.SetOnError(func(err error) {
		fmt.Fprintf(os.Stderr, "rtlfm: controller error: %s\n", err)
	})
	ctrl.SetCorrectionPPM(*ppmFlag)
	ctrl.SetVolume(*volumeFlag)
	if *manualGain {
		ctrl.SetManualGain(*gainFlag)
	} else {
		ctrl.SetAutoGain()
	}
	if desc, err := resolveMode(cfg, *modeFlag); err != nil {
		fmt.Fprintf(os.Stderr, "rtlfm: %s\n", err)
		os.Exit(1)
	} else {
		ctrl.SetMode(desc)
	}

	if *recordPath != "" {
		rec, err := audiosink.NewWavRecorder(*recordPath, outputSampleRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rtlfm: unable to open recording file: %s\n", err)
			os.Exit(1)
		}
		ctrl.StartRecording(rec)
	}

	started := make(chan error, 1)
	ctrl.Start(func(err error) { started <- err })
	if err := <-started; err != nil {
		fmt.Fprintf(os.Stderr, "rtlfm: unable to start: %s\n", err)
		os.Exit(1)
	}
	ctrl.SetFrequency(freqHz)

	handleSignal(os.Interrupt, func() {
		stopped := make(chan error, 1)
		ctrl.Stop(func(err error) { stopped <- err })
		<-stopped
		ctrl.StopRecording()
		ctrl.Shutdown()
		sink.Close()
		os.Exit(0)
	})

	fmt.Fprintf(os.Stderr, "rtlfm: tuned to %d Hz, playing until SIGINT...\n", freqHz)
	select {}
}

func resolveFrequency(cfg *config.Config, flagVal string) (int, error) {
	if flagVal != "" {
		return config.ParseFreq(flagVal)
	}
	return cfg.FrequencyHz()
}

func resolveMode(cfg *config.Config, flagVal string) (demod.Descriptor, error) {
	name := flagVal
	if name == "" {
		name = cfg.Params.DemodMode
	}
	switch name {
	case "", "wbfm", "WBFM":
		return demod.WBFMDescriptor(), nil
	case "nbfm", "NBFM":
		return demod.NBFMDescriptor(75_000), nil
	case "am", "AM":
		return demod.AMDescriptor(10_000), nil
	case "ssb", "SSB":
		return demod.SSBDescriptor(2_700, cfg.Params.Upper), nil
	default:
		return demod.Descriptor{}, fmt.Errorf("unknown mode %q", name)
	}
}

func handleSignal(sig os.Signal, handleFn func()) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, sig)

	go func() {
		<-signalChan
		fmt.Fprintln(os.Stderr, "\nrtlfm: received an interrupt, shutting down...")
		handleFn()
	}()
}
