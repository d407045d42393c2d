package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"hz.tools/cli"
	"hz.tools/rc"
	"hz.tools/rf"
	"hz.tools/sdr"
)

// keyMap is the drive layout around the s key, plus the corner keys for
// diagonals. Direction keys compose while held; space releases everything.
var keyMap = map[byte]rc.Direction{
	'w': rc.North,
	'x': rc.South,
	'd': rc.East,
	'a': rc.West,
	'q': rc.NorthWest,
	'e': rc.NorthEast,
	'z': rc.SouthWest,
	'c': rc.SouthEast,
}

var rootCmd = &cobra.Command{
	Use:   "rc",
	Short: "drive an OOK remote control vehicle over an SDR",
	Long: `Drive a toy remote control vehicle by keying its OOK command frames
onto a sub-carrier and streaming them out of a transmit-capable SDR.

Keys:
  w/x      forward / reverse          a/d   left / right
  q/e/z/c  diagonals                  keys held together compose
  space    release (sends the stop command once)
  esc      quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()

		centerStr, err := flags.GetString("center-frequency")
		if err != nil {
			return err
		}
		controlStr, err := flags.GetString("control-frequency")
		if err != nil {
			return err
		}
		sampleRate, err := flags.GetUint("tx-sample-rate")
		if err != nil {
			return err
		}
		initialDelay, err := flags.GetDuration("initial-delay")
		if err != nil {
			return err
		}
		interval, err := flags.GetDuration("interval")
		if err != nil {
			return err
		}
		gains, err := flags.GetStringToInt("tx-gain")
		if err != nil {
			return err
		}
		verbose, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		log := slog.New(slog.NewTextHandler(rawWriter{os.Stderr}, &slog.HandlerOptions{
			Level: level,
		}))

		center, err := rf.ParseHz(centerStr)
		if err != nil {
			return err
		}
		control, err := rf.ParseHz(controlStr)
		if err != nil {
			return err
		}

		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("rc: stdin must be a terminal to drive")
		}

		dev, _, _, err := cli.LoadSDR(cmd)
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := dev.SetSampleRate(sampleRate); err != nil {
			return err
		}
		if err := dev.SetCenterFrequency(center); err != nil {
			return err
		}
		if err := setGains(dev, gains, log); err != nil {
			return err
		}

		transmitter, ok := dev.(sdr.Transmitter)
		if !ok {
			return fmt.Errorf("rc: the device can not transmit")
		}

		stream, err := transmitter.StartTx()
		if err != nil {
			return err
		}
		defer stream.Close()

		xmit, err := rc.NewTransmitter(rc.TransmitterConfig{
			Dest:               stream,
			CenterFrequency:    center,
			ControlFrequency:   control,
			InitialDelay:       initialDelay,
			RetransmitInterval: interval,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		state, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err != nil {
			return err
		}
		defer term.Restore(int(os.Stdin.Fd()), state)

		log.Info("on the air",
			"center", center.String(),
			"control", control.String(),
			"sample-rate", sampleRate,
		)

		go readKeys(cancel, xmit, log)

		err = xmit.Run(ctx)
		if errors.Is(err, context.Canceled) {
			log.Info("off the air")
			return nil
		}
		return err
	},
}

// setGains applies the per-stage gains to every stage of the device whose
// name is in the map. Stages the map does not name keep the driver default.
func setGains(dev sdr.Sdr, gains map[string]int, log *slog.Logger) error {
	wanted := make(map[string]int, len(gains))
	for name, gain := range gains {
		wanted[strings.ToUpper(name)] = gain
	}

	stages, err := dev.GetGainStages()
	if err != nil {
		return err
	}
	for _, stage := range stages {
		gain, ok := wanted[strings.ToUpper(stage.String())]
		if !ok {
			continue
		}
		if err := dev.SetGain(stage, float32(gain)); err != nil {
			return err
		}
		log.Debug("gain stage set", "stage", stage.String(), "gain", gain)
	}
	return nil
}

// readKeys feeds raw keyboard input into the Transmitter until the terminal
// closes or the driver quits.
func readKeys(cancel context.CancelFunc, xmit *rc.Transmitter, log *slog.Logger) {
	defer cancel()

	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return
		}

		key := buf[0]
		if key >= 'A' && key <= 'Z' {
			key += 'a' - 'A'
		}

		switch key {
		case 0x03, 0x1b: // ctrl-c, escape
			return
		case ' ':
			if err := xmit.Release(); err != nil {
				return
			}
			log.Debug("release")
		default:
			direction, ok := keyMap[key]
			if !ok {
				continue
			}
			if err := xmit.Press(direction); err != nil {
				return
			}
			log.Debug("press", "direction", direction.String())
		}
	}
}

// rawWriter rewrites line feeds as CRLF so log lines stay aligned while the
// terminal is in raw mode.
type rawWriter struct {
	w io.Writer
}

func (r rawWriter) Write(p []byte) (int, error) {
	if _, err := r.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.Flags()

	flags.String("center-frequency", "25MHz", "frequency to tune the radio to")
	flags.String("control-frequency", "27MHz", "frequency the vehicle listens on")
	flags.Uint("tx-sample-rate", 8000000, "transmit samples per second")
	flags.Duration("initial-delay", 15*time.Millisecond, "delay between a key event and the first write")
	flags.Duration("interval", 2*time.Millisecond, "steady retransmission cadence")
	flags.StringToInt("tx-gain", map[string]int{"VGA": 47, "AMP": 16}, "per-stage transmit gain")
	flags.Bool("verbose", false, "log key events")

	cli.RegisterSDRFlags(rootCmd)
}
