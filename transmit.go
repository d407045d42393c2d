// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2023
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

package rc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hz.tools/rf"
	"hz.tools/sdr"
)

var (
	// ErrClosed will be returned by Press and Release once the Transmitter's
	// Run loop has returned.
	ErrClosed = errors.New("rc: transmitter is not running")
)

const (
	// DefaultInitialDelay is the delay between a key event and the first
	// write of the new command.
	DefaultInitialDelay = 15 * time.Millisecond

	// DefaultRetransmitInterval is the steady cadence the current command
	// is rewritten to the stream on. The vehicle's receiver holds a motion
	// only while the command keeps arriving.
	DefaultRetransmitInterval = 2 * time.Millisecond

	// movingRepeat is how many times a command frame is tiled before
	// modulation. Directions and the idle frame go out tiled; the one-shot
	// stop frame goes out as-is.
	movingRepeat = 4
)

// TransmitterConfig will define how the Transmitter keeps commands on the
// air. All of it is fixed at construction.
type TransmitterConfig struct {
	// Dest is the transmit stream samples are written to. It must carry
	// complex64 samples, and its sample rate sets the rate all waveforms
	// are generated at.
	Dest sdr.Writer

	// CenterFrequency is the frequency the radio is tuned to.
	CenterFrequency rf.Hz

	// ControlFrequency is the frequency the vehicle's receiver listens on.
	ControlFrequency rf.Hz

	// InitialDelay is the delay between a key event and the first write of
	// the new command. Zero means DefaultInitialDelay. Both delays are
	// tuning knobs for the hardware buffer, not part of the protocol.
	InitialDelay time.Duration

	// RetransmitInterval is the steady cadence between rewrites of the
	// current command. Zero means DefaultRetransmitInterval. The interval
	// is a lower bound: a tick is armed only after the previous write
	// loop returns.
	RetransmitInterval time.Duration
}

type txState int

const (
	stateIdle txState = iota
	stateMoving
	stateStopping
)

type txEvent struct {
	press bool
	dir   Direction
	errc  chan error
}

// Transmitter owns the transmit stream and keeps the current command
// continuously on the air. Key presses and releases swap which command that
// is; everything else is retransmission of an already-built buffer.
type Transmitter struct {
	config TransmitterConfig

	encoder   *Encoder
	modulator *Modulator

	// stop is built once here and reused for the life of the session.
	stop sdr.SamplesC64

	// current is rebuilt on every command change and only read in between.
	current sdr.SamplesC64
	held    Direction
	state   txState

	events chan txEvent
	done   chan struct{}
}

// NewTransmitter will create a Transmitter writing to cfg.Dest. The stop
// command's waveform is built here, up front; the Transmitter starts out
// idle and transmits nothing until Run.
func NewTransmitter(cfg TransmitterConfig) (*Transmitter, error) {
	if cfg.Dest == nil {
		return nil, fmt.Errorf("rc: transmitter needs a destination stream")
	}
	if cfg.Dest.SampleFormat() != sdr.SampleFormatC64 {
		return nil, sdr.ErrSampleFormatMismatch
	}
	if cfg.InitialDelay == 0 {
		cfg.InitialDelay = DefaultInitialDelay
	}
	if cfg.RetransmitInterval == 0 {
		cfg.RetransmitInterval = DefaultRetransmitInterval
	}

	encoder, err := NewEncoder(cfg.Dest.SampleRate())
	if err != nil {
		return nil, err
	}

	modulator, err := NewModulator(ModulatorConfig{
		SampleRate:       cfg.Dest.SampleRate(),
		CenterFrequency:  cfg.CenterFrequency,
		ControlFrequency: cfg.ControlFrequency,
	})
	if err != nil {
		return nil, err
	}

	t := &Transmitter{
		config:    cfg,
		encoder:   encoder,
		modulator: modulator,
		events:    make(chan txEvent),
		done:      make(chan struct{}),
	}

	stop, err := encoder.Encode(Stop)
	if err != nil {
		return nil, err
	}
	t.stop = modulator.Modulate(stop)

	if err := t.setCommand(Idle); err != nil {
		return nil, err
	}
	return t, nil
}

// setCommand rebuilds the current buffer for the given command, tiled
// movingRepeat times before modulation.
func (t *Transmitter) setCommand(d Direction) error {
	baseband, err := t.encoder.Encode(d)
	if err != nil {
		return err
	}
	tiled := make([]float32, 0, movingRepeat*len(baseband))
	for i := 0; i < movingRepeat; i++ {
		tiled = append(tiled, baseband...)
	}
	t.current = t.modulator.Modulate(tiled)
	return nil
}

// Press tells the Transmitter a direction of travel is being held.
// Directions pressed while another is held compose with it, so pressing
// East while North is held steers into NorthEast. The new command is on the
// air once the configured initial delay passes. Press is safe to call from
// any goroutine while Run is active.
func (t *Transmitter) Press(d Direction) error {
	if !d.Moving() {
		return fmt.Errorf("rc: press: %w: %v", ErrInvalidCommand, d)
	}
	return t.send(txEvent{press: true, dir: d})
}

// Release tells the Transmitter all input is released. If the vehicle was
// moving, the stop command goes out exactly once and the Transmitter drops
// back to keying the idle frame; a Release while already idle does nothing.
// Release is safe to call from any goroutine while Run is active.
func (t *Transmitter) Release() error {
	return t.send(txEvent{})
}

func (t *Transmitter) send(ev txEvent) error {
	ev.errc = make(chan error, 1)
	select {
	case t.events <- ev:
	case <-t.done:
		return ErrClosed
	}
	select {
	case err := <-ev.errc:
		return err
	case <-t.done:
		return ErrClosed
	}
}

// Run drives the transmit loop until ctx is done or a write fails. All
// encoding, modulation and stream writes happen here, on one goroutine; a
// pending retransmission is always cancelled before the next is armed, so
// at most one is ever outstanding. Each write runs to completion before the
// next event is looked at, which makes the cadence a floor, not a promise.
// Run may be called once.
func (t *Transmitter) Run(ctx context.Context) error {
	defer close(t.done)

	timer := time.NewTimer(t.config.InitialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-t.events:
			err := t.handle(ev, timer)
			ev.errc <- err
			if err != nil {
				return err
			}

		case <-timer.C:
			if _, err := WriteFull(t.config.Dest, t.current); err != nil {
				return err
			}
			timer.Reset(t.config.RetransmitInterval)
		}
	}
}

func (t *Transmitter) handle(ev txEvent, timer *time.Timer) error {
	if ev.press {
		stopTimer(timer)

		d := ev.dir
		if t.state == stateMoving {
			d = t.held.Compose(d)
		}
		if err := t.setCommand(d); err != nil {
			return err
		}
		t.held = d
		t.state = stateMoving
		timer.Reset(t.config.InitialDelay)
		return nil
	}

	if t.state != stateMoving {
		return nil
	}

	stopTimer(timer)
	t.state = stateStopping
	if _, err := WriteFull(t.config.Dest, t.stop); err != nil {
		return err
	}

	if err := t.setCommand(Idle); err != nil {
		return err
	}
	t.held = 0
	t.state = stateIdle
	timer.Reset(t.config.RetransmitInterval)
	return nil
}

// stopTimer stops the timer and drains a tick that already fired, so a
// following Reset arms a clean timer.
func stopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

// vim: foldmethod=marker
