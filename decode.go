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
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"hz.tools/sdr"
)

var (
	// ErrUnknownFrame will be returned when a capture's pulse structure
	// does not parse as command frames.
	ErrUnknownFrame = errors.New("rc: unrecognized pulse structure")
)

// pulse symbols produced by envelope classification.
const (
	symLong  = 'L'
	symShort = 'S'
	symIdle  = 'I'
)

// DecoderConfig will define how captures are turned back into commands.
type DecoderConfig struct {
	// SampleRate is the rate the capture was taken at.
	SampleRate uint

	// Threshold is the envelope level that counts as keyed-on. Zero means
	// half the capture's peak envelope, which rides out whatever gain the
	// capture was taken at.
	Threshold float32
}

// Decoder turns IQ captures of the control signal back into the Directions
// that were on the air. It is the inverse of the Encoder/Modulator pair and
// exists for looking at captures, not for driving.
type Decoder struct {
	config DecoderConfig
	period int
	counts map[int]Direction
}

// NewDecoder will create a Decoder from the provided config.
func NewDecoder(cfg DecoderConfig) (*Decoder, error) {
	period, err := periodSamples(cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	counts := map[int]Direction{stopPulses: Stop}
	for d, count := range shortPulses {
		counts[count] = d
	}

	return &Decoder{config: cfg, period: period, counts: counts}, nil
}

// Decode returns the commands found in the capture, one Direction per
// decoded frame: a tiled direction yields one entry per repeat, a stop
// transmission one entry per frame group, and each keyed-off stretch of 10
// or more clock periods one Idle. The capture must start on a frame
// boundary.
func (d *Decoder) Decode(capture sdr.SamplesC64) ([]Direction, error) {
	if len(capture) == 0 {
		return nil, nil
	}

	envelope := make([]float32, len(capture))
	for i := range capture {
		envelope[i] = float32(cmplx.Abs(complex128(capture[i])))
	}

	threshold := d.config.Threshold
	if threshold == 0 {
		var peak float32
		for _, a := range envelope {
			if a > peak {
				peak = a
			}
		}
		threshold = peak / 2
	}

	symbols, err := d.classify(envelope, threshold)
	if err != nil {
		return nil, err
	}
	return d.parse(symbols)
}

// classify run-length encodes the envelope against the threshold and maps
// each run onto a pulse symbol: keyed-on runs of 3 clock periods are long
// pulses, runs of 1 are short, and keyed-off runs of 10 or more periods are
// idle. Shorter keyed-off runs are the spacing inside and between frames
// and carry nothing.
func (d *Decoder) classify(envelope []float32, threshold float32) ([]byte, error) {
	var symbols []byte

	runStart := 0
	runHigh := envelope[0] > threshold
	flush := func(end int) error {
		length := end - runStart
		periods := int(math.Round(float64(length) / float64(d.period)))
		if periods == 0 {
			return fmt.Errorf("%w: %d sample pulse is shorter than the keying clock", ErrUnknownFrame, length)
		}
		if !runHigh {
			if periods >= idlePeriods {
				symbols = append(symbols, symIdle)
			}
			return nil
		}
		switch periods {
		case 3:
			symbols = append(symbols, symLong)
		case 1:
			symbols = append(symbols, symShort)
		default:
			return fmt.Errorf("%w: keyed-on pulse of %d clock periods", ErrUnknownFrame, periods)
		}
		return nil
	}

	for i, a := range envelope {
		if high := a > threshold; high != runHigh {
			if err := flush(i); err != nil {
				return nil, err
			}
			runStart, runHigh = i, high
		}
	}
	if err := flush(len(envelope)); err != nil {
		return nil, err
	}
	return symbols, nil
}

// parse reads frames out of the symbol stream: each frame is 4 long pulses
// followed by a run of shorts whose count addresses the command.
func (d *Decoder) parse(symbols []byte) ([]Direction, error) {
	var out []Direction

	i := 0
	for i < len(symbols) {
		if symbols[i] == symIdle {
			out = append(out, Idle)
			i++
			continue
		}

		for j := 0; j < preambleLen; j++ {
			if i >= len(symbols) || symbols[i] != symLong {
				return nil, fmt.Errorf("%w: frame without a %d long pulse preamble", ErrUnknownFrame, preambleLen)
			}
			i++
		}

		shorts := 0
		for i < len(symbols) && symbols[i] == symShort {
			shorts++
			i++
		}

		dir, ok := d.counts[shorts]
		if !ok {
			return nil, fmt.Errorf("%w: no command has %d short pulses", ErrUnknownFrame, shorts)
		}
		out = append(out, dir)
	}
	return out, nil
}

// vim: foldmethod=marker
