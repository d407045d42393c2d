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
)

var (
	// ErrClockRate will be returned when the sample rate does not come out
	// to a whole number of samples per keying clock period.
	ErrClockRate = errors.New("rc: sample rate is not a multiple of the keying clock")
)

const (
	// clockPeriod is the on/off keying clock, in seconds. Every pulse the
	// vehicle understands is built from whole multiples of this period.
	clockPeriod = 0.0005

	// highLevel is the keyed-on amplitude. The keyed-off amplitude is zero.
	highLevel float32 = 0.95

	// preambleLen is the number of long pulses in front of every frame.
	preambleLen = 4

	// stopRepeats is how many times the stop frame group is repeated.
	stopRepeats = 15

	// stopPulses is the short pulse count of one stop frame group.
	stopPulses = 4

	// idlePeriods is the length of the idle frame, in clock periods, all
	// of them keyed off.
	idlePeriods = 10
)

// shortPulses is the address of each direction of travel: the count of
// short pulses that follow the preamble, not the pulses' bit pattern, is
// what selects the motion.
var shortPulses = map[Direction]int{
	North:     40,
	NorthEast: 46,
	NorthWest: 52,
	South:     10,
	SouthEast: 34,
	SouthWest: 28,
	West:      58,
	East:      64,
}

// periodSamples returns the number of samples in one keying clock period at
// the given sample rate, or ErrClockRate when the period is not a whole
// number of samples.
func periodSamples(sampleRate uint) (int, error) {
	period := float64(sampleRate) * clockPeriod
	n := math.Round(period)
	if n < 1 || math.Abs(period-n) > 1e-6 {
		return 0, fmt.Errorf("%w: %d samples per second", ErrClockRate, sampleRate)
	}
	return int(n), nil
}

// Encoder turns Directions into their baseband on/off keyed waveforms.
type Encoder struct {
	sampleRate uint
	period     int
}

// NewEncoder will create an Encoder for the given sample rate. The rate
// must divide the keying clock into whole samples, checked here once so
// that encoding can not produce a torn pulse later.
func NewEncoder(sampleRate uint) (*Encoder, error) {
	period, err := periodSamples(sampleRate)
	if err != nil {
		return nil, err
	}
	return &Encoder{sampleRate: sampleRate, period: period}, nil
}

// SampleRate returns the sample rate the Encoder was created with.
func (e *Encoder) SampleRate() uint {
	return e.sampleRate
}

// Encode returns the baseband waveform for the given Direction. Directions
// of travel become a preamble of 4 long pulses followed by that direction's
// short pulse count, Stop becomes 15 repeats of the 4 long + 4 short group,
// and Idle is keyed off for 10 clock periods. The returned buffer is fresh
// on every call and is never written to again.
func (e *Encoder) Encode(d Direction) ([]float32, error) {
	switch d {
	case Idle:
		return make([]float32, idlePeriods*e.period), nil
	case Stop:
		buf := make([]float32, 0, stopRepeats*e.frameLen(stopPulses))
		for i := 0; i < stopRepeats; i++ {
			buf = e.appendFrame(buf, stopPulses)
		}
		return buf, nil
	}

	count, ok := shortPulses[d]
	if !ok {
		return nil, fmt.Errorf("rc: encode: %w: %v", ErrInvalidCommand, d)
	}
	return e.appendFrame(make([]float32, 0, e.frameLen(count)), count), nil
}

// frameLen is the sample count of one frame with the given number of short
// pulses: long pulses span 4 clock periods, shorts span 2.
func (e *Encoder) frameLen(shorts int) int {
	return (preambleLen*4 + shorts*2) * e.period
}

func (e *Encoder) appendFrame(buf []float32, shorts int) []float32 {
	for i := 0; i < preambleLen; i++ {
		buf = e.appendPulse(buf, 3)
	}
	for i := 0; i < shorts; i++ {
		buf = e.appendPulse(buf, 1)
	}
	return buf
}

// appendPulse appends highPeriods keyed-on clock periods followed by one
// keyed-off period.
func (e *Encoder) appendPulse(buf []float32, highPeriods int) []float32 {
	for i := 0; i < highPeriods*e.period; i++ {
		buf = append(buf, highLevel)
	}
	for i := 0; i < e.period; i++ {
		buf = append(buf, 0)
	}
	return buf
}

// vim: foldmethod=marker
