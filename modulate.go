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
	"fmt"
	"math"

	"hz.tools/rf"
	"hz.tools/sdr"
)

const tau = math.Pi * 2

// ModulatorConfig will define how baseband waveforms are placed onto the
// sub-carrier.
type ModulatorConfig struct {
	// SampleRate is the number of samples per second of both the baseband
	// input and the IQ output.
	SampleRate uint

	// CenterFrequency is the frequency the radio is tuned to.
	CenterFrequency rf.Hz

	// ControlFrequency is the frequency the vehicle's receiver listens on.
	// The difference between this and CenterFrequency is the sub-carrier
	// offset the baseband is shifted by.
	ControlFrequency rf.Hz
}

// Modulator up-converts real baseband waveforms onto the configured
// sub-carrier offset, producing IQ samples in the hardware stream format.
type Modulator struct {
	config    ModulatorConfig
	phaseStep float64
}

// NewModulator will create a Modulator from the provided config. The
// sub-carrier offset must sit inside the sampled bandwidth.
func NewModulator(cfg ModulatorConfig) (*Modulator, error) {
	if cfg.SampleRate == 0 {
		return nil, fmt.Errorf("rc: modulator needs a sample rate")
	}

	offset := float64(cfg.ControlFrequency - cfg.CenterFrequency)
	if math.Abs(offset) > float64(cfg.SampleRate)/2 {
		return nil, fmt.Errorf("rc: control frequency %s is outside the bandwidth around %s",
			cfg.ControlFrequency, cfg.CenterFrequency)
	}

	return &Modulator{
		config:    cfg,
		phaseStep: tau * offset / float64(cfg.SampleRate),
	}, nil
}

// Offset returns the sub-carrier offset the Modulator shifts baseband
// waveforms by.
func (m *Modulator) Offset() rf.Hz {
	return m.config.ControlFrequency - m.config.CenterFrequency
}

// Modulate multiplies each baseband sample by the sub-carrier phasor at
// that sample's time step. The output has the same length as the input, and
// each output sample keeps its input's magnitude; phase starts at zero at
// the head of every buffer.
func (m *Modulator) Modulate(baseband []float32) sdr.SamplesC64 {
	out := make(sdr.SamplesC64, len(baseband))
	for k, amplitude := range baseband {
		phase := m.phaseStep * float64(k)
		out[k] = complex(
			amplitude*float32(math.Cos(phase)),
			amplitude*float32(math.Sin(phase)),
		)
	}
	return out
}

// vim: foldmethod=marker
