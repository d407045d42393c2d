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
	"math"
	"math/cmplx"
	"testing"

	"hz.tools/rc/internal/spectrum"
	"hz.tools/rf"
)

func TestModulateQuarterTurns(t *testing.T) {
	// a 2 MHz offset at 8 MSps advances the phasor a quarter turn per
	// sample
	modulator, err := NewModulator(ModulatorConfig{
		SampleRate:       8000000,
		CenterFrequency:  25 * rf.MHz,
		ControlFrequency: 27 * rf.MHz,
	})
	if err != nil {
		t.Fatal(err)
	}

	out := modulator.Modulate([]float32{1, 1, 1, 1, 1, 1, 1, 1})

	want := []complex64{
		complex(1, 0), complex(0, 1), complex(-1, 0), complex(0, -1),
		complex(1, 0), complex(0, 1), complex(-1, 0), complex(0, -1),
	}
	for k := range want {
		if d := cmplx.Abs(complex128(out[k]) - complex128(want[k])); d > 1e-5 {
			t.Fatalf("sample %d = %v, want %v", k, out[k], want[k])
		}
	}
}

func TestModulatePreservesMagnitudeAndLength(t *testing.T) {
	encoder, err := NewEncoder(8000000)
	if err != nil {
		t.Fatal(err)
	}
	modulator, err := NewModulator(ModulatorConfig{
		SampleRate:       8000000,
		CenterFrequency:  25 * rf.MHz,
		ControlFrequency: 27 * rf.MHz,
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, d := range []Direction{North, SouthWest, Stop, Idle} {
		baseband, err := encoder.Encode(d)
		if err != nil {
			t.Fatal(err)
		}

		out := modulator.Modulate(baseband)
		if len(out) != len(baseband) {
			t.Fatalf("%v: len = %d, want %d", d, len(out), len(baseband))
		}
		for k := range out {
			mag := cmplx.Abs(complex128(out[k]))
			if math.Abs(mag-float64(baseband[k])) > 1e-6 {
				t.Fatalf("%v: |sample %d| = %v, want %v", d, k, mag, baseband[k])
			}
		}
	}
}

func TestModulateZeroOffset(t *testing.T) {
	modulator, err := NewModulator(ModulatorConfig{
		SampleRate:       8000000,
		CenterFrequency:  25 * rf.MHz,
		ControlFrequency: 25 * rf.MHz,
	})
	if err != nil {
		t.Fatal(err)
	}

	in := []float32{0, 0.95, 0.5, 0}
	for k, s := range modulator.Modulate(in) {
		if real(s) != in[k] || imag(s) != 0 {
			t.Fatalf("sample %d = %v, want (%v+0i)", k, s, in[k])
		}
	}
}

func TestModulateOffset(t *testing.T) {
	modulator, err := NewModulator(ModulatorConfig{
		SampleRate:       8000000,
		CenterFrequency:  25 * rf.MHz,
		ControlFrequency: 27 * rf.MHz,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := modulator.Offset(); got != 2*rf.MHz {
		t.Fatalf("Offset() = %v, want 2MHz", got)
	}
}

func TestModulatedFrameSitsOnSubcarrier(t *testing.T) {
	const sampleRate uint = 8000000

	encoder, err := NewEncoder(sampleRate)
	if err != nil {
		t.Fatal(err)
	}
	baseband, err := encoder.Encode(North)
	if err != nil {
		t.Fatal(err)
	}

	modulator, err := NewModulator(ModulatorConfig{
		SampleRate:       sampleRate,
		CenterFrequency:  25 * rf.MHz,
		ControlFrequency: 27 * rf.MHz,
	})
	if err != nil {
		t.Fatal(err)
	}
	capture := modulator.Modulate(baseband)

	offset, level, err := spectrum.Tone(capture, sampleRate)
	if err != nil {
		t.Fatal(err)
	}

	binWidth := float64(sampleRate) / float64(len(capture))
	if math.Abs(float64(offset-2*rf.MHz)) > binWidth {
		t.Errorf("strongest component at %s from center, want 2MHz", offset)
	}
	// the keying carrier holds a bit over half scale; anything close to the
	// noise floor means the energy went somewhere else
	if level < -10 {
		t.Errorf("carrier level = %.1f dBFS, want above -10", level)
	}
}

func TestNewModulatorRejectsBadConfig(t *testing.T) {
	if _, err := NewModulator(ModulatorConfig{
		CenterFrequency:  25 * rf.MHz,
		ControlFrequency: 27 * rf.MHz,
	}); err == nil {
		t.Fatal("NewModulator accepted a zero sample rate")
	}

	// 2 MHz of offset needs more than 4 MSps
	if _, err := NewModulator(ModulatorConfig{
		SampleRate:       2000000,
		CenterFrequency:  25 * rf.MHz,
		ControlFrequency: 27 * rf.MHz,
	}); err == nil {
		t.Fatal("NewModulator accepted an offset outside the bandwidth")
	}
}

// vim: foldmethod=marker
