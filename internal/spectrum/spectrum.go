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

// Package spectrum finds where in the sampled bandwidth a capture's energy
// actually sits, which is handy for checking that a control signal landed
// on its sub-carrier.
package spectrum

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"hz.tools/rf"
	"hz.tools/sdr"
)

// Tone returns the frequency of the strongest component of the capture,
// relative to the capture's center, along with its level in dB relative to
// a full scale tone at that frequency.
func Tone(capture sdr.SamplesC64, sampleRate uint) (rf.Hz, float64, error) {
	if len(capture) == 0 {
		return 0, 0, errors.New("spectrum: empty capture")
	}
	if sampleRate == 0 {
		return 0, 0, errors.New("spectrum: sample rate is unknown")
	}

	window := hamming(len(capture))
	var windowSum float64
	buf := make([]complex128, len(capture))
	for i, s := range capture {
		buf[i] = complex128(s) * complex(window[i], 0)
		windowSum += window[i]
	}

	fft := fourier.NewCmplxFFT(len(buf))
	coefficients := fft.Coefficients(nil, buf)

	peak := 0
	peakMag := 0.0
	for i, c := range coefficients {
		if mag := cmplx.Abs(c); mag > peakMag {
			peak, peakMag = i, mag
		}
	}

	// Coefficients run 0..rate over the bin index; fold the upper half
	// down to negative offsets.
	freq := float64(peak) / float64(len(buf))
	if freq >= 0.5 {
		freq -= 1
	}

	return rf.Hz(freq * float64(sampleRate)), 20 * math.Log10(peakMag/windowSum), nil
}

func hamming(n int) []float64 {
	window := make([]float64, n)
	if n == 1 {
		window[0] = 1
		return window
	}
	for i := range window {
		window[i] = 0.54 - 0.46*math.Cos(tau*float64(i)/float64(n-1))
	}
	return window
}

const tau = 2 * math.Pi

// vim: foldmethod=marker
