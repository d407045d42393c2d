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
	"testing"
)

func TestNewEncoder(t *testing.T) {
	for _, tc := range []struct {
		name       string
		sampleRate uint
		ok         bool
	}{
		{"8MSps", 8000000, true},
		{"2MSps", 2000000, true},
		{"2kSps", 2000, true},
		{"fractional period", 8000001, false},
		{"sub sample period", 1000, false},
		{"zero", 0, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEncoder(tc.sampleRate)
			if tc.ok && err != nil {
				t.Fatalf("NewEncoder(%d): %v", tc.sampleRate, err)
			}
			if !tc.ok && !errors.Is(err, ErrClockRate) {
				t.Fatalf("NewEncoder(%d) = %v, want ErrClockRate", tc.sampleRate, err)
			}
		})
	}
}

func TestEncodeLengths(t *testing.T) {
	// 8 MSps puts 4000 samples in each 0.5 ms clock period.
	const n = 4000

	encoder, err := NewEncoder(8000000)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		d    Direction
		want int
	}{
		{North, (16 + 2*40) * n},
		{NorthEast, (16 + 2*46) * n},
		{NorthWest, (16 + 2*52) * n},
		{South, (16 + 2*10) * n},
		{SouthEast, (16 + 2*34) * n},
		{SouthWest, (16 + 2*28) * n},
		{West, (16 + 2*58) * n},
		{East, (16 + 2*64) * n},
		{Stop, 15 * 24 * n},
		{Idle, 10 * n},
	} {
		t.Run(tc.d.String(), func(t *testing.T) {
			buf, err := encoder.Encode(tc.d)
			if err != nil {
				t.Fatal(err)
			}
			if len(buf) != tc.want {
				t.Fatalf("len(Encode(%v)) = %d, want %d", tc.d, len(buf), tc.want)
			}
		})
	}

	// the forward frame at 8 MSps is the canonical sizing check
	buf, err := encoder.Encode(North)
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != 384000 {
		t.Fatalf("len(Encode(North)) = %d, want 384000", len(buf))
	}
}

func TestEncodeFrameShape(t *testing.T) {
	// one sample per clock period keeps the expected waveform legible
	encoder, err := NewEncoder(2000)
	if err != nil {
		t.Fatal(err)
	}

	buf, err := encoder.Encode(South)
	if err != nil {
		t.Fatal(err)
	}

	var want []float32
	for i := 0; i < 4; i++ {
		want = append(want, highLevel, highLevel, highLevel, 0)
	}
	for i := 0; i < 10; i++ {
		want = append(want, highLevel, 0)
	}

	if len(buf) != len(want) {
		t.Fatalf("len = %d, want %d", len(buf), len(want))
	}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestEncodePulseBoundaries(t *testing.T) {
	const n = 4000

	encoder, err := NewEncoder(8000000)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := encoder.Encode(North)
	if err != nil {
		t.Fatal(err)
	}

	// first long pulse: keyed on for 3 periods, off for 1
	for _, tc := range []struct {
		at   int
		want float32
	}{
		{0, highLevel},
		{3*n - 1, highLevel},
		{3 * n, 0},
		{4*n - 1, 0},
		{4 * n, highLevel},  // second long pulse begins
		{16 * n, highLevel}, // first short pulse begins
		{17 * n, 0},
		{18 * n, highLevel}, // second short pulse
	} {
		if buf[tc.at] != tc.want {
			t.Errorf("sample %d = %v, want %v", tc.at, buf[tc.at], tc.want)
		}
	}

	for i, s := range buf {
		if s != 0 && s != highLevel {
			t.Fatalf("sample %d = %v, want exactly 0 or %v", i, s, highLevel)
		}
	}
}

func TestEncodeStopStructure(t *testing.T) {
	encoder, err := NewEncoder(2000)
	if err != nil {
		t.Fatal(err)
	}

	buf, err := encoder.Encode(Stop)
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != 15*24 {
		t.Fatalf("len = %d, want %d", len(buf), 15*24)
	}

	var group []float32
	for i := 0; i < 4; i++ {
		group = append(group, highLevel, highLevel, highLevel, 0)
	}
	for i := 0; i < 4; i++ {
		group = append(group, highLevel, 0)
	}
	for i := range buf {
		if buf[i] != group[i%len(group)] {
			t.Fatalf("sample %d = %v, want %v", i, buf[i], group[i%len(group)])
		}
	}
}

func TestEncodeIdle(t *testing.T) {
	encoder, err := NewEncoder(8000000)
	if err != nil {
		t.Fatal(err)
	}

	buf, err := encoder.Encode(Idle)
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != 40000 {
		t.Fatalf("len = %d, want 40000", len(buf))
	}
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d = %v, want 0", i, s)
		}
	}
}

func TestEncodeInvalid(t *testing.T) {
	encoder, err := NewEncoder(8000000)
	if err != nil {
		t.Fatal(err)
	}

	for _, d := range []Direction{0, North | South, East | West, Stop | North} {
		if _, err := encoder.Encode(d); !errors.Is(err, ErrInvalidCommand) {
			t.Errorf("Encode(%v) = %v, want ErrInvalidCommand", d, err)
		}
	}
}

// vim: foldmethod=marker
