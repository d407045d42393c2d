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

	"hz.tools/sdr"
)

var (
	// ErrStreamWrite will be returned when the transmit stream stops
	// accepting samples. Dropping part of a frame on the air would tear the
	// keying mid-pulse, so the write is abandoned rather than resumed.
	ErrStreamWrite = errors.New("rc: transmit stream refused samples")
)

// WriteFull writes every sample of buf to the stream, looping over short
// writes. Each pass hands the writer the remaining tail of the buffer and
// advances by exactly the count it accepted, so no sample is skipped or
// sent twice. A writer error, or a write that accepts nothing, abandons the
// buffer and reports how many samples made it out.
func WriteFull(w sdr.Writer, buf sdr.SamplesC64) (int, error) {
	var n int
	for n < len(buf) {
		i, err := w.Write(buf[n:])
		if err != nil {
			return n, fmt.Errorf("rc: write failed at sample %d of %d: %w", n, len(buf), err)
		}
		if i <= 0 {
			return n, fmt.Errorf("%w: %d of %d samples accepted", ErrStreamWrite, n, len(buf))
		}
		n += i
	}
	return n, nil
}

// vim: foldmethod=marker
