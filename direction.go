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
	"strings"
)

var (
	// ErrInvalidCommand will be returned when a command is not part of the
	// direction alphabet the vehicle understands.
	ErrInvalidCommand = errors.New("rc: invalid command")
)

// Direction is a command the vehicle understands. The eight directions of
// travel are held on one north/south bit and one east/west bit, so that
// diagonals are the bitwise or of their cardinal parts. Stop and Idle are
// commands of their own and do not compose with anything.
type Direction uint8

const (
	// North drives the vehicle forward.
	North Direction = 1 << iota

	// South drives the vehicle in reverse.
	South

	// East turns the vehicle right.
	East

	// West turns the vehicle left.
	West

	// Stop halts the vehicle.
	Stop

	// Idle keeps the carrier quiet without commanding anything.
	Idle
)

const (
	// NorthEast drives forward while turning right.
	NorthEast = North | East

	// NorthWest drives forward while turning left.
	NorthWest = North | West

	// SouthEast reverses while turning right.
	SouthEast = South | East

	// SouthWest reverses while turning left.
	SouthWest = South | West
)

// ParseDirection will match a raw input string against the direction
// alphabet. Matching is case insensitive and looks for single letter
// substrings, north/south before east/west, so "ne", "EN" and "north-east"
// all come out as NorthEast. An "x" with no direction letters is Stop, an
// "o" with nothing else recognized is Idle, and anything left over is an
// ErrInvalidCommand.
func ParseDirection(s string) (Direction, error) {
	lower := strings.ToLower(s)

	var d Direction
	switch {
	case strings.Contains(lower, "n"):
		d = North
	case strings.Contains(lower, "s"):
		d = South
	}

	if d != 0 {
		switch {
		case strings.Contains(lower, "e"):
			d |= East
		case strings.Contains(lower, "w"):
			d |= West
		}
		return d, nil
	}

	switch {
	case strings.Contains(lower, "e"):
		return East, nil
	case strings.Contains(lower, "w"):
		return West, nil
	case strings.Contains(lower, "x"):
		return Stop, nil
	case strings.Contains(lower, "o"):
		return Idle, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidCommand, s)
}

// Moving will report if the Direction is one of the eight directions of
// travel.
func (d Direction) Moving() bool {
	if d == 0 || d&(Stop|Idle) != 0 {
		return false
	}
	if d&(North|South) == North|South {
		return false
	}
	if d&(East|West) == East|West {
		return false
	}
	return true
}

// Valid will report if the Direction is a member of the command alphabet.
func (d Direction) Valid() bool {
	return d == Stop || d == Idle || d.Moving()
}

// Compose merges a newly pressed Direction into the Direction already held.
// A press on an axis replaces whatever was held on that axis, so pressing
// East while North is held steers into NorthEast, and pressing South while
// NorthEast is held becomes SouthEast. Pressing Stop or Idle replaces the
// held Direction outright.
func (d Direction) Compose(pressed Direction) Direction {
	if !pressed.Moving() || !d.Moving() {
		return pressed
	}
	if pressed&(North|South) != 0 {
		d &^= North | South
	}
	if pressed&(East|West) != 0 {
		d &^= East | West
	}
	return d | pressed
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	case NorthEast:
		return "northeast"
	case NorthWest:
		return "northwest"
	case SouthEast:
		return "southeast"
	case SouthWest:
		return "southwest"
	case Stop:
		return "stop"
	case Idle:
		return "idle"
	}
	return fmt.Sprintf("Direction(%08b)", uint8(d))
}

// vim: foldmethod=marker
