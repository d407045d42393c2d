package main

import (
	"fmt"
	"io"
	"os"

	"hz.tools/rc"
	"hz.tools/rc/internal/spectrum"
	"hz.tools/rfcap"
	"hz.tools/sdr"
	"hz.tools/sdr/stream"
)

func main() {
	reader, _, err := rfcap.Reader(os.Stdin)
	if err != nil {
		panic(err)
	}

	reader, err = stream.ConvertReader(reader, sdr.SampleFormatC64)
	if err != nil {
		panic(err)
	}

	var capture sdr.SamplesC64
	buf := make(sdr.SamplesC64, 1024*64)
	for {
		i, err := reader.Read(buf)
		if i > 0 {
			capture = append(capture, buf[:i]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			panic(err)
		}
	}
	if len(capture) == 0 {
		panic("empty capture")
	}

	offset, level, err := spectrum.Tone(capture, reader.SampleRate())
	if err != nil {
		panic(err)
	}
	fmt.Printf("sub-carrier: %s (%.1f dBFS)\n", offset, level)

	decoder, err := rc.NewDecoder(rc.DecoderConfig{
		SampleRate: reader.SampleRate(),
	})
	if err != nil {
		panic(err)
	}

	commands, err := decoder.Decode(capture)
	if err != nil {
		panic(err)
	}

	for i := 0; i < len(commands); {
		j := i
		for j < len(commands) && commands[j] == commands[i] {
			j++
		}
		fmt.Printf("%s x%d\n", commands[i], j-i)
		i = j
	}
}
