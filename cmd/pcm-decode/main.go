// ABOUTME: Decodes an audio file to the raw PCM the bridge transmits
// ABOUTME: Writes 8kHz mono 16-bit little-endian samples to a file or stdout
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Robin-Sch/2IC80/pkg/audio"
	"github.com/Robin-Sch/2IC80/pkg/audio/decode"
)

var (
	input   = flag.String("in", "", "Audio file to decode (MP3, FLAC, WAV, PCM)")
	output  = flag.String("out", "-", "Output file, - for stdout")
	decoder = flag.String("decoder", "auto", "Decoder: auto, ffmpeg or native")
)

func main() {
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "-in is required")
		flag.Usage()
		os.Exit(2)
	}

	log.SetOutput(os.Stderr)

	dec, err := decode.ForPath(*decoder, *input)
	if err != nil {
		log.Fatalf("No decoder: %v", err)
	}

	var w io.Writer = os.Stdout
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to create output: %v", err)
		}
		defer f.Close()
		w = f
	}
	bw := bufio.NewWriter(w)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stream, err := dec.Start(ctx, *input)
	if err != nil {
		log.Fatalf("Failed to start %s decoder: %v", dec.Name(), err)
	}

	var total int64
	for chunk := range stream.Data() {
		if _, err := bw.Write(chunk); err != nil {
			log.Fatalf("Write failed: %v", err)
		}
		total += int64(len(chunk))
	}
	if err := stream.Err(); err != nil {
		log.Fatalf("Decode failed: %v", err)
	}
	if err := bw.Flush(); err != nil {
		log.Fatalf("Write failed: %v", err)
	}

	log.Printf("Decoded %s with %s: %d bytes (~%.1fs audio, %s)", *input, dec.Name(), total, audio.Link.Seconds(total), audio.Link)
}
