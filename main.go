// ABOUTME: Entry point for the BISON serial audio bridge
// ABOUTME: Parses CLI flags and runs one bridge role until shutdown
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Robin-Sch/2IC80/internal/app"
	"github.com/Robin-Sch/2IC80/internal/config"
	"github.com/Robin-Sch/2IC80/internal/link"
	"github.com/Robin-Sch/2IC80/internal/ui"
	"github.com/Robin-Sch/2IC80/internal/version"
	"github.com/Robin-Sch/2IC80/pkg/marker"
)

var (
	configFile  = flag.String("config", "", "Optional YAML configuration file")
	mode        = flag.String("mode", "", "Bridge role: alice, mallory or bob (or pass it as the first argument)")
	port        = flag.String("port", "", "Serial port of the firmware, e.g. /dev/ttyACM0")
	baudRate    = flag.Int("baud", config.Default().Link.BaudRate, "Serial baud rate")
	track       = flag.String("track", "", "Audio file to transmit (overrides the mode's playlist entry)")
	assetsDir   = flag.String("assets", config.Default().Assets, "Directory holding the playlist tracks")
	decoderKind = flag.String("decoder", config.Default().Audio.Decoder, "Decoder: auto, ffmpeg or native")
	sinkSpec    = flag.String("sink", config.Default().Audio.Sink, "Receiver sink: oto, discard or file:<path>")
	monitorAddr = flag.String("monitor", "", "Address for the /events and /metrics monitor, e.g. :9090")
	noMDNS      = flag.Bool("no-mdns", false, "Do not advertise the monitor over mDNS")
	logFile     = flag.String("log-file", config.Default().Logging.File, "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	listPorts   = flag.Bool("list-ports", false, "List serial ports and exit")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *listPorts {
		printPorts()
		return
	}

	settings, err := loadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n", err)
		flag.Usage()
		os.Exit(2)
	}

	useTUI := settings.Logging.TUI

	// Set up logging
	f, err := os.OpenFile(settings.Logging.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s %s in %s mode", version.Product, version.Version, settings.Mode)

	var tui *ui.TUI
	if useTUI {
		tui = ui.NewTUI()
	}

	bridgeConfig := app.Config{Settings: settings}
	if tui != nil {
		bridgeConfig.Status = tui
	}

	bridge, err := app.New(bridgeConfig)
	if err != nil {
		log.Printf("Failed to create bridge: %v", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var quitChan <-chan struct{}
	if tui != nil {
		quitChan = tui.QuitChan()
	}

	go func() {
		select {
		case <-quitChan:
			log.Printf("Received quit signal from TUI")
		case <-sigChan:
			log.Printf("Shutdown signal received")
		case <-ctx.Done():
			return
		}
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		done <- bridge.Run(ctx)
		if tui != nil {
			tui.Stop()
		}
	}()

	if tui != nil {
		if err := tui.Run(ui.StatusMsg{Mode: settings.Mode, Port: settings.Link.Port}); err != nil {
			log.Printf("TUI error: %v", err)
		}
		cancel()
	}

	err = <-done
	if err != nil {
		log.Printf("Bridge stopped: %v", err)
		if tui != nil {
			fmt.Fprintf(os.Stderr, "bridge stopped: %v\n", err)
		}
		_ = f.Close()
		os.Exit(1)
	}

	log.Printf("Bridge stopped")
}

// loadSettings layers explicitly set flags over the config file or defaults
func loadSettings() (*config.Config, error) {
	settings := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			return nil, err
		}
		settings = loaded
	}

	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "mode":
			settings.Mode = *mode
		case "port":
			settings.Link.Port = *port
		case "baud":
			settings.Link.BaudRate = *baudRate
		case "assets":
			settings.Assets = *assetsDir
		case "decoder":
			settings.Audio.Decoder = *decoderKind
		case "sink":
			settings.Audio.Sink = *sinkSpec
		case "monitor":
			settings.Monitor.Addr = *monitorAddr
		case "no-mdns":
			settings.Monitor.MDNS = !*noMDNS
		case "log-file":
			settings.Logging.File = *logFile
		case "no-tui":
			settings.Logging.TUI = !*noTUI
		}
	})

	if flag.NArg() > 0 {
		settings.Mode = flag.Arg(0)
	}
	if *mode == "" && flag.NArg() == 0 && *configFile == "" {
		return nil, errors.New("missing mode")
	}
	if *track != "" {
		settings.SetTrack(settings.Mode, *track)
	}
	if settings.Link.Port == "" {
		return nil, errors.New("missing -port")
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <alice|mallory|bob>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()

	printMarkers("Receiver (bob) firmware markers", marker.ReceiverTable)
	printMarkers("Transmitter (alice, mallory) firmware markers", marker.TransmitterTable)
}

func printMarkers(title string, table marker.Table) {
	fmt.Fprintf(os.Stderr, "\n%s:\n", title)
	for _, id := range table.IDs() {
		fmt.Fprintf(os.Stderr, "  0x%02X  %s\n", id, table[id])
	}
}

func printPorts() {
	ports, err := link.Ports()
	if err != nil {
		log.Fatalf("Failed to list serial ports: %v", err)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return
	}
	for _, p := range ports {
		fmt.Println(p)
	}
}
