// ABOUTME: Watches a bridge monitor and prints its events
// ABOUTME: Finds the monitor over mDNS unless -addr is given
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Robin-Sch/2IC80/internal/client"
	"github.com/Robin-Sch/2IC80/internal/discovery"
	"github.com/Robin-Sch/2IC80/internal/protocol"
)

var (
	addr    = flag.String("addr", "", "Monitor address host:port (skip mDNS)")
	timeout = flag.Duration("timeout", 10*time.Second, "How long to browse for a monitor")
	rawJSON = flag.Bool("json", false, "Print events as raw JSON payloads")
)

func main() {
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lmicroseconds)

	serverAddress := *addr
	path := discovery.EventsPath
	if serverAddress == "" {
		log.Printf("Browsing for %s...", discovery.ServiceType)
		disc := discovery.NewManager(discovery.Config{})
		if err := disc.Browse(); err != nil {
			log.Fatalf("Browse failed: %v", err)
		}

		select {
		case server := <-disc.Servers():
			serverAddress = server.Addr()
			path = server.Path
			log.Printf("Discovered %s (%s) at %s", server.Name, server.Mode, serverAddress)
		case <-time.After(*timeout):
			log.Fatalf("No monitor found after %s", *timeout)
		}
		disc.Stop()
	}

	c := client.NewClient(client.Config{ServerAddr: serverAddress, Path: path})
	if err := c.Connect(); err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	defer c.Close()

	hello := c.Hello()
	fmt.Printf("%s %s | mode=%s port=%s track=%s | %dHz %dch %d-bit\n",
		hello.DeviceInfo.ProductName, hello.DeviceInfo.SoftwareVersion,
		hello.Mode, hello.Port, hello.Track,
		hello.Format.SampleRate, hello.Format.Channels, hello.Format.BitDepth)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case msg, ok := <-c.Events:
			if !ok {
				log.Printf("Monitor disconnected")
				return
			}
			printEvent(msg)
		case <-sigChan:
			return
		}
	}
}

func printEvent(msg protocol.Message) {
	if *rawJSON {
		fmt.Printf("%s %v\n", msg.Type, msg.Payload)
		return
	}

	ts := time.Now().Format("15:04:05")

	switch msg.Type {
	case protocol.TypeCycleStart:
		var p protocol.CycleStart
		if protocol.DecodePayload(msg, &p) == nil {
			fmt.Printf("%s loop #%d started\n", ts, p.Cycle)
		}
	case protocol.TypeCycleEnd:
		var p protocol.CycleEnd
		if protocol.DecodePayload(msg, &p) == nil {
			fmt.Printf("%s loop #%d finished: %d bytes (~%.1fs audio) in %dms\n", ts, p.Cycle, p.Bytes, p.Seconds, p.DurationMs)
		}
	case protocol.TypeProgress:
		var p protocol.Progress
		if protocol.DecodePayload(msg, &p) == nil {
			fmt.Printf("%s %s %d bytes (~%.1fs audio), total %d\n", ts, p.Direction, p.Bytes, p.Seconds, p.Total)
		}
	case protocol.TypeMarker:
		var p protocol.MarkerSeen
		if protocol.DecodePayload(msg, &p) == nil {
			fmt.Printf("%s marker %s %s\n", ts, p.ID, p.Description)
		}
	default:
		fmt.Printf("%s %s\n", ts, msg.Type)
	}
}
