// Command testserver runs a simulated course catalog website to exercise
// the visitor simulation locally.
//
// Usage:
//
//	testserver [flags]
//
// Flags:
//
//	-port       Port to listen on (default: 8080)
//	-host       Host to bind to (default: localhost)
//	-latency    Fixed artificial latency per request (default: 0)
//	-fail-rate  Percentage of requests to fail with 500 (default: 0)
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crowdsim/testserver"
)

func main() {
	port := flag.Int("port", 8080, "port to listen on")
	host := flag.String("host", "localhost", "host to bind to")
	latency := flag.Duration("latency", 0, "fixed artificial latency per request")
	failRate := flag.Int("fail-rate", 0, "percentage of requests to fail with 500")
	flag.Parse()

	var opts []testserver.Option
	if *latency > 0 {
		opts = append(opts, testserver.WithLatency(*latency))
	}
	if *failRate > 0 {
		opts = append(opts, testserver.WithFailRate(*failRate))
	}

	server := testserver.New(opts...)
	addr := fmt.Sprintf("%s:%d", *host, *port)

	fmt.Println("Crowdsim Test Server")
	fmt.Println("====================")
	fmt.Printf("Listening on http://%s\n\n", addr)
	fmt.Println("Pages:")
	fmt.Println("  GET /                    - Homepage with category links")
	fmt.Println("  GET /kurse/{slug}        - Category and subcategory pages")
	fmt.Println("  GET /suche?q={term}      - JSON search results")
	fmt.Println("  GET /kontakt, /impressum - Static info pages")
	fmt.Println("  GET /health              - Health check")
	fmt.Println()
	if *latency > 0 {
		fmt.Printf("Artificial latency: %v\n", *latency)
	}
	if *failRate > 0 {
		fmt.Printf("Failure rate: %d%%\n", *failRate)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		fmt.Printf("Served %d requests in this session\n", server.Requests())
		os.Exit(0)
	}()

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
