// vitalsync-feed replays a file of raw device payloads (one per line,
// JSON or legacy CSV) into a running gateway's ingest endpoint. Useful
// for backfilling captures and for exercising a gateway without a live
// sensor.
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const maxAttempts = 3

func main() {
	gatewayURL := flag.String("gateway", "", "gateway URL (e.g. http://localhost:8080)")
	apiKey := flag.String("api-key", "", "gateway ingest API key")
	path := flag.String("file", "", "path to payload capture file (one payload per line)")
	delay := flag.Duration("delay", 0, "pause between payloads (e.g. 100ms) to simulate live streaming")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("vitalsync-feed", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *gatewayURL == "" || *path == "" {
		fmt.Fprintf(os.Stderr, "Usage: vitalsync-feed -gateway <URL> -api-key <KEY> -file <capture> [-delay 100ms]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Error("failed to open capture file", "path", *path, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	client := &http.Client{Timeout: 30 * time.Second}
	ingestURL := strings.TrimRight(*gatewayURL, "/") + "/api/v1/ingest/"

	var sent, dropped, failed int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		status, err := post(client, ingestURL, *apiKey, line)
		switch {
		case err != nil:
			failed++
			log.Error("payload send failed", "error", err)
		case status == http.StatusOK:
			sent++
		default:
			// The gateway rejected the payload (decode or validation);
			// count it and move on, matching live-stream behavior.
			dropped++
			log.Warn("payload rejected by gateway", "status", status)
		}

		if *delay > 0 {
			time.Sleep(*delay)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error("reading capture file", "error", err)
		os.Exit(1)
	}

	log.Info("feed complete", "sent", sent, "dropped", dropped, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// post sends one payload, retrying transport failures with exponential
// backoff. Gateway rejections (4xx) are not retried — a malformed
// payload stays malformed.
func post(client *http.Client, url, apiKey, payload string) (int, error) {
	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(payload)))
		if err != nil {
			return 0, err
		}
		req.Header.Set("Content-Type", "text/plain")
		req.Header.Set("X-API-Key", apiKey)

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return resp.StatusCode, nil
	}
	return 0, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}
