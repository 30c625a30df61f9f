package main

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/vadiminshakov/invoiceview/internal/domain"
)

// readStream consumes server-sent events until r ends. Each "view" event must
// carry a decodable snapshot; heartbeats and other events are skipped.
func readStream(r io.Reader, c *counters) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	event := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			event = ""
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: ") && event == "view":
			var snap domain.Snapshot
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &snap); err != nil {
				c.badPayloads.Add(1)
				continue
			}
			c.events.Add(1)
		}
	}

	return scanner.Err()
}
