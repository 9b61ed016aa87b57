package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"mytodo/internal/service"
)

// Subscribe opens the server's change feed. The request has no timeout;
// cancel ctx to close it. The returned channel is closed when the stream ends.
func (c *Client) Subscribe(ctx context.Context) (<-chan service.ChangeEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tasks/events", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapError(err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(req.Method, "/api/tasks/events", resp.StatusCode, nil)
	}

	out := make(chan service.ChangeEvent, 16)
	go func() {
		defer close(out)
		defer resp.Body.Close()
		readEvents(ctx, bufio.NewScanner(resp.Body), out)
	}()
	return out, nil
}

// readEvents parses "event: change" frames. Comments and other event types
// are skipped; malformed data is dropped.
func readEvents(ctx context.Context, sc *bufio.Scanner, out chan<- service.ChangeEvent) {
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event string
	var data strings.Builder
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if event == "change" && data.Len() > 0 {
				var ev service.ChangeEvent
				if err := json.Unmarshal([]byte(data.String()), &ev); err == nil {
					select {
					case out <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
			event = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
}
