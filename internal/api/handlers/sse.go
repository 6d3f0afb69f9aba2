package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const sseHeartbeat = 15 * time.Second

// sseStream writes server-sent events. Writes are serialized so the
// heartbeat can share the connection.
type sseStream struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func (s *sseStream) send(event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *sseStream) comment(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	return s.w.Flush()
}

// streamSSE switches the response to an event stream and runs fn on it. The
// context passed to fn ends when the client goes away.
func streamSSE(c *fiber.Ctx, fn func(ctx context.Context, s *sseStream) error) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		s := &sseStream{w: w}

		go func() {
			ticker := time.NewTicker(sseHeartbeat)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := s.comment("ping"); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		if err := fn(ctx, s); err != nil && ctx.Err() == nil {
			_ = s.send("error", fiber.Map{"message": err.Error()})
		}
	})
	return nil
}
