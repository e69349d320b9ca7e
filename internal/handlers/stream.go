package handlers

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/trentd187/golf-match-tracker/internal/events"
)

// streamKeepAlive is how often an idle stream gets a comment line, so proxies don't
// close it.
const streamKeepAlive = 25 * time.Second

var knownTopics = map[string]bool{
	events.TopicCourses: true,
	events.TopicTeams:   true,
	events.TopicPlayers: true,
	events.TopicMatches: true,
}

// Stream handles GET /api/v1/stream?topics=matches,teams. It keeps the connection open
// and writes each change as a Server-Sent Event:
//
//	event: matches
//	data: {"topic":"matches","action":"updated","id":"..."}
//
// Leaving topics out subscribes to everything.
func Stream(hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var topics []string
		for _, t := range strings.Split(c.Query("topics"), ",") {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if !knownTopics[t] {
				return badRequest(c, fmt.Sprintf("unknown topic %q", t))
			}
			topics = append(topics, t)
		}

		sub := hub.Subscribe(c.UserContext(), topics...)
		if sub == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "event stream unavailable"})
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer hub.Unsubscribe(sub)

			ticker := time.NewTicker(streamKeepAlive)
			defer ticker.Stop()

			fmt.Fprint(w, ": connected\n\n")
			if w.Flush() != nil {
				return
			}
			for {
				select {
				case ev, ok := <-sub.Send:
					if !ok {
						return
					}
					fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Topic, ev.JSON())
				case <-ticker.C:
					fmt.Fprint(w, ": ping\n\n")
				}
				// A failed flush means the client has gone away.
				if w.Flush() != nil {
					return
				}
			}
		}))
		return nil
	}
}
