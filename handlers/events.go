package handlers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/taskhive/go-tasks/events"
)

func formatSSEMessage(eventType string, data any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	m := map[string]any{
		"data": data,
	}

	err := enc.Encode(m)
	if err != nil {
		return "", err
	}
	sb := strings.Builder{}

	sb.WriteString(fmt.Sprintf("event: %s\n", eventType))
	sb.WriteString(fmt.Sprintf("retry: %d\n", 15000))
	sb.WriteString(fmt.Sprintf("data: %v\n\n", buf.String()))

	return sb.String(), nil
}

// HandleEvents stream các sự kiện hoạt động của user đang đăng nhập qua SSE
func (h *Handler) HandleEvents(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	feed, unsubscribe := events.Subscribe(currentUser(c).ID)

	notify := c.Context().Done()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		keepAliveTickler := time.NewTicker(15 * time.Second)
		keepAliveMsg := ":keepalive\n"

		go func() {
			<-notify
			unsubscribe()
			keepAliveTickler.Stop()
		}()

		for loop := true; loop; {
			select {

			case ev := <-feed:
				sseMessage, err := formatSSEMessage(ev.Type, ev)
				if err != nil {
					log.Printf("Error formatting sse message: %v\n", err)
					continue
				}

				_, err = fmt.Fprint(w, sseMessage)
				if err != nil {
					log.Printf("Error while writing Data: %v\n", err)
					continue
				}

				err = w.Flush()
				if err != nil {
					log.Printf("Error while flushing Data: %v\n", err)
					unsubscribe()
					keepAliveTickler.Stop()
					loop = false
					break
				}
			case <-keepAliveTickler.C:
				fmt.Fprint(w, keepAliveMsg)
				err := w.Flush()
				if err != nil {
					log.Printf("Error while flushing: %v.\n", err)
					unsubscribe()
					keepAliveTickler.Stop()
					loop = false
					break
				}
			}
		}

		log.Println("Exiting stream")
	}))

	return nil
}
