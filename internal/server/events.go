package server

import (
	"io"
	"time"

	"classfit/internal/bus"

	"github.com/gin-gonic/gin"
)

const keepAliveInterval = 30 * time.Second

// Events streams booking-change pulses over Server-Sent Events. Clients
// get an event whenever any booking mutates and are expected to re-fetch
// whatever view they are showing; the event itself carries no payload.
//
// @Summary      Booking change event stream
// @Description  Server-Sent Events stream; emits a "bookings.changed" event after every booking mutation
// @Tags         system
// @Produce      text/event-stream
// @Success      200 {string} string
// @Router       /events [get]
func Events(changes *bus.Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		// Buffered so a publish during a slow write is not lost; the
		// pulse carries no data, so coalescing repeats is fine.
		pulse := make(chan struct{}, 1)
		unsubscribe := changes.Subscribe(func() {
			select {
			case pulse <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		c.Stream(func(w io.Writer) bool {
			select {
			case <-pulse:
				c.SSEvent("bookings.changed", "")
				return true
			case <-keepAlive.C:
				c.SSEvent("ping", "")
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}
