package workshop

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"workshop-backend/internal/shared/telemetry"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Cross-origin policy is enforced by the CORS middleware; the upgrade
	// itself accepts any origin the router let through.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// stream upgrades the connection and pushes session events until the client
// disconnects. Slow clients miss events instead of stalling the session.
func (h *Handler) stream(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	defer conn.Close()

	events, cancel := session.Subscribe()
	defer cancel()

	// Reader goroutine: we never expect client frames, but reading is what
	// surfaces the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				telemetry.Error("ws.write", map[string]any{
					"session_id": session.ID,
					"error":      err.Error(),
				})
				return
			}
		}
	}
}
