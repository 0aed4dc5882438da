package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	ws "github.com/gorilla/websocket"
)

const (
	hoverReadLimit = 512
	hoverIdle      = 5 * time.Minute
	hoverWriteWait = 10 * time.Second
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// HoverMessage is sent by the client for every pointer move. Leave clears
// the dynamic marker.
type HoverMessage struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Leave bool    `json:"leave,omitempty"`
}

// HandleHover handles GET /api/profile/{id}/hover. Each pointer position is
// hit-tested, the dynamic marker follows it, and the hit is sent back.
func (h *ProfileHandler) HandleHover(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		slog.Debug("Hover upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	defer s.SetMarker(MarkerDynamic, nil)

	conn.SetReadLimit(hoverReadLimit)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(hoverIdle))
		var msg HoverMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var closeErr *ws.CloseError
			if !errors.As(err, &closeErr) {
				slog.Debug("Hover stream ended", "id", s.ID, "error", err)
			}
			return
		}

		resp := HitResponse{Index: -1}
		if msg.Leave {
			s.SetMarker(MarkerDynamic, nil)
		} else {
			resp = hitResponse(s.Hover(msg.X, msg.Y))
		}

		_ = conn.SetWriteDeadline(time.Now().Add(hoverWriteWait))
		if err := conn.WriteJSON(resp); err != nil {
			slog.Debug("Hover write failed", "id", s.ID, "error", err)
			return
		}
	}
}
