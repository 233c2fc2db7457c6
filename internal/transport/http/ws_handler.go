package http

import (
	"log"
	"net/http"
	"strings"

	"exam-scoring-service/internal/app"
	"github.com/gorilla/websocket"
)

// WSHandler streams recalculation progress to an instructor's dashboard.
type WSHandler struct {
	service  *app.ScoringService
	upgrader websocket.Upgrader
}

// NewWSHandler accepts upgrades from the given browser origins. Requests without
// an Origin header come from non-browser clients and are allowed. With no origins
// configured the upgrader falls back to its same-host check.
func NewWSHandler(service *app.ScoringService, allowedOrigins []string) *WSHandler {
	h := &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if len(allowedOrigins) > 0 {
		allowed := make(map[string]struct{}, len(allowedOrigins))
		for _, o := range allowedOrigins {
			allowed[strings.TrimSuffix(o, "/")] = struct{}{}
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		}
	}
	return h
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message           string `json:"message"`
	RecalculatedCount int    `json:"recalculatedCount"`
}

// ServeWS upgrades the request, runs a recalculation and sends "progress" messages
// followed by a final "result" or "error" message before closing.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	examID := r.URL.Query().Get("examId")
	if examID == "" {
		http.Error(w, "missing examId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Drain client frames so close and ping control messages are handled.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	// Progress callbacks run on this goroutine, so writes never race.
	res, err := h.service.Recalculate(r.Context(), examID, func(p app.RecalcProgress) {
		if werr := conn.WriteJSON(outboundMessage[app.RecalcProgress]{Type: "progress", Payload: p}); werr != nil {
			log.Printf("ws write error: %v", werr)
		}
	})
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{
			Message:           err.Error(),
			RecalculatedCount: res.RecalculatedCount,
		}})
	} else {
		_ = conn.WriteJSON(outboundMessage[app.RecalcResult]{Type: "result", Payload: res})
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
