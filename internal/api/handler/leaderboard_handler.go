package handler

import (
	"debug_contest/internal/app/projector"
	"debug_contest/internal/common"
	"log"
	"net/http"

	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type LeaderboardHandler struct {
	leaderboard *projector.Leaderboard
}

func NewLeaderboardHandler(lb *projector.Leaderboard) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: lb}
}

func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.With(chiMiddleware.Timeout(60 * time.Second)).Get("/", h.getLeaderboard)
	r.Get("/live", h.liveLeaderboard) // long-lived, no request timeout
}

func (h *LeaderboardHandler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, h.leaderboard.Snapshot())
}

// liveLeaderboard pushes a fresh snapshot over a WebSocket whenever the
// projection changes, starting with the current state on connect.
func (h *LeaderboardHandler) liveLeaderboard(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The contest UI may be served from a different origin than the API.
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("WARN: WebSocket accept failed: %v", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closing")

	// No client messages are expected; CloseRead surfaces disconnects.
	ctx := conn.CloseRead(r.Context())

	updates, cancel := h.leaderboard.Watch()
	defer cancel()

	if err := wsjson.Write(ctx, conn, h.leaderboard.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case snapshot, ok := <-updates:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := wsjson.Write(ctx, conn, snapshot); err != nil {
				return
			}
		}
	}
}
