package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/EryGltkn/CN-termproject/internal/domain"
	"github.com/EryGltkn/CN-termproject/internal/engine"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler exposes the operator surface: a websocket stream of session
// snapshots and the start-session control command.
type Handler struct {
	session  *engine.Session
	engine   *engine.Engine
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(session *engine.Session, eng *engine.Engine, log zerolog.Logger) *Handler {
	return &Handler{
		session: session,
		engine:  eng,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Router builds the admin mux.
func (h *Handler) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/session/start", h.StartSession)
	return mux
}

// ServeWS upgrades the request and streams a snapshot on every registry or
// round-boundary change, starting with the current state.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel := h.session.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				h.log.Debug().Err(err).Msg("ws write failed")
				return
			}
		case <-closed:
			return
		}
	}
}

type startRequest struct {
	TimeLimitSeconds int `json:"timeLimitSeconds"`
}

type startResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// StartSession is the "begin session(time_limit)" control command.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, startResponse{Status: "rejected", Error: "invalid request body"})
		return
	}

	err := h.engine.Start(time.Duration(req.TimeLimitSeconds) * time.Second)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, startResponse{Status: "started"})
	case errors.Is(err, domain.ErrInvalidTimeLimit):
		writeJSON(w, http.StatusBadRequest, startResponse{Status: "rejected", Error: err.Error()})
	case errors.Is(err, domain.ErrSessionRunning), errors.Is(err, domain.ErrNotEnoughParticipants):
		writeJSON(w, http.StatusConflict, startResponse{Status: "rejected", Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, startResponse{Status: "rejected", Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
