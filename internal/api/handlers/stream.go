package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"route-simulation-service/internal/api/dto"
	"route-simulation-service/internal/domain"
	"route-simulation-service/internal/sim"
)

const positionInterval = time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type streamMessage struct {
	Type   string                  `json:"type"`
	Event  *domain.SimulationEvent `json:"event,omitempty"`
	Driver *dto.DriverResponse     `json:"driver,omitempty"`
}

// StreamHandler pushes simulation events and periodic driver positions
// to websocket clients.
type StreamHandler struct {
	Manager *sim.Manager
}

func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		writeError(w, r, http.StatusBadRequest, "run_id is required")
		return
	}

	run, ok := h.Manager.Get(runID)
	if !ok {
		writeError(w, r, http.StatusNotFound, "run not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("stream upgrade failed: run=%s err=%v", runID, err)
		return
	}
	defer conn.Close()

	// Buffered fan-in; a slow client drops events rather than stalling
	// the simulator's observer dispatch.
	events := make(chan domain.SimulationEvent, 64)
	unsubscribe := run.Sim.Subscribe(func(ev domain.SimulationEvent) {
		select {
		case events <- ev:
		default:
		}
	})
	defer unsubscribe()

	// Reader goroutine only detects client disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(positionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev := <-events:
			if err := conn.WriteJSON(streamMessage{Type: "event", Event: &ev}); err != nil {
				log.Printf("stream write failed: run=%s err=%v", runID, err)
				return
			}
		case <-ticker.C:
			driver := toDriverResponse(run.Sim.Driver())
			if err := conn.WriteJSON(streamMessage{Type: "position", Driver: &driver}); err != nil {
				log.Printf("stream write failed: run=%s err=%v", runID, err)
				return
			}
		}
	}
}
