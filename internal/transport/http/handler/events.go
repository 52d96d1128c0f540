package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-push-inbox/internal/application/agent"
	"github.com/sirupsen/logrus"
)

const heartbeatInterval = 25 * time.Second

type eventSource interface {
	Events() (<-chan agent.Event, func())
}

// EventHandler streams inbox state changes as server-sent events. Clients
// listen for notification.created and notification.updated.
type EventHandler struct {
	events eventSource
	log    logrus.FieldLogger
}

func NewEventHandler(events eventSource, log logrus.FieldLogger) *EventHandler {
	return &EventHandler{events: events, log: log}
}

func (h *EventHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.log.Error("event stream: response writer does not support flushing")
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, unsubscribe := h.events.Events()
	defer unsubscribe()

	if _, err := w.Write([]byte(": ok\n\n")); err == nil {
		flusher.Flush()
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	done := r.Context().Done()
	for {
		select {
		case <-done:
			return
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.log.WithError(err).Warn("event stream: encode event")
				continue
			}
			if _, err := w.Write([]byte("event: " + ev.Type + "\ndata: ")); err != nil {
				return
			}
			if _, err := w.Write(data); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
