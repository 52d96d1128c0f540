package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-push-inbox/internal/domain"
	"github.com/go-push-inbox/internal/pkg/validate"
	"github.com/sirupsen/logrus"
)

const maxMessageBytes = 64 << 10

type deliverer interface {
	Deliver(kind domain.DeliveryKind, msg domain.RemoteMessage) int
}

// MessageHandler is the webhook push transports post to.
type MessageHandler struct {
	hub deliverer
	log logrus.FieldLogger
}

func NewMessageHandler(hub deliverer, log logrus.FieldLogger) *MessageHandler {
	return &MessageHandler{hub: hub, log: log}
}

func (h *MessageHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	var req domain.DeliverMessageRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	n := h.hub.Deliver(req.Kind, req.Message)
	h.log.WithFields(logrus.Fields{
		"kind":       req.Kind,
		"message_id": req.Message.MessageID,
		"delivered":  n,
	}).Info("message accepted")
	writeJSON(w, http.StatusAccepted, DeliveryEnvelope{Message: "accepted", Delivered: n})
}
