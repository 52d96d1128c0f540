package notifier

import (
	"context"

	"github.com/go-push-inbox/internal/domain"
	"github.com/sirupsen/logrus"
)

// LogSink writes notifications to the process log. It is always installed.
type LogSink struct {
	log logrus.FieldLogger
}

func NewLogSink(log logrus.FieldLogger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Show(_ context.Context, ch domain.Channel, req domain.DisplayRequest) error {
	entry := s.log.WithFields(logrus.Fields{
		"channel": ch.ID,
		"title":   req.Title,
		"body":    req.Body,
	})
	if len(req.Data) > 0 {
		entry = entry.WithField("data", req.Data)
	}
	if ch.Importance >= domain.ImportanceHigh {
		entry.Warn("notification")
		return nil
	}
	entry.Info("notification")
	return nil
}
