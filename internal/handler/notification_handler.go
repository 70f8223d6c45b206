package handler

import (
	"net/http"

	"shopstream/internal/notify"

	"github.com/rs/zerolog"
)

// NotificationFeed lists recently delivered notifications.
type NotificationFeed interface {
	Recent() []notify.Message
}

// NotificationHandler serves GET /api/notifications.
type NotificationHandler struct {
	feed   NotificationFeed
	logger zerolog.Logger
}

func NewNotificationHandler(feed NotificationFeed, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		feed:   feed,
		logger: logger.With().Str("handler", "notification").Logger(),
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	msgs := h.feed.Recent()
	if msgs == nil {
		msgs = []notify.Message{}
	}
	writeJSON(w, http.StatusOK, msgs, h.logger)
}
