package ws

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type MatchesUpdatedEvent struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

var defaultHub atomic.Pointer[Hub]

func SetDefaultHub(h *Hub) {
	defaultHub.Store(h)
}

// Notifier adapts the default hub to the usecase notification seam.
type Notifier struct{}

func (Notifier) MatchesUpdated(userID uuid.UUID) {
	NotifyMatchesUpdated(userID)
}

func NotifyMatchesUpdated(userID uuid.UUID) {
	h := defaultHub.Load()
	if h == nil || userID == uuid.Nil {
		return
	}

	evt := MatchesUpdatedEvent{
		Type:      "matches_updated",
		UserID:    userID.String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}

	h.SendToUser(userID, b)
}
