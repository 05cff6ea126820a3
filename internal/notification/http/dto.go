package http

import (
	"time"

	"github.com/sugar258596/experiment-server/internal/notification"
	"github.com/sugar258596/experiment-server/internal/pkg/request"
)

type NotificationResponse struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	RelatedID   *string   `json:"related_id"`
	RelatedData any       `json:"related_data,omitempty"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewNotificationResponse(e *notification.Enriched) NotificationResponse {
	return NotificationResponse{
		ID:          e.ID,
		Kind:        string(e.Kind),
		RelatedID:   e.RelatedID,
		RelatedData: e.RelatedData,
		Title:       e.Title,
		Content:     e.Content,
		IsRead:      e.IsRead,
		CreatedAt:   e.CreatedAt,
	}
}

type ListNotificationsRequest struct {
	request.ListParams
	UnreadOnly bool `form:"unread_only"`
}

type BroadcastBody struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

type MarkAllResponse struct {
	Updated int `json:"updated"`
}

type BroadcastResponse struct {
	Created int `json:"created"`
}
