package http

import (
	"time"

	"github.com/sugar258596/experiment-server/internal/favorite"
	"github.com/sugar258596/experiment-server/internal/pkg/request"
)

type FavoriteResponse struct {
	ID             string    `json:"id"`
	ResourceID     string    `json:"resource_id"`
	Kind           string    `json:"kind"`
	ResourceName   string    `json:"resource_name,omitempty"`
	ResourceStatus string    `json:"resource_status,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewFavoriteResponse(item *favorite.Item) FavoriteResponse {
	return FavoriteResponse{
		ID:             item.ID,
		ResourceID:     item.ResourceID,
		Kind:           string(item.Kind),
		ResourceName:   item.ResourceName,
		ResourceStatus: item.ResourceStatus,
		CreatedAt:      item.CreatedAt,
	}
}

type ToggleResponse struct {
	IsFavorited bool `json:"is_favorited"`
}

type ByResourceIDRequest struct {
	ResourceID string `uri:"resourceId" binding:"required,uuid"`
}

type ListFavoritesRequest struct {
	request.ListParams
}
