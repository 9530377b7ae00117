package dto

import (
	"time"

	"github.com/eventwall/photowall/internal/domain/model"
)

type PhotoResponse struct {
	ID            string    `json:"id"`
	EventID       string    `json:"eventId"`
	Status        string    `json:"status"`
	DisplayOrder  *int      `json:"displayOrder"`
	SubmitterName string    `json:"submitterName"`
	Caption       string    `json:"caption"`
	OriginalPath  string    `json:"originalPath"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ModerateRequest may carry eventId; the photo id alone selects the photo.
type ModerateRequest struct {
	PhotoID string `json:"photoId"`
	Action  string `json:"action"`
	EventID string `json:"eventId,omitempty"`
}

type ReorderRequest struct {
	PhotoOrders []PhotoOrderRequest `json:"photoOrders"`
	EventID     string              `json:"eventId,omitempty"`
}

type PhotoOrderRequest struct {
	PhotoID      string `json:"photoId"`
	DisplayOrder *int   `json:"displayOrder"`
}

type StatsResponse struct {
	Pending      int `json:"pending"`
	Approved     int `json:"approved"`
	Rejected     int `json:"rejected"`
	Archived     int `json:"archived"`
	TotalUploads int `json:"totalUploads"`
}

func NewPhotoResponse(p model.Photo) PhotoResponse {
	return PhotoResponse{
		ID:            p.ID,
		EventID:       p.EventID,
		Status:        p.Status.String(),
		DisplayOrder:  p.DisplayOrder,
		SubmitterName: p.SubmitterName,
		Caption:       p.Caption,
		OriginalPath:  p.OriginalPath,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func NewPhotoListResponse(photos []model.Photo) []PhotoResponse {
	out := make([]PhotoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, NewPhotoResponse(p))
	}
	return out
}

func NewStatsResponse(c model.StatusCounts) StatsResponse {
	return StatsResponse{
		Pending:      c.Pending,
		Approved:     c.Approved,
		Rejected:     c.Rejected,
		Archived:     c.Archived,
		TotalUploads: c.Total(),
	}
}
