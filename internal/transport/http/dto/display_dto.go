package dto

import (
	"time"

	"github.com/eventwall/photowall/internal/domain/model"
)

type DisplayImageResponse struct {
	ID            string    `json:"id"`
	OriginalPath  string    `json:"originalPath"`
	SubmitterName string    `json:"submitterName"`
	Caption       string    `json:"caption"`
	DisplayOrder  *int      `json:"displayOrder"`
	CreatedAt     time.Time `json:"createdAt"`
}

type SetCurrentImageRequest struct {
	ImageID string `json:"imageId"`
	EventID string `json:"eventId,omitempty"`
}

type SetCurrentImageResponse struct {
	Success        bool   `json:"success"`
	CurrentImageID string `json:"currentImageId"`
}

type DisplaySettingsResponse struct {
	EventID         string    `json:"eventId"`
	AutoRotate      bool      `json:"autoRotate"`
	SlideInterval   int       `json:"slideInterval"`
	Transition      string    `json:"transition"`
	ShowCaptions    bool      `json:"showCaptions"`
	ShowSubmitter   bool      `json:"showSubmitter"`
	BackgroundColor string    `json:"backgroundColor"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type DisplaySettingsPatchRequest struct {
	AutoRotate      *bool   `json:"autoRotate"`
	SlideInterval   *int    `json:"slideInterval"`
	Transition      *string `json:"transition"`
	ShowCaptions    *bool   `json:"showCaptions"`
	ShowSubmitter   *bool   `json:"showSubmitter"`
	BackgroundColor *string `json:"backgroundColor"`
}

func NewDisplayImagesResponse(photos []model.Photo) []DisplayImageResponse {
	out := make([]DisplayImageResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, DisplayImageResponse{
			ID:            p.ID,
			OriginalPath:  p.OriginalPath,
			SubmitterName: p.SubmitterName,
			Caption:       p.Caption,
			DisplayOrder:  p.DisplayOrder,
			CreatedAt:     p.CreatedAt,
		})
	}
	return out
}

func NewDisplaySettingsResponse(s model.DisplaySettings) DisplaySettingsResponse {
	return DisplaySettingsResponse{
		EventID:         s.EventID,
		AutoRotate:      s.AutoRotate,
		SlideInterval:   s.SlideInterval,
		Transition:      s.Transition,
		ShowCaptions:    s.ShowCaptions,
		ShowSubmitter:   s.ShowSubmitter,
		BackgroundColor: s.BackgroundColor,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (r DisplaySettingsPatchRequest) ToPatch() model.DisplaySettingsPatch {
	return model.DisplaySettingsPatch{
		AutoRotate:      r.AutoRotate,
		SlideInterval:   r.SlideInterval,
		Transition:      r.Transition,
		ShowCaptions:    r.ShowCaptions,
		ShowSubmitter:   r.ShowSubmitter,
		BackgroundColor: r.BackgroundColor,
	}
}
