package dto

import "github.com/eventwall/photowall/internal/domain/model"

type DailyCounterResponse struct {
	EventID  string `json:"eventId"`
	Day      string `json:"day"`
	Uploads  int64  `json:"uploads"`
	Views    int64  `json:"views"`
	QRScans  int64  `json:"qrScans"`
	Approved int64  `json:"approved"`
	Rejected int64  `json:"rejected"`
	Archived int64  `json:"archived"`
}

type HealthResponse struct {
	OK bool `json:"ok"`
}

func NewDailyCountersResponse(rows []model.DailyCounter) []DailyCounterResponse {
	out := make([]DailyCounterResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, DailyCounterResponse{
			EventID:  r.EventID,
			Day:      r.Day,
			Uploads:  r.Uploads,
			Views:    r.Views,
			QRScans:  r.QRScans,
			Approved: r.Approved,
			Rejected: r.Rejected,
			Archived: r.Archived,
		})
	}
	return out
}
