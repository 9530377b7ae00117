package model

import "github.com/eventwall/photowall/internal/domain/enums"

type DailyCounter struct {
	EventID  string
	Day      string
	Uploads  int64
	Views    int64
	QRScans  int64
	Approved int64
	Rejected int64
	Archived int64
}

// Add bumps the column named by field by delta. Unknown fields are ignored.
func (c *DailyCounter) Add(field enums.CounterField, delta int64) {
	switch field {
	case enums.CounterUploads:
		c.Uploads += delta
	case enums.CounterViews:
		c.Views += delta
	case enums.CounterQRScans:
		c.QRScans += delta
	case enums.CounterApproved:
		c.Approved += delta
	case enums.CounterRejected:
		c.Rejected += delta
	case enums.CounterArchived:
		c.Archived += delta
	}
}

func (c DailyCounter) Get(field enums.CounterField) int64 {
	switch field {
	case enums.CounterUploads:
		return c.Uploads
	case enums.CounterViews:
		return c.Views
	case enums.CounterQRScans:
		return c.QRScans
	case enums.CounterApproved:
		return c.Approved
	case enums.CounterRejected:
		return c.Rejected
	case enums.CounterArchived:
		return c.Archived
	default:
		return 0
	}
}
