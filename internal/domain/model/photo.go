package model

import (
	"time"

	"github.com/eventwall/photowall/internal/domain/enums"
)

type Photo struct {
	ID            string
	EventID       string
	Status        enums.PhotoStatus
	DisplayOrder  *int
	SubmitterName string
	Caption       string
	OriginalPath  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Clone returns a copy that shares no pointers with p.
func (p Photo) Clone() Photo {
	out := p
	if p.DisplayOrder != nil {
		v := *p.DisplayOrder
		out.DisplayOrder = &v
	}
	return out
}

type OrderAssignment struct {
	PhotoID      string
	DisplayOrder int
}

type StatusCounts struct {
	Pending  int
	Approved int
	Rejected int
	Archived int
}

func (c StatusCounts) Total() int {
	return c.Pending + c.Approved + c.Rejected + c.Archived
}

func IntPtr(v int) *int {
	return &v
}
