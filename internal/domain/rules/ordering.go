package rules

import (
	"sort"

	"github.com/eventwall/photowall/internal/domain/enums"
	"github.com/eventwall/photowall/internal/domain/model"
)

// OrderApproved returns the approved photos in slideshow order: display order
// ascending with unset orders last, then newest first, then id.
func OrderApproved(photos []model.Photo) []model.Photo {
	out := make([]model.Photo, 0, len(photos))
	for _, photo := range photos {
		if photo.Status != enums.PhotoStatusApproved {
			continue
		}
		out = append(out, photo.Clone())
	}

	sort.SliceStable(out, func(i, j int) bool {
		return DisplayLess(out[i], out[j])
	})
	return out
}

func DisplayLess(a, b model.Photo) bool {
	switch {
	case a.DisplayOrder != nil && b.DisplayOrder == nil:
		return true
	case a.DisplayOrder == nil && b.DisplayOrder != nil:
		return false
	case a.DisplayOrder != nil && b.DisplayOrder != nil && *a.DisplayOrder != *b.DisplayOrder:
		return *a.DisplayOrder < *b.DisplayOrder
	}

	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

// NextDisplayOrder is the order handed to a newly approved photo: one past the
// largest order among the approved photos, or 0 when none has one.
func NextDisplayOrder(photos []model.Photo) int {
	next := 0
	for _, photo := range photos {
		if photo.Status != enums.PhotoStatusApproved || photo.DisplayOrder == nil {
			continue
		}
		if *photo.DisplayOrder >= next {
			next = *photo.DisplayOrder + 1
		}
	}
	return next
}

// PromoteAssignments moves targetID to order 0 and shifts every other approved
// photo with an order down by one. Photos without an order stay last.
func PromoteAssignments(photos []model.Photo, targetID string) []model.OrderAssignment {
	out := make([]model.OrderAssignment, 0, len(photos))
	for _, photo := range photos {
		if photo.Status != enums.PhotoStatusApproved {
			continue
		}
		if photo.ID == targetID {
			out = append(out, model.OrderAssignment{PhotoID: photo.ID, DisplayOrder: 0})
			continue
		}
		if photo.DisplayOrder == nil {
			continue
		}
		out = append(out, model.OrderAssignment{PhotoID: photo.ID, DisplayOrder: *photo.DisplayOrder + 1})
	}
	return out
}
