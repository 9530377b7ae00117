package rules

import (
	"fmt"

	"github.com/eventwall/photowall/internal/domain/enums"
	"github.com/eventwall/photowall/internal/domain/errs"
)

// TargetStatus maps a moderation action onto the status it produces.
func TargetStatus(action enums.ModerationAction) (enums.PhotoStatus, error) {
	switch action {
	case enums.ModerationActionApprove:
		return enums.PhotoStatusApproved, nil
	case enums.ModerationActionReject:
		return enums.PhotoStatusRejected, nil
	case enums.ModerationActionArchive:
		return enums.PhotoStatusArchived, nil
	default:
		return "", fmt.Errorf("%w: unsupported moderation action %q", errs.ErrInvalidRequest, action)
	}
}

// NextStatus applies action to a photo currently in from. Any known status may
// move to any of the three decided statuses; nothing moves back to pending.
func NextStatus(from enums.PhotoStatus, action enums.ModerationAction) (enums.PhotoStatus, error) {
	switch from {
	case enums.PhotoStatusPending,
		enums.PhotoStatusApproved,
		enums.PhotoStatusRejected,
		enums.PhotoStatusArchived:
	default:
		return "", fmt.Errorf("%w: unknown photo status %q", errs.ErrInvalidState, from)
	}

	return TargetStatus(action)
}

// CanTransition reports whether a stored status may be replaced by to.
func CanTransition(from, to enums.PhotoStatus) bool {
	if !from.Valid() {
		return false
	}
	switch to {
	case enums.PhotoStatusApproved, enums.PhotoStatusRejected, enums.PhotoStatusArchived:
		return true
	case enums.PhotoStatusPending:
		return false
	default:
		return false
	}
}

// CounterForStatus names the analytics counter bumped when a photo is moved to status.
func CounterForStatus(status enums.PhotoStatus) (enums.CounterField, bool) {
	switch status {
	case enums.PhotoStatusApproved:
		return enums.CounterApproved, true
	case enums.PhotoStatusRejected:
		return enums.CounterRejected, true
	case enums.PhotoStatusArchived:
		return enums.CounterArchived, true
	case enums.PhotoStatusPending:
		return "", false
	default:
		return "", false
	}
}
