package enums

import "strings"

type PhotoStatus string

const (
	PhotoStatusPending  PhotoStatus = "pending"
	PhotoStatusApproved PhotoStatus = "approved"
	PhotoStatusRejected PhotoStatus = "rejected"
	PhotoStatusArchived PhotoStatus = "archived"
)

func PhotoStatuses() []PhotoStatus {
	return []PhotoStatus{
		PhotoStatusPending,
		PhotoStatusApproved,
		PhotoStatusRejected,
		PhotoStatusArchived,
	}
}

func ParsePhotoStatus(raw string) (PhotoStatus, bool) {
	status := PhotoStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", false
	}
	return status, true
}

func (s PhotoStatus) Valid() bool {
	switch s {
	case PhotoStatusPending, PhotoStatusApproved, PhotoStatusRejected, PhotoStatusArchived:
		return true
	default:
		return false
	}
}

func (s PhotoStatus) String() string {
	return string(s)
}
