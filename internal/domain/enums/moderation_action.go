package enums

import "strings"

type ModerationAction string

const (
	ModerationActionApprove ModerationAction = "approve"
	ModerationActionReject  ModerationAction = "reject"
	ModerationActionArchive ModerationAction = "archive"
)

func ParseModerationAction(raw string) (ModerationAction, bool) {
	action := ModerationAction(strings.ToLower(strings.TrimSpace(raw)))
	switch action {
	case ModerationActionApprove, ModerationActionReject, ModerationActionArchive:
		return action, true
	default:
		return "", false
	}
}

func (a ModerationAction) String() string {
	return string(a)
}
