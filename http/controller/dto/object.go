package dto

type LockObjectRequestDTO struct {
	Process string `json:"process"`
	// Duration of the lock in seconds. Zero falls back to the
	// configured default.
	Duration int `json:"duration"`
}

type PublishObjectRequestDTO struct {
	// Date is RFC3339; empty means now.
	Date string `json:"date"`
}

type RevertObjectRequestDTO struct {
	// Until is a RFC3339 timestamp, an audit entry id, or a version tag.
	Until string `json:"until" binding:"required"`
	// OverwriteVersion reuses the version tag from the target point
	// instead of bumping the current one.
	OverwriteVersion bool `json:"overwriteVersion"`
}
