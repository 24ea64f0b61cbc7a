package model

const (
	PermissionRead  = "read"
	PermissionWrite = "write"
)

// Share grants a single user access to a single file. The composite
// unique index makes re-sharing with the same user a constraint
// violation instead of an upsert.
type Share struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	FileID     string `gorm:"uniqueIndex:idx_file_target;not null" json:"file_id"`
	UserID     string `gorm:"uniqueIndex:idx_file_target;not null" json:"user_id"`
	Permission string `gorm:"default:read" json:"permission"`
	CreatedAt  int64  `gorm:"not null" json:"created_at"`
}
