// Package model defines database models
package model

type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	FullName     string `gorm:"not null" json:"full_name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Public URL of the user's avatar, empty if none was uploaded
	Avatar string `json:"avatar"`
	// S3 object key backing the avatar. Kept so the old object can be
	// removed when the avatar is replaced
	AvatarKey string `json:"-"`

	CreatedAt int64 `gorm:"not null" json:"created_at"`
}
