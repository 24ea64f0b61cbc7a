package model

// Session holds the single active refresh token of a user. A new login
// replaces the row, a logout deletes it. Rotation updates the token
// value with a compare-and-swap so a superseded token can never win a
// race against the one that replaced it.
type Session struct {
	UserID       string `gorm:"primaryKey" json:"user_id"`
	RefreshToken string `gorm:"not null" json:"-"`
	UpdatedAt    int64  `gorm:"not null" json:"updated_at"`
}
