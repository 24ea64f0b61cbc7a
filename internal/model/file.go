package model

type File struct {
	ID      string `gorm:"primaryKey" json:"id"`
	OwnerID string `gorm:"index;not null" json:"owner_id"`

	// Original file name as uploaded by the owner
	Name string `gorm:"not null" json:"name"`

	// Public URL the object is served from
	URL string `json:"url"`
	// Key of the object in the bucket, needed to delete it
	StorageKey string `gorm:"not null" json:"-"`

	Size       int64  `json:"size"`
	Format     string `json:"format"`
	IsFavorite bool   `gorm:"default:false" json:"is_favorite"`
	CreatedAt  int64  `gorm:"not null" json:"created_at"`

	Shares []Share `gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE" json:"shared_with,omitempty"`
}
