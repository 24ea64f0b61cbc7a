// Package policy decides what a user may do with a file. All
// functions are pure, the file must be loaded with its shares.
package policy

import "skybox/file-api/internal/model"

// CanRead allows the owner and anyone on the share list.
func CanRead(f *model.File, userID string) bool {
	if f.OwnerID == userID {
		return true
	}

	for _, s := range f.Shares {
		if s.UserID == userID {
			return true
		}
	}

	return false
}

// CanWrite allows the owner only. A "write" share permission is
// recorded but intentionally not consulted here.
func CanWrite(f *model.File, userID string) bool {
	return f.OwnerID == userID
}

// CanDelete allows the owner only.
func CanDelete(f *model.File, userID string) bool {
	return f.OwnerID == userID
}

// CanShare allows the owner only.
func CanShare(f *model.File, userID string) bool {
	return f.OwnerID == userID
}
