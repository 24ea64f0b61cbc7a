package policy

import (
	"skybox/file-api/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sharedFile() *model.File {
	return &model.File{
		ID:      "f1",
		OwnerID: "owner",
		Shares: []model.Share{
			{FileID: "f1", UserID: "reader", Permission: model.PermissionRead},
			{FileID: "f1", UserID: "writer", Permission: model.PermissionWrite},
		},
	}
}

func TestCanRead(t *testing.T) {
	f := sharedFile()

	assert.True(t, CanRead(f, "owner"))
	assert.True(t, CanRead(f, "reader"))
	assert.True(t, CanRead(f, "writer"))
	assert.False(t, CanRead(f, "stranger"))
}

func TestCanWriteIgnoresWritePermission(t *testing.T) {
	f := sharedFile()

	assert.True(t, CanWrite(f, "owner"))
	// A "write" share grant does not unlock mutation
	assert.False(t, CanWrite(f, "writer"))
	assert.False(t, CanWrite(f, "reader"))
	assert.False(t, CanWrite(f, "stranger"))
}

func TestCanDeleteAndShareAreOwnerOnly(t *testing.T) {
	f := sharedFile()

	for _, actor := range []string{"reader", "writer", "stranger"} {
		assert.False(t, CanDelete(f, actor), actor)
		assert.False(t, CanShare(f, actor), actor)
	}

	assert.True(t, CanDelete(f, "owner"))
	assert.True(t, CanShare(f, "owner"))
}
