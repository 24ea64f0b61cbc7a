package internal

import (
	"context"
	"io"
	"skybox/file-api/pkg/security"

	"gorm.io/gorm"
)

// Storage is the part of the object store the handlers actually use.
// aws.S3Client satisfies it, tests swap in a fake.
type Storage interface {
	Upload(ctx context.Context, key, contentType string, size int64, body io.Reader) (url string, err error)
	Delete(ctx context.Context, key string) error
}

type Deps struct {
	DB      *gorm.DB
	Argon   *security.ArgonHash
	Tokens  *security.Tokens
	Storage Storage
}
