package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"skybox/file-api/internal"
	"skybox/file-api/internal/model"
	"skybox/file-api/pkg/security"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeStorage struct {
	uploads     []string
	deletes     []string
	failUploads bool
}

func (f *fakeStorage) Upload(_ context.Context, key, _ string, _ int64, _ io.Reader) (string, error) {
	if f.failUploads {
		return "", errors.New("store unavailable")
	}

	f.uploads = append(f.uploads, key)
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	return nil
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

// newTestApp wires the file routes behind a stub auth middleware that
// trusts the X-User header. Token handling has its own tests, these
// target the registry and the authorization policy.
func newTestApp(t *testing.T) (*gin.Engine, *internal.Deps, *fakeStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	viper.Set("upload.max_size", int64(90<<20))
	viper.Set("upload.max_count", 10)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.User{}, model.Session{}, model.File{}, model.Share{}))

	store := &fakeStorage{}
	d := &internal.Deps{
		DB:      db,
		Argon:   security.NewArgon(),
		Storage: store,
	}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("requestID", "test")
		c.Set("userID", c.GetHeader("X-User"))
	})

	f := router.Group("/api/files")
	{
		f.POST("/upload", func(c *gin.Context) { Upload(c, d) })
		f.GET("", func(c *gin.Context) { FetchBulk(c, d) })
		f.GET("/shared/files", func(c *gin.Context) { Shared(c, d) })
		f.GET("/favorites", func(c *gin.Context) { Favorites(c, d) })
		f.GET("/:id", func(c *gin.Context) { Fetch(c, d) })
		f.PATCH("/:id", func(c *gin.Context) { Edit(c, d) })
		f.DELETE("/:id", func(c *gin.Context) { Delete(c, d) })
		f.POST("/share/:id", func(c *gin.Context) { Share(c, d) })
	}

	seedUser(t, db, "userA")
	seedUser(t, db, "userB")
	seedUser(t, db, "userC")

	return router, d, store
}

func seedUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()

	require.NoError(t, db.Create(&model.User{
		ID:           id,
		FullName:     id,
		Email:        id + "@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now().Unix(),
	}).Error)
}

func seedFile(t *testing.T, db *gorm.DB, id, owner string, favorite bool) *model.File {
	t.Helper()

	f := &model.File{
		ID:         id,
		OwnerID:    owner,
		Name:       id + ".txt",
		URL:        "https://cdn.test/" + id,
		StorageKey: id + ".txt",
		Size:       11,
		Format:     "text/plain",
		IsFavorite: favorite,
		CreatedAt:  time.Now().Unix(),
	}
	require.NoError(t, db.Create(f).Error)
	return f
}

func seedShare(t *testing.T, db *gorm.DB, fileID, userID, permission string) {
	t.Helper()

	require.NoError(t, db.Create(&model.Share{
		FileID:     fileID,
		UserID:     userID,
		Permission: permission,
		CreatedAt:  time.Now().Unix(),
	}).Error)
}

func do(router *gin.Engine, method, path, asUser string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", asUser)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doUpload(t *testing.T, router *gin.Engine, asUser string, names []string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range names {
		fw, err := w.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-User", asUser)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUploadCreatesRecords(t *testing.T) {
	router, d, store := newTestApp(t)

	rec := doUpload(t, router, "userA", []string{"one.txt", "two.txt"}, []byte("hello world"))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Len(t, store.uploads, 2)

	var count int64
	require.NoError(t, d.DB.Model(&model.File{}).Where("owner_id = ?", "userA").Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestUploadOversizeNeverTouchesStore(t *testing.T) {
	router, d, store := newTestApp(t)

	viper.Set("upload.max_size", int64(4))
	defer viper.Set("upload.max_size", int64(90<<20))

	rec := doUpload(t, router, "userA", []string{"big.bin"}, []byte("way too big"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, store.uploads)

	var count int64
	require.NoError(t, d.DB.Model(&model.File{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUploadStoreFailureLeavesNoRow(t *testing.T) {
	router, d, store := newTestApp(t)
	store.failUploads = true

	rec := doUpload(t, router, "userA", []string{"one.txt"}, []byte("hello"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var count int64
	require.NoError(t, d.DB.Model(&model.File{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUploadTooManyFiles(t *testing.T) {
	router, _, store := newTestApp(t)

	viper.Set("upload.max_count", 2)
	defer viper.Set("upload.max_count", 10)

	rec := doUpload(t, router, "userA", []string{"a.txt", "b.txt", "c.txt"}, []byte("x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.uploads)
}

func TestFetchVisibility(t *testing.T) {
	router, d, _ := newTestApp(t)

	seedFile(t, d.DB, "f1", "userA", false)
	seedShare(t, d.DB, "f1", "userB", model.PermissionRead)

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/files/f1", "userA", nil).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/files/f1", "userB", nil).Code)
	assert.Equal(t, http.StatusForbidden, do(router, http.MethodGet, "/api/files/f1", "userC", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/files/nope", "userA", nil).Code)
}

func TestFetchBulkNewestFirst(t *testing.T) {
	router, d, _ := newTestApp(t)

	old := seedFile(t, d.DB, "f-old", "userA", false)
	require.NoError(t, d.DB.Model(old).Update("created_at", time.Now().Add(-time.Hour).Unix()).Error)
	seedFile(t, d.DB, "f-new", "userA", false)
	seedFile(t, d.DB, "f-other", "userB", false)

	rec := do(router, http.MethodGet, "/api/files?page=1&limit=10", "userA", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	var data struct {
		Files []model.File `json:"files"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	require.Len(t, data.Files, 2)
	assert.Equal(t, "f-new", data.Files[0].ID)
	assert.Equal(t, "f-old", data.Files[1].ID)
}

func TestDeleteOwnerOnly(t *testing.T) {
	router, d, store := newTestApp(t)

	f := seedFile(t, d.DB, "f1", "userA", false)
	seedShare(t, d.DB, "f1", "userB", model.PermissionWrite)

	// Neither a write-share holder nor a stranger may delete
	assert.Equal(t, http.StatusForbidden, do(router, http.MethodDelete, "/api/files/f1", "userB", nil).Code)
	assert.Equal(t, http.StatusForbidden, do(router, http.MethodDelete, "/api/files/f1", "userC", nil).Code)

	var count int64
	require.NoError(t, d.DB.Model(&model.File{}).Where("id = ?", "f1").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	rec := do(router, http.MethodDelete, "/api/files/f1", "userA", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, d.DB.Model(&model.File{}).Where("id = ?", "f1").Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, d.DB.Model(&model.Share{}).Where("file_id = ?", "f1").Count(&count).Error)
	assert.Zero(t, count)

	assert.Equal(t, []string{f.StorageKey}, store.deletes)
}

func TestShareDuplicateConflict(t *testing.T) {
	router, d, _ := newTestApp(t)

	seedFile(t, d.DB, "f1", "userA", false)

	rec := do(router, http.MethodPost, "/api/files/share/f1", "userA", gin.H{
		"targetUserId": "userB",
		"permission":   "read",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodPost, "/api/files/share/f1", "userA", gin.H{
		"targetUserId": "userB",
		"permission":   "write",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The failed attempt changed nothing
	var count int64
	require.NoError(t, d.DB.Model(&model.Share{}).Where("file_id = ?", "f1").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestShareOwnerOnly(t *testing.T) {
	router, d, _ := newTestApp(t)

	seedFile(t, d.DB, "f1", "userA", false)
	seedShare(t, d.DB, "f1", "userB", model.PermissionWrite)

	rec := do(router, http.MethodPost, "/api/files/share/f1", "userB", gin.H{
		"targetUserId": "userC",
		"permission":   "read",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var count int64
	require.NoError(t, d.DB.Model(&model.Share{}).Where("file_id = ?", "f1").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestShareUnknownTarget(t *testing.T) {
	router, d, _ := newTestApp(t)

	seedFile(t, d.DB, "f1", "userA", false)

	rec := do(router, http.MethodPost, "/api/files/share/f1", "userA", gin.H{
		"targetUserId": "ghost",
		"permission":   "read",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSharePermissionNormalized(t *testing.T) {
	router, d, _ := newTestApp(t)

	seedFile(t, d.DB, "f1", "userA", false)

	rec := do(router, http.MethodPost, "/api/files/share/f1", "userA", gin.H{
		"targetUserId": "userB",
		"permission":   "admin",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var s model.Share
	require.NoError(t, d.DB.Where("file_id = ?", "f1").First(&s).Error)
	assert.Equal(t, model.PermissionRead, s.Permission)
}

func TestSharedListing(t *testing.T) {
	router, d, _ := newTestApp(t)

	seedFile(t, d.DB, "f1", "userA", false)
	seedFile(t, d.DB, "f2", "userA", false)
	seedShare(t, d.DB, "f1", "userB", model.PermissionRead)

	rec := do(router, http.MethodGet, "/api/files/shared/files", "userB", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	var files []model.File
	require.NoError(t, json.Unmarshal(env.Data, &files))

	require.Len(t, files, 1)
	assert.Equal(t, "f1", files[0].ID)
}

func TestFavoritesVisibility(t *testing.T) {
	router, d, _ := newTestApp(t)

	// userA's own favorite
	seedFile(t, d.DB, "own-fav", "userA", true)
	// userC's favorite shared with userA
	seedFile(t, d.DB, "shared-fav", "userC", true)
	seedShare(t, d.DB, "shared-fav", "userA", model.PermissionRead)
	// userC's favorite, unrelated to userA
	seedFile(t, d.DB, "other-fav", "userC", true)
	// userA's own non-favorite
	seedFile(t, d.DB, "own-plain", "userA", false)

	rec := do(router, http.MethodGet, "/api/files/favorites", "userA", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	var files []model.File
	require.NoError(t, json.Unmarshal(env.Data, &files))

	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}

	assert.ElementsMatch(t, []string{"own-fav", "shared-fav"}, ids)
}

func TestEditOwnerOnly(t *testing.T) {
	router, d, _ := newTestApp(t)

	seedFile(t, d.DB, "f1", "userA", false)
	seedShare(t, d.DB, "f1", "userB", model.PermissionWrite)

	// The recorded write permission does not unlock mutation
	rec := do(router, http.MethodPatch, "/api/files/f1", "userB", gin.H{"isFavorite": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(router, http.MethodPatch, "/api/files/f1", "userA", gin.H{
		"name":       "renamed.txt",
		"isFavorite": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var f model.File
	require.NoError(t, d.DB.Where("id = ?", "f1").First(&f).Error)
	assert.Equal(t, "renamed.txt", f.Name)
	assert.True(t, f.IsFavorite)
}
