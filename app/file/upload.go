// Package file implements the file registry endpoints
package file

import (
	"context"
	"net/http"
	"path"
	"skybox/file-api/internal"
	"skybox/file-api/internal/model"
	"skybox/file-api/pkg/response"
	"skybox/file-api/pkg/validators"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func Upload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		response.Fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to parse multipart form", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		response.Fail(c, http.StatusBadRequest, "No file provided")
		return
	}

	if len(files) > viper.GetInt("upload.max_count") {
		response.Fail(c, http.StatusBadRequest, "Too many files in one request")
		return
	}

	isFavorite := c.PostForm("isFavorite") == "true"

	// Reject the whole batch on any bad declared size before a single
	// byte reaches the object store
	maxSize := viper.GetInt64("upload.max_size")
	for _, fh := range files {
		if fh.Size > maxSize {
			response.Fail(c, http.StatusBadRequest, validators.ErrFileTooLarge.Error())
			return
		}
	}

	uploaded := make([]model.File, 0, len(files))

	for _, fh := range files {
		code, f, mime, err := validators.FileValidator(fh)
		if err != nil {
			if code == http.StatusInternalServerError {
				response.Fail(c, code, "Internal server error")
				zap.L().Error("Failed to validate file", zap.Error(err), zap.String("requestID", requestID))
				return
			}

			response.Fail(c, code, err.Error())
			return
		}

		fileID, err := gonanoid.Generate(idCharset, 16)
		if err != nil {
			f.Close()
			response.Fail(c, http.StatusInternalServerError, "Internal server error")
			zap.L().Error("Failed to generate file ID", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		// Users may upload files with clashing names, the object key
		// has to be unique regardless
		key := fileID + path.Ext(fh.Filename)

		// The object goes out first. If the store rejects it no
		// metadata row is ever created
		url, err := d.Storage.Upload(context.Background(), key, mime, fh.Size, f)
		f.Close()
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, "Internal server error")
			zap.L().Error("Failed to upload file to the object store", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		record := model.File{
			ID:         fileID,
			OwnerID:    userID,
			Name:       fh.Filename,
			URL:        url,
			StorageKey: key,
			Size:       fh.Size,
			Format:     mime,
			IsFavorite: isFavorite,
			CreatedAt:  time.Now().Unix(),
		}

		if err := d.DB.Create(&record).Error; err != nil {
			response.Fail(c, http.StatusInternalServerError, "Internal server error")
			zap.L().Error("Failed to save file record", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		uploaded = append(uploaded, record)
	}

	response.OK(c, http.StatusOK, uploaded, "Files uploaded successfully")
}
