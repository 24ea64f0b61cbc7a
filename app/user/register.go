// Package user implements the account endpoints
package user

import (
	"context"
	"net/http"
	"path"
	"skybox/file-api/internal"
	"skybox/file-api/internal/model"
	"skybox/file-api/pkg/response"
	"skybox/file-api/pkg/validators"
	"time"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func Register(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	fullName := c.PostForm("fullName")
	email := validators.NormalizeEmail(c.PostForm("email"))
	password := c.PostForm("password")

	if fullName == "" {
		response.Fail(c, http.StatusBadRequest, "Full name field can't be empty")
		return
	}

	if err := validators.EmailValidator(email); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := validators.PasswordValidator(password); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var found bool

	r := d.DB.Model(model.User{}).
		Select("count(*) > 0").
		Where("email = ?", email).
		First(&found)
	if r.Error != nil && r.Error != gorm.ErrRecordNotFound {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to check if user is registered", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if found {
		response.Fail(c, http.StatusConflict, "This email is already registered. Please login or use a different email")
		return
	}

	hash, err := d.Argon.GenerateFromPassword(password)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	userID, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to generate user ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user := model.User{
		ID:           userID,
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().Unix(),
	}

	// The avatar is optional. It goes to the object store first so no
	// user row ever points at an object that was never written
	if fh, err := c.FormFile("avatar"); err == nil {
		code, f, mime, err := validators.FileValidator(fh)
		if err != nil {
			if code == http.StatusInternalServerError {
				zap.L().Error("Failed to validate avatar", zap.Error(err), zap.String("requestID", requestID))
				response.Fail(c, code, "Internal server error")
				return
			}

			response.Fail(c, code, err.Error())
			return
		}
		defer f.Close()

		key := "avatar_" + userID + path.Ext(fh.Filename)

		url, err := d.Storage.Upload(context.Background(), key, mime, fh.Size, f)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, "Internal server error")
			zap.L().Error("Failed to upload avatar", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		user.Avatar = url
		user.AvatarKey = key
	}

	if err := d.DB.Create(&user).Error; err != nil {
		response.Fail(c, http.StatusInternalServerError, "Internal server error")
		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	response.OK(c, http.StatusOK, user, "User registered successfully")
}
