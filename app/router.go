// Package app wires the HTTP surface together
package app

import (
	"fmt"
	"skybox/file-api/app/file"
	"skybox/file-api/app/root"
	"skybox/file-api/app/user"
	"skybox/file-api/aws"
	"skybox/file-api/db"
	"skybox/file-api/internal"
	"skybox/file-api/pkg/middleware"
	"skybox/file-api/pkg/security"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

func NewRouter() (*gin.Engine, error) {
	makeLogger()

	d := &internal.Deps{
		Argon:  security.NewArgon(),
		Tokens: security.NewTokens(),
	}

	database, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	d.DB = database

	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors"),
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 32 << 20

	auth := middleware.NewAuthMiddleware(database, d.Tokens)

	rateLimit := viper.GetInt("security.rate_limit")
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
	})

	maxUploadSize := viper.GetInt64("upload.max_size")
	maxUploadCount := viper.GetInt64("upload.max_count")

	m := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/validate		-> Validates an access token
		m.GET("/validate", auth, root.Validate)
	}

	u := m.Group("/users")
	{
		// POST /api/users/register	-> Registers a new user, accepts an avatar upload
		u.POST("/register", middleware.BodySizeLimiter(10<<20), func(c *gin.Context) { user.Register(c, d) })

		// POST /api/users/login	-> Verifies credentials and issues a token pair
		u.POST("/login", middleware.BodySizeLimiter(1<<20), func(c *gin.Context) { user.Login(c, d) })

		// POST /api/users/logout	-> Revokes the caller's session
		u.POST("/logout", auth, func(c *gin.Context) { user.Logout(c, d) })

		// POST /api/users/refresh-token -> Rotates the refresh token
		u.POST("/refresh-token", middleware.BodySizeLimiter(1<<20), func(c *gin.Context) { user.Refresh(c, d) })

		// POST /api/users/change-password -> Updates the caller's password
		u.POST("/change-password", auth, middleware.BodySizeLimiter(1<<20), func(c *gin.Context) { user.ChangePassword(c, d) })

		// GET /api/users/me		-> Returns the caller's identity
		u.GET("/me", auth, cacheForUser(30), user.Me)

		// PATCH /api/users/update-name	-> Updates the caller's display name
		u.PATCH("/update-name", auth, middleware.BodySizeLimiter(1<<20), func(c *gin.Context) { user.UpdateName(c, d) })

		// PATCH /api/users/update-avatar -> Replaces the caller's avatar
		u.PATCH("/update-avatar", auth, middleware.BodySizeLimiter(10<<20), func(c *gin.Context) { user.UpdateAvatar(c, d) })
	}

	f := m.Group("/files", auth)
	{
		// POST /api/files/upload	-> Uploads up to upload.max_count files
		f.POST("/upload", middleware.BodySizeLimiter(maxUploadSize*maxUploadCount+(10<<20)), func(c *gin.Context) { file.Upload(c, d) })

		// GET /api/files		-> Paginated listing of the caller's files
		f.GET("", func(c *gin.Context) { file.FetchBulk(c, d) })

		// GET /api/files/shared/files	-> Files shared with the caller
		f.GET("/shared/files", func(c *gin.Context) { file.Shared(c, d) })

		// GET /api/files/favorites	-> Favorite files visible to the caller
		f.GET("/favorites", func(c *gin.Context) { file.Favorites(c, d) })

		// GET /api/files/:id		-> Returns a file the caller owns or was given
		f.GET("/:id", func(c *gin.Context) { file.Fetch(c, d) })

		// PATCH /api/files/:id		-> Renames a file or toggles its favorite flag
		f.PATCH("/:id", func(c *gin.Context) { file.Edit(c, d) })

		// DELETE /api/files/:id	-> Deletes a file owned by the caller
		f.DELETE("/:id", func(c *gin.Context) { file.Delete(c, d) })

		// POST /api/files/share/:id	-> Adds a share-list entry
		f.POST("/share/:id", func(c *gin.Context) { file.Share(c, d) })
	}

	s3, err := aws.NewS3()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
	}
	d.Storage = s3

	return router, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

// cacheForUser caches a GET response per user so one user's cached
// payload can never be served to another
func cacheForUser(sec int) gin.HandlerFunc {
	return cache.Cache(store, time.Second*time.Duration(sec),
		cache.WithCacheStrategyByRequest(func(c *gin.Context) (bool, cache.Strategy) {
			return true, cache.Strategy{
				CacheKey: c.GetString("userID") + ":" + c.Request.RequestURI,
			}
		}),
	)
}
