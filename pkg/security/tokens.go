package security

import (
	"errors"
	"fmt"
	"skybox/file-api/internal/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnauthorized covers every way a token can be bad: broken
// signature, expiry, unknown user or a mismatch against the stored
// refresh token. Callers must not be able to tell the causes apart.
var ErrUnauthorized = errors.New("invalid or expired token")

type AccessClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Type     string `json:"type"`
}

type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Type   string `json:"type"`
}

// Tokens issues and validates the access/refresh token pair. The
// refresh token value stored in the sessions table is the sole source
// of truth for refresh validity.
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokens() *Tokens {
	return &Tokens{
		secret:     []byte(viper.GetString("jwt.secret")),
		accessTTL:  time.Duration(viper.GetInt("jwt.access_ttl")) * time.Minute,
		refreshTTL: time.Duration(viper.GetInt("jwt.refresh_ttl")) * 24 * time.Hour,
	}
}

// IssuePair signs a fresh token pair for u and stores the new refresh
// token in the user's session row, replacing whatever was there. Any
// previously issued refresh token stops rotating from that point on.
func (t *Tokens) IssuePair(db *gorm.DB, u *model.User) (access, refresh string, err error) {
	access, refresh, err = t.signPair(u)
	if err != nil {
		return "", "", err
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"refresh_token", "updated_at"}),
	}).Create(&model.Session{
		UserID:       u.ID,
		RefreshToken: refresh,
		UpdatedAt:    time.Now().Unix(),
	}).Error
	if err != nil {
		return "", "", fmt.Errorf("failed to store session, %w", err)
	}

	return access, refresh, nil
}

// VerifyAccess checks the signature and expiry of an access token and
// returns its claims. Used as the per-request gate.
func (t *Tokens) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, t.keyFunc)
	if err != nil || !parsed.Valid || claims.UserID == "" || claims.Type != "access" {
		return nil, ErrUnauthorized
	}

	return claims, nil
}

// Rotate trades a valid refresh token for a fresh pair. The presented
// token must exactly match the one stored in the user's session row;
// the swap is a single conditional UPDATE so two concurrent rotations
// with the same token can't both win.
func (t *Tokens) Rotate(db *gorm.DB, old string) (access, refresh string, u *model.User, err error) {
	claims := &RefreshClaims{}

	parsed, err := jwt.ParseWithClaims(old, claims, t.keyFunc)
	if err != nil || !parsed.Valid || claims.UserID == "" || claims.Type != "refresh" {
		return "", "", nil, ErrUnauthorized
	}

	var user model.User
	if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		return "", "", nil, ErrUnauthorized
	}

	access, refresh, err = t.signPair(&user)
	if err != nil {
		return "", "", nil, err
	}

	res := db.Model(&model.Session{}).
		Where("user_id = ? AND refresh_token = ?", user.ID, old).
		Updates(map[string]any{
			"refresh_token": refresh,
			"updated_at":    time.Now().Unix(),
		})
	if res.Error != nil {
		return "", "", nil, fmt.Errorf("failed to rotate session, %w", res.Error)
	}

	// No row matched: the token was revoked or already rotated
	if res.RowsAffected == 0 {
		return "", "", nil, ErrUnauthorized
	}

	return access, refresh, &user, nil
}

// Revoke ends the user's session. The refresh token that was stored
// becomes unusable immediately, even if it hasn't expired yet.
func (t *Tokens) Revoke(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&model.Session{}).Error
}

// signPair signs a pair without touching the session row
func (t *Tokens) signPair(u *model.User) (access, refresh string, err error) {
	now := time.Now()

	access, err = t.sign(AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
		UserID:   u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Type:     "access",
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token, %w", err)
	}

	refresh, err = t.sign(RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.refreshTTL)),
		},
		UserID: u.ID,
		Type:   "refresh",
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token, %w", err)
	}

	return access, refresh, nil
}

func (t *Tokens) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) keyFunc(token *jwt.Token) (any, error) {
	if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}

	return t.secret, nil
}
