package lib

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jumuiya/community-backend/src/models"
)

const (
	accessTokenTTL  = 7 * 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

// MessageResponse is the body for confirmation-only responses.
func MessageResponse(message string) fiber.Map {
	return fiber.Map{
		"message": message,
	}
}

// ErrorResponse is the body for every failure response.
func ErrorResponse(message string) fiber.Map {
	return fiber.Map{
		"error": message,
	}
}

// GenerateTokens issues the access/refresh token pair for a user. The two
// tokens are signed with separate secrets so a leaked refresh secret cannot
// mint access tokens.
func GenerateTokens(cfg Config, userID, email string) (access string, refresh string, err error) {
	access, err = signToken(cfg.JWTSecret, userID, email, accessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = signToken(cfg.JWTRefreshSecret, userID, email, refreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func signToken(secret, userID, email string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"id":    userID,
		"email": email,
		"exp":   time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyAccessToken validates a bearer token and returns the identity it
// carries.
func VerifyAccessToken(cfg Config, tokenString string) (models.AuthUser, error) {
	return verifyToken(cfg.JWTSecret, tokenString)
}

// VerifyRefreshToken validates a refresh token.
func VerifyRefreshToken(cfg Config, tokenString string) (models.AuthUser, error) {
	return verifyToken(cfg.JWTRefreshSecret, tokenString)
}

func verifyToken(secret, tokenString string) (models.AuthUser, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return models.AuthUser{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.AuthUser{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	id, _ := claims["id"].(string)
	email, _ := claims["email"].(string)
	if id == "" {
		return models.AuthUser{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}
	return models.AuthUser{ID: id, Email: email}, nil
}

// Slugify lowercases the title and collapses every run of non-alphanumeric
// characters into a single hyphen.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // trim leading hyphens
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// UniqueSlug derives the stored slug: slugified title plus an epoch-millis
// suffix. Uniqueness comes from the suffix, so no retry loop is needed; the
// unique index on the collection is the backstop.
func UniqueSlug(title string, now time.Time) string {
	return Slugify(title) + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}
