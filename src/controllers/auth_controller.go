package controllers

import (
	"log"
	"net/mail"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/jumuiya/community-backend/src/lib"
	"github.com/jumuiya/community-backend/src/models"
	"github.com/jumuiya/community-backend/src/storage"
	"github.com/jumuiya/community-backend/src/store"
)

const minPasswordLength = 6

type AuthController struct {
	users store.UserStore
	media storage.MediaStore
	cfg   lib.Config
}

func NewAuthController(users store.UserStore, media storage.MediaStore, cfg lib.Config) *AuthController {
	return &AuthController{users: users, media: media, cfg: cfg}
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// authUserBody is the trimmed user object returned by register and login.
type authUserBody struct {
	Id    primitive.ObjectID `json:"id"`
	Email string             `json:"email"`
	Name  string             `json:"name"`
}

func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
		Name     string `json:"name" form:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Email and password are required"))
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid email format"))
	}
	if len(req.Password) < minPasswordLength {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Password must be at least 6 characters"))
	}

	if _, err := ac.users.FindUserByEmail(c.Context(), req.Email); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Email already registered"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Registration error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Registration failed"))
	}

	user := models.User{
		Email:    req.Email,
		Password: string(hash),
		Name:     req.Name,
		IsActive: true,
	}
	if err := ac.users.InsertUser(c.Context(), &user); err != nil {
		// The unique index on email is the authority; a concurrent register
		// with the same address lands here.
		log.Printf("Registration error: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Email already registered"))
	}

	access, refresh, err := lib.GenerateTokens(ac.cfg, user.Id.Hex(), user.Email)
	if err != nil {
		log.Printf("Registration error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Registration failed"))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    authUserBody{Id: user.Id, Email: user.Email, Name: user.Name},
		"tokens":  tokenPair{AccessToken: access, RefreshToken: refresh},
	})
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Email and password are required"))
	}

	user, err := ac.users.FindUserByEmail(c.Context(), req.Email)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Invalid credentials"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Invalid credentials"))
	}

	access, refresh, err := lib.GenerateTokens(ac.cfg, user.Id.Hex(), user.Email)
	if err != nil {
		log.Printf("Login error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Login failed"))
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    authUserBody{Id: user.Id, Email: user.Email, Name: user.Name},
		"tokens":  tokenPair{AccessToken: access, RefreshToken: refresh},
	})
}

// Refresh re-issues the token pair. The user is looked up again so deleted
// or deactivated accounts cannot keep rotating tokens.
func (ac *AuthController) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refreshToken" form:"refreshToken"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}
	if req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Refresh token required"))
	}

	identity, err := lib.VerifyRefreshToken(ac.cfg, req.RefreshToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Invalid refresh token"))
	}
	id, err := primitive.ObjectIDFromHex(identity.ID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Invalid refresh token"))
	}

	user, err := ac.users.FindUserByID(c.Context(), id)
	if err != nil || !user.IsActive {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("User not found or inactive"))
	}

	access, refresh, err := lib.GenerateTokens(ac.cfg, user.Id.Hex(), user.Email)
	if err != nil {
		log.Printf("Token refresh error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Token refresh failed"))
	}

	return c.JSON(fiber.Map{"tokens": tokenPair{AccessToken: access, RefreshToken: refresh}})
}

// Logout is stateless; tokens expire on their own.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	return c.JSON(lib.MessageResponse("Logged out successfully"))
}

func (ac *AuthController) Me(c *fiber.Ctx) error {
	_, userID, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	user, err := ac.users.FindUserByID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("User not found"))
	}
	return c.JSON(user)
}

// UpdateMe applies partial profile edits and an optional avatar upload.
func (ac *AuthController) UpdateMe(c *fiber.Ctx) error {
	_, userID, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	user, err := ac.users.FindUserByID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("User not found"))
	}

	var req struct {
		Name      *string `json:"name" form:"name"`
		Bio       *string `json:"bio" form:"bio"`
		Location  *string `json:"location" form:"location"`
		Website   *string `json:"website" form:"website"`
		Facebook  *string `json:"facebook" form:"facebook"`
		Twitter   *string `json:"twitter" form:"twitter"`
		Instagram *string `json:"instagram" form:"instagram"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.Website != nil {
		user.Website = *req.Website
	}
	if req.Facebook != nil {
		user.Facebook = *req.Facebook
	}
	if req.Twitter != nil {
		user.Twitter = *req.Twitter
	}
	if req.Instagram != nil {
		user.Instagram = *req.Instagram
	}

	if file := formFile(c, "image"); file != nil {
		path, err := ac.media.Save(storage.KindProfiles, file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse(err.Error()))
		}
		user.Image = path
	}

	if err := ac.users.SaveUser(c.Context(), user); err != nil {
		log.Printf("Update user error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to update user"))
	}

	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

// UploadImage stores a new avatar for the caller and records its URL on the
// profile.
func (ac *AuthController) UploadImage(c *fiber.Ctx) error {
	_, userID, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	user, err := ac.users.FindUserByID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("User not found"))
	}

	file := formFile(c, "image")
	if file == nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Image file required"))
	}
	path, err := ac.media.Save(storage.KindProfiles, file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse(err.Error()))
	}

	user.Image = path
	if err := ac.users.SaveUser(c.Context(), user); err != nil {
		log.Printf("Upload image error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to upload image"))
	}

	return c.JSON(fiber.Map{
		"message": "Image uploaded successfully",
		"image":   path,
	})
}

// GetUser returns a public profile by id.
func (ac *AuthController) GetUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid user ID"))
	}

	user, err := ac.users.FindUserByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("User not found"))
	}
	return c.JSON(user)
}
