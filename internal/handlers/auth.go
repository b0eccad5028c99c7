package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/example/mystore/internal/config"
	"github.com/example/mystore/internal/models"
	"github.com/example/mystore/internal/repository"
	"github.com/example/mystore/internal/services"
	"github.com/example/mystore/internal/utils"
)

// AuthHandler bundles dependencies for registration and login.
type AuthHandler struct {
	users  repository.UserRepository
	mailer services.Mailer
	cfg    *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users repository.UserRepository, mailer services.Mailer, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, mailer: mailer, cfg: cfg}
}

// normalizeEmail is applied before every lookup and store so that the
// same account is found regardless of the caller's casing.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

// Register creates a new user account and attempts the welcome email.
// Email delivery failure does not fail the registration.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" || req.FirstName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing required fields")
	}

	if _, err := h.users.FindByEmail(c.Context(), req.Email); err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Email already registered")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: passwordHash,
	}

	if err := h.users.Create(c.Context(), user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fiber.NewError(fiber.StatusBadRequest, "Email already registered")
		}
		return err
	}

	message := "User created & email sent!"
	if err := h.mailer.SendWelcome(user.Email, user.FirstName); err != nil {
		message = "User created, but email failed to send"
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"userId":  user.ID,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an existing user and issues a token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.users.FindByEmail(c.Context(), normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID.Hex(), user.Email, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(fiber.Map{
		"message":   "Login successful",
		"token":     token,
		"userId":    user.ID,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"email":     user.Email,
	})
}

type sendMailRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

// SendMail re-sends the welcome email on demand.
func (h *AuthHandler) SendMail(c *fiber.Ctx) error {
	var req sendMailRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Email is required")
	}

	if err := h.mailer.SendWelcome(normalizeEmail(req.Email), req.FirstName); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Mail sending failed")
	}

	return c.JSON(fiber.Map{"message": "Mail sent!"})
}
