package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/mystore/internal/config"
	"github.com/example/mystore/internal/models"
	"github.com/example/mystore/internal/ratelimit"
	"github.com/example/mystore/internal/repository"
	"github.com/example/mystore/internal/services"
	"github.com/example/mystore/internal/utils"
)

// OTPHandler implements the SMS verification flow: issue a code, verify
// it, and exchange a successful verification for an auth token.
type OTPHandler struct {
	users   repository.UserRepository
	otps    repository.OTPRepository
	limiter ratelimit.Store
	sms     services.SMSSender
	cfg     *config.Config
	logger  *zap.SugaredLogger
}

// NewOTPHandler constructs an OTPHandler.
func NewOTPHandler(
	users repository.UserRepository,
	otps repository.OTPRepository,
	limiter ratelimit.Store,
	sms services.SMSSender,
	cfg *config.Config,
	logger *zap.SugaredLogger,
) *OTPHandler {
	return &OTPHandler{users: users, otps: otps, limiter: limiter, sms: sms, cfg: cfg, logger: logger}
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

// SendOTP issues a fresh code for the email and delivers it over SMS.
// Any previously issued code for the same email becomes invalid.
func (h *OTPHandler) SendOTP(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	email := normalizeEmail(req.Email)
	if email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Valid email is required")
	}

	rl, err := h.limiter.Check(c.Context(), email, ratelimit.OpSendOTP)
	if err != nil {
		return err
	}
	if !rl.Allowed {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":       "Too many OTP requests. Please try again later.",
			"retry_after": rl.RetryAfter(time.Now()),
		})
	}

	user, err := h.users.FindByEmail(c.Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Email not registered")
		}
		return err
	}

	phone := strings.TrimSpace(user.Phone)
	if phone == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Phone number not registered with your account")
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to generate OTP")
	}

	record := &models.OTP{
		UserID:    user.ID,
		Email:     email,
		Phone:     phone,
		Code:      code,
		ExpiresAt: time.Now().Add(h.cfg.OTPExpires),
	}

	if err := h.otps.Replace(c.Context(), record); err != nil {
		return err
	}

	if err := h.sms.SendOTP(c.Context(), phone, code); err != nil {
		// Delivery failed: the issuance did not happen. Roll back the
		// record so the previous state is restored.
		if delErr := h.otps.Delete(c.Context(), record.ID); delErr != nil {
			h.logger.Warnf("rollback of undelivered OTP for %s failed: %v", email, delErr)
		}
		h.logger.Warnf("OTP delivery to %s failed: %v", email, err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to send OTP")
	}

	return c.JSON(fiber.Map{
		"message": "OTP sent to registered mobile number",
		"success": true,
	})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTP checks the submitted code against the live record and issues
// an auth token on success.
func (h *OTPHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	email := normalizeEmail(req.Email)
	code := strings.TrimSpace(req.OTP)
	if email == "" || code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Valid email and OTP are required")
	}

	rl, err := h.limiter.Check(c.Context(), email, ratelimit.OpVerifyOTP)
	if err != nil {
		return err
	}
	if !rl.Allowed {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":       "Too many verification attempts. Please try again later.",
			"retry_after": rl.RetryAfter(time.Now()),
		})
	}

	user, err := h.users.FindByEmail(c.Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Email not registered")
		}
		return err
	}

	record, err := h.otps.Find(c.Context(), email, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "No OTP found. Please request a new OTP.")
		}
		return err
	}

	if record.Expired(time.Now()) {
		if err := h.otps.Delete(c.Context(), record.ID); err != nil {
			return err
		}
		return fiber.NewError(fiber.StatusBadRequest, "OTP expired. Please request a new OTP.")
	}

	if record.Exhausted() {
		if err := h.otps.Delete(c.Context(), record.ID); err != nil {
			return err
		}
		return fiber.NewError(fiber.StatusBadRequest, "Maximum OTP verification attempts exceeded. Please request a new OTP.")
	}

	if record.Code != code {
		attempts, err := h.otps.IncrementAttempts(c.Context(), record.ID)
		if err != nil {
			return err
		}
		remaining := models.MaxOTPAttempts - attempts
		if remaining < 0 {
			remaining = 0
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":              "Invalid OTP",
			"attempts_remaining": remaining,
		})
	}

	if err := h.otps.Delete(c.Context(), record.ID); err != nil {
		return err
	}
	if err := h.limiter.Reset(c.Context(), email, ratelimit.OpSendOTP); err != nil {
		h.logger.Warnf("rate limit reset for %s failed: %v", email, err)
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID.Hex(), user.Email, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(fiber.Map{
		"message":   "OTP verified successfully",
		"success":   true,
		"token":     token,
		"userId":    user.ID,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"email":     user.Email,
	})
}
