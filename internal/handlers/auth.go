package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Noor-Islam16/Coupon-Backend/internal/middleware"
	"github.com/Noor-Islam16/Coupon-Backend/internal/services"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup creates a new unverified account.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req services.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.auth.Signup(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    result.User,
		"token":   result.Token,
	})
}

// Login authenticates a verified account.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    result.User,
		"token":   result.Token,
	})
}

type tokenBody struct {
	Token string `json:"token"`
}

// requestToken prefers the Authorization header and falls back to a token
// field in the body.
func requestToken(c *fiber.Ctx, body tokenBody) string {
	if token := services.BearerToken(c.Get(fiber.HeaderAuthorization)); token != "" {
		return token
	}
	return body.Token
}

type selectVerificationRequest struct {
	tokenBody
	services.VerificationModeInput
}

// SelectVerification starts e-mail (or acknowledges phone) verification.
func (h *AuthHandler) SelectVerification(c *fiber.Ctx) error {
	var req selectVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.auth.SelectVerificationMode(c.UserContext(), requestToken(c, req.tokenBody), req.VerificationModeInput)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"mode":    result.Mode,
		"message": result.Message,
	})
}

type verifyOTPRequest struct {
	tokenBody
	Code string `json:"code"`
}

// VerifyOTP consumes an e-mail code and marks the account verified.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.auth.VerifyOTP(c.UserContext(), requestToken(c, req.tokenBody), req.Code)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"verified": true,
		"user":     result.User,
		"token":    result.Token,
	})
}

// ResendOTP issues a fresh e-mail code to the caller.
func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.auth.ResendOTP(c.UserContext(), identity); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "verification code sent to email",
	})
}

// Me returns the caller's account.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	user, err := h.auth.Me(c.UserContext(), identity)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}
