package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Noor-Islam16/Coupon-Backend/internal/middleware"
	"github.com/Noor-Islam16/Coupon-Backend/internal/services"
)

// ProfileHandler manages user profile endpoints.
type ProfileHandler struct {
	profiles *services.ProfileService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// SaveProfile creates or updates the caller's profile.
func (h *ProfileHandler) SaveProfile(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req services.ProfileInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	view, err := h.profiles.Save(c.UserContext(), identity, req)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": view})
}

// GetProfile returns the caller's profile.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	view, err := h.profiles.Get(c.UserContext(), identity)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": view})
}

// DeleteProfile removes the caller's profile.
func (h *ProfileHandler) DeleteProfile(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.profiles.Delete(c.UserContext(), identity); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "profile deleted"})
}

type pictureRequest struct {
	ImageURL string `json:"imageUrl"`
}

// UpdatePicture stores a new profile picture URL.
func (h *ProfileHandler) UpdatePicture(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req pictureRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	view, err := h.profiles.UpdatePicture(c.UserContext(), identity, req.ImageURL)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": view})
}
