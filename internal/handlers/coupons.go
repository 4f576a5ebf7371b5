package handlers

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Noor-Islam16/Coupon-Backend/internal/services"
	"github.com/Noor-Islam16/Coupon-Backend/internal/utils"
)

// CouponHandler exposes the coupon lifecycle over HTTP.
type CouponHandler struct {
	coupons *services.CouponManager
}

// NewCouponHandler constructs CouponHandler.
func NewCouponHandler(coupons *services.CouponManager) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

func (h *CouponHandler) ListActive(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	items, err := h.coupons.ListActive(c.UserContext(), pg)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": items, "page": pg.Page, "limit": pg.Limit})
}

func (h *CouponHandler) ListAll(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	items, err := h.coupons.ListAll(c.UserContext(), pg)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": items, "page": pg.Page, "limit": pg.Limit})
}

func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	coupon, err := h.coupons.GetByID(c.UserContext(), c.Params("couponId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": coupon})
}

// CreateCoupon accepts JSON or multipart/form-data with an optional "image"
// file part.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	fields, err := readCouponFields(c)
	if err != nil {
		return err
	}
	image, err := readImage(c)
	if err != nil {
		return err
	}

	coupon, err := h.coupons.Create(c.UserContext(), services.CouponInput{
		BrandName: deref(fields.BrandName),
		CouponID:  deref(fields.CouponID),
		Bogo:      fields.Bogo,
		Discount:  fields.Discount,
		Audience:  deref(fields.Audience),
		Duration:  deref(fields.Duration),
	}, image)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": coupon})
}

func (h *CouponHandler) UpdateCoupon(c *fiber.Ctx) error {
	fields, err := readCouponFields(c)
	if err != nil {
		return err
	}
	image, err := readImage(c)
	if err != nil {
		return err
	}

	coupon, err := h.coupons.Update(c.UserContext(), c.Params("couponId"), fields, image)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": coupon})
}

func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	if err := h.coupons.Delete(c.UserContext(), c.Params("couponId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "coupon deleted"})
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

// readCouponFields collects only the fields present in the request so that
// updates can tell "absent" from "empty".
func readCouponFields(c *fiber.Ctx) (services.CouponUpdate, error) {
	var fields services.CouponUpdate
	if !isMultipart(c) {
		if len(c.Body()) == 0 {
			return fields, nil
		}
		if err := c.BodyParser(&fields); err != nil {
			return fields, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		return fields, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fields, fiber.NewError(fiber.StatusBadRequest, "invalid multipart form")
	}
	lookup := func(key string) *string {
		values, ok := form.Value[key]
		if !ok || len(values) == 0 {
			return nil
		}
		v := values[0]
		return &v
	}
	fields.BrandName = lookup("brandName")
	fields.CouponID = lookup("couponId")
	fields.Bogo = lookup("bogo")
	fields.Discount = lookup("discount")
	fields.Audience = lookup("audience")
	fields.Duration = lookup("duration")
	return fields, nil
}

func readImage(c *fiber.Ctx) (*services.ImageUpload, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	header, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}

	file, err := header.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "failed to read image")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "failed to read image")
	}
	return &services.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
