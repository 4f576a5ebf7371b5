package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Noor-Islam16/Coupon-Backend/internal/services"
)

// StatusNeedsAttention is returned for outcomes the client must act on
// without the request being an auth failure: unverified accounts and wrong
// codes.
const StatusNeedsAttention = 209

var kindStatus = map[services.Kind]int{
	services.KindValidation:    fiber.StatusBadRequest,
	services.KindConflict:      fiber.StatusConflict,
	services.KindUnauthorized:  fiber.StatusUnauthorized,
	services.KindNotVerified:   StatusNeedsAttention,
	services.KindIncorrectCode: StatusNeedsAttention,
	services.KindNotFound:      fiber.StatusNotFound,
	services.KindRateLimited:   fiber.StatusTooManyRequests,
	services.KindInternal:      fiber.StatusInternalServerError,
}

// ErrorHandler renders service and Fiber errors as
// {success:false, code, message}.
func ErrorHandler(log *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"success": false,
				"code":    codeForStatus(fe.Code),
				"message": fe.Message,
			})
		}

		var se *services.Error
		if !errors.As(err, &se) {
			log.Errorw("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"code":    services.KindInternal.String(),
				"message": "internal server error",
			})
		}

		if se.Kind == services.KindInternal {
			log.Errorw("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return c.Status(kindStatus[se.Kind]).JSON(fiber.Map{
			"success": false,
			"code":    se.Kind.String(),
			"message": se.Message,
		})
	}
}

func codeForStatus(status int) string {
	for kind, s := range kindStatus {
		if s == status && kind != services.KindNotVerified && kind != services.KindIncorrectCode {
			return kind.String()
		}
	}
	return "error"
}
