package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds pagination parameters. A zero Limit means "no limit".
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePagination reads optional page and limit query params. Without a
// limit param the full result set is requested.
func ParsePagination(c *fiber.Ctx) Pagination {
	limit := parseInt(c.Query("limit"), 0)
	if limit <= 0 {
		return Pagination{Page: 1}
	}
	page := parseInt(c.Query("page", "1"), 1)
	if page <= 0 {
		page = 1
	}

	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
