// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"strconv"

	"perch/internal/repository"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// currentUserID returns the authenticated user's id set by the auth middleware.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

// parseID parses a positive integer route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

// parseCursorPage reads limit/before/after query parameters. The limit is
// clamped so a client cannot request an unbounded page.
func parseCursorPage(c *fiber.Ctx) repository.CursorPage {
	limit := c.QueryInt("limit", defaultPageLimit)
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}

	page := repository.CursorPage{Limit: limit}
	if v, err := strconv.ParseUint(c.Query("after"), 10, 32); err == nil {
		page.After = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("before"), 10, 32); err == nil {
		page.Before = uint(v)
	}
	return page
}

// parseOffsetPage reads limit/skip query parameters for offset pagination.
func parseOffsetPage(c *fiber.Ctx) repository.OffsetPage {
	limit := c.QueryInt("limit", defaultPageLimit)
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	skip := c.QueryInt("skip", 0)
	if skip < 0 {
		skip = 0
	}
	return repository.OffsetPage{Limit: limit, Skip: skip}
}
