// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"perch/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/users/:id/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	followedID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid user id"))
	}

	follow, err := s.followService.Follow(c.Context(), currentUserID(c), followedID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(follow)
}

// UnfollowUser handles DELETE /api/users/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	followedID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid user id"))
	}

	if err := s.followService.Unfollow(c.Context(), currentUserID(c), followedID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFollow handles GET /api/users/:id/follow: the caller's follow edge
// toward the given user, 404 when none exists.
func (s *Server) GetFollow(c *fiber.Ctx) error {
	followedID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid user id"))
	}

	follow, err := s.followService.Get(c.Context(), currentUserID(c), followedID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(follow)
}

// GetAllFollows handles GET /api/follows
func (s *Server) GetAllFollows(c *fiber.Ctx) error {
	follows, err := s.followService.ListAll(c.Context())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"follows": follows,
		"count":   len(follows),
	})
}
