// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"perch/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ReactToPost handles POST /api/posts/:id/reactions
func (s *Server) ReactToPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid post id"))
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	reaction, err := s.reactionService.React(c.Context(), currentUserID(c), postID, models.ReactionAction(req.Action))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reaction)
}

// RemoveReaction handles DELETE /api/posts/:id/reactions/:action
func (s *Server) RemoveReaction(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid post id"))
	}
	action := models.ReactionAction(c.Params("action"))

	if err := s.reactionService.Unreact(c.Context(), currentUserID(c), postID, action); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUserReactions handles GET /api/users/:id/reactions
func (s *Server) GetUserReactions(c *fiber.Ctx) error {
	authorID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid user id"))
	}

	reactions, err := s.reactionService.GetUserReactions(c.Context(), currentUserID(c), authorID, parseCursorPage(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"reactions": reactions,
		"count":     len(reactions),
	})
}
