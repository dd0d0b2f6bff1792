// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"perch/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetConversation handles GET /api/messages/:userId: the cursor-paginated
// history between the caller and the given user, both directions.
func (s *Server) GetConversation(c *fiber.Ctx) error {
	otherID, err := parseID(c, "userId")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid user id"))
	}

	messages, err := s.messageService.History(c.Context(), currentUserID(c), otherID, parseCursorPage(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"messages": messages,
		"count":    len(messages),
	})
}

// DeleteMessage handles DELETE /api/messages/:id. Only the sender may
// delete a message.
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	messageID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid message id"))
	}

	if err := s.messageService.DeleteMessage(c.Context(), currentUserID(c), messageID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
