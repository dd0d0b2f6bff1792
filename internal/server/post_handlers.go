// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"perch/internal/models"
	"perch/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/posts: the newest visible top-level posts for
// the authenticated viewer.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	posts, err := s.postService.GetLatestPosts(c.Context(), currentUserID(c), parseCursorPage(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"posts": posts,
		"count": len(posts),
	})
}

// CreatePost handles POST /api/posts. A parent_post_id turns the post into
// a comment on that parent.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Content      string   `json:"content"`
		Images       []string `json:"images"`
		ParentPostID *uint    `json:"parent_post_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID:     currentUserID(c),
		Content:      req.Content,
		Images:       req.Images,
		ParentPostID: req.ParentPostID,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid post id"))
	}

	post, err := s.postService.GetPost(c.Context(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid post id"))
	}

	if err := s.postService.DeletePost(c.Context(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPostComments handles GET /api/posts/:id/comments
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid post id"))
	}

	comments, err := s.postService.GetPostComments(c.Context(), currentUserID(c), postID, parseCursorPage(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"comments": comments,
		"count":    len(comments),
	})
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	authorID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid user id"))
	}

	posts, err := s.postService.GetUserPosts(c.Context(), currentUserID(c), authorID, parseCursorPage(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"posts": posts,
		"count": len(posts),
	})
}

// GetUserComments handles GET /api/users/:id/comments
func (s *Server) GetUserComments(c *fiber.Ctx) error {
	authorID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid user id"))
	}

	comments, err := s.postService.GetUserComments(c.Context(), currentUserID(c), authorID, parseCursorPage(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"comments": comments,
		"count":    len(comments),
	})
}
