package service

import (
	"context"

	"perch/internal/models"
	"perch/internal/repository"
	"perch/internal/storage"
	"perch/internal/validation"
)

// PostService assembles permission-filtered, enriched post and comment
// collections.
type PostService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	visibility *VisibilityService
	signer     storage.URLSigner
}

// CreatePostInput is the input shape for creating a post or comment.
type CreatePostInput struct {
	AuthorID     uint
	Content      string
	Images       []string
	ParentPostID *uint
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	visibility *VisibilityService,
	signer storage.URLSigner,
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		visibility: visibility,
		signer:     signer,
	}
}

// CreatePost creates a top-level post, or a comment when ParentPostID is set.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.CreatePost(in.Content, in.Images); err != nil {
		return nil, err
	}

	if in.ParentPostID != nil {
		parent, err := s.postRepo.GetByID(ctx, *in.ParentPostID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, models.NewNotFoundError("Post")
		}
		if parent.IsComment() {
			return nil, models.NewConflictError("Cannot comment on a comment")
		}
	}

	images := in.Images
	if images == nil {
		images = []string{}
	}

	post := &models.Post{
		AuthorID:     in.AuthorID,
		Content:      in.Content,
		Images:       images,
		ParentPostID: in.ParentPostID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if err := s.enrichPosts(ctx, []*models.Post{created}); err != nil {
		return nil, err
	}
	return created, nil
}

// GetLatestPosts returns the viewer's global chronological feed: top-level
// posts by public authors unioned with private authors the viewer follows.
// Exclusion happens in the query, not per item.
func (s *PostService) GetLatestPosts(ctx context.Context, viewerID uint, page repository.CursorPage) ([]*models.Post, error) {
	posts, err := s.postRepo.ListLatest(ctx, viewerID, page)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, models.NewNotFoundError("Posts")
	}
	if err := s.enrichPosts(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns one post. A viewer without read permission on the author
// gets an invalid-user error, not the silent exclusion the list endpoints
// use.
func (s *PostService) GetPost(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post")
	}

	if viewerID != post.AuthorID {
		ok, err := s.visibility.CanView(ctx, viewerID, post.AuthorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, models.NewInvalidUserError("You cannot view this user's posts")
		}
	}

	if err := s.enrichPosts(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// GetUserPosts returns an author's top-level posts. Permission is checked
// once up front; a denied viewer gets invalid-user before any fetch, so the
// error path does not leak whether the author has posts.
func (s *PostService) GetUserPosts(ctx context.Context, viewerID, authorID uint, page repository.CursorPage) ([]*models.Post, error) {
	if err := s.requireAuthorVisible(ctx, viewerID, authorID); err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByAuthor(ctx, authorID, page)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, models.NewNotFoundError("Posts")
	}
	if err := s.enrichPosts(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPostComments returns the comments on a post.
func (s *PostService) GetPostComments(ctx context.Context, viewerID, postID uint, page repository.CursorPage) ([]*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post")
	}

	if viewerID != post.AuthorID {
		ok, err := s.visibility.CanView(ctx, viewerID, post.AuthorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, models.NewInvalidUserError("You cannot view this user's posts")
		}
	}

	comments, err := s.postRepo.ListCommentsByPost(ctx, postID, page)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, models.NewNotFoundError("Comments")
	}
	if err := s.enrichPosts(ctx, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// GetUserComments returns an author's comments, gated like GetUserPosts.
func (s *PostService) GetUserComments(ctx context.Context, viewerID, authorID uint, page repository.CursorPage) ([]*models.Post, error) {
	if err := s.requireAuthorVisible(ctx, viewerID, authorID); err != nil {
		return nil, err
	}

	comments, err := s.postRepo.ListCommentsByAuthor(ctx, authorID, page)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, models.NewNotFoundError("Comments")
	}
	if err := s.enrichPosts(ctx, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// DeletePost removes a post. Only the author may delete it.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return models.NewNotFoundError("Post")
	}
	if post.AuthorID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

// requireAuthorVisible applies the up-front by-author permission gate.
// Self-access bypasses the resolver so owners always reach their own
// content, including when hidden.
func (s *PostService) requireAuthorVisible(ctx context.Context, viewerID, authorID uint) error {
	if viewerID == authorID {
		return nil
	}
	ok, err := s.visibility.CanView(ctx, viewerID, authorID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewInvalidUserError("You cannot view this user's posts")
	}
	return nil
}

// enrichPosts resolves every opaque storage key on the posts to a signed,
// time-limited URL.
func (s *PostService) enrichPosts(ctx context.Context, posts []*models.Post) error {
	return signPostMedia(ctx, s.signer, posts)
}

// signPostMedia resolves the opaque storage keys on the posts to signed,
// time-limited URLs. Replacement is positional: output ordering matches
// input ordering and each image's URL replaces the raw key at its index, so
// repeated or empty key lists stay aligned. Shared by every service that
// returns posts; raw keys never leave the API.
func signPostMedia(ctx context.Context, signer storage.URLSigner, posts []*models.Post) error {
	for _, post := range posts {
		for i, key := range post.Images {
			signed, err := signer.Sign(ctx, key)
			if err != nil {
				return err
			}
			post.Images[i] = signed.URL
		}
		if post.Author.AvatarKey != "" {
			signed, err := signer.Sign(ctx, post.Author.AvatarKey)
			if err != nil {
				return err
			}
			post.Author.AvatarKey = signed.URL
		}
	}
	return nil
}
