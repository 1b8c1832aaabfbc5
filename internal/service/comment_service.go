package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lena210296/ProjectBlog/internal/middleware"
	"github.com/lena210296/ProjectBlog/internal/models"
	"github.com/lena210296/ProjectBlog/internal/observability"
	"github.com/lena210296/ProjectBlog/internal/pagination"
	"github.com/lena210296/ProjectBlog/internal/repository"
	"github.com/lena210296/ProjectBlog/internal/tasks"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	queue       tasks.Queue
}

type SubmitCommentInput struct {
	PostID uint
	// Author is nil for an anonymous visitor.
	Author      *models.User
	Content     string
	IsAnonymous bool
}

// CommentPage is one page of a post's approved comments.
type CommentPage struct {
	Comments []*models.Comment
	pagination.Page
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	queue tasks.Queue,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		queue:       queue,
	}
}

// SubmitComment stores a pending comment and notifies the admin and, when
// someone else commented, the post author.
func (s *CommentService) SubmitComment(ctx context.Context, in SubmitCommentInput) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if in.Content == "" {
		return nil, models.NewFieldError("content", "This field is required.")
	}

	comment := &models.Comment{
		PostID:      post.ID,
		Content:     in.Content,
		IsAnonymous: in.IsAnonymous,
		IsApproved:  false,
	}
	if in.Author != nil {
		id := in.Author.ID
		comment.AuthorID = &id
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}

	tasks.Dispatch(ctx, s.queue, tasks.JobSendAdminMessage, fmt.Sprintf("New comment with id %d submitted.", comment.ID))
	if in.Author == nil || in.Author.ID != post.AuthorID {
		tasks.Dispatch(ctx, s.queue, tasks.JobSendUserMessage,
			post.Author.Username,
			fmt.Sprintf("Your post received a new comment %s.", comment.Content),
		)
	}
	return comment, nil
}

// ListApproved pages through the visible comments of a post.
func (s *CommentService) ListApproved(ctx context.Context, postID uint, rawPage string, perPage int) (*CommentPage, error) {
	total, err := s.commentRepo.CountApprovedByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	page := pagination.Resolve(rawPage, total, perPage)

	comments, err := s.commentRepo.ListApprovedByPost(ctx, postID, page.Limit(), page.Offset())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &CommentPage{Comments: comments, Page: page}, nil
}

func (s *CommentService) ListForModeration(ctx context.Context, approved *bool, limit int) ([]*models.Comment, error) {
	return s.commentRepo.List(ctx, repository.CommentFilter{Approved: approved, Limit: limit})
}

// Approve marks the selected comments visible.
func (s *CommentService) Approve(ctx context.Context, ids []uint) (int64, error) {
	n, err := s.commentRepo.Approve(ctx, ids)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	observability.CommentsModerated.WithLabelValues("approve").Add(float64(n))
	middleware.Logger.InfoContext(ctx, "comments approved", slog.Int64("count", n))
	return n, nil
}

// Reject deletes the selected comments permanently.
func (s *CommentService) Reject(ctx context.Context, ids []uint) (int64, error) {
	n, err := s.commentRepo.Delete(ctx, ids)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	observability.CommentsModerated.WithLabelValues("reject").Add(float64(n))
	middleware.Logger.InfoContext(ctx, "comments rejected", slog.Int64("count", n))
	return n, nil
}
