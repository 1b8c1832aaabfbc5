package repository

import (
	"context"
	"errors"

	"github.com/lena210296/ProjectBlog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentFilter narrows the admin comment list. A nil Approved matches all.
type CommentFilter struct {
	Approved *bool
	Limit    int
}

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	CountApprovedByPost(ctx context.Context, postID uint) (int64, error)
	ListApprovedByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error)
	List(ctx context.Context, filter CommentFilter) ([]*models.Comment, error)
	Approve(ctx context.Context, ids []uint) (int64, error)
	Delete(ctx context.Context, ids []uint) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) approvedFor(ctx context.Context, postID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ? AND is_approved = ?", postID, true)
}

func (r *commentRepository) CountApprovedByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.approvedFor(ctx, postID).Count(&count).Error
	return count, err
}

func (r *commentRepository) ListApprovedByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.approvedFor(ctx, postID).Preload("Author").
		Order("created_at asc").Order("id asc").
		Limit(limit).Offset(offset).Find(&comments).Error
	return comments, err
}

func (r *commentRepository) List(ctx context.Context, filter CommentFilter) ([]*models.Comment, error) {
	q := r.db.WithContext(ctx).Preload("Author").Preload("Post").Order("created_at desc").Order("id desc")
	if filter.Approved != nil {
		q = q.Where("is_approved = ?", *filter.Approved)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var comments []*models.Comment
	err := q.Find(&comments).Error
	return comments, err
}

// Approve marks ids approved. Already approved rows are matched again, so
// the call is idempotent.
func (r *commentRepository) Approve(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id IN ?", ids).Update("is_approved", true)
	return res.RowsAffected, res.Error
}

// Delete removes ids permanently.
func (r *commentRepository) Delete(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Comment{})
	return res.RowsAffected, res.Error
}
