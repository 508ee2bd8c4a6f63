package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/nameless/internal/db"
)

// LikeRepository provides data access methods for the Like join table.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// Exists reports whether userID has liked postID.
func (r *LikeRepository) Exists(ctx context.Context, userID string, postID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&n).Error
	return n > 0, err
}

// Create inserts the (user, post) pair. The composite PK rejects a second like.
func (r *LikeRepository) Create(ctx context.Context, userID string, postID uint64) error {
	return r.db.WithContext(ctx).Create(&db.Like{UserID: userID, PostID: postID}).Error
}

// Delete removes the (user, post) pair and reports whether a row existed.
func (r *LikeRepository) Delete(ctx context.Context, userID string, postID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&db.Like{})
	return res.RowsAffected > 0, res.Error
}

// ByUser lists every like userID has given.
func (r *LikeRepository) ByUser(ctx context.Context, userID string) ([]db.Like, error) {
	var likes []db.Like
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&likes).Error
	return likes, err
}

// DeleteByUser removes every like userID has given.
func (r *LikeRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&db.Like{})
	return res.RowsAffected, res.Error
}

// DeleteByPost removes every like on postID.
func (r *LikeRepository) DeleteByPost(ctx context.Context, postID uint64) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&db.Like{})
	return res.RowsAffected, res.Error
}

// CountByPost counts the likes on postID.
func (r *LikeRepository) CountByPost(ctx context.Context, postID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db.Like{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}
