package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/nameless/internal/db"
	"github.com/oggyb/nameless/internal/utils/pagination"
)

// PostRepository provides data access methods for the Post model.
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new repository bound to the given DB connection.
func NewPostRepository(database *gorm.DB) *PostRepository {
	return &PostRepository{db: database}
}

// PostFilter narrows List. Zero fields do not filter.
type PostFilter struct {
	// IDs restricts to these posts when non-nil (an empty slice matches nothing).
	IDs           []uint64
	OwnerID       string
	OwnerUsername string
}

// Create inserts p. Duplicate titles or bodies fail with gorm.ErrDuplicatedKey.
func (r *PostRepository) Create(ctx context.Context, p *db.Post) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// GetByID returns gorm.ErrRecordNotFound when the post does not exist.
func (r *PostRepository) GetByID(ctx context.Context, id uint64) (*db.Post, error) {
	var p db.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns posts ordered by likes DESC, created_at DESC.
//
// Example:
//
//	repo.List(ctx, repository.PostFilter{OwnerUsername: "alice"}, pagination.Page{Size: 10})
func (r *PostRepository) List(ctx context.Context, f PostFilter, page pagination.Page) ([]db.Post, error) {
	q := r.db.WithContext(ctx).Model(&db.Post{})
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return []db.Post{}, nil
		}
		q = q.Where("id IN ?", f.IDs)
	}
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.OwnerUsername != "" {
		q = q.Where("owner_username = ?", f.OwnerUsername)
	}

	var posts []db.Post
	err := q.Order("likes DESC").Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&posts).Error
	return posts, err
}

// IDsByOwner returns the ids of every post owned by ownerID.
func (r *PostRepository) IDsByOwner(ctx context.Context, ownerID string) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&db.Post{}).
		Where("owner_id = ?", ownerID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// Update rewrites title and content of post id, keeping ContentHash in step.
func (r *PostRepository) Update(ctx context.Context, id uint64, title, content string) error {
	res := r.db.WithContext(ctx).Model(&db.Post{}).Where("id = ?", id).Updates(map[string]any{
		"title":        title,
		"content":      content,
		"content_hash": db.ContentHash(content),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RenameOwner rewrites the denormalized owner_username on all of ownerID's posts.
func (r *PostRepository) RenameOwner(ctx context.Context, ownerID, username string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&db.Post{}).
		Where("owner_id = ?", ownerID).
		UpdateColumn("owner_username", username)
	return res.RowsAffected, res.Error
}

// AddLikes shifts the post's like counter by delta.
func (r *PostRepository) AddLikes(ctx context.Context, id uint64, delta int64) error {
	return r.db.WithContext(ctx).Model(&db.Post{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + ?", delta)).Error
}

// Delete removes the post row only. Likes are the caller's job.
func (r *PostRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&db.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
