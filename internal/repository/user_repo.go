package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/nameless/internal/db"
	"github.com/oggyb/nameless/internal/utils/pagination"
)

// UserRepository provides data access methods for the User model.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts u. A taken username or email fails with gorm.ErrDuplicatedKey.
func (r *UserRepository) Create(ctx context.Context, u *db.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// GetByID returns gorm.ErrRecordNotFound when no user has id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername returns gorm.ErrRecordNotFound when the username is unused.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByLogin finds the user whose username or email equals login.
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Where("username = ? OR email = ?", login, login).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UsernameTaken reports whether any user already holds username.
func (r *UserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

// EmailTaken reports whether any user already holds email.
func (r *UserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *UserRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Where(query, args...).Count(&n).Error
	return n > 0, err
}

// Update writes the given columns of user id.
//
// Behavior:
//   - Returns gorm.ErrRecordNotFound when no row matched.
//   - Unique violations surface as gorm.ErrDuplicatedKey.
//
// Example:
//
//	repo.Update(ctx, id, map[string]any{"email": "new@example.com"})
func (r *UserRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddLikes shifts the user's received-likes counter by delta.
func (r *UserRepository) AddLikes(ctx context.Context, id string, delta int64) error {
	return r.db.WithContext(ctx).Model(&db.User{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + ?", delta)).Error
}

// Delete removes the user row only. Dependent rows are the caller's job.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&db.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns users ordered by likes DESC, username ASC.
// A non-nil ids slice restricts the result to those users.
func (r *UserRepository) List(ctx context.Context, ids []string, page pagination.Page) ([]db.User, error) {
	q := r.db.WithContext(ctx).Model(&db.User{})
	if ids != nil {
		if len(ids) == 0 {
			return []db.User{}, nil
		}
		q = q.Where("id IN ?", ids)
	}

	var users []db.User
	err := q.Order("likes DESC").Order("username ASC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&users).Error
	return users, err
}

// ListByRole returns users holding role, most liked first.
func (r *UserRepository) ListByRole(ctx context.Context, role db.Role, page pagination.Page) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("likes DESC").Order("username ASC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&users).Error
	return users, err
}
