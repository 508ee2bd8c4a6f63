package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one connection or transaction.
type Store struct {
	db    *gorm.DB
	Users *UserRepository
	Posts *PostRepository
	Likes *LikeRepository
}

// NewStore binds every repository to database.
func NewStore(database *gorm.DB) *Store {
	return &Store{
		db:    database,
		Users: NewUserRepository(database),
		Posts: NewPostRepository(database),
		Likes: NewLikeRepository(database),
	}
}

// Transaction runs fn inside a single database transaction.
//
// Behavior:
//   - fn receives a Store whose repositories all use the transaction.
//   - Returning an error (or panicking) rolls everything back.
//   - Nothing outside the database (index, mail) belongs inside fn.
//
// Example:
//
//	err := store.Transaction(ctx, func(tx *repository.Store) error {
//		return tx.Users.Delete(ctx, id)
//	})
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
