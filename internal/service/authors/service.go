package authors

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/nameless/internal/app"
	"github.com/oggyb/nameless/internal/db"
	svcErr "github.com/oggyb/nameless/internal/errors"
	"github.com/oggyb/nameless/internal/repository"
	"github.com/oggyb/nameless/internal/search"
	"github.com/oggyb/nameless/internal/utils/pagination"
	"github.com/oggyb/nameless/internal/validate"
)

// SearchHits caps how many index hits a username query considers.
const SearchHits = 1000

// Service implements the public author directory.
type Service struct {
	appCtx *app.AppContext
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

// List returns authors ordered by received likes.
//
// Behavior:
//   - An empty query lists everyone.
//   - Otherwise usernames are matched in the index (partial words match
//     through the edge n-gram analyzer) and only hits are listed.
func (s *Service) List(ctx context.Context, query string, page pagination.Page) ([]db.User, error) {
	s.appCtx.Logger.Debug("List authors called", "query", query, "page", page.Number)

	var ids []string
	if query = validate.Normalize(query); query != "" {
		hits, err := s.appCtx.Index.Search(ctx, search.Users, search.FieldUsername, query, SearchHits)
		if err != nil {
			s.appCtx.Logger.Error("author search failed", "query", query, "err", err)
			return nil, svcErr.Internal("search authors", err)
		}
		ids = append([]string{}, hits...)
	}

	users, err := s.appCtx.Store.Users.List(ctx, ids, page)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return users, nil
}

// Profile returns the author holding username.
func (s *Service) Profile(ctx context.Context, username string) (*db.User, error) {
	u, err := s.appCtx.Store.Users.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("user not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return u, nil
}

// Posts lists the author's posts, most liked first.
func (s *Service) Posts(ctx context.Context, username string, page pagination.Page) ([]db.Post, error) {
	u, err := s.Profile(ctx, username)
	if err != nil {
		return nil, err
	}
	posts, err := s.appCtx.Store.Posts.List(ctx, repository.PostFilter{OwnerID: u.ID}, page)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return posts, nil
}
