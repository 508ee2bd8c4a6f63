package posts

import (
	"context"
	"errors"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"gorm.io/gorm"

	"github.com/oggyb/nameless/internal/app"
	"github.com/oggyb/nameless/internal/auth"
	"github.com/oggyb/nameless/internal/db"
	svcErr "github.com/oggyb/nameless/internal/errors"
	"github.com/oggyb/nameless/internal/mutation"
	"github.com/oggyb/nameless/internal/repository"
	"github.com/oggyb/nameless/internal/search"
	"github.com/oggyb/nameless/internal/utils/pagination"
	"github.com/oggyb/nameless/internal/validate"
)

// SearchHits caps how many index hits a text query considers.
const SearchHits = 1000

// PostRequest is the body of a create or update.
type PostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate checks title (30-100 characters) and content (200-5000).
func (r PostRequest) Validate() error {
	return validate.Check(validation.ValidateStruct(&r,
		validation.Field(&r.Title, validate.Title...),
		validation.Field(&r.Content, validate.Content...),
	))
}

// Service implements the posts API.
type Service struct {
	appCtx *app.AppContext
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

// List returns posts ordered by likes, newest first among equals.
//
// Behavior:
//   - An empty query lists everything.
//   - Otherwise titles are searched in the index and only hits are listed,
//     still in likes order.
//
// Example:
//
//	svc.List(ctx, "postgres", pagination.Page{Number: 1, Size: 10})
func (s *Service) List(ctx context.Context, query string, page pagination.Page) ([]db.Post, error) {
	s.appCtx.Logger.Debug("List posts called", "query", query, "page", page.Number)

	filter := repository.PostFilter{}
	if query = validate.Normalize(query); query != "" {
		ids, err := s.search(ctx, query)
		if err != nil {
			return nil, err
		}
		filter.IDs = ids
	}

	posts, err := s.appCtx.Store.Posts.List(ctx, filter, page)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return posts, nil
}

// Mine lists the caller's own posts.
func (s *Service) Mine(ctx context.Context, id auth.Identity, page pagination.Page) ([]db.Post, error) {
	posts, err := s.appCtx.Store.Posts.List(ctx, repository.PostFilter{OwnerID: id.ID}, page)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return posts, nil
}

func (s *Service) Get(ctx context.Context, postID uint64) (*db.Post, error) {
	return Load(ctx, s.appCtx.Store, postID)
}

// Create publishes a post owned by the caller. A title or body that already
// exists fails Conflict.
func (s *Service) Create(ctx context.Context, id auth.Identity, req PostRequest) (*db.Post, error) {
	s.appCtx.Logger.Debug("Create post called", "user_id", id.ID)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := &db.Post{
		OwnerID:       id.ID,
		OwnerUsername: id.Username,
		Title:         req.Title,
		Content:       req.Content,
	}
	if err := s.appCtx.Mutation.CreatePost(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update rewrites one of the caller's posts. Someone else's post fails
// NotFound, exactly like a missing one.
func (s *Service) Update(ctx context.Context, id auth.Identity, postID uint64, req PostRequest) (*db.Post, error) {
	s.appCtx.Logger.Debug("Update post called", "user_id", id.ID, "post_id", postID)

	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := s.owned(ctx, id, postID)
	if err != nil {
		return nil, err
	}

	if err := s.appCtx.Mutation.UpdatePost(ctx, p, req.Title, req.Content, mutation.Notice{}); err != nil {
		return nil, err
	}
	p.Title, p.Content = req.Title, req.Content
	p.ContentHash = db.ContentHash(req.Content)
	return p, nil
}

// Delete removes one of the caller's posts with its likes.
func (s *Service) Delete(ctx context.Context, id auth.Identity, postID uint64) error {
	s.appCtx.Logger.Debug("Delete post called", "user_id", id.ID, "post_id", postID)

	p, err := s.owned(ctx, id, postID)
	if err != nil {
		return err
	}
	return s.appCtx.Mutation.DeletePost(ctx, p, mutation.Notice{})
}

// ToggleLike likes the post, or unlikes it when the caller already did.
func (s *Service) ToggleLike(ctx context.Context, id auth.Identity, postID uint64) (*db.Post, bool, error) {
	s.appCtx.Logger.Debug("ToggleLike called", "user_id", id.ID, "post_id", postID)

	liked, _, err := s.appCtx.Mutation.ToggleLike(ctx, id.ID, postID)
	if err != nil {
		return nil, false, err
	}
	p, err := Load(ctx, s.appCtx.Store, postID)
	if err != nil {
		return nil, false, err
	}
	return p, liked, nil
}

func (s *Service) owned(ctx context.Context, id auth.Identity, postID uint64) (*db.Post, error) {
	p, err := Load(ctx, s.appCtx.Store, postID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnership(id, p.OwnerID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) search(ctx context.Context, query string) ([]uint64, error) {
	hits, err := s.appCtx.Index.Search(ctx, search.Posts, search.FieldTitle, query, SearchHits)
	if err != nil {
		s.appCtx.Logger.Error("post search failed", "query", query, "err", err)
		return nil, svcErr.Internal("search posts", err)
	}

	ids := make([]uint64, 0, len(hits))
	for _, h := range hits {
		id, err := strconv.ParseUint(h, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Load fetches a post; a missing one fails NotFound.
func Load(ctx context.Context, store *repository.Store, postID uint64) (*db.Post, error) {
	p, err := store.Posts.GetByID(ctx, postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("post not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return p, nil
}
