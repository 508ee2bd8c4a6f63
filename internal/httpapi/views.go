package httpapi

import (
	"time"

	"github.com/oggyb/nameless/internal/db"
)

// UserView is the public profile of an account.
type UserView struct {
	ID       string  `json:"uuid"`
	Username string  `json:"username"`
	AboutMe  *string `json:"about_me"`
	Likes    int64   `json:"likes"`
	Role     db.Role `json:"role"`
}

// StaffUserView adds the email for admin listings.
type StaffUserView struct {
	UserView
	Email string `json:"email"`
}

type AuthorView struct {
	Username string `json:"username"`
	Likes    int64  `json:"likes"`
}

// PostSummary is a post in a listing, without its body.
type PostSummary struct {
	ID            uint64    `json:"id"`
	OwnerUsername string    `json:"owner_username"`
	Title         string    `json:"title"`
	Likes         int64     `json:"likes"`
	CreatedAt     time.Time `json:"created_at"`
}

type PostView struct {
	PostSummary
	Content string `json:"content"`
}

func userView(u *db.User) UserView {
	return UserView{ID: u.ID, Username: u.Username, AboutMe: u.AboutMe, Likes: u.Likes, Role: u.Role}
}

func postSummary(p *db.Post) PostSummary {
	return PostSummary{ID: p.ID, OwnerUsername: p.OwnerUsername, Title: p.Title, Likes: p.Likes, CreatedAt: p.CreatedAt}
}

func postView(p *db.Post) PostView {
	return PostView{PostSummary: postSummary(p), Content: p.Content}
}

func postSummaries(posts []db.Post) []PostSummary {
	out := make([]PostSummary, 0, len(posts))
	for i := range posts {
		out = append(out, postSummary(&posts[i]))
	}
	return out
}

func authorViews(users []db.User) []AuthorView {
	out := make([]AuthorView, 0, len(users))
	for _, u := range users {
		out = append(out, AuthorView{Username: u.Username, Likes: u.Likes})
	}
	return out
}

func staffViews(users []db.User) []StaffUserView {
	out := make([]StaffUserView, 0, len(users))
	for i := range users {
		out = append(out, StaffUserView{UserView: userView(&users[i]), Email: users[i].Email})
	}
	return out
}
