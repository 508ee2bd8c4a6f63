package db

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a user's privilege tier, ordered user < moderator < admin.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

var roleRank = map[Role]int{
	RoleUser:      1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r sits at or above min in the hierarchy.
// Unknown roles never pass.
func (r Role) AtLeast(min Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	return have >= roleRank[min]
}

// User table.
//
// Fields:
//   - ID: opaque uuid, also the subject of access/refresh tokens.
//   - Username, Email: globally unique.
//   - PasswordHash: bcrypt hash, never the plaintext.
//   - Likes: likes received across all of the user's posts.
//   - Role: changed only by admins.
type User struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Username     string    `gorm:"uniqueIndex;size:20;not null"`
	Email        string    `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	AboutMe      *string   `gorm:"type:text"`
	Likes        int64     `gorm:"not null;default:0;index"`
	Role         Role      `gorm:"size:16;not null;default:user"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// BeforeCreate assigns a uuid when the caller did not.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// Post is a piece of content owned by a user.
//
// OwnerUsername mirrors User.Username and is rewritten on every rename.
// Likes always equals the number of Like rows for the post.
type Post struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	OwnerID       string    `gorm:"size:36;not null;index"`
	OwnerUsername string    `gorm:"size:20;not null;index"`
	Title         string    `gorm:"uniqueIndex;size:100;not null"`
	Content       string    `gorm:"type:text;not null"`
	ContentHash   string    `gorm:"uniqueIndex;size:64;not null"`
	Likes         int64     `gorm:"not null;default:0;index:idx_posts_likes_created,priority:1,sort:desc"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index:idx_posts_likes_created,priority:2,sort:desc"`
}

// BeforeCreate fills ContentHash so duplicate bodies hit the unique index.
func (p *Post) BeforeCreate(*gorm.DB) error {
	p.ContentHash = ContentHash(p.Content)
	return nil
}

// ContentHash is the hex sha256 of a post body. Bodies are too long for a
// portable unique index, the hash is not.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Like marks that a user liked a post.
//
// Composite PK: (UserID, PostID)
//   - At most one row per pair; existence is the toggle state.
type Like struct {
	UserID    string    `gorm:"primaryKey;size:36"`
	PostID    uint64    `gorm:"primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Models lists every table, in migration order.
func Models() []any {
	return []any{&User{}, &Post{}, &Like{}}
}
