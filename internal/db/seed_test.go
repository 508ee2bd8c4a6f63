package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oggyb/nameless/internal/db"
	"github.com/oggyb/nameless/internal/db/dbtest"
)

func TestSeedTestData_KeepsCountersConsistent(t *testing.T) {
	gdb := dbtest.Open(t)

	require.NoError(t, db.SeedTestData(gdb))

	var users []db.User
	require.NoError(t, gdb.Find(&users).Error)
	require.Len(t, users, 12)

	roles := map[db.Role]int{}
	for _, u := range users {
		roles[u.Role]++
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(db.SeedPassword)))
	}
	assert.Equal(t, map[db.Role]int{db.RoleAdmin: 1, db.RoleModerator: 2, db.RoleUser: 9}, roles)

	var posts []db.Post
	require.NoError(t, gdb.Find(&posts).Error)
	for _, p := range posts {
		var n int64
		require.NoError(t, gdb.Model(&db.Like{}).Where("post_id = ?", p.ID).Count(&n).Error)
		assert.Equal(t, n, p.Likes, "post %d", p.ID)
		assert.Equal(t, db.ContentHash(p.Content), p.ContentHash)
	}
}

func TestRole_AtLeast(t *testing.T) {
	assert.True(t, db.RoleAdmin.AtLeast(db.RoleModerator))
	assert.True(t, db.RoleModerator.AtLeast(db.RoleModerator))
	assert.False(t, db.RoleUser.AtLeast(db.RoleModerator))
	assert.False(t, db.Role("root").AtLeast(db.RoleUser))
	assert.False(t, db.Role("root").Valid())
}
