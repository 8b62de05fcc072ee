// Package testutil sets up throwaway databases and fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/pkg/config"
)

// NewDB opens a migrated in-memory SQLite database private to the test
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.OpenSQLite(":memory:", &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.RunMigration(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateGroup(t *testing.T, db *gorm.DB, slug string) *models.Group {
	t.Helper()

	group := &models.Group{Title: "Group " + slug, Slug: slug, Description: "About " + slug}
	require.NoError(t, db.Create(group).Error)
	return group
}

// CreatePosts stores n posts by author, one second apart, oldest first
func CreatePosts(t *testing.T, db *gorm.DB, author *models.User, group *models.Group, n int) []models.Post {
	t.Helper()

	start := time.Now().Add(-time.Duration(n) * time.Second)
	posts := make([]models.Post, n)
	for i := range posts {
		posts[i] = models.Post{
			Text:      "Post number " + string(rune('a'+i%26)),
			AuthorID:  author.ID,
			CreatedAt: start.Add(time.Duration(i) * time.Second),
		}
		if group != nil {
			posts[i].GroupID = &group.ID
		}
	}
	require.NoError(t, db.Omit("Author", "Group").Create(&posts).Error)
	return posts
}
