package api

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/blogstack/blogstack/internal/config"
	"github.com/blogstack/blogstack/internal/database"
	"github.com/blogstack/blogstack/internal/models"
)

// setupTestServer creates a Server backed by an in-memory SQLite database
func setupTestServer(t *testing.T) (*Server, *gorm.DB) {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gormDB.AutoMigrate(&models.Post{}, &models.Comment{}))

	db := database.NewDatabase(database.Options{Target: "test"})
	db.SetDB(gormDB)

	server, err := NewServer(config.NewDefault(), db, zerolog.New(nil).Level(zerolog.Disabled))
	require.NoError(t, err)

	return server, gormDB
}
