package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blogstack/blogstack/internal/models"
)

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// listPostsHandler godoc
// @Summary List posts
// @Description Returns all posts, newest first
// @Tags posts
// @Accept json
// @Produce json
// @Success 200 {array} models.Post
// @Failure 500 {object} ErrorResponse
// @Router /posts [get]
func (s *Server) listPostsHandler(c *gin.Context) {
	ctx := c.Request.Context()

	// Empty slice, not nil, so an empty table serializes as [] and not null
	posts := []models.Post{}
	if err := s.db.DB().WithContext(ctx).
		Order("created_at desc").
		Find(&posts).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list posts")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list posts"})
		return
	}

	c.JSON(http.StatusOK, posts)
}

// getPostHandler godoc
// @Summary Get a post
// @Description Returns one post with its comments
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) getPostHandler(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid post id"})
		return
	}

	var post models.Post
	if err := s.db.DB().WithContext(ctx).
		Preload("Comments").
		First(&post, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "post not found"})
			return
		}
		s.logger.Error().Err(err).Uint64("id", id).Msg("Failed to get post")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to get post"})
		return
	}

	c.JSON(http.StatusOK, post)
}
