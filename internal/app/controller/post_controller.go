package controller

import (
	"net/http"
	"strconv"

	"github.com/carauction/carauction-backend/internal/app/service"
	apperrors "github.com/carauction/carauction-backend/internal/errors"
	"github.com/carauction/carauction-backend/internal/middleware"
	"github.com/carauction/carauction-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

const postImageFolder = "posts"

type PostController struct {
	postService service.PostService
	storage     storage.Storage
}

func NewPostController(postService service.PostService, store storage.Storage) *PostController {
	return &PostController{
		postService: postService,
		storage:     store,
	}
}

type PostRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description" binding:"required"`
	ImageURLs   []string `json:"imageUrls" binding:"omitempty,max=10,dive,required,max=512"`
}

func (r PostRequest) input() service.PostInput {
	return service.PostInput{
		Title:       r.Title,
		Description: r.Description,
		ImageURLs:   r.ImageURLs,
	}
}

// ListPosts returns one page of posts, newest first
// GET /api/posts?page=N
func (ctrl *PostController) ListPosts(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	posts, total, err := ctrl.postService.ListPosts(page)
	if err != nil {
		respondWithServiceError(c, err, "post")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "posts",
		"data":    posts,
		"total":   total,
		"page":    page,
	})
}

// GetPost returns a single post
// GET /api/posts/:id
func (ctrl *PostController) GetPost(c *gin.Context) {
	id, ok := parsePostID(c)
	if !ok {
		return
	}

	post, err := ctrl.postService.GetPost(id)
	if err != nil {
		respondWithServiceError(c, err, "post")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "single post",
		"data":    post,
	})
}

// CreatePost publishes a post for the authenticated customer
// POST /api/posts
func (ctrl *PostController) CreatePost(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, err)
		return
	}

	post, err := ctrl.postService.CreatePost(userID, req.input())
	if err != nil {
		respondWithServiceError(c, err, "post")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "created",
		"data":    post,
	})
}

// UpdatePost edits a post owned by the caller (or any post for admins)
// PUT /api/posts/:id
func (ctrl *PostController) UpdatePost(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parsePostID(c)
	if !ok {
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, err)
		return
	}

	role, _ := middleware.GetUserRole(c)
	post, err := ctrl.postService.UpdatePost(id, userID, role, req.input())
	if err != nil {
		respondWithServiceError(c, err, "post")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "updated",
		"data":    post,
	})
}

// DeletePost removes a post owned by the caller (or any post for admins)
// DELETE /api/posts/:id
func (ctrl *PostController) DeletePost(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parsePostID(c)
	if !ok {
		return
	}

	role, _ := middleware.GetUserRole(c)
	if err := ctrl.postService.DeletePost(id, userID, role); err != nil {
		respondWithServiceError(c, err, "post")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "deleted",
	})
}

// UploadImage stores a car photo and returns its URL for use in imageUrls
// POST /api/posts/images
func (ctrl *PostController) UploadImage(c *gin.Context) {
	if _, err := c.FormFile("image"); err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{
			"image": "Image is required",
		})
		return
	}

	url, ok := saveUpload(c, ctrl.storage, "image", postImageFolder)
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "uploaded",
		"url":     url,
	})
}

func parsePostID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid post ID")
		return 0, false
	}
	return uint(id), true
}
