package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/carauction/carauction-backend/internal/app/model"
	"github.com/carauction/carauction-backend/internal/app/repository"
	"github.com/carauction/carauction-backend/pkg/logger"
	"gorm.io/gorm"
)

// PostsPerPage is the fixed listing page size.
const PostsPerPage = 10

// Live feed event types.
const (
	EventPostCreated = "post_created"
	EventPostUpdated = "post_updated"
	EventPostDeleted = "post_deleted"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrPostForbidden = errors.New("you are not allowed to modify this post")
)

// PostEvent is pushed to live feed subscribers after a successful mutation.
type PostEvent struct {
	Type   string      `json:"type"`
	PostID uint        `json:"postId"`
	Post   *model.Post `json:"post,omitempty"`
}

// PostNotifier fans events out to subscribers. Delivery is best effort.
type PostNotifier interface {
	Broadcast(message interface{}) error
}

// PostInput carries the editable fields of a post.
type PostInput struct {
	Title       string
	Description string
	ImageURLs   []string
}

type PostService interface {
	ListPosts(page int) ([]model.Post, int64, error)
	GetPost(id uint) (*model.Post, error)
	CreatePost(customerID uint, input PostInput) (*model.Post, error)
	UpdatePost(id, customerID uint, role string, input PostInput) (*model.Post, error)
	DeletePost(id, customerID uint, role string) error
}

type postService struct {
	postRepo     repository.PostRepository
	customerRepo repository.CustomerRepository
	notifier     PostNotifier
}

// NewPostService builds the service; notifier may be nil.
func NewPostService(postRepo repository.PostRepository, customerRepo repository.CustomerRepository, notifier PostNotifier) PostService {
	return &postService{
		postRepo:     postRepo,
		customerRepo: customerRepo,
		notifier:     notifier,
	}
}

func (s *postService) ListPosts(page int) ([]model.Post, int64, error) {
	if page < 1 {
		page = 1
	}
	return s.postRepo.List((page-1)*PostsPerPage, PostsPerPage)
}

func (s *postService) GetPost(id uint) (*model.Post, error) {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *postService) CreatePost(customerID uint, input PostInput) (*model.Post, error) {
	if _, err := s.customerRepo.FindByID(customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	post := &model.Post{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		ImageURLs:   model.StringList(input.ImageURLs),
		CustomerID:  customerID,
	}
	if err := s.postRepo.Create(post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	created, err := s.GetPost(post.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Post created", map[string]interface{}{
		"post_id":     created.ID,
		"customer_id": customerID,
	})
	s.publish(EventPostCreated, created.ID, created)
	return created, nil
}

func (s *postService) UpdatePost(id, customerID uint, role string, input PostInput) (*model.Post, error) {
	post, err := s.authorize(id, customerID, role)
	if err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(input.Title)
	post.Description = input.Description
	post.ImageURLs = model.StringList(input.ImageURLs)
	if err := s.postRepo.Update(post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	logger.Info("Post updated", map[string]interface{}{
		"post_id":     post.ID,
		"customer_id": customerID,
	})
	s.publish(EventPostUpdated, post.ID, post)
	return post, nil
}

func (s *postService) DeletePost(id, customerID uint, role string) error {
	if _, err := s.authorize(id, customerID, role); err != nil {
		return err
	}
	if err := s.postRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}

	logger.Info("Post deleted", map[string]interface{}{
		"post_id":     id,
		"customer_id": customerID,
		"role":        role,
	})
	s.publish(EventPostDeleted, id, nil)
	return nil
}

// authorize loads the post and allows the owner or an admin.
func (s *postService) authorize(id, customerID uint, role string) (*model.Post, error) {
	post, err := s.GetPost(id)
	if err != nil {
		return nil, err
	}
	if role != model.RoleAdmin && post.CustomerID != customerID {
		logger.Warn("Post modification forbidden", map[string]interface{}{
			"post_id":     id,
			"owner_id":    post.CustomerID,
			"customer_id": customerID,
		})
		return nil, ErrPostForbidden
	}
	return post, nil
}

func (s *postService) publish(eventType string, postID uint, post *model.Post) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Broadcast(PostEvent{Type: eventType, PostID: postID, Post: post}); err != nil {
		logger.Warn("Failed to publish post event", map[string]interface{}{
			"type":    eventType,
			"post_id": postID,
			"error":   err.Error(),
		})
	}
}
