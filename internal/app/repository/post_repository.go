package repository

import (
	"github.com/carauction/carauction-backend/internal/app/model"
	"github.com/carauction/carauction-backend/pkg/logger"
	"gorm.io/gorm"
)

type PostRepository interface {
	List(offset, limit int) ([]model.Post, int64, error)
	FindByID(id uint) (*model.Post, error)
	Create(post *model.Post) error
	Update(post *model.Post) error
	Delete(id uint) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// List returns one page of posts, newest first, with the author preloaded.
func (r *postRepository) List(offset, limit int) ([]model.Post, int64, error) {
	var (
		posts []model.Post
		total int64
	)

	if err := r.db.Model(&model.Post{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count posts", err)
		return nil, 0, err
	}

	err := r.db.Preload("Customer").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		logger.Error("Failed to list posts", err, map[string]interface{}{
			"offset": offset,
			"limit":  limit,
		})
		return nil, 0, err
	}

	logger.Debug("Posts listed", map[string]interface{}{
		"count": len(posts),
		"total": total,
	})
	return posts, total, nil
}

func (r *postRepository) FindByID(id uint) (*model.Post, error) {
	var post model.Post
	if err := r.db.Preload("Customer").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(post *model.Post) error {
	if err := r.db.Omit("Customer").Create(post).Error; err != nil {
		logger.Error("Failed to create post", err, map[string]interface{}{
			"customer_id": post.CustomerID,
		})
		return err
	}
	logger.Debug("Post created in database", map[string]interface{}{
		"post_id":     post.ID,
		"customer_id": post.CustomerID,
	})
	return nil
}

func (r *postRepository) Update(post *model.Post) error {
	err := r.db.Model(post).
		Select("title", "description", "image_urls").
		Updates(post).Error
	if err != nil {
		logger.Error("Failed to update post", err, map[string]interface{}{
			"post_id": post.ID,
		})
		return err
	}
	return nil
}

func (r *postRepository) Delete(id uint) error {
	res := r.db.Delete(&model.Post{}, id)
	if res.Error != nil {
		logger.Error("Failed to delete post", res.Error, map[string]interface{}{
			"post_id": id,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
