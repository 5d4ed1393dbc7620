package db

import (
	"net/http"

	"github.com/pkg/errors"
	errs "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPostNotFound = errs.New("post not found", http.StatusNotFound)

// PostRepository stores the community feed
type PostRepository interface {
	CreatePost(post *models.Post) error
	FindPostByID(postID uint) (*models.Post, error)
	ListPosts(userID uint, p models.Pagination) ([]models.Post, int64, error)
	DeletePost(postID, ownerID uint) error
	LikePost(postID, userID uint) (*models.Post, error)
	UnlikePost(postID, userID uint) (*models.Post, error)
	AddComment(comment *models.Comment) error
	ListComments(postID uint, p models.Pagination) ([]models.Comment, int64, error)
}

type postRepo struct {
	DB *gorm.DB
}

func NewPostRepo(db *GormDB) PostRepository {
	return &postRepo{db.DB}
}

func (r *postRepo) CreatePost(post *models.Post) error {
	return r.DB.Create(post).Error
}

func (r *postRepo) FindPostByID(postID uint) (*models.Post, error) {
	var post models.Post
	if err := r.DB.Preload("User").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// ListPosts returns the newest posts with LikedByMe set for userID.
func (r *postRepo) ListPosts(userID uint, p models.Pagination) ([]models.Post, int64, error) {
	var (
		posts []models.Post
		total int64
	)
	if err := r.DB.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count posts")
	}
	p = p.Normalize()
	if err := r.DB.Preload("User").Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&posts).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list posts")
	}
	if userID == 0 || len(posts) == 0 {
		return posts, total, nil
	}

	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	var liked []uint
	if err := r.DB.Model(&models.Like{}).Where("user_id = ? AND post_id IN ?", userID, ids).Pluck("post_id", &liked).Error; err != nil {
		return nil, 0, errors.Wrap(err, "liked posts")
	}
	set := make(map[uint]bool, len(liked))
	for _, id := range liked {
		set[id] = true
	}
	for i := range posts {
		posts[i].LikedByMe = set[posts[i].ID]
	}
	return posts, total, nil
}

// DeletePost soft-deletes a post; ownerID 0 deletes any post.
func (r *postRepo) DeletePost(postID, ownerID uint) error {
	q := r.DB.Where("id = ?", postID)
	if ownerID != 0 {
		q = q.Where("user_id = ?", ownerID)
	}
	result := q.Delete(&models.Post{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// LikePost records one like per user; repeating it is a no-op.
func (r *postRepo) LikePost(postID, userID uint) (*models.Post, error) {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Post{}, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Like{PostID: postID, UserID: userID})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindPostByID(postID)
}

func (r *postRepo) UnlikePost(postID, userID uint) (*models.Post, error) {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Unscoped().Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Post{}).Where("id = ? AND likes_count > 0", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindPostByID(postID)
}

func (r *postRepo) AddComment(comment *models.Comment) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Post{}, comment.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
}

func (r *postRepo) ListComments(postID uint, p models.Pagination) ([]models.Comment, int64, error) {
	var (
		comments []models.Comment
		total    int64
	)
	q := r.DB.Model(&models.Comment{}).Where("post_id = ?", postID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count comments")
	}
	p = p.Normalize()
	if err := q.Preload("User").Order("created_at ASC").Offset(p.Offset()).Limit(p.Limit).Find(&comments).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list comments")
	}
	return comments, total, nil
}
