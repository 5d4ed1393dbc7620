package services

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/techagentng/earnly/config"
	"github.com/techagentng/earnly/db"
	apiError "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/models"
)

const maxCaptionLength = 2000

var (
	htmlPolicy = bluemonday.StrictPolicy()

	ErrMediaRequired = apiError.New("a post needs an image", http.StatusBadRequest)
	ErrEmptyComment  = apiError.New("comment cannot be empty", http.StatusBadRequest)
)

// SanitizeText strips markup and trims user supplied text.
func SanitizeText(input string, limit int) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(htmlPolicy.Sanitize(input))
	if limit > 0 && len([]rune(input)) > limit {
		input = string([]rune(input)[:limit])
	}
	return input
}

// PostService interface
type PostService interface {
	CreatePost(ctx context.Context, user *models.User, caption string, media *multipart.FileHeader) (*models.Post, error)
	Feed(userID uint, p models.Pagination) (*models.PagedResult, error)
	GetPost(postID uint) (*models.Post, error)
	LikePost(userID, postID uint) (*models.Post, error)
	UnlikePost(userID, postID uint) (*models.Post, error)
	AddComment(userID, postID uint, req *models.CommentRequest) (*models.Comment, error)
	ListComments(postID uint, p models.Pagination) (*models.PagedResult, error)
	DeletePost(user *models.User, postID uint) error
}

type postService struct {
	Config   *config.Config
	postRepo db.PostRepository
	media    MediaService
}

func NewPostService(postRepo db.PostRepository, media MediaService, conf *config.Config) PostService {
	return &postService{
		postRepo: postRepo,
		media:    media,
		Config:   conf,
	}
}

func (p *postService) CreatePost(ctx context.Context, user *models.User, caption string, media *multipart.FileHeader) (*models.Post, error) {
	if media == nil {
		return nil, ErrMediaRequired
	}
	upload, err := p.media.UploadFile(ctx, media, FolderPosts)
	if err != nil {
		return nil, err
	}
	post := &models.Post{
		UserID:       user.ID,
		Caption:      SanitizeText(caption, maxCaptionLength),
		MediaURL:     upload.URL,
		ThumbnailURL: upload.ThumbnailURL,
	}
	if err := p.postRepo.CreatePost(post); err != nil {
		return nil, err
	}
	post.User = user
	return post, nil
}

func (p *postService) Feed(userID uint, page models.Pagination) (*models.PagedResult, error) {
	posts, total, err := p.postRepo.ListPosts(userID, page)
	if err != nil {
		return nil, err
	}
	return models.NewPagedResult(posts, total, page), nil
}

func (p *postService) GetPost(postID uint) (*models.Post, error) {
	return p.postRepo.FindPostByID(postID)
}

func (p *postService) LikePost(userID, postID uint) (*models.Post, error) {
	post, err := p.postRepo.LikePost(postID, userID)
	if err != nil {
		return nil, err
	}
	post.LikedByMe = true
	return post, nil
}

func (p *postService) UnlikePost(userID, postID uint) (*models.Post, error) {
	return p.postRepo.UnlikePost(postID, userID)
}

func (p *postService) AddComment(userID, postID uint, req *models.CommentRequest) (*models.Comment, error) {
	content := SanitizeText(req.Content, 1000)
	if content == "" {
		return nil, ErrEmptyComment
	}
	comment := &models.Comment{PostID: postID, UserID: userID, Content: content}
	if err := p.postRepo.AddComment(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (p *postService) ListComments(postID uint, page models.Pagination) (*models.PagedResult, error) {
	comments, total, err := p.postRepo.ListComments(postID, page)
	if err != nil {
		return nil, err
	}
	return models.NewPagedResult(comments, total, page), nil
}

// DeletePost removes the user's own post; admins may remove any post.
func (p *postService) DeletePost(user *models.User, postID uint) error {
	owner := user.ID
	if user.IsAdmin() {
		owner = 0
	}
	return p.postRepo.DeletePost(postID, owner)
}
