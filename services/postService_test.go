package services

import (
	"context"
	"testing"

	"github.com/techagentng/earnly/db"
	"github.com/techagentng/earnly/models"
)

type fakePostRepo struct {
	db.PostRepository
	comments    []*models.Comment
	deleteOwner uint
}

func (f *fakePostRepo) AddComment(c *models.Comment) error {
	f.comments = append(f.comments, c)
	return nil
}

func (f *fakePostRepo) DeletePost(_, ownerID uint) error {
	f.deleteOwner = ownerID
	return nil
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{"plain", "  nice task  ", 0, "nice task"},
		{"script", `hi<script>alert(1)</script>`, 0, "hi"},
		{"tags", "<b>bold</b> move", 0, "bold move"},
		{"limit counts runes", "₹₹₹₹", 2, "₹₹"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.input, tt.limit); got != tt.want {
				t.Errorf("SanitizeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddComment(t *testing.T) {
	repo := &fakePostRepo{}
	svc := NewPostService(repo, nil, nil)

	if _, err := svc.AddComment(1, 2, &models.CommentRequest{Content: "<i></i>"}); err != ErrEmptyComment {
		t.Errorf("err = %v, want ErrEmptyComment", err)
	}
	c, err := svc.AddComment(1, 2, &models.CommentRequest{Content: "<b>great</b>"})
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if c.Content != "great" || c.PostID != 2 || c.UserID != 1 {
		t.Errorf("comment = %+v", c)
	}
}

func TestCreatePostNeedsMedia(t *testing.T) {
	svc := NewPostService(&fakePostRepo{}, nil, nil)
	if _, err := svc.CreatePost(context.Background(), &models.User{}, "hello", nil); err != ErrMediaRequired {
		t.Errorf("err = %v, want ErrMediaRequired", err)
	}
}

func TestDeletePostOwnership(t *testing.T) {
	tests := []struct {
		name      string
		user      *models.User
		wantOwner uint
	}{
		{"owner", &models.User{Model: models.Model{ID: 3}, Role: models.Role{Name: models.RoleUser}}, 3},
		{"admin", &models.User{Model: models.Model{ID: 1}, Role: models.Role{Name: models.RoleAdmin}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakePostRepo{deleteOwner: 99}
			svc := NewPostService(repo, nil, nil)
			if err := svc.DeletePost(tt.user, 7); err != nil {
				t.Fatalf("DeletePost() error = %v", err)
			}
			if repo.deleteOwner != tt.wantOwner {
				t.Errorf("owner = %d, want %d", repo.deleteOwner, tt.wantOwner)
			}
		})
	}
}
