package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/techagentng/earnly/config"
	errs "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/logger"
	"github.com/techagentng/earnly/models"
	_ "golang.org/x/image/webp"
)

const (
	FolderProofs      = "proofs"
	FolderPosts       = "posts"
	FolderAvatars     = "avatars"
	FolderWithdrawals = "withdrawals"
	FolderCoinOrders  = "coin-requests"

	feedSize       = 1080
	maxImageHeight = 1920
	thumbnailWidth = 200

	maxImagePixels = 40_000_000
)

var (
	ErrFileTooLarge     = errs.New("file is too large", http.StatusRequestEntityTooLarge)
	ErrUnsupportedMedia = errs.New("only jpeg, png, gif and webp images are allowed", http.StatusUnsupportedMediaType)
	ErrEmptyFile        = errs.New("file is empty", http.StatusBadRequest)
	ErrImageTooLarge    = errs.New("image dimensions are too large", http.StatusRequestEntityTooLarge)

	allowedContentTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	}
)

type MediaService interface {
	UploadFile(ctx context.Context, fh *multipart.FileHeader, folder string) (*models.Upload, error)
	UploadImage(ctx context.Context, r io.Reader, folder string) (*models.Upload, error)
}

type mediaService struct {
	Config  *config.Config
	storage Storage
}

func NewMediaService(storage Storage, conf *config.Config) MediaService {
	return &mediaService{
		Config:  conf,
		storage: storage,
	}
}

func (m *mediaService) UploadFile(ctx context.Context, fh *multipart.FileHeader, folder string) (*models.Upload, error) {
	if fh.Size > m.Config.MaxUploadSize {
		return nil, ErrFileTooLarge
	}
	file, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open upload")
	}
	defer file.Close()
	return m.UploadImage(ctx, file, folder)
}

// UploadImage validates the image by its sniffed content type, then stores a processed
// copy and a thumbnail. Post images are cropped square; everything else keeps its
// aspect ratio so proofs and screenshots stay readable.
func (m *mediaService) UploadImage(ctx context.Context, r io.Reader, folder string) (*models.Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, m.Config.MaxUploadSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "read upload")
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > m.Config.MaxUploadSize {
		return nil, ErrFileTooLarge
	}
	contentType := http.DetectContentType(data)
	if !allowedContentTypes[contentType] {
		return nil, ErrUnsupportedMedia
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		logger.Warn("image header unreadable", "content_type", contentType, "error", err)
		return nil, ErrUnsupportedMedia
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, ErrImageTooLarge
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Warn("image decode failed", "content_type", contentType, "error", err)
		return nil, ErrUnsupportedMedia
	}

	full, thumb := processImage(img, folder)

	fullBytes, err := encodeJPEG(full)
	if err != nil {
		return nil, err
	}
	thumbBytes, err := encodeJPEG(thumb)
	if err != nil {
		return nil, err
	}

	name := uuid.New().String()
	url, err := m.storage.Put(ctx, fmt.Sprintf("%s/%s.jpg", folder, name), "image/jpeg", fullBytes)
	if err != nil {
		return nil, err
	}
	thumbURL, err := m.storage.Put(ctx, fmt.Sprintf("%s/thumbnails/%s.jpg", folder, name), "image/jpeg", thumbBytes)
	if err != nil {
		return nil, err
	}

	bounds := full.Bounds()
	return &models.Upload{
		URL:          url,
		ThumbnailURL: thumbURL,
		ContentType:  contentType,
		Size:         int64(len(data)),
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
	}, nil
}

func processImage(img image.Image, folder string) (image.Image, image.Image) {
	var full image.Image
	if folder == FolderPosts || folder == FolderAvatars {
		full = imaging.Fill(img, feedSize, feedSize, imaging.Center, imaging.Lanczos)
	} else {
		full = imaging.Fit(img, feedSize, maxImageHeight, imaging.Lanczos)
	}
	thumb := resize.Resize(thumbnailWidth, 0, img, resize.Lanczos3)
	return full, thumb
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, errors.Wrap(err, "encode jpeg")
	}
	return buf.Bytes(), nil
}
