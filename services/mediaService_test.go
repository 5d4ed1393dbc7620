package services

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/techagentng/earnly/config"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

// pngWithHeaderSize encodes a tiny PNG, then rewrites its IHDR to claim w x h pixels.
func pngWithHeaderSize(t *testing.T, w, h uint32) []byte {
	t.Helper()
	b := testPNG(t, 1, 1)
	binary.BigEndian.PutUint32(b[16:20], w)
	binary.BigEndian.PutUint32(b[20:24], h)
	binary.BigEndian.PutUint32(b[29:33], crc32.ChecksumIEEE(b[12:29]))
	return b
}

func TestUploadImage(t *testing.T) {
	conf := &config.Config{MaxUploadSize: 5 << 20}

	tests := []struct {
		name       string
		folder     string
		width      int
		height     int
		wantWidth  int
		wantHeight int
	}{
		{"post is squared", FolderPosts, 400, 300, 1080, 1080},
		{"small proof is not upscaled", FolderProofs, 400, 800, 400, 800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStorage("http://files.local")
			svc := NewMediaService(store, conf)

			up, err := svc.UploadImage(context.Background(), bytes.NewReader(testPNG(t, tt.width, tt.height)), tt.folder)
			if err != nil {
				t.Fatalf("UploadImage() error = %v", err)
			}
			if up.Width != tt.wantWidth || up.Height != tt.wantHeight {
				t.Errorf("size = %dx%d, want %dx%d", up.Width, up.Height, tt.wantWidth, tt.wantHeight)
			}
			if up.ContentType != "image/png" {
				t.Errorf("ContentType = %q", up.ContentType)
			}
			if !strings.HasPrefix(up.URL, "http://files.local/"+tt.folder+"/") {
				t.Errorf("URL = %q", up.URL)
			}
			if !strings.Contains(up.ThumbnailURL, "/thumbnails/") {
				t.Errorf("ThumbnailURL = %q", up.ThumbnailURL)
			}
			if store.Len() != 2 {
				t.Errorf("stored %d objects, want 2", store.Len())
			}
		})
	}
}

func TestUploadImageRejects(t *testing.T) {
	tests := []struct {
		name    string
		maxSize int64
		body    []byte
		wantErr error
	}{
		{"empty", 1 << 20, nil, ErrEmptyFile},
		{"text file", 1 << 20, []byte("hello, this is not an image"), ErrUnsupportedMedia},
		{"too large", 10, bytes.Repeat([]byte{0xff}, 64), ErrFileTooLarge},
		{"too many pixels", 1 << 20, pngWithHeaderSize(t, 12000, 12000), ErrImageTooLarge},
		{"pixel budget exceeded by one row", 1 << 20, pngWithHeaderSize(t, 8000, 5001), ErrImageTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStorage("http://files.local")
			svc := NewMediaService(store, &config.Config{MaxUploadSize: tt.maxSize})
			_, err := svc.UploadImage(context.Background(), bytes.NewReader(tt.body), FolderProofs)
			if err != tt.wantErr {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if store.Len() != 0 {
				t.Errorf("stored %d objects, want 0", store.Len())
			}
		})
	}
}
