package models

// Upload is the stored result of one uploaded image.
type Upload struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}
