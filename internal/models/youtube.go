package models

// YouTubeMetadata is one video's metadata as served by either the official
// Data API or the scraping fallback. Built fresh per request, never cached.
type YouTubeMetadata struct {
	VideoID         string `json:"video_id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ThumbnailURL    string `json:"thumbnail_url"`
	DurationSeconds int    `json:"duration_seconds"`
	Views           int    `json:"views"`
	Likes           int    `json:"likes"`
	Comments        int    `json:"comments"`
	ChannelName     string `json:"channel_name"`
	ChannelID       string `json:"channel_id"`
	PublishedAt     string `json:"published_at"`
}
