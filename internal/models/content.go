package models

import "postpilot-backend/internal/platform"

// NormalizedContent is the unified record every platform adapter converges
// to, independent of the upstream shape that produced it.
type NormalizedContent struct {
	Success      bool              `json:"success"`
	Platform     platform.Platform `json:"platform,omitempty"`
	PlatformName string            `json:"platform_name,omitempty"`

	// ContentType is one of: post, image, video, carousel, unknown.
	ContentType string `json:"content_type"`
	HasImage    bool   `json:"has_image"`
	HasVideo    bool   `json:"has_video"`
	IsCarousel  bool   `json:"is_carousel,omitempty"`

	PostText *string `json:"post_text"`
	// Narrative mirrors PostText, upgraded to the transcript text when one
	// was acquired. It is never empty while PostText is set.
	Narrative *string `json:"narrative"`

	ImageURL             *string  `json:"image_url"`
	VideoURL             *string  `json:"video_url"`
	VideoDurationMinutes *float64 `json:"video_duration_minutes"`

	Likes    *int `json:"likes,omitempty"`
	Comments *int `json:"comments,omitempty"`
	Shares   *int `json:"shares,omitempty"`
	Retweets *int `json:"retweets,omitempty"`
	Upvotes  *int `json:"upvotes,omitempty"`
	Views    *int `json:"views,omitempty"`

	Author         *string `json:"author,omitempty"`
	AuthorHeadline *string `json:"author_headline,omitempty"`
	Subreddit      *string `json:"subreddit,omitempty"`

	Title     *string `json:"title,omitempty"`
	SourceURL string  `json:"source_url"`
	IsShort   bool    `json:"is_short,omitempty"`

	CarouselItems []CarouselItem `json:"carousel_items,omitempty"`

	Transcript         *string `json:"transcript,omitempty"`
	TranscriptLanguage *string `json:"transcript_language,omitempty"`
	SceneDescription   *string `json:"scene_description,omitempty"`
	StyleDescription   *string `json:"style_description,omitempty"`

	// MetadataSource records which tier served the metadata ("official" or
	// "scraping") for cost observability.
	MetadataSource *string `json:"_metadata_source,omitempty"`

	Error *string `json:"error,omitempty"`
}

// CarouselItem is one child of an Instagram sidecar post.
// VideoURL stays nil whenever Type is "image".
type CarouselItem struct {
	Type                 string  `json:"type"` // "image" | "video"
	DisplayURL           string  `json:"display_url"`
	VideoURL             *string `json:"video_url,omitempty"`
	AccessibilityCaption *string `json:"accessibility_caption,omitempty"`
}

// FrameAnalysis holds the result of vision analysis over sampled video
// frames. Request-scoped; an all-zero value means the stage was skipped.
type FrameAnalysis struct {
	SceneDescription *string `json:"scene_description"`
	StyleDescription *string `json:"style_description"`
	FramesAnalyzed   int     `json:"frames_analyzed"`
}
