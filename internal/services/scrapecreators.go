package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"postpilot-backend/internal/models"
	"postpilot-backend/internal/platform"
)

const scrapeCreatorsBase = "https://api.scrapecreators.com/v1"

// ErrScraperNotConfigured is returned when a ScrapeCreators call is needed
// but no API key was provided.
var ErrScraperNotConfigured = errors.New("SCRAPECREATORS_API_KEY is not configured")

// UpstreamError is a non-2xx reply from an upstream HTTP API. Codes >= 500
// are transient and eligible for retry; 4xx means "this source has nothing".
type UpstreamError struct {
	Endpoint   string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error %d from %s", e.StatusCode, e.Endpoint)
}

// IsTransient reports whether err is worth retrying: 5xx upstream replies
// and network-level failures qualify, 4xx and malformed payloads do not.
func IsTransient(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// ScrapeCreatorsClient calls the paid ScrapeCreators API. Every supported
// platform maps to one GET endpoint taking the post URL as a query param.
type ScrapeCreatorsClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewScrapeCreatorsClient(apiKey string) *ScrapeCreatorsClient {
	return &ScrapeCreatorsClient{
		apiKey:     apiKey,
		baseURL:    scrapeCreatorsBase,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *ScrapeCreatorsClient) Configured() bool {
	return c.apiKey != ""
}

func (c *ScrapeCreatorsClient) get(ctx context.Context, endpoint, contentURL string, out interface{}) error {
	if !c.Configured() {
		return ErrScraperNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	q := req.URL.Query()
	q.Set("url", contentURL)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// ─── Instagram ───

type instagramMedia struct {
	Typename             string          `json:"__typename"`
	IsVideo              bool            `json:"is_video"`
	DisplayURL           string          `json:"display_url"`
	ThumbnailSrc         string          `json:"thumbnail_src"`
	ThumbnailURL         string          `json:"thumbnail_url"`
	VideoURL             string          `json:"video_url"`
	VideoDuration        float64         `json:"video_duration"`
	Caption              string          `json:"caption"`
	LikeCount            int             `json:"like_count"`
	CommentCount         int             `json:"comment_count"`
	EdgeMediaToCaption   edgeList        `json:"edge_media_to_caption"`
	EdgeMediaPreviewLike countNode       `json:"edge_media_preview_like"`
	EdgeMediaToComment   countNode       `json:"edge_media_to_parent_comment"`
	EdgeSidecarChildren  sidecarEdgeList `json:"edge_sidecar_to_children"`
	Owner                struct {
		Username string `json:"username"`
	} `json:"owner"`
}

type edgeList struct {
	Edges []struct {
		Node struct {
			Text string `json:"text"`
		} `json:"node"`
	} `json:"edges"`
}

type countNode struct {
	Count int `json:"count"`
}

type sidecarEdgeList struct {
	Edges []struct {
		Node sidecarNode `json:"node"`
	} `json:"edges"`
}

type sidecarNode struct {
	Typename             string `json:"__typename"`
	IsVideo              bool   `json:"is_video"`
	DisplayURL           string `json:"display_url"`
	VideoURL             string `json:"video_url"`
	AccessibilityCaption string `json:"accessibility_caption"`
}

// instagramEnvelope tolerates the three shapes ScrapeCreators has served:
// nested under xdt_shortcode_media, nested one level deeper under data, or
// flat at the top level (legacy).
type instagramEnvelope struct {
	instagramMedia
	XDTShortcodeMedia *instagramMedia `json:"xdt_shortcode_media"`
	Data              struct {
		XDTShortcodeMedia *instagramMedia `json:"xdt_shortcode_media"`
	} `json:"data"`
}

func (e *instagramEnvelope) media() *instagramMedia {
	if e.XDTShortcodeMedia != nil {
		return e.XDTShortcodeMedia
	}
	if e.Data.XDTShortcodeMedia != nil {
		return e.Data.XDTShortcodeMedia
	}
	return &e.instagramMedia
}

func (c *ScrapeCreatorsClient) AnalyzeInstagram(ctx context.Context, contentURL string) (*models.NormalizedContent, error) {
	var envelope instagramEnvelope
	if err := c.get(ctx, "/instagram/post", contentURL, &envelope); err != nil {
		return nil, err
	}
	data := envelope.media()

	instaType := platform.DetectInstagramType(contentURL)
	isVideo := instaType == "reel" || data.IsVideo

	caption := data.Caption
	if len(data.EdgeMediaToCaption.Edges) > 0 {
		if text := data.EdgeMediaToCaption.Edges[0].Node.Text; text != "" {
			caption = text
		}
	}

	displayURL := firstNonEmpty(data.DisplayURL, data.ThumbnailSrc, data.ThumbnailURL)

	likes := data.LikeCount
	if data.EdgeMediaPreviewLike.Count > 0 {
		likes = data.EdgeMediaPreviewLike.Count
	}
	comments := data.CommentCount
	if data.EdgeMediaToComment.Count > 0 {
		comments = data.EdgeMediaToComment.Count
	}

	content := &models.NormalizedContent{
		Success:      true,
		Platform:     platform.Instagram,
		PlatformName: platform.DisplayName(platform.Instagram),
		ContentType:  "post",
		HasImage:     displayURL != "",
		HasVideo:     isVideo,
		PostText:     stringPtr(caption),
		Narrative:    stringPtr(caption),
		ImageURL:     optionalString(displayURL),
		Likes:        intPtr(likes),
		Comments:     intPtr(comments),
		Author:       optionalString(data.Owner.Username),
		SourceURL:    contentURL,
	}

	if isVideo {
		content.ContentType = "video"
		content.VideoURL = optionalString(data.VideoURL)
		if data.VideoDuration > 0 {
			content.VideoDurationMinutes = floatPtr(data.VideoDuration / 60)
		}
	}

	// Sidecar posts carry an ordered child list; video children keep their
	// direct URL, image children never do.
	if strings.Contains(data.Typename, "Sidecar") && len(data.EdgeSidecarChildren.Edges) > 0 {
		content.ContentType = "carousel"
		content.IsCarousel = true
		for _, edge := range data.EdgeSidecarChildren.Edges {
			node := edge.Node
			item := models.CarouselItem{
				Type:                 "image",
				DisplayURL:           node.DisplayURL,
				AccessibilityCaption: optionalString(node.AccessibilityCaption),
			}
			if node.IsVideo {
				item.Type = "video"
				item.VideoURL = optionalString(node.VideoURL)
				content.HasVideo = true
			}
			content.CarouselItems = append(content.CarouselItems, item)
		}
	}

	return content, nil
}

// ─── TikTok ───

type tiktokPost struct {
	Desc  string `json:"desc"`
	Cover string `json:"cover"`
	Video struct {
		PlayAddr string `json:"playAddr"`
	} `json:"video"`
	Duration float64 `json:"duration"`
	Stats    struct {
		DiggCount    int `json:"diggCount"`
		CommentCount int `json:"commentCount"`
		ShareCount   int `json:"shareCount"`
	} `json:"stats"`
	Author struct {
		UniqueID string `json:"uniqueId"`
	} `json:"author"`
}

func (c *ScrapeCreatorsClient) AnalyzeTikTok(ctx context.Context, contentURL string) (*models.NormalizedContent, error) {
	var data tiktokPost
	if err := c.get(ctx, "/tiktok/post", contentURL, &data); err != nil {
		return nil, err
	}

	content := &models.NormalizedContent{
		Success:      true,
		Platform:     platform.TikTok,
		PlatformName: platform.DisplayName(platform.TikTok),
		ContentType:  "video",
		HasImage:     data.Cover != "",
		HasVideo:     true,
		PostText:     stringPtr(data.Desc),
		Narrative:    stringPtr(data.Desc),
		ImageURL:     optionalString(data.Cover),
		VideoURL:     optionalString(data.Video.PlayAddr),
		Likes:        intPtr(data.Stats.DiggCount),
		Comments:     intPtr(data.Stats.CommentCount),
		Shares:       intPtr(data.Stats.ShareCount),
		Author:       optionalString(data.Author.UniqueID),
		SourceURL:    contentURL,
	}
	if data.Duration > 0 {
		content.VideoDurationMinutes = floatPtr(data.Duration / 60)
	}
	return content, nil
}

// ─── YouTube (metadata fallback + transcript endpoint) ───

type youtubeVideoResponse struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Thumbnail    string          `json:"thumbnail"`
	Duration     json.RawMessage `json:"duration"`
	Views        int             `json:"views"`
	Likes        int             `json:"likes"`
	Comments     int             `json:"comments"`
	ChannelTitle string          `json:"channelTitle"`
	Channel      struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	} `json:"channel"`
	PublishedAt string `json:"publishedAt"`
}

// YouTubeVideo fetches video metadata from the /youtube/video endpoint and
// reshapes it into the same record the official API produces.
func (c *ScrapeCreatorsClient) YouTubeVideo(ctx context.Context, contentURL string) (*models.YouTubeMetadata, error) {
	var data youtubeVideoResponse
	if err := c.get(ctx, "/youtube/video", contentURL, &data); err != nil {
		return nil, err
	}

	channelName := data.ChannelTitle
	if channelName == "" {
		channelName = data.Channel.Name
	}

	return &models.YouTubeMetadata{
		VideoID:         platform.ExtractVideoID(contentURL),
		Title:           data.Title,
		Description:     data.Description,
		ThumbnailURL:    data.Thumbnail,
		DurationSeconds: normalizeDuration(data.Duration),
		Views:           data.Views,
		Likes:           data.Likes,
		Comments:        data.Comments,
		ChannelName:     channelName,
		ChannelID:       data.Channel.ID,
		PublishedAt:     data.PublishedAt,
	}, nil
}

// normalizeDuration accepts the two shapes upstream sends: a plain number of
// seconds or an ISO 8601 duration string.
func normalizeDuration(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var seconds float64
	if err := json.Unmarshal(raw, &seconds); err == nil {
		return int(seconds)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.HasPrefix(s, "P") {
			return parseISO8601Duration(s)
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return 0
}

type youtubeTranscriptResponse struct {
	TranscriptOnlyText string `json:"transcript_only_text"`
	Language           string `json:"language"`
	Transcript         []struct {
		Text string `json:"text"`
	} `json:"transcript"`
}

// YouTubeTranscript fetches a transcript from the paid transcript endpoint.
// Prefers the pre-joined text field, else joins the segment array.
func (c *ScrapeCreatorsClient) YouTubeTranscript(ctx context.Context, contentURL string) (string, string, error) {
	var data youtubeTranscriptResponse
	if err := c.get(ctx, "/youtube/video/transcript", contentURL, &data); err != nil {
		return "", "", err
	}

	text := data.TranscriptOnlyText
	if text == "" {
		var parts []string
		for _, seg := range data.Transcript {
			if t := strings.TrimSpace(seg.Text); t != "" {
				parts = append(parts, t)
			}
		}
		text = strings.Join(parts, " ")
	}
	if text == "" {
		return "", "", fmt.Errorf("no transcript in response for %s", contentURL)
	}

	language := data.Language
	if language == "" {
		language = "unknown"
	}
	return text, language, nil
}

// ─── Twitter/X ───

type twitterTweet struct {
	Text  string `json:"text"`
	Media []struct {
		Type      string `json:"type"`
		URL       string `json:"url"`
		Thumbnail string `json:"thumbnail"`
	} `json:"media"`
	Likes    int `json:"likes"`
	Replies  int `json:"replies"`
	Retweets int `json:"retweets"`
	Author   struct {
		Username string `json:"username"`
	} `json:"author"`
}

func (c *ScrapeCreatorsClient) AnalyzeTwitter(ctx context.Context, contentURL string) (*models.NormalizedContent, error) {
	var data twitterTweet
	if err := c.get(ctx, "/twitter/tweet", contentURL, &data); err != nil {
		return nil, err
	}

	var hasImage, hasVideo bool
	var imageURL, videoURL string
	for _, m := range data.Media {
		switch m.Type {
		case "photo":
			hasImage = true
			if imageURL == "" {
				imageURL = m.URL
			}
		case "video", "animated_gif":
			hasVideo = true
			if videoURL == "" {
				videoURL = m.URL
				if imageURL == "" {
					imageURL = m.Thumbnail
				}
			}
		}
	}

	contentType := "post"
	if hasVideo {
		contentType = "video"
	}

	return &models.NormalizedContent{
		Success:      true,
		Platform:     platform.Twitter,
		PlatformName: platform.DisplayName(platform.Twitter),
		ContentType:  contentType,
		HasImage:     hasImage,
		HasVideo:     hasVideo,
		PostText:     stringPtr(data.Text),
		Narrative:    stringPtr(data.Text),
		ImageURL:     optionalString(imageURL),
		VideoURL:     optionalString(videoURL),
		Likes:        intPtr(data.Likes),
		Comments:     intPtr(data.Replies),
		Retweets:     intPtr(data.Retweets),
		Author:       optionalString(data.Author.Username),
		SourceURL:    contentURL,
	}, nil
}

// ─── LinkedIn ───

type linkedinPost struct {
	Text  string `json:"text"`
	Media []struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	} `json:"media"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Author   struct {
		Name     string `json:"name"`
		Headline string `json:"headline"`
	} `json:"author"`
}

func (c *ScrapeCreatorsClient) AnalyzeLinkedIn(ctx context.Context, contentURL string) (*models.NormalizedContent, error) {
	var data linkedinPost
	if err := c.get(ctx, "/linkedin/post", contentURL, &data); err != nil {
		return nil, err
	}

	var imageURL, videoURL string
	for _, m := range data.Media {
		switch m.Type {
		case "image":
			if imageURL == "" {
				imageURL = m.URL
			}
		case "video":
			if videoURL == "" {
				videoURL = m.URL
			}
		}
	}

	contentType := "post"
	if videoURL != "" {
		contentType = "video"
	}

	return &models.NormalizedContent{
		Success:        true,
		Platform:       platform.LinkedIn,
		PlatformName:   platform.DisplayName(platform.LinkedIn),
		ContentType:    contentType,
		HasImage:       imageURL != "",
		HasVideo:       videoURL != "",
		PostText:       stringPtr(data.Text),
		Narrative:      stringPtr(data.Text),
		ImageURL:       optionalString(imageURL),
		VideoURL:       optionalString(videoURL),
		Likes:          intPtr(data.Likes),
		Comments:       intPtr(data.Comments),
		Author:         optionalString(data.Author.Name),
		AuthorHeadline: optionalString(data.Author.Headline),
		SourceURL:      contentURL,
	}, nil
}

// ─── Reddit ───

type redditPost struct {
	Title       string `json:"title"`
	Selftext    string `json:"selftext"`
	PostHint    string `json:"post_hint"`
	Thumbnail   string `json:"thumbnail"`
	Ups         int    `json:"ups"`
	NumComments int    `json:"num_comments"`
	Author      string `json:"author"`
	Subreddit   string `json:"subreddit"`
	Preview     struct {
		Images []struct {
			Source struct {
				URL string `json:"url"`
			} `json:"source"`
		} `json:"images"`
	} `json:"preview"`
	Media *struct {
		RedditVideo struct {
			FallbackURL string `json:"fallback_url"`
		} `json:"reddit_video"`
	} `json:"media"`
}

func (c *ScrapeCreatorsClient) AnalyzeReddit(ctx context.Context, contentURL string) (*models.NormalizedContent, error) {
	var data redditPost
	if err := c.get(ctx, "/reddit/post", contentURL, &data); err != nil {
		return nil, err
	}

	hasVideo := strings.Contains(data.PostHint, "video") || data.Media != nil
	hasImage := strings.Contains(data.PostHint, "image") || len(data.Preview.Images) > 0

	imageURL := ""
	if len(data.Preview.Images) > 0 {
		imageURL = data.Preview.Images[0].Source.URL
	}
	if imageURL == "" {
		imageURL = data.Thumbnail
	}

	text := data.Selftext
	if text == "" {
		text = data.Title
	}

	contentType := "post"
	if hasVideo {
		contentType = "video"
	}

	content := &models.NormalizedContent{
		Success:      true,
		Platform:     platform.Reddit,
		PlatformName: platform.DisplayName(platform.Reddit),
		ContentType:  contentType,
		HasImage:     hasImage,
		HasVideo:     hasVideo,
		PostText:     stringPtr(text),
		Narrative:    stringPtr(text),
		Title:        stringPtr(data.Title),
		ImageURL:     optionalString(imageURL),
		Upvotes:      intPtr(data.Ups),
		Comments:     intPtr(data.NumComments),
		Author:       optionalString(data.Author),
		Subreddit:    optionalString(data.Subreddit),
		SourceURL:    contentURL,
	}
	if hasVideo && data.Media != nil {
		content.VideoURL = optionalString(data.Media.RedditVideo.FallbackURL)
	}
	return content, nil
}

// ─── Facebook ───

type facebookPost struct {
	Text     string   `json:"text"`
	Video    string   `json:"video"`
	Image    string   `json:"image"`
	Images   []string `json:"images"`
	Likes    int      `json:"likes"`
	Comments int      `json:"comments"`
	Shares   int      `json:"shares"`
	Author   struct {
		Name string `json:"name"`
	} `json:"author"`
}

func (c *ScrapeCreatorsClient) AnalyzeFacebook(ctx context.Context, contentURL string) (*models.NormalizedContent, error) {
	var data facebookPost
	if err := c.get(ctx, "/facebook/post", contentURL, &data); err != nil {
		return nil, err
	}

	imageURL := data.Image
	if len(data.Images) > 0 {
		imageURL = data.Images[0]
	}

	contentType := "post"
	if data.Video != "" {
		contentType = "video"
	}

	return &models.NormalizedContent{
		Success:      true,
		Platform:     platform.Facebook,
		PlatformName: platform.DisplayName(platform.Facebook),
		ContentType:  contentType,
		HasImage:     imageURL != "",
		HasVideo:     data.Video != "",
		PostText:     stringPtr(data.Text),
		Narrative:    stringPtr(data.Text),
		ImageURL:     optionalString(imageURL),
		VideoURL:     optionalString(data.Video),
		Likes:        intPtr(data.Likes),
		Comments:     intPtr(data.Comments),
		Shares:       intPtr(data.Shares),
		Author:       optionalString(data.Author.Name),
		SourceURL:    contentURL,
	}, nil
}

// ─── Threads ───

type threadsPost struct {
	Text  string `json:"text"`
	Media []struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	} `json:"media"`
	Likes   int `json:"likes"`
	Replies int `json:"replies"`
	Author  struct {
		Username string `json:"username"`
	} `json:"author"`
}

func (c *ScrapeCreatorsClient) AnalyzeThreads(ctx context.Context, contentURL string) (*models.NormalizedContent, error) {
	var data threadsPost
	if err := c.get(ctx, "/threads/post", contentURL, &data); err != nil {
		return nil, err
	}

	var imageURL, videoURL string
	for _, m := range data.Media {
		switch m.Type {
		case "image":
			if imageURL == "" {
				imageURL = m.URL
			}
		case "video":
			if videoURL == "" {
				videoURL = m.URL
			}
		}
	}

	contentType := "post"
	if videoURL != "" {
		contentType = "video"
	}

	return &models.NormalizedContent{
		Success:      true,
		Platform:     platform.Threads,
		PlatformName: platform.DisplayName(platform.Threads),
		ContentType:  contentType,
		HasImage:     imageURL != "",
		HasVideo:     videoURL != "",
		PostText:     stringPtr(data.Text),
		Narrative:    stringPtr(data.Text),
		ImageURL:     optionalString(imageURL),
		VideoURL:     optionalString(videoURL),
		Likes:        intPtr(data.Likes),
		Comments:     intPtr(data.Replies),
		Author:       optionalString(data.Author.Username),
		SourceURL:    contentURL,
	}, nil
}

// ─── Shared helpers ───

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func stringPtr(s string) *string { return &s }

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }
