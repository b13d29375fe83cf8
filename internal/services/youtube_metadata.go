package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"postpilot-backend/internal/models"
	"postpilot-backend/internal/platform"
	"postpilot-backend/internal/retry"
)

// MetadataResolver resolves YouTube video metadata through an ordered chain
// of sources: the official Data API v3 first (free, quota-limited), the paid
// ScrapeCreators endpoint second. Both tiers failing is the single fatal
// outcome of the whole YouTube pipeline.
type MetadataResolver struct {
	apiKey  string
	scraper *ScrapeCreatorsClient
}

func NewMetadataResolver(youtubeAPIKey string, scraper *ScrapeCreatorsClient) *MetadataResolver {
	return &MetadataResolver{apiKey: youtubeAPIKey, scraper: scraper}
}

// metadataSource is one attempt in the fallback chain: it either yields a
// metadata record or an error that sends the chain to the next source.
type metadataSource struct {
	name  string
	fetch func(ctx context.Context, url string) (*models.YouTubeMetadata, error)
}

func (r *MetadataResolver) sources() []metadataSource {
	var srcs []metadataSource
	if r.apiKey != "" {
		srcs = append(srcs, metadataSource{name: "official", fetch: r.fetchOfficial})
	}
	if r.scraper != nil && r.scraper.Configured() {
		srcs = append(srcs, metadataSource{name: "scraping", fetch: r.fetchScraping})
	}
	return srcs
}

// Resolve walks the source chain and returns the first metadata record along
// with the tag of the source that served it.
func (r *MetadataResolver) Resolve(ctx context.Context, url string) (*models.YouTubeMetadata, string, error) {
	return resolveMetadata(ctx, url, r.sources())
}

func resolveMetadata(ctx context.Context, url string, sources []metadataSource) (*models.YouTubeMetadata, string, error) {
	if len(sources) == 0 {
		return nil, "", errors.New("no metadata source configured")
	}

	var lastErr error
	for _, src := range sources {
		meta, err := src.fetch(ctx, url)
		if err != nil {
			log.Printf("[youtube_metadata] %s source failed: %v", src.name, err)
			lastErr = err
			continue
		}
		return meta, src.name, nil
	}
	return nil, "", lastErr
}

// fetchOfficial looks the video up via the YouTube Data API v3. One attempt
// only: every call costs a quota unit, so this tier is never retried.
func (r *MetadataResolver) fetchOfficial(ctx context.Context, rawURL string) (*models.YouTubeMetadata, error) {
	videoID := platform.ExtractVideoID(rawURL)
	if videoID == "" {
		return nil, fmt.Errorf("could not extract video ID from URL: %s", rawURL)
	}

	svc, err := youtubeapi.NewService(ctx, option.WithAPIKey(r.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube API client: %w", err)
	}

	resp, err := svc.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("videos.list failed: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video not found: %s", videoID)
	}

	video := resp.Items[0]
	meta := &models.YouTubeMetadata{VideoID: videoID}

	if video.Snippet != nil {
		meta.Title = video.Snippet.Title
		meta.Description = video.Snippet.Description
		meta.ChannelName = video.Snippet.ChannelTitle
		meta.ChannelID = video.Snippet.ChannelId
		meta.PublishedAt = video.Snippet.PublishedAt
		meta.ThumbnailURL = bestThumbnail(video.Snippet.Thumbnails)
	}
	if video.Statistics != nil {
		meta.Views = int(video.Statistics.ViewCount)
		meta.Likes = int(video.Statistics.LikeCount)
		meta.Comments = int(video.Statistics.CommentCount)
	}
	if video.ContentDetails != nil {
		meta.DurationSeconds = parseISO8601Duration(video.ContentDetails.Duration)
	}

	log.Printf("[youtube_metadata] official API hit for %s (%q)", videoID, meta.Title)
	return meta, nil
}

// fetchScraping is the paid substitute, retried on transient failures only.
func (r *MetadataResolver) fetchScraping(ctx context.Context, rawURL string) (*models.YouTubeMetadata, error) {
	policy := retry.Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Retryable:   IsTransient,
	}
	return retry.Do(ctx, policy, func(ctx context.Context) (*models.YouTubeMetadata, error) {
		return r.scraper.YouTubeVideo(ctx, rawURL)
	})
}

// bestThumbnail picks the largest available thumbnail variant.
func bestThumbnail(thumbs *youtubeapi.ThumbnailDetails) string {
	if thumbs == nil {
		return ""
	}
	for _, t := range []*youtubeapi.Thumbnail{thumbs.Maxres, thumbs.High, thumbs.Medium, thumbs.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}
	return ""
}

var (
	durationDatePattern = regexp.MustCompile(`(\d+)([DWMY])`)
	durationTimePattern = regexp.MustCompile(`(\d+)([HMS])`)
)

// parseISO8601Duration converts an ISO 8601 duration (PT1H2M3S) to seconds.
// Months and years use fixed 30/365-day approximations; this matches the
// values other consumers of these records expect, so keep it as is.
func parseISO8601Duration(duration string) int {
	if duration == "" || !strings.HasPrefix(duration, "P") {
		return 0
	}
	duration = duration[1:]

	datePart := duration
	timePart := ""
	if idx := strings.Index(duration, "T"); idx >= 0 {
		datePart, timePart = duration[:idx], duration[idx+1:]
	}

	total := 0
	for _, m := range durationDatePattern.FindAllStringSubmatch(datePart, -1) {
		value, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "D":
			total += value * 86400
		case "W":
			total += value * 604800
		case "M":
			total += value * 2592000
		case "Y":
			total += value * 31536000
		}
	}
	for _, m := range durationTimePattern.FindAllStringSubmatch(timePart, -1) {
		value, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "H":
			total += value * 3600
		case "M":
			total += value * 60
		case "S":
			total += value
		}
	}
	return total
}
