package services

import (
	"context"
	"errors"
	"log"

	"postpilot-backend/internal/models"
	"postpilot-backend/internal/platform"
)

// ErrUnsupportedPlatform means the URL matched no known platform. This is
// the one failure surfaced as an error instead of a record: it happens
// before any record can be built.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// The enrichment stages the YouTube pipeline composes. Transcript and frame
// resolution cannot express failure through their signatures: producing
// nothing is their only bad outcome.
type metadataResolver interface {
	Resolve(ctx context.Context, url string) (*models.YouTubeMetadata, string, error)
}

type transcriptResolver interface {
	Resolve(ctx context.Context, url string) (string, string)
}

type frameAnalyzer interface {
	Analyze(ctx context.Context, videoID, language string) models.FrameAnalysis
}

// Analyzer is the single entry point for URL content resolution. It holds no
// per-request state; concurrent calls are fully independent.
type Analyzer struct {
	scraper     *ScrapeCreatorsClient
	metadata    metadataResolver
	transcripts transcriptResolver
	frames      frameAnalyzer
}

func NewAnalyzer(scraper *ScrapeCreatorsClient, metadata *MetadataResolver, transcripts *TranscriptResolver, frames *FrameAnalyzer) *Analyzer {
	return &Analyzer{
		scraper:     scraper,
		metadata:    metadata,
		transcripts: transcripts,
		frames:      frames,
	}
}

// Resolve detects the platform behind a URL and produces one normalized
// content record. Language steers AI-generated text ("ru" or "en").
func (a *Analyzer) Resolve(ctx context.Context, url, language string) (*models.NormalizedContent, error) {
	switch platform.Detect(url) {
	case platform.Instagram:
		return a.scraper.AnalyzeInstagram(ctx, url)
	case platform.TikTok:
		return a.scraper.AnalyzeTikTok(ctx, url)
	case platform.YouTube:
		return a.resolveYouTube(ctx, url, language), nil
	case platform.Twitter:
		return a.scraper.AnalyzeTwitter(ctx, url)
	case platform.LinkedIn:
		return a.scraper.AnalyzeLinkedIn(ctx, url)
	case platform.Reddit:
		return a.scraper.AnalyzeReddit(ctx, url)
	case platform.Facebook:
		return a.scraper.AnalyzeFacebook(ctx, url)
	case platform.Threads:
		return a.scraper.AnalyzeThreads(ctx, url)
	default:
		return nil, ErrUnsupportedPlatform
	}
}

// resolveYouTube runs the staged pipeline: metadata (required), transcript
// and frame analysis (best-effort). Only metadata exhaustion fails the
// record; enrichment failures degrade it.
func (a *Analyzer) resolveYouTube(ctx context.Context, url, language string) *models.NormalizedContent {
	meta, sourceTag, err := a.metadata.Resolve(ctx, url)
	if err != nil {
		log.Printf("[analyzer] metadata resolution failed for %s: %v", url, err)
		return &models.NormalizedContent{
			Success:      false,
			Platform:     platform.YouTube,
			PlatformName: platform.DisplayName(platform.YouTube),
			ContentType:  "video",
			SourceURL:    url,
			Error:        stringPtr(err.Error()),
		}
	}

	transcript, transcriptLang := a.transcripts.Resolve(ctx, url)

	// Narrative prefers the transcript; the description is the floor it
	// never regresses below.
	narrative := meta.Description
	if transcript != "" {
		narrative = transcript
	}

	var frames models.FrameAnalysis
	if meta.VideoID != "" {
		frames = a.frames.Analyze(ctx, meta.VideoID, language)
	}

	content := &models.NormalizedContent{
		Success:      true,
		Platform:     platform.YouTube,
		PlatformName: platform.DisplayName(platform.YouTube),
		ContentType:  "video",
		HasImage:     meta.ThumbnailURL != "",
		HasVideo:     true,
		PostText:     stringPtr(meta.Description),
		Narrative:    stringPtr(narrative),
		Title:        stringPtr(meta.Title),
		ImageURL:     optionalString(meta.ThumbnailURL),
		// YouTube never exposes a direct media URL; the watch URL stands in.
		VideoURL:         stringPtr(url),
		Views:            intPtr(meta.Views),
		Likes:            intPtr(meta.Likes),
		Comments:         intPtr(meta.Comments),
		Author:           optionalString(meta.ChannelName),
		SourceURL:        url,
		IsShort:          platform.DetectYouTubeType(url) == "short",
		SceneDescription: frames.SceneDescription,
		StyleDescription: frames.StyleDescription,
		MetadataSource:   stringPtr(sourceTag),
	}

	if meta.DurationSeconds > 0 {
		content.VideoDurationMinutes = floatPtr(float64(meta.DurationSeconds) / 60)
	}
	if transcript != "" {
		content.Transcript = stringPtr(transcript)
		content.TranscriptLanguage = stringPtr(transcriptLang)
	}

	return content
}
