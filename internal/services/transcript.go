package services

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	ytapi "github.com/hightemp/youtube-transcript-api-go/api"
	yt "github.com/kkdai/youtube/v2"

	"postpilot-backend/internal/platform"
)

// Transcripts longer than this are cut at a word boundary.
const maxTranscriptLength = 15000

const truncationMarker = "... [transcript truncated]"

// Caption artifacts YouTube injects into auto-generated tracks, with their
// Russian equivalents.
var artifactPattern = regexp.MustCompile(`(?i)\[(?:Music|Applause|Laughter|Background noise|Inaudible|Foreign|музыка|аплодисменты|смех)\]`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// TranscriptResolver acquires video transcripts through tiered fallbacks:
// free caption-track extraction first, the paid ScrapeCreators endpoint
// last. Resolve never fails; a missing transcript is a normal outcome.
type TranscriptResolver struct {
	ytClient      *yt.Client
	transcriptAPI *ytapi.YouTubeTranscriptApi
	scraper       *ScrapeCreatorsClient
	httpClient    *http.Client
}

func NewTranscriptResolver(scraper *ScrapeCreatorsClient) *TranscriptResolver {
	return &TranscriptResolver{
		ytClient:      &yt.Client{},
		transcriptAPI: ytapi.NewYouTubeTranscriptApi(),
		scraper:       scraper,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Resolve returns the transcript text and its language tag, or empty strings
// when no transcript could be acquired anywhere.
func (r *TranscriptResolver) Resolve(ctx context.Context, url string) (string, string) {
	videoID := platform.ExtractVideoID(url)
	if videoID == "" {
		log.Printf("[transcript] could not extract video ID from URL: %s", url)
		// The paid endpoint handles more URL shapes; let it try anyway.
		return r.resolvePaid(ctx, url)
	}

	if text, language, err := r.resolveFree(ctx, videoID); err == nil {
		return text, language
	} else {
		log.Printf("[transcript] free extraction failed for %s: %v", videoID, err)
	}

	return r.resolvePaid(ctx, url)
}

// resolveFree lists the video's caption tracks, picks one by language
// priority, and fetches its timedtext XML. When track listing itself fails
// it falls back to the transcript API library before giving up on the free
// tier entirely.
func (r *TranscriptResolver) resolveFree(ctx context.Context, videoID string) (string, string, error) {
	video, err := r.ytClient.GetVideoContext(ctx, videoID)
	if err != nil || len(video.CaptionTracks) == 0 {
		if err == nil {
			err = fmt.Errorf("no caption tracks for video %s", videoID)
		}
		return r.resolveViaTranscriptAPI(videoID, err)
	}

	track := selectCaptionTrack(video.CaptionTracks)
	text, err := r.fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return r.resolveViaTranscriptAPI(videoID, err)
	}

	language := track.LanguageCode
	if track.Kind == "asr" {
		language += "-auto"
	}

	text = truncateTranscript(cleanTranscript(text))
	if text == "" {
		return "", "", fmt.Errorf("caption track %s resolved to empty text", language)
	}

	log.Printf("[transcript] free method: got transcript (%s): %d chars", language, len(text))
	return text, language, nil
}

// selectCaptionTrack applies the fixed language priority: manual Russian,
// manual English, any manual, auto Russian, auto English, any auto.
func selectCaptionTrack(tracks []yt.CaptionTrack) yt.CaptionTrack {
	type matcher func(t yt.CaptionTrack) bool

	manual := func(t yt.CaptionTrack) bool { return t.Kind != "asr" }
	auto := func(t yt.CaptionTrack) bool { return t.Kind == "asr" }
	russian := func(t yt.CaptionTrack) bool { return t.LanguageCode == "ru" }
	english := func(t yt.CaptionTrack) bool {
		return t.LanguageCode == "en" || strings.HasPrefix(t.LanguageCode, "en-")
	}
	any := func(t yt.CaptionTrack) bool { return true }

	priorities := []struct {
		origin, language matcher
	}{
		{manual, russian},
		{manual, english},
		{manual, any},
		{auto, russian},
		{auto, english},
		{auto, any},
	}

	for _, p := range priorities {
		for _, t := range tracks {
			if p.origin(t) && p.language(t) {
				return t
			}
		}
	}
	return tracks[0]
}

type timedTextXML struct {
	XMLName xml.Name `xml:"transcript"`
	Texts   []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

func (r *TranscriptResolver) fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch captions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Endpoint: "timedtext", StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read captions: %w", err)
	}

	var tt timedTextXML
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("failed to parse captions XML: %w", err)
	}

	var parts []string
	for _, t := range tt.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Text))
		if text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("captions XML empty")
	}
	return strings.Join(parts, " "), nil
}

// resolveViaTranscriptAPI is the second free attempt: the transcript API
// library with an explicit language preference walk. The track's origin is
// not observable here, so the tag carries the bare language code.
func (r *TranscriptResolver) resolveViaTranscriptAPI(videoID string, cause error) (string, string, error) {
	log.Printf("[transcript] caption track listing unusable (%v), trying transcript API", cause)

	attempts := []struct {
		languages []string
		tag       string
	}{
		{[]string{"ru"}, "ru"},
		{[]string{"en", "en-US", "en-GB"}, "en"},
		{nil, "unknown"},
	}

	for _, attempt := range attempts {
		transcript, err := r.transcriptAPI.GetTranscript(videoID, attempt.languages)
		if err != nil || len(transcript.Entries) == 0 {
			continue
		}

		var joined strings.Builder
		for _, entry := range transcript.Entries {
			text := strings.TrimSpace(entry.Text)
			if text == "" {
				continue
			}
			joined.WriteString(text)
			joined.WriteString(" ")
		}

		text := truncateTranscript(cleanTranscript(joined.String()))
		if text == "" {
			continue
		}
		log.Printf("[transcript] transcript API: got transcript (%s): %d chars", attempt.tag, len(text))
		return text, attempt.tag, nil
	}

	return "", "", fmt.Errorf("no transcript available via free tier: %w", cause)
}

// resolvePaid fetches the transcript from ScrapeCreators. Used only once the
// free tier has nothing.
func (r *TranscriptResolver) resolvePaid(ctx context.Context, url string) (string, string) {
	if r.scraper == nil || !r.scraper.Configured() {
		log.Printf("[transcript] no ScrapeCreators API key configured")
		return "", ""
	}

	text, language, err := r.scraper.YouTubeTranscript(ctx, url)
	if err != nil {
		log.Printf("[transcript] paid fallback failed: %v", err)
		return "", ""
	}

	text = truncateTranscript(cleanTranscript(text))
	if text == "" {
		return "", ""
	}
	log.Printf("[transcript] paid fallback: got transcript (%s): %d chars", language, len(text))
	return text, language
}

// cleanTranscript strips caption artifacts and collapses whitespace.
func cleanTranscript(text string) string {
	text = artifactPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// truncateTranscript cuts overlong transcripts at the last space before the
// limit and appends a marker.
func truncateTranscript(text string) string {
	if len(text) <= maxTranscriptLength {
		return text
	}
	cut := text[:maxTranscriptLength]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + truncationMarker
}
