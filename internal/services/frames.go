package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"postpilot-backend/internal/models"
	"postpilot-backend/internal/retry"
)

// YouTube serves auto-generated stills at predictable URLs; indexes 1-3 land
// at roughly 25/50/75% of playback. No credential required.
const thumbnailHost = "https://img.youtube.com"

// Payloads under this size are YouTube's "no thumbnail here" placeholder.
const minThumbnailBytes = 1000

const framePromptTemplate = `You are analyzing frames from a YouTube video.

Based on these frames, provide:

1. SCENE DESCRIPTION: Describe what's happening visually in the video. What is being shown? What's the setting? What actions are taking place? Be concise but descriptive (2-3 sentences).

2. STYLE: Identify the video production style. Choose the most appropriate:
- Live action (real people/places filmed)
- Animation (2D/3D animated content)
- Screencast (screen recording, software demo)
- Talking head (person speaking directly to camera)
- Presentation/slides (PowerPoint, Keynote style)
- B-roll/stock footage (generic footage, no specific subject)
- Tutorial (hands-on demonstration)
- Vlog (casual personal video)
- Interview (conversation between people)
- Music video
- Gaming (gameplay footage)
- Mixed/hybrid (combination of styles)

%s

Format your response EXACTLY like this:
SCENE: [your scene description here]
STYLE: [single style type from the list above]`

// FrameAnalyzer fetches sampled video stills and classifies them with a
// vision-capable Gemini model. Analyze never fails: with no credential, no
// usable frames, or a dead model it returns an empty result.
type FrameAnalyzer struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	httpClient    *http.Client
	thumbnailHost string

	// generate performs the vision call. Nil means no credential was
	// configured; tests substitute their own.
	generate func(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// NewFrameAnalyzer builds the analyzer. An empty API key yields a degraded
// analyzer whose Analyze always reports zero frames.
func NewFrameAnalyzer(ctx context.Context, apiKey string) (*FrameAnalyzer, error) {
	a := &FrameAnalyzer{
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		thumbnailHost: thumbnailHost,
	}
	if apiKey == "" {
		return a, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.3)

	a.client = client
	a.model = model
	a.generate = func(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
		return model.GenerateContent(ctx, parts...)
	}
	return a, nil
}

func (a *FrameAnalyzer) Close() {
	if a.client != nil {
		a.client.Close()
	}
}

// Analyze fetches up to three thumbnails concurrently, discards placeholder
// images, and submits the survivors to the vision model in one call.
func (a *FrameAnalyzer) Analyze(ctx context.Context, videoID, language string) models.FrameAnalysis {
	if a.generate == nil {
		log.Printf("[frames] Gemini API key not configured, skipping frame analysis")
		return models.FrameAnalysis{}
	}

	frames := a.fetchThumbnails(ctx, videoID)
	if len(frames) == 0 {
		log.Printf("[frames] no frames available for video %s", videoID)
		return models.FrameAnalysis{}
	}

	log.Printf("[frames] analyzing %d frames for video %s", len(frames), videoID)

	parts := []genai.Part{genai.Text(buildFramePrompt(language))}
	for _, frame := range frames {
		parts = append(parts, genai.ImageData("jpeg", frame))
	}

	// Model errors carry no upstream status to classify, so every failure
	// gets the full attempt budget.
	policy := retry.Policy{MaxAttempts: 3, BaseDelay: time.Second}
	resp, err := retry.Do(ctx, policy, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return a.generate(ctx, parts...)
	})
	if err != nil {
		log.Printf("[frames] vision analysis failed for %s: %v", videoID, err)
		// Frames existed; the model call is what died.
		return models.FrameAnalysis{FramesAnalyzed: len(frames)}
	}

	scene, style := parseFrameReply(extractText(resp))
	return models.FrameAnalysis{
		SceneDescription: scene,
		StyleDescription: style,
		FramesAnalyzed:   len(frames),
	}
}

// fetchThumbnails fans out over the three thumbnail positions. Order is
// preserved; failed or placeholder fetches are dropped.
func (a *FrameAnalyzer) fetchThumbnails(ctx context.Context, videoID string) [][]byte {
	results := make([][]byte, 3)
	var wg sync.WaitGroup
	for i := 1; i <= 3; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			url := fmt.Sprintf("%s/vi/%s/%d.jpg", a.thumbnailHost, videoID, index)
			frame, err := a.fetchThumbnail(ctx, url)
			if err != nil {
				log.Printf("[frames] failed to fetch %s: %v", url, err)
				return
			}
			results[index-1] = frame
		}(i)
	}
	wg.Wait()

	var frames [][]byte
	for _, frame := range results {
		if frame != nil {
			frames = append(frames, frame)
		}
	}
	return frames
}

// fetchThumbnail returns the image bytes, or nil for a placeholder-sized
// payload meaning "no thumbnail at this position".
func (a *FrameAnalyzer) fetchThumbnail(ctx context.Context, url string) ([]byte, error) {
	policy := retry.Policy{
		MaxAttempts: 2,
		BaseDelay:   time.Second,
		Retryable:   IsTransient,
	}
	return retry.Do(ctx, policy, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := a.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, &UpstreamError{Endpoint: "thumbnail", StatusCode: resp.StatusCode}
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if len(body) < minThumbnailBytes {
			return nil, nil
		}
		return body, nil
	})
}

func buildFramePrompt(language string) string {
	instruction := "Respond in English."
	if language == "ru" {
		instruction = "Respond in Russian."
	}
	return fmt.Sprintf(framePromptTemplate, instruction)
}

// parseFrameReply pulls the SCENE and STYLE lines out of the model's reply.
// A missing marker leaves that field nil.
func parseFrameReply(reply string) (scene, style *string) {
	for _, line := range strings.Split(strings.TrimSpace(reply), "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)
		if scene == nil && strings.HasPrefix(upper, "SCENE:") {
			scene = stringPtr(strings.TrimSpace(line[len("SCENE:"):]))
		} else if style == nil && strings.HasPrefix(upper, "STYLE:") {
			style = stringPtr(strings.TrimSpace(line[len("STYLE:"):]))
		}
	}
	return scene, style
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
