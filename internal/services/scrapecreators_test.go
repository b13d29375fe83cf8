package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestScraper(srv *httptest.Server) *ScrapeCreatorsClient {
	return &ScrapeCreatorsClient{
		apiKey:     "test-key",
		baseURL:    srv.URL,
		httpClient: srv.Client(),
	}
}

func TestAnalyzeInstagram_SidecarBecomesCarousel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/instagram/post" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing x-api-key header")
		}
		w.Write([]byte(`{
			"data": {"xdt_shortcode_media": {
				"__typename": "XDTGraphSidecar",
				"display_url": "https://cdn.example.com/cover.jpg",
				"edge_media_to_caption": {"edges": [{"node": {"text": "three slides"}}]},
				"edge_media_preview_like": {"count": 42},
				"edge_media_to_parent_comment": {"count": 7},
				"owner": {"username": "someone"},
				"edge_sidecar_to_children": {"edges": [
					{"node": {"__typename": "XDTGraphImage", "is_video": false, "display_url": "https://cdn.example.com/1.jpg", "accessibility_caption": "a cat"}},
					{"node": {"__typename": "XDTGraphVideo", "is_video": true, "display_url": "https://cdn.example.com/2.jpg", "video_url": "https://cdn.example.com/2.mp4"}},
					{"node": {"__typename": "XDTGraphImage", "is_video": false, "display_url": "https://cdn.example.com/3.jpg"}}
				]}
			}}
		}`))
	}))
	defer srv.Close()

	content, err := newTestScraper(srv).AnalyzeInstagram(context.Background(), "https://www.instagram.com/p/ABC123/")
	if err != nil {
		t.Fatalf("AnalyzeInstagram failed: %v", err)
	}

	if !content.IsCarousel || content.ContentType != "carousel" {
		t.Fatalf("expected carousel, got content_type=%q is_carousel=%v", content.ContentType, content.IsCarousel)
	}
	if len(content.CarouselItems) != 3 {
		t.Fatalf("expected 3 carousel items, got %d", len(content.CarouselItems))
	}
	if content.CarouselItems[0].Type != "image" || content.CarouselItems[0].VideoURL != nil {
		t.Errorf("image item must carry no video URL: %+v", content.CarouselItems[0])
	}
	if content.CarouselItems[1].Type != "video" || content.CarouselItems[1].VideoURL == nil {
		t.Errorf("video item must carry its video URL: %+v", content.CarouselItems[1])
	}
	if !content.HasVideo {
		t.Errorf("a video child must set has_video on the parent record")
	}
	if content.Likes == nil || *content.Likes != 42 {
		t.Errorf("expected likes=42 from edge count, got %v", content.Likes)
	}
	if content.PostText == nil || *content.PostText != "three slides" {
		t.Errorf("expected caption from edge list, got %v", content.PostText)
	}
}

func TestAnalyzeLinkedIn_TextOnlyPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"text": "Thoughts on hiring.",
			"media": [],
			"likes": 15,
			"comments": 3,
			"author": {"name": "Jane Doe", "headline": "VP of Engineering"}
		}`))
	}))
	defer srv.Close()

	content, err := newTestScraper(srv).AnalyzeLinkedIn(context.Background(), "https://www.linkedin.com/posts/jane_abc")
	if err != nil {
		t.Fatalf("AnalyzeLinkedIn failed: %v", err)
	}

	if content.HasImage || content.HasVideo {
		t.Errorf("text-only post must report no media, got has_image=%v has_video=%v", content.HasImage, content.HasVideo)
	}
	if content.ContentType != "post" {
		t.Errorf("expected content_type=post, got %q", content.ContentType)
	}
	if content.ImageURL != nil || content.VideoURL != nil {
		t.Errorf("expected nil media URLs, got image=%v video=%v", content.ImageURL, content.VideoURL)
	}
	if content.AuthorHeadline == nil || *content.AuthorHeadline != "VP of Engineering" {
		t.Errorf("expected author headline, got %v", content.AuthorHeadline)
	}
}

func TestYouTubeTranscript_PrefersJoinedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"transcript_only_text": "full joined transcript",
			"language": "en",
			"transcript": [{"text": "full"}, {"text": "joined"}]
		}`))
	}))
	defer srv.Close()

	text, lang, err := newTestScraper(srv).YouTubeTranscript(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("YouTubeTranscript failed: %v", err)
	}
	if text != "full joined transcript" {
		t.Errorf("expected pre-joined text, got %q", text)
	}
	if lang != "en" {
		t.Errorf("expected language en, got %q", lang)
	}
}

func TestYouTubeTranscript_JoinsSegmentsAndDefaultsLanguage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transcript": [{"text": "hello "}, {"text": "world"}]}`))
	}))
	defer srv.Close()

	text, lang, err := newTestScraper(srv).YouTubeTranscript(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("YouTubeTranscript failed: %v", err)
	}
	if text != "hello world" {
		t.Errorf("expected joined segments, got %q", text)
	}
	if lang != "unknown" {
		t.Errorf("expected language unknown, got %q", lang)
	}
}

func TestGet_UpstreamErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestScraper(srv).AnalyzeTikTok(context.Background(), "https://www.tiktok.com/@user/video/123")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", upstream.StatusCode)
	}
	if !IsTransient(err) {
		t.Errorf("502 must be classified transient")
	}
}

func TestGet_NotConfigured(t *testing.T) {
	c := NewScrapeCreatorsClient("")
	_, err := c.AnalyzeTwitter(context.Background(), "https://x.com/user/status/1")
	if !errors.Is(err, ErrScraperNotConfigured) {
		t.Fatalf("expected ErrScraperNotConfigured, got %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"server error", &UpstreamError{Endpoint: "/x", StatusCode: 500}, true},
		{"bad gateway", &UpstreamError{Endpoint: "/x", StatusCode: 502}, true},
		{"rate limited", &UpstreamError{Endpoint: "/x", StatusCode: 429}, false},
		{"not found", &UpstreamError{Endpoint: "/x", StatusCode: 404}, false},
		{"unauthorized", &UpstreamError{Endpoint: "/x", StatusCode: 401}, false},
		{"decode failure", errors.New("failed to decode response"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
