package platform

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected Platform
	}{
		{"instagram post", "https://www.instagram.com/p/Cxyz12345/", Instagram},
		{"instagram short domain", "https://instagr.am/p/Cxyz12345/", Instagram},
		{"tiktok", "https://www.tiktok.com/@user/video/7123456789", TikTok},
		{"tiktok share link", "https://vm.tiktok.com/ZM8abcdef/", TikTok},
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", YouTube},
		{"youtube short domain", "https://youtu.be/dQw4w9WgXcQ", YouTube},
		{"twitter", "https://twitter.com/user/status/123", Twitter},
		{"x.com", "https://x.com/user/status/123", Twitter},
		{"t.co", "https://t.co/abc123", Twitter},
		{"linkedin", "https://www.linkedin.com/posts/user_activity-123", LinkedIn},
		{"reddit", "https://www.reddit.com/r/golang/comments/abc/", Reddit},
		{"reddit short", "https://redd.it/abc123", Reddit},
		{"facebook", "https://www.facebook.com/user/posts/123", Facebook},
		{"fb.watch", "https://fb.watch/abc123/", Facebook},
		{"threads", "https://www.threads.net/@user/post/Cxyz", Threads},
		{"uppercase host", "https://WWW.INSTAGRAM.COM/p/Cxyz/", Instagram},
		{"unknown", "https://example.com/some/page", Unknown},
		{"empty", "", Unknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Detect(tc.url); got != tc.expected {
				t.Errorf("Detect(%q) = %q, want %q", tc.url, got, tc.expected)
			}
		})
	}
}

func TestDetectInstagramType(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.instagram.com/reel/Cxyz/", "reel"},
		{"https://www.instagram.com/reels/Cxyz/", "reel"},
		{"https://www.instagram.com/stories/user/123/", "story"},
		{"https://www.instagram.com/p/Cxyz/", "post"},
	}

	for _, tc := range tests {
		if got := DetectInstagramType(tc.url); got != tc.expected {
			t.Errorf("DetectInstagramType(%q) = %q, want %q", tc.url, got, tc.expected)
		}
	}
}

func TestDetectYouTubeType(t *testing.T) {
	if got := DetectYouTubeType("https://www.youtube.com/shorts/dQw4w9WgXcQ"); got != "short" {
		t.Errorf("expected short, got %q", got)
	}
	if got := DetectYouTubeType("https://www.youtube.com/watch?v=dQw4w9WgXcQ"); got != "video" {
		t.Errorf("expected video, got %q", got)
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short domain", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/abc-DEF_123", "abc-DEF_123"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"legacy /v/", "https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"extra query params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"no id", "https://www.youtube.com/feed/subscriptions", ""},
		{"not youtube", "https://example.com/watch?v=dQw4w9WgXcQ", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractVideoID(tc.url); got != tc.expected {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tc.url, got, tc.expected)
			}
		})
	}
}
