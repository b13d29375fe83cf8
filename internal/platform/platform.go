package platform

import (
	"regexp"
	"strings"
)

// Platform identifies a supported social media platform.
type Platform string

const (
	Instagram Platform = "instagram"
	TikTok    Platform = "tiktok"
	YouTube   Platform = "youtube"
	Twitter   Platform = "twitter"
	LinkedIn  Platform = "linkedin"
	Reddit    Platform = "reddit"
	Facebook  Platform = "facebook"
	Threads   Platform = "threads"
	Unknown   Platform = "unknown"
)

// Names maps platform tags to their display names.
var Names = map[Platform]string{
	Instagram: "Instagram",
	TikTok:    "TikTok",
	YouTube:   "YouTube",
	Twitter:   "Twitter/X",
	LinkedIn:  "LinkedIn",
	Reddit:    "Reddit",
	Facebook:  "Facebook",
	Threads:   "Threads",
}

// DisplayName returns the human-readable name for a platform tag.
func DisplayName(p Platform) string {
	if name, ok := Names[p]; ok {
		return name
	}
	return string(p)
}

// SupportedNames returns the display names of all supported platforms.
func SupportedNames() []string {
	return []string{
		Names[Instagram], Names[TikTok], Names[YouTube], Names[Twitter],
		Names[LinkedIn], Names[Reddit], Names[Facebook], Names[Threads],
	}
}

type marker struct {
	platform Platform
	domains  []string
}

// Ordered domain markers. The domain sets are disjoint, so ordering carries
// no precedence semantics; first match wins.
var markers = []marker{
	{Instagram, []string{"instagram.com", "instagr.am"}},
	{TikTok, []string{"tiktok.com", "vm.tiktok.com"}},
	{YouTube, []string{"youtube.com", "youtu.be"}},
	{Twitter, []string{"twitter.com", "x.com", "t.co"}},
	{LinkedIn, []string{"linkedin.com"}},
	{Reddit, []string{"reddit.com", "redd.it"}},
	{Facebook, []string{"facebook.com", "fb.com", "fb.watch"}},
	{Threads, []string{"threads.net"}},
}

// Detect classifies a URL by case-insensitive substring matching against the
// known domain markers. URLs matching nothing map to Unknown.
func Detect(url string) Platform {
	lower := strings.ToLower(url)
	for _, m := range markers {
		for _, domain := range m.domains {
			if strings.Contains(lower, domain) {
				return m.platform
			}
		}
	}
	return Unknown
}

// DetectInstagramType distinguishes reel, story, and regular post URLs.
func DetectInstagramType(url string) string {
	if strings.Contains(url, "/reel/") || strings.Contains(url, "/reels/") {
		return "reel"
	}
	if strings.Contains(url, "/stories/") {
		return "story"
	}
	return "post"
}

// DetectYouTubeType distinguishes shorts from regular videos.
func DetectYouTubeType(url string) string {
	if strings.Contains(strings.ToLower(url), "/shorts/") {
		return "short"
	}
	return "video"
}

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/(?:embed|v)/([a-zA-Z0-9_-]{11})`),
}

// ExtractVideoID pulls the 11-character video ID out of a YouTube URL.
// Returns "" when no known URL shape matches.
func ExtractVideoID(url string) string {
	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(url); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}
