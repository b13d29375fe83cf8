package models

// AnalyzeURLRequest is the inbound body for POST /api/analyze-url.
type AnalyzeURLRequest struct {
	URL      string `json:"url"`
	UserID   int64  `json:"user_id"`
	Language string `json:"language"` // "ru" | "en", defaults to "ru"
}

// SpeechResponse is the body returned by POST /api/speech-to-text.
type SpeechResponse struct {
	Transcript string `json:"transcript"`
	Language   string `json:"language"`
}
