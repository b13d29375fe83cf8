package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// ScrapeCreators API (paid scraping fallback)
	ScrapeCreatorsAPIKey string

	// YouTube Data API v3 (free official metadata)
	YouTubeAPIKey string

	// Gemini (vision frame analysis + speech transcription)
	GeminiAPIKey string

	// Supabase (balance ledger)
	SupabaseURL     string
	SupabaseAnonKey string

	// CORS
	CORSOrigins string

	// Pricing
	PriceURLAnalysis float64
}

// Load reads configuration from the environment. Every upstream credential
// is optional: a missing key degrades its stage to "skipped" instead of
// failing startup.
func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		ScrapeCreatorsAPIKey: os.Getenv("SCRAPECREATORS_API_KEY"),
		YouTubeAPIKey:        os.Getenv("YOUTUBE_API_KEY"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		SupabaseURL:          os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:      os.Getenv("SUPABASE_ANON_KEY"),
		CORSOrigins:          getEnvOrDefault("CORS_ORIGINS", "*"),
		PriceURLAnalysis:     getEnvAsFloatOrDefault("PRICE_URL_ANALYSIS", 0.10),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
