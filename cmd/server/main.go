package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postpilot-backend/internal/config"
	"postpilot-backend/internal/handlers"
	"postpilot-backend/internal/ledger"
	"postpilot-backend/internal/router"
	"postpilot-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting PostPilot Backend...")

	ctx := context.Background()

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Content Providers ────
	scraper := services.NewScrapeCreatorsClient(cfg.ScrapeCreatorsAPIKey)
	if cfg.ScrapeCreatorsAPIKey == "" {
		log.Println("⚠ SCRAPECREATORS_API_KEY not set; scraping fallbacks disabled")
	} else {
		log.Println("✓ ScrapeCreators client ready")
	}

	metadata := services.NewMetadataResolver(cfg.YouTubeAPIKey, scraper)
	if cfg.YouTubeAPIKey == "" {
		log.Println("⚠ YOUTUBE_API_KEY not set; official metadata source disabled")
	} else {
		log.Println("✓ YouTube Data API client ready")
	}

	transcripts := services.NewTranscriptResolver(scraper)
	log.Println("✓ Transcript resolver ready")

	frames, err := services.NewFrameAnalyzer(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("✗ Gemini client init failed: %v", err)
	}
	defer frames.Close()
	if cfg.GeminiAPIKey == "" {
		log.Println("⚠ GEMINI_API_KEY not set; frame analysis disabled")
	} else {
		log.Println("✓ Frame analyzer ready")
	}

	speech, err := services.NewSpeechService(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("✗ Gemini client init failed: %v", err)
	}
	defer speech.Close()

	// ──── Step 3: Initialize Balance Ledger ────
	ledgerClient := ledger.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	if !ledgerClient.Configured() {
		log.Println("⚠ SUPABASE_URL not set; analysis requests will not be charged")
	} else {
		log.Println("✓ Supabase ledger client ready")
	}

	// ──── Step 4: Assemble Pipeline & HTTP Layer ────
	analyzer := services.NewAnalyzer(scraper, metadata, transcripts, frames)
	analysisHandler := handlers.NewAnalysisHandler(analyzer, ledgerClient, cfg.PriceURLAnalysis)
	speechHandler := handlers.NewSpeechHandler(speech)

	r := router.New(analysisHandler, speechHandler, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ──── Step 5: Start Server with Graceful Shutdown ────
	go func() {
		log.Printf("✓ Server listening on port %s (env: %s)", cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("✗ Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("⏳ Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("✗ Server shutdown failed: %v", err)
	}
	log.Println("✓ Server stopped")
}
