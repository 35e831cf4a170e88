package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"gympay_backend/internal/config"
	"gympay_backend/internal/models"
	"gympay_backend/internal/services"
)

// The sweeper closes out sessions the gateway never reported on: a created
// session past its expiry is confirmed against the gateway and then marked
// with its final status.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	gateway := services.NewArifPayService(cfg)

	log.Println("Worker started. Waiting for next tick...")

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down worker...")
		cancel()
	}()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	// Run once immediately, then tick.
	sweepExpiredSessions(ctx, db, gateway)

	for {
		select {
		case <-ticker.C:
			sweepExpiredSessions(ctx, db, gateway)
		case <-ctx.Done():
			return
		}
	}
}

func sweepExpiredSessions(ctx context.Context, db *gorm.DB, gateway services.ArifPayGateway) {
	log.Println("Checking for stale checkout sessions...")

	var stale []models.CheckoutSession
	now := time.Now()
	if err := db.Where("status = ? AND expires_at <= ?", models.SessionStatusCreated, now).Find(&stale).Error; err != nil {
		log.Printf("Error fetching stale sessions: %v", err)
		return
	}

	if len(stale) == 0 {
		log.Println("No stale sessions found.")
		return
	}

	log.Printf("Found %d stale sessions.", len(stale))

	for _, session := range stale {
		if ctx.Err() != nil {
			return
		}

		session.Status = resolveFinalStatus(ctx, gateway, &session)
		if err := db.Save(&session).Error; err != nil {
			log.Printf("Failed to close out session %s: %v", session.SessionID, err)
		}
	}
}

// resolveFinalStatus asks the gateway for the session's outcome before
// declaring it expired; an unreachable gateway defaults to expired since the
// session is already past its lifetime.
func resolveFinalStatus(ctx context.Context, gateway services.ArifPayGateway, session *models.CheckoutSession) models.SessionStatus {
	if session.SessionID == "" {
		return models.SessionStatusExpired
	}

	doc, err := gateway.GetSessionStatus(ctx, session.SessionID)
	if err != nil {
		log.Printf("Status check failed for session %s: %v", session.SessionID, err)
		return models.SessionStatusExpired
	}

	var parsed struct {
		Data struct {
			TransactionStatus string `json:"transactionStatus"`
		} `json:"data"`
	}
	if err := json.Unmarshal(doc, &parsed); err == nil {
		if status, ok := models.StatusFromGateway(parsed.Data.TransactionStatus); ok {
			return status
		}
	}

	return models.SessionStatusExpired
}
