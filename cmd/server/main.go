package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "cadethq/internal/adapters/email"
	web "cadethq/internal/adapters/http"
	"cadethq/internal/adapters/http/perf"
	"cadethq/internal/adapters/storage"
	accountStore "cadethq/internal/adapters/storage/account"
	announcementStore "cadethq/internal/adapters/storage/announcement"
	auditStore "cadethq/internal/adapters/storage/audit"
	budgetStore "cadethq/internal/adapters/storage/budget"
	cadetStore "cadethq/internal/adapters/storage/cadet"
	competitionStore "cadethq/internal/adapters/storage/competition"
	incidentStore "cadethq/internal/adapters/storage/incident"
	outboxStore "cadethq/internal/adapters/storage/outbox"
	registrationStore "cadethq/internal/adapters/storage/registration"
	schoolStore "cadethq/internal/adapters/storage/school"
	taskStore "cadethq/internal/adapters/storage/task"
	"cadethq/internal/application/orchestrators"
	"cadethq/internal/application/portal"
	"cadethq/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("CADETHQ_DB", "cadethq.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	// Run database migrations
	if err := storage.MigrateDB(db, dbPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	// Create store instances (using timed DB for query instrumentation)
	acctStore := accountStore.NewSQLiteStore(timedDB)
	schools := schoolStore.NewSQLiteStore(timedDB)
	competitions := competitionStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		SchoolStore:       schools,
		AccountStore:      acctStore,
		CadetStore:        cadetStore.NewSQLiteStore(timedDB),
		TaskStore:         taskStore.NewSQLiteStore(timedDB),
		IncidentStore:     incidentStore.NewSQLiteStore(timedDB),
		AnnouncementStore: announcementStore.NewSQLiteStore(timedDB),
		BudgetStore:       budgetStore.NewSQLiteStore(timedDB),
		CompetitionStore:  competitions,
		RegistrationStore: registrationStore.NewSQLiteStore(timedDB),
		AuditStore:        auditStore.NewSQLiteStore(timedDB),
		OutboxStore:       outboxStore.NewSQLiteStore(timedDB),
	}

	ctx := context.Background()

	// Seed the default schools, then a bootstrap admin bound to the
	// first school, then the competition season.
	firstSchoolID, err := orchestrators.ExecuteSeedSchools(ctx, orchestrators.SeedSchoolsDeps{SchoolStore: schools})
	if err != nil {
		log.Fatalf("failed to seed schools: %v", err)
	}

	adminEmail := envOrDefault("CADETHQ_ADMIN_EMAIL", "admin@cadethq.example.org")
	adminPassword := envOrDefault("CADETHQ_ADMIN_PASSWORD", "change me at first login")
	seedDeps := orchestrators.CreateAccountDeps{AccountStore: acctStore}
	if err := orchestrators.ExecuteSeedAdmin(ctx, seedDeps, firstSchoolID, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	if err := orchestrators.ExecuteSeedCompetitions(ctx, orchestrators.SeedCompetitionsDeps{CompetitionStore: competitions}); err != nil {
		log.Fatalf("failed to seed competitions: %v", err)
	}

	// Configure email sender
	resendKey := os.Getenv("CADETHQ_RESEND_KEY")
	emailFrom := envOrDefault("CADETHQ_RESEND_FROM", "CadetHQ <noreply@cadethq.example.org>")
	emailReply := envOrDefault("CADETHQ_REPLY_TO", "info@cadethq.example.org")
	var sender emailPkg.Sender
	if resendKey != "" {
		sender = emailPkg.NewResendSender(resendKey, emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if os.Getenv("CADETHQ_ENV") == "production" {
			log.Println("WARNING: CADETHQ_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set CADETHQ_RESEND_KEY for real delivery)")
		}
	}
	web.SetEmailSender(sender, emailFrom, emailReply)

	// Outbox executors: announcement emails go to every staff login at
	// the announcing school. Shared with the admin retry endpoint.
	executors := map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeAnnouncementEmail: &orchestrators.AnnouncementEmailExecutor{
			Sender:      sender,
			Recipients:  acctStore,
			FromAddress: emailFrom,
		},
	}
	web.SetOutboxExecutors(executors)

	// Start outbox background worker for retrying failed deliveries
	outboxStopCh := make(chan struct{})
	outboxProcessor := orchestrators.NewOutboxProcessor(stores.OutboxStore, executors)
	orchestrators.StartBackgroundWorker(outboxProcessor, 1*time.Minute, outboxStopCh)
	defer close(outboxStopCh)

	// Schedule hub: portal watchers long-poll on this
	hub := portal.NewHub()

	// Create HTTP handler with middleware (pass collector for timing + dashboard)
	mux := web.NewMux("static", stores, collector, hub)

	addr := envOrDefault("CADETHQ_ADDR", ":8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown: stop accepting, let in-flight requests
	// (including commits) finish within the drain window.
	shutdownDone := make(chan struct{})
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Println("shutting down...")

		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
		close(shutdownDone)
	}()

	log.Printf("CadetHQ %s starting on %s (env=%s, schema=%d)", version, addr, envOrDefault("CADETHQ_ENV", "development"), storage.LatestSchemaVersion())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
	<-shutdownDone
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
