package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"cadethq/internal/adapters/email"
	"cadethq/internal/adapters/http/middleware"
	"cadethq/internal/adapters/http/perf"
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
)

// Stores holds all storage dependencies.
type Stores struct {
	SchoolStore       schoolStore.Store
	AccountStore      accountStore.Store
	CadetStore        cadetStore.Store
	TaskStore         taskStore.Store
	IncidentStore     incidentStore.Store
	AnnouncementStore announcementStore.Store
	BudgetStore       budgetStore.Store
	CompetitionStore  competitionStore.Store
	RegistrationStore registrationStore.Store
	AuditStore        auditStore.Store
	OutboxStore       outboxStore.Store
}

// loadCSRFKey reads the CSRF secret from CADETHQ_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("CADETHQ_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("CADETHQ_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("CADETHQ_ENV") == "production" {
		log.Fatal("CADETHQ_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set CADETHQ_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global schedule hub: fans out "schedule changed" signals to portal
// watchers (set by NewMux)
var scheduleHub *portal.Hub

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var emailReplyTo string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// Global outbox executors, shared with the background worker so the
// admin retry endpoint replays entries through the same code path
// (set by SetOutboxExecutors).
var outboxExecutors map[string]orchestrators.ActionExecutor

// SetOutboxExecutors sets the executors used by admin outbox retries.
func SetOutboxExecutors(executors map[string]orchestrators.ActionExecutor) {
	outboxExecutors = executors
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, collector *perf.Collector, hub *portal.Hub) http.Handler {
	stores = s
	perfCollector = collector
	scheduleHub = hub
	sessions = middleware.NewSessionStore()
	occupancyTrackers = newTrackerCache()

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> Auth -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
