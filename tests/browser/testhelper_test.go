package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

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
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL  string
	DB       *sql.DB
	Server   *http.Server
	PW       *playwright.Playwright
	Browser  playwright.Browser
	Stores   *web.Stores
	SchoolID string
	AdminID  string
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
// Requires CADETHQ_BROWSER_TESTS=1 and an installed Playwright runtime.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	if os.Getenv("CADETHQ_BROWSER_TESTS") != "1" {
		t.Skip("set CADETHQ_BROWSER_TESTS=1 to run browser tests")
	}

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := storage.MigrateDB(db, dbPath); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	acctStore := accountStore.NewSQLiteStore(db)
	schools := schoolStore.NewSQLiteStore(db)
	competitions := competitionStore.NewSQLiteStore(db)
	stores := &web.Stores{
		SchoolStore:       schools,
		AccountStore:      acctStore,
		CadetStore:        cadetStore.NewSQLiteStore(db),
		TaskStore:         taskStore.NewSQLiteStore(db),
		IncidentStore:     incidentStore.NewSQLiteStore(db),
		AnnouncementStore: announcementStore.NewSQLiteStore(db),
		BudgetStore:       budgetStore.NewSQLiteStore(db),
		CompetitionStore:  competitions,
		RegistrationStore: registrationStore.NewSQLiteStore(db),
		AuditStore:        auditStore.NewSQLiteStore(db),
		OutboxStore:       outboxStore.NewSQLiteStore(db),
	}

	ctx := context.Background()
	schoolID, err := orchestrators.ExecuteSeedSchools(ctx, orchestrators.SeedSchoolsDeps{SchoolStore: schools})
	if err != nil {
		t.Fatalf("failed to seed schools: %v", err)
	}
	if err := orchestrators.ExecuteSeedCompetitions(ctx, orchestrators.SeedCompetitionsDeps{CompetitionStore: competitions}); err != nil {
		t.Fatalf("failed to seed competitions: %v", err)
	}

	// Admin without a forced password change so login goes straight through.
	adminID, err := orchestrators.ExecuteCreateAccount(ctx, orchestrators.CreateAccountInput{
		SchoolID:               schoolID,
		Email:                  "admin@test.com",
		Password:               "TestPass123!abc",
		Role:                   "admin",
		PasswordChangeRequired: false,
	}, orchestrators.CreateAccountDeps{AccountStore: acctStore})
	if err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	web.RateLimitPerSecond = 1000
	mux := web.NewMux(filepath.Join(tmpDir, "static"), stores, perf.NewCollector(perf.DefaultRingSize), portal.NewHub())
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/api/session")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL:  baseURL,
		DB:       db,
		Server:   srv,
		PW:       pw,
		Browser:  browser,
		Stores:   stores,
		SchoolID: schoolID,
		AdminID:  adminID,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login authenticates the page's browser context through the JSON API.
// The session cookie lands in the context, so later page requests are
// authenticated.
func (a *testApp) login(t *testing.T, page playwright.Page) {
	t.Helper()
	script := fmt.Sprintf(`async () => {
		const resp = await fetch(%q, {
			method: "POST",
			headers: {"Content-Type": "application/json"},
			body: JSON.stringify({Email: "admin@test.com", Password: "TestPass123!abc"}),
		});
		return resp.status;
	}`, a.BaseURL+"/api/login")

	// Navigate somewhere on the origin first so fetch is same-origin.
	if _, err := page.Goto(a.BaseURL + "/api/session"); err != nil {
		t.Fatalf("failed to open origin: %v", err)
	}
	status, err := page.Evaluate(script)
	if err != nil {
		t.Fatalf("login fetch failed: %v", err)
	}
	if code, ok := status.(int); ok && code != 200 {
		t.Fatalf("login status = %v", status)
	}
}
