package orchestrators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "cadethq/internal/adapters/email"
	outboxStore "cadethq/internal/adapters/storage/outbox"
	domain "cadethq/internal/domain/outbox"

	"github.com/yuin/goldmark"
)

// OutboxProcessor handles retrying failed external integration actions.
type OutboxProcessor struct {
	store     outboxStore.Store
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
}

// ActionExecutor executes a specific type of external action.
type ActionExecutor interface {
	// Execute runs the external action with the given payload.
	// Returns the external ID (e.g. provider message ID) and any error.
	Execute(ctx context.Context, payload string) (string, error)
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store outboxStore.Store, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: 30 * time.Second,
		maxDelay:  1 * time.Hour,
		batchSize: 10,
	}
}

// ProcessPending processes pending outbox entries with retries.
// PRE: Context is valid
// POST: Pending entries are processed, failed entries marked for retry
func (p *OutboxProcessor) ProcessPending(ctx context.Context) error {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("list pending outbox entries: %w", err)
	}

	for _, entry := range entries {
		if err := p.processEntry(ctx, entry); err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err.Error())
		}
	}

	return nil
}

// processEntry processes a single outbox entry.
func (p *OutboxProcessor) processEntry(ctx context.Context, entry domain.Entry) error {
	// Check if enough time has passed since last attempt
	if !entry.LastAttemptedAt.IsZero() {
		delay := entry.NextRetryDelay(p.baseDelay, p.maxDelay)
		if time.Since(entry.LastAttemptedAt) < delay {
			return nil // Not ready to retry yet
		}
	}

	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.MarkFailed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType))
		return p.store.Save(ctx, entry)
	}

	entry.MarkAttempt()
	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}

	return p.store.Save(ctx, entry)
}

// ProcessSingle manually processes a single outbox entry (for admin retry).
// PRE: entryID is non-empty
// POST: Entry is processed, status updated
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}

	if entry.IsTerminal() {
		return fmt.Errorf("entry %s is in terminal state and cannot be retried", entryID)
	}

	executor, ok := p.executors[entry.ActionType]
	if !ok {
		return fmt.Errorf("no executor registered for action type: %s", entry.ActionType)
	}

	entry.MarkAttempt()
	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
	} else {
		entry.MarkSuccess(externalID)
	}

	return p.store.Save(ctx, entry)
}

// AbandonEntry marks an entry as abandoned by admin.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}

	entry.MarkAbandoned()
	return p.store.Save(ctx, entry)
}

// --- Announcement Email Executor ---

// RecipientLookup resolves the email addresses subscribed to a school's
// announcements.
type RecipientLookup interface {
	ListEmailsBySchool(ctx context.Context, schoolID string) ([]string, error)
}

// AnnouncementEmailExecutor delivers published announcements to every
// account at the announcing school. Markdown content is rendered to
// HTML before sending.
type AnnouncementEmailExecutor struct {
	Sender      emailAdapter.Sender
	Recipients  RecipientLookup
	FromAddress string
}

// Execute sends the announcement email from the payload.
// PRE: payload is valid JSON matching AnnouncementEmailPayload
// POST: One email per recipient queued at the provider; returns the
// first message ID
// INVARIANT: outbox entry status managed by caller
func (e *AnnouncementEmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p AnnouncementEmailPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal announcement email payload: %w", err)
	}

	addresses, err := e.Recipients.ListEmailsBySchool(ctx, p.SchoolID)
	if err != nil {
		return "", fmt.Errorf("resolve recipients: %w", err)
	}
	if len(addresses) == 0 {
		slog.Info("outbox_email_skipped", "reason", "no_recipients", "school_id", p.SchoolID)
		return "", nil
	}

	var html bytes.Buffer
	if err := goldmark.Convert([]byte(p.Content), &html); err != nil {
		return "", fmt.Errorf("render announcement markdown: %w", err)
	}

	reqs := make([]emailAdapter.SendRequest, 0, len(addresses))
	for _, addr := range addresses {
		reqs = append(reqs, emailAdapter.SendRequest{
			To:      []string{addr},
			From:    e.FromAddress,
			Subject: p.Title,
			HTML:    html.String(),
		})
	}

	results, err := e.Sender.SendBatch(ctx, reqs)
	if err != nil {
		return "", err
	}

	messageID := ""
	if len(results) > 0 {
		messageID = results[0].MessageID
	}
	return messageID, nil
}

// --- Background Worker ---

// StartBackgroundWorker starts a background goroutine that periodically processes pending outbox entries.
// PRE: stopCh is provided to signal shutdown
// POST: Worker runs until stopCh is closed
func StartBackgroundWorker(processor *OutboxProcessor, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if err := processor.ProcessPending(ctx); err != nil {
					slog.Error("outbox_background_process_failed", "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("outbox_background_worker_stopped")
				return
			}
		}
	}()
}
