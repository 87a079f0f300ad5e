package integration

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"stablecoin-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// Repositories hand out copies so services never share rows with the store.

// --- In-Memory Payment Link Repo ---

type inMemoryPaymentLinkRepo struct {
	mu    sync.RWMutex
	links map[uuid.UUID]*domain.PaymentLink
}

func newInMemoryPaymentLinkRepo() *inMemoryPaymentLinkRepo {
	return &inMemoryPaymentLinkRepo{links: make(map[uuid.UUID]*domain.PaymentLink)}
}

func (r *inMemoryPaymentLinkRepo) Create(ctx context.Context, link *domain.PaymentLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.links {
		if existing.ShortCode == link.ShortCode {
			return domain.ErrShortCodeTaken
		}
	}
	cp := *link
	r.links[link.ID] = &cp
	return nil
}

func (r *inMemoryPaymentLinkRepo) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.links[id]
	if !ok || l.OwnerID != ownerID {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *inMemoryPaymentLinkRepo) GetByShortCode(ctx context.Context, code string) (*domain.PaymentLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.links {
		if l.ShortCode == code {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryPaymentLinkRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.PaymentLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.PaymentLink
	for _, l := range r.links {
		if l.OwnerID == ownerID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// IncrementUsage mirrors the conditional UPDATE: the check and the write
// happen under one lock.
func (r *inMemoryPaymentLinkRepo) IncrementUsage(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok || l.OwnerID != ownerID {
		return nil, nil
	}
	now := time.Now()
	if l.State(now) != domain.LinkUsable {
		return nil, nil
	}
	l.UsageCount++
	l.UpdatedAt = now
	cp := *l
	return &cp, nil
}

func (r *inMemoryPaymentLinkRepo) IncrementUsageTx(ctx context.Context, tx pgx.Tx, id, ownerID uuid.UUID) (*domain.PaymentLink, error) {
	return r.IncrementUsage(ctx, id, ownerID)
}

func (r *inMemoryPaymentLinkRepo) Deactivate(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok || l.OwnerID != ownerID {
		return nil, nil
	}
	l.Active = false
	l.UpdatedAt = time.Now()
	cp := *l
	return &cp, nil
}

func (r *inMemoryPaymentLinkRepo) usageCount(id uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.links[id]; ok {
		return l.UsageCount
	}
	return 0
}

// --- In-Memory Payment Session Repo ---

type inMemoryPaymentSessionRepo struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.PaymentSession
}

func newInMemoryPaymentSessionRepo() *inMemoryPaymentSessionRepo {
	return &inMemoryPaymentSessionRepo{sessions: make(map[uuid.UUID]*domain.PaymentSession)}
}

func (r *inMemoryPaymentSessionRepo) Create(ctx context.Context, tx pgx.Tx, s *domain.PaymentSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *inMemoryPaymentSessionRepo) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *inMemoryPaymentSessionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.PaymentSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *inMemoryPaymentSessionRepo) TransitionStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from []domain.PaymentStatus, target domain.PaymentStatus, txHash *string) (*domain.PaymentSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || !slices.Contains(from, s.Status) {
		return nil, nil
	}
	s.Status = target
	if txHash != nil {
		h := *txHash
		s.TxHash = &h
	}
	s.UpdatedAt = time.Now()
	cp := *s
	return &cp, nil
}

func (r *inMemoryPaymentSessionRepo) countByLink(linkID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.sessions {
		if s.PaymentLinkID != nil && *s.PaymentLinkID == linkID {
			n++
		}
	}
	return n
}

// --- In-Memory Refund Repo ---

type inMemoryRefundRepo struct {
	mu      sync.RWMutex
	refunds map[uuid.UUID]*domain.Refund
}

func newInMemoryRefundRepo() *inMemoryRefundRepo {
	return &inMemoryRefundRepo{refunds: make(map[uuid.UUID]*domain.Refund)}
}

func (r *inMemoryRefundRepo) Create(ctx context.Context, tx pgx.Tx, refund *domain.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *refund
	r.refunds[refund.ID] = &cp
	return nil
}

func (r *inMemoryRefundRepo) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Refund, error) {
	return r.get(id, &ownerID), nil
}

func (r *inMemoryRefundRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID, ownerID *uuid.UUID) (*domain.Refund, error) {
	return r.get(id, ownerID), nil
}

func (r *inMemoryRefundRepo) get(id uuid.UUID, ownerID *uuid.UUID) *domain.Refund {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.refunds[id]
	if !ok || (ownerID != nil && ref.OwnerID != *ownerID) {
		return nil
	}
	cp := *ref
	return &cp
}

func (r *inMemoryRefundRepo) ListBySession(ctx context.Context, sessionID, ownerID uuid.UUID) ([]domain.Refund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Refund
	for _, ref := range r.refunds {
		if ref.PaymentSessionID == sessionID && ref.OwnerID == ownerID {
			out = append(out, *ref)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *inMemoryRefundRepo) ListAmountsBySession(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, statuses []domain.RefundStatus) ([]decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []decimal.Decimal
	for _, ref := range r.refunds {
		if ref.PaymentSessionID == sessionID && slices.Contains(statuses, ref.Status) {
			out = append(out, ref.Amount)
		}
	}
	return out, nil
}

func (r *inMemoryRefundRepo) MarkProcessing(ctx context.Context, tx pgx.Tx, id uuid.UUID, txHash string) error {
	return r.update(id, []domain.RefundStatus{domain.RefundStatusPending}, func(ref *domain.Refund) {
		ref.Status = domain.RefundStatusProcessing
		ref.TxHash = &txHash
	})
}

func (r *inMemoryRefundRepo) MarkCompleted(ctx context.Context, tx pgx.Tx, id uuid.UUID, txHash string, blockNumber *int64, at time.Time) error {
	return r.update(id, []domain.RefundStatus{domain.RefundStatusProcessing}, func(ref *domain.Refund) {
		ref.Status = domain.RefundStatusCompleted
		ref.TxHash = &txHash
		ref.BlockNumber = blockNumber
		ref.CompletedAt = &at
	})
}

func (r *inMemoryRefundRepo) MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID, reason string, at time.Time) error {
	return r.update(id, []domain.RefundStatus{domain.RefundStatusPending, domain.RefundStatusProcessing}, func(ref *domain.Refund) {
		ref.Status = domain.RefundStatusFailed
		ref.Reason = &reason
		ref.FailedAt = &at
	})
}

func (r *inMemoryRefundRepo) update(id uuid.UUID, from []domain.RefundStatus, apply func(*domain.Refund)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.refunds[id]
	if !ok || !slices.Contains(from, ref.Status) {
		return fmt.Errorf("refund %s not in %v", id, from)
	}
	apply(ref)
	ref.UpdatedAt = time.Now()
	return nil
}

// --- In-Memory Webhook Endpoint Repo ---

type inMemoryWebhookEndpointRepo struct {
	mu        sync.RWMutex
	endpoints map[uuid.UUID]*domain.WebhookEndpoint
}

func newInMemoryWebhookEndpointRepo() *inMemoryWebhookEndpointRepo {
	return &inMemoryWebhookEndpointRepo{endpoints: make(map[uuid.UUID]*domain.WebhookEndpoint)}
}

func (r *inMemoryWebhookEndpointRepo) Create(ctx context.Context, e *domain.WebhookEndpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	cp.Events = slices.Clone(e.Events)
	r.endpoints[e.ID] = &cp
	return nil
}

func (r *inMemoryWebhookEndpointRepo) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.WebhookEndpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.endpoints[id]
	if !ok || e.OwnerID != ownerID {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *inMemoryWebhookEndpointRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.WebhookEndpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.WebhookEndpoint
	for _, e := range r.endpoints {
		if e.OwnerID == ownerID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *inMemoryWebhookEndpointRepo) ListSubscribed(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, event domain.EventType) ([]domain.WebhookEndpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.WebhookEndpoint
	for _, e := range r.endpoints {
		if e.OwnerID == ownerID && e.Active && e.Subscribes(event) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *inMemoryWebhookEndpointRepo) UpdateSecret(ctx context.Context, id, ownerID uuid.UUID, secretEnc string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.endpoints[id]
	if !ok || e.OwnerID != ownerID {
		return fmt.Errorf("webhook endpoint %s: %w", id, domain.ErrNotFound)
	}
	e.SecretEnc = secretEnc
	e.UpdatedAt = time.Now()
	return nil
}

func (r *inMemoryWebhookEndpointRepo) Deactivate(ctx context.Context, id, ownerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.endpoints[id]
	if !ok || e.OwnerID != ownerID {
		return fmt.Errorf("webhook endpoint %s: %w", id, domain.ErrNotFound)
	}
	e.Active = false
	e.UpdatedAt = time.Now()
	return nil
}

func (r *inMemoryWebhookEndpointRepo) get(id uuid.UUID) *domain.WebhookEndpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.endpoints[id]
	if !ok {
		return nil
	}
	cp := *e
	return &cp
}

// --- In-Memory Webhook Delivery Repo ---

type inMemoryWebhookDeliveryRepo struct {
	mu         sync.RWMutex
	deliveries map[uuid.UUID]*domain.WebhookDelivery
	endpoints  *inMemoryWebhookEndpointRepo
}

func newInMemoryWebhookDeliveryRepo(endpoints *inMemoryWebhookEndpointRepo) *inMemoryWebhookDeliveryRepo {
	return &inMemoryWebhookDeliveryRepo{
		deliveries: make(map[uuid.UUID]*domain.WebhookDelivery),
		endpoints:  endpoints,
	}
}

func (r *inMemoryWebhookDeliveryRepo) Create(ctx context.Context, tx pgx.Tx, d *domain.WebhookDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	cp.Endpoint = nil
	r.deliveries[d.ID] = &cp
	return nil
}

func isDue(d *domain.WebhookDelivery, now time.Time) bool {
	return d.Status == domain.DeliveryStatusPending ||
		(d.Status == domain.DeliveryStatusFailed && d.NextAttemptAt != nil && !d.NextAttemptAt.After(now))
}

func (r *inMemoryWebhookDeliveryRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.WebhookDelivery, error) {
	r.mu.RLock()
	var due []*domain.WebhookDelivery
	for _, d := range r.deliveries {
		if isDue(d, now) {
			cp := *d
			due = append(due, &cp)
		}
	}
	r.mu.RUnlock()

	sort.Slice(due, func(i, j int) bool { return due[i].CreatedAt.Before(due[j].CreatedAt) })
	var out []*domain.WebhookDelivery
	for _, d := range due {
		e := r.endpoints.get(d.EndpointID)
		if e == nil || !e.Active {
			continue
		}
		d.Endpoint = e
		out = append(out, d)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *inMemoryWebhookDeliveryRepo) ListByEndpoint(ctx context.Context, endpointID uuid.UUID, limit int) ([]domain.WebhookDelivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.WebhookDelivery
	for _, d := range r.deliveries {
		if d.EndpointID == endpointID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *inMemoryWebhookDeliveryRepo) Claim(ctx context.Context, id uuid.UUID, now time.Time) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deliveries[id]
	if !ok || !isDue(d, now) {
		return 0, false, nil
	}
	d.Status = domain.DeliveryStatusDelivering
	d.Attempts++
	d.UpdatedAt = now
	return d.Attempts, true, nil
}

func (r *inMemoryWebhookDeliveryRepo) MarkSucceeded(ctx context.Context, id uuid.UUID, responseCode int) error {
	return r.finish(id, func(d *domain.WebhookDelivery) {
		d.Status = domain.DeliveryStatusSucceeded
		d.ResponseCode = &responseCode
		d.NextAttemptAt = nil
		d.LastError = nil
	})
}

func (r *inMemoryWebhookDeliveryRepo) MarkFailed(ctx context.Context, id uuid.UUID, responseCode *int, lastError string, nextAttemptAt *time.Time) error {
	return r.finish(id, func(d *domain.WebhookDelivery) {
		d.Status = domain.DeliveryStatusFailed
		d.ResponseCode = responseCode
		d.LastError = &lastError
		d.NextAttemptAt = nextAttemptAt
	})
}

func (r *inMemoryWebhookDeliveryRepo) finish(id uuid.UUID, apply func(*domain.WebhookDelivery)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deliveries[id]
	if !ok || d.Status != domain.DeliveryStatusDelivering {
		return fmt.Errorf("webhook delivery not in flight: %s", id)
	}
	apply(d)
	d.UpdatedAt = time.Now()
	return nil
}

func (r *inMemoryWebhookDeliveryRepo) RequeueStale(ctx context.Context, cutoff time.Time, maxAttempts int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	now := time.Now()
	for _, d := range r.deliveries {
		if d.Status != domain.DeliveryStatusDelivering || !d.UpdatedAt.Before(cutoff) {
			continue
		}
		msg := "delivery interrupted"
		d.Status = domain.DeliveryStatusFailed
		d.LastError = &msg
		d.NextAttemptAt = nil
		if d.Attempts < maxAttempts {
			d.NextAttemptAt = &now
		}
		d.UpdatedAt = now
		n++
	}
	return n, nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serialises transactions behind one lock, which stands
// in for the row locks Postgres would take. Writes are applied immediately
// and are not undone by Rollback.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &lockedTx{release: sync.OnceFunc(t.mu.Unlock)}, nil
}

// lockedTx is a pgx.Tx that only releases the transactor lock.
type lockedTx struct {
	release func()
}

func (t *lockedTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *lockedTx) Commit(ctx context.Context) error          { t.release(); return nil }
func (t *lockedTx) Rollback(ctx context.Context) error        { t.release(); return nil }
func (t *lockedTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *lockedTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *lockedTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *lockedTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *lockedTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *lockedTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *lockedTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *lockedTx) Conn() *pgx.Conn { return nil }
