package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/internal/core/ports"
	"stablecoin-gateway/internal/core/ports/mocks"
	"stablecoin-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testMerchantAddress = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

type linkServiceDeps struct {
	links      *mocks.MockPaymentLinkRepository
	sessions   *mocks.MockPaymentSessionRepository
	outbox     *mocks.MockWebhookOutbox
	transactor *mocks.MockDBTransactor
	clock      *fakeClock
	svc        *PaymentLinkServiceImpl
}

func setupLinkService(t *testing.T) *linkServiceDeps {
	ctrl := gomock.NewController(t)
	d := &linkServiceDeps{
		links:      mocks.NewMockPaymentLinkRepository(ctrl),
		sessions:   mocks.NewMockPaymentSessionRepository(ctrl),
		outbox:     mocks.NewMockWebhookOutbox(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		clock:      newFakeClock(),
	}
	d.svc = NewPaymentLinkService(d.links, d.sessions, d.outbox, d.transactor, nil, 5, newTestLogger())
	d.svc.now = d.clock.Now
	return d
}

func sequenceCodes(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
}

func validLinkRequest() ports.CreatePaymentLinkRequest {
	amount := decimal.RequireFromString("49.99")
	return ports.CreatePaymentLinkRequest{
		Title:           " Pro plan ",
		Amount:          &amount,
		Currency:        "usd",
		Network:         "Polygon",
		Token:           "usdc",
		MerchantAddress: testMerchantAddress,
	}
}

func usableLink(clock *fakeClock) *domain.PaymentLink {
	maxUsages := 3
	return &domain.PaymentLink{
		ID:              uuid.New(),
		OwnerID:         uuid.New(),
		ShortCode:       "aB3dE5fG",
		Amount:          decimal.NewNullDecimal(decimal.RequireFromString("10.00")),
		Currency:        "USD",
		Network:         domain.NetworkPolygon,
		Token:           "USDC",
		MerchantAddress: testMerchantAddress,
		Active:          true,
		UsageCount:      1,
		MaxUsages:       &maxUsages,
		CreatedAt:       clock.Now(),
		UpdatedAt:       clock.Now(),
	}
}

func TestPaymentLinkService_Create_Success(t *testing.T) {
	d := setupLinkService(t)
	d.svc.codeGen = sequenceCodes("aB3dE5fG")
	owner := uuid.New()

	d.links.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	link, err := d.svc.CreatePaymentLink(context.Background(), owner, validLinkRequest())
	require.NoError(t, err)
	assert.Equal(t, "aB3dE5fG", link.ShortCode)
	assert.Equal(t, owner, link.OwnerID)
	assert.Equal(t, "Pro plan", link.Title)
	assert.Equal(t, "USD", link.Currency)
	assert.Equal(t, "USDC", link.Token)
	assert.Equal(t, domain.NetworkPolygon, link.Network)
	assert.True(t, link.Active)
	assert.Zero(t, link.UsageCount)
	assert.True(t, link.Amount.Decimal.Equal(decimal.RequireFromString("49.99")))
}

func TestPaymentLinkService_Create_RetriesOnCollision(t *testing.T) {
	d := setupLinkService(t)
	d.svc.codeGen = sequenceCodes("aaaaaaa1", "aaaaaaa2", "aaaaaaa3")

	var tried []string
	d.links.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, l *domain.PaymentLink) error {
			tried = append(tried, l.ShortCode)
			if len(tried) < 3 {
				return fmt.Errorf("insert payment link: %w", domain.ErrShortCodeTaken)
			}
			return nil
		}).Times(3)

	link, err := d.svc.CreatePaymentLink(context.Background(), uuid.New(), validLinkRequest())
	require.NoError(t, err)
	assert.Equal(t, "aaaaaaa3", link.ShortCode)
	assert.Equal(t, []string{"aaaaaaa1", "aaaaaaa2", "aaaaaaa3"}, tried)
}

func TestPaymentLinkService_Create_GivesUpAfterFiveCollisions(t *testing.T) {
	d := setupLinkService(t)
	d.svc.codeGen = sequenceCodes("aaaaaaa1")

	d.links.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.ErrShortCodeTaken).Times(5)

	_, err := d.svc.CreatePaymentLink(context.Background(), uuid.New(), validLinkRequest())
	require.Error(t, err)
	assert.Equal(t, "LINK_004", apperror.CodeOf(err))
}

func TestPaymentLinkService_Create_DatabaseErrorIsNotRetried(t *testing.T) {
	d := setupLinkService(t)
	d.links.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset")).Times(1)

	_, err := d.svc.CreatePaymentLink(context.Background(), uuid.New(), validLinkRequest())
	assert.Equal(t, "SYS_001", apperror.CodeOf(err))
}

func TestPaymentLinkService_Create_Validation(t *testing.T) {
	d := setupLinkService(t)
	zero := decimal.Zero
	zeroUsages := 0
	past := d.clock.Now().Add(-time.Minute)

	tests := []struct {
		name   string
		mutate func(r *ports.CreatePaymentLinkRequest)
		code   string
	}{
		{"zero amount", func(r *ports.CreatePaymentLinkRequest) { r.Amount = &zero }, "PAY_002"},
		{"zero max usages", func(r *ports.CreatePaymentLinkRequest) { r.MaxUsages = &zeroUsages }, "PAY_002"},
		{"expiry in the past", func(r *ports.CreatePaymentLinkRequest) { r.ExpiresAt = &past }, "PAY_002"},
		{"unknown network", func(r *ports.CreatePaymentLinkRequest) { r.Network = "dogechain" }, "CHAIN_001"},
		{"bad checksum", func(r *ports.CreatePaymentLinkRequest) {
			r.MerchantAddress = "0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
		}, "PAY_002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validLinkRequest()
			tt.mutate(&req)
			_, err := d.svc.CreatePaymentLink(context.Background(), uuid.New(), req)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.CodeOf(err))
		})
	}
}

func TestPaymentLinkService_GetByShortCode_States(t *testing.T) {
	d := setupLinkService(t)

	expired := d.clock.Now().Add(-time.Second)
	tests := []struct {
		name   string
		mutate func(l *domain.PaymentLink)
		code   string
	}{
		{"usable", func(*domain.PaymentLink) {}, ""},
		{"inactive", func(l *domain.PaymentLink) { l.Active = false; l.ExpiresAt = &expired }, "LINK_001"},
		{"expired", func(l *domain.PaymentLink) { l.ExpiresAt = &expired; l.UsageCount = 3 }, "LINK_002"},
		{"exhausted", func(l *domain.PaymentLink) { l.UsageCount = 3 }, "LINK_003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := usableLink(d.clock)
			tt.mutate(link)
			d.links.EXPECT().GetByShortCode(gomock.Any(), link.ShortCode).Return(link, nil)

			got, err := d.svc.GetPaymentLinkByShortCode(context.Background(), link.ShortCode)
			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, link.ID, got.ID)
				return
			}
			assert.Equal(t, tt.code, apperror.CodeOf(err))
		})
	}
}

func TestPaymentLinkService_GetByShortCode_NotFound(t *testing.T) {
	d := setupLinkService(t)

	_, err := d.svc.GetPaymentLinkByShortCode(context.Background(), "../etc")
	assert.Equal(t, "PAY_004", apperror.CodeOf(err), "malformed codes never reach the database")

	d.links.EXPECT().GetByShortCode(gomock.Any(), "zzzzzzzz").Return(nil, nil)
	_, err = d.svc.GetPaymentLinkByShortCode(context.Background(), "zzzzzzzz")
	assert.Equal(t, "PAY_004", apperror.CodeOf(err))
}

func TestPaymentLinkService_IncrementUsage_Sentinel(t *testing.T) {
	d := setupLinkService(t)
	id, owner := uuid.New(), uuid.New()

	d.links.EXPECT().IncrementUsage(gomock.Any(), id, owner).Return(nil, nil)

	link, err := d.svc.IncrementUsage(context.Background(), id, owner)
	assert.NoError(t, err)
	assert.Nil(t, link)
}

func TestPaymentLinkService_Deactivate_NotFound(t *testing.T) {
	d := setupLinkService(t)
	d.links.EXPECT().Deactivate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := d.svc.DeactivatePaymentLink(context.Background(), uuid.New(), uuid.New())
	assert.Equal(t, "PAY_004", apperror.CodeOf(err))
}

func TestPaymentLinkService_List_ClampsPage(t *testing.T) {
	d := setupLinkService(t)
	owner := uuid.New()
	d.links.EXPECT().ListByOwner(gomock.Any(), owner, 100, 0).Return(nil, nil)

	_, err := d.svc.ListPaymentLinks(context.Background(), owner, 1000, -5)
	assert.NoError(t, err)
}

func TestPaymentLinkService_Redeem_FixedAmount(t *testing.T) {
	d := setupLinkService(t)
	link := usableLink(d.clock)
	tx := &mockTx{}
	email := "payer@example.com"

	updated := *link
	updated.UsageCount = 2

	d.links.EXPECT().GetByShortCode(gomock.Any(), link.ShortCode).Return(link, nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	d.links.EXPECT().IncrementUsageTx(gomock.Any(), tx, link.ID, link.OwnerID).Return(&updated, nil)
	d.sessions.EXPECT().Create(gomock.Any(), tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, s *domain.PaymentSession) error {
			assert.Equal(t, link.OwnerID, s.OwnerID)
			assert.Equal(t, link.ID, *s.PaymentLinkID)
			assert.True(t, s.Amount.Equal(decimal.NewFromInt(10)))
			assert.Equal(t, domain.PaymentStatusPending, s.Status)
			return nil
		})
	d.outbox.EXPECT().Enqueue(gomock.Any(), tx, link.OwnerID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, _ uuid.UUID, p domain.WebhookPayload) (int, error) {
			assert.Equal(t, domain.EventPaymentCreated, p.Type)
			require.NotNil(t, p.Payment)
			return 1, nil
		})
	d.outbox.EXPECT().Announce(gomock.Any(), link.OwnerID, gomock.Any())

	session, err := d.svc.RedeemPaymentLink(context.Background(), link.ShortCode, ports.RedeemRequest{PayerEmail: &email})
	require.NoError(t, err)
	assert.Equal(t, &email, session.PayerEmail)
	assert.Equal(t, link.Network, session.Network)
}

func TestPaymentLinkService_Redeem_AmountRules(t *testing.T) {
	d := setupLinkService(t)
	other := decimal.RequireFromString("11")
	negative := decimal.RequireFromString("-1")

	fixed := usableLink(d.clock)
	d.links.EXPECT().GetByShortCode(gomock.Any(), fixed.ShortCode).Return(fixed, nil)
	_, err := d.svc.RedeemPaymentLink(context.Background(), fixed.ShortCode, ports.RedeemRequest{Amount: &other})
	assert.Equal(t, "PAY_002", apperror.CodeOf(err))

	open := usableLink(d.clock)
	open.Amount = decimal.NullDecimal{}
	d.links.EXPECT().GetByShortCode(gomock.Any(), open.ShortCode).Return(open, nil).Times(2)
	_, err = d.svc.RedeemPaymentLink(context.Background(), open.ShortCode, ports.RedeemRequest{})
	assert.Equal(t, "PAY_002", apperror.CodeOf(err))
	_, err = d.svc.RedeemPaymentLink(context.Background(), open.ShortCode, ports.RedeemRequest{Amount: &negative})
	assert.Equal(t, "PAY_002", apperror.CodeOf(err))
}

func TestPaymentLinkService_Redeem_LostRace(t *testing.T) {
	d := setupLinkService(t)
	link := usableLink(d.clock)
	tx := &mockTx{}

	exhausted := *link
	exhausted.UsageCount = 3

	d.links.EXPECT().GetByShortCode(gomock.Any(), link.ShortCode).Return(link, nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	d.links.EXPECT().IncrementUsageTx(gomock.Any(), tx, link.ID, link.OwnerID).Return(nil, nil)
	d.links.EXPECT().GetByID(gomock.Any(), link.ID, link.OwnerID).Return(&exhausted, nil)

	_, err := d.svc.RedeemPaymentLink(context.Background(), link.ShortCode, ports.RedeemRequest{})
	assert.Equal(t, "LINK_003", apperror.CodeOf(err))
}

func TestPaymentLinkService_Redeem_LockTimeout(t *testing.T) {
	d := setupLinkService(t)
	link := usableLink(d.clock)
	tx := &mockTx{}

	d.links.EXPECT().GetByShortCode(gomock.Any(), link.ShortCode).Return(link, nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	d.links.EXPECT().IncrementUsageTx(gomock.Any(), tx, link.ID, link.OwnerID).
		Return(nil, fmt.Errorf("increment usage: %w", domain.ErrLockTimeout))

	_, err := d.svc.RedeemPaymentLink(context.Background(), link.ShortCode, ports.RedeemRequest{})
	assert.Equal(t, "SYS_002", apperror.CodeOf(err))
}
