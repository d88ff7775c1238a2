package outbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/finex_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finex_ledger/internal/core/ports/services"
	"github.com/SscSPs/finex_ledger/internal/core/services"
	"github.com/SscSPs/finex_ledger/internal/dto"
	"github.com/SscSPs/finex_ledger/internal/outbox"
	"github.com/SscSPs/finex_ledger/internal/platform/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DispatcherTestSuite struct {
	suite.Suite
	ctx        context.Context
	store      *memory.Store
	provider   portsrepo.RepositoryProvider
	clock      *clock.Fixed
	categories portssvc.CategorySvcFacade
	registry   *outbox.HandlerRegistry
	dispatcher *outbox.Dispatcher
}

func TestDispatcherTestSuite(t *testing.T) {
	suite.Run(t, new(DispatcherTestSuite))
}

func (s *DispatcherTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.provider = memory.NewRepositoryProvider(s.store)
	s.clock = clock.NewFixed(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	s.categories = services.NewCategoryService(s.provider.CategoryRepo, s.provider.TransactionRepo, s.store, s.clock)
	s.registry = outbox.NewHandlerRegistry()
	s.Require().NoError(outbox.RegisterLedgerHandlers(s.registry, s.categories))
	s.dispatcher = outbox.NewDispatcher(s.provider.OutboxRepo, s.registry, s.clock, outbox.Config{
		PollInterval: 10 * time.Millisecond,
		BatchSize:    10,
		MaxAttempts:  3,
		RetryBase:    time.Second,
	}, nil)
}

// transaction posts one INCOME so there is something to link.
func (s *DispatcherTestSuite) transaction() domain.Transaction {
	acc := &domain.Account{OwnerID: 1, AccountNumber: "HU0000000001", Currency: "HUF",
		Type: domain.AccountTypeCurrent, Status: domain.AccountStatusActive, CreatedAt: s.clock.Now()}
	s.Require().NoError(s.provider.AccountRepo.CreateAccount(s.ctx, acc))
	result, err := services.NewPostingService(s.store, s.clock, true).PostTransaction(s.ctx, dto.PostTransactionRequest{
		AccountID: acc.ID, Amount: decimal.NewFromInt(5), Type: "INCOME", Currency: "HUF",
	})
	s.Require().NoError(err)
	return result.Transaction
}

func (s *DispatcherTestSuite) enqueue(eventType string, payload any) domain.OutboxEvent {
	event, err := domain.NewOutboxEvent(eventType, 1, payload, s.clock.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.provider.OutboxRepo.EnqueueEvents(s.ctx, []domain.OutboxEvent{*event}))
	return *event
}

func (s *DispatcherTestSuite) status(event domain.OutboxEvent) *domain.OutboxEvent {
	got, err := s.provider.OutboxRepo.FindEventByID(s.ctx, event.ID)
	s.Require().NoError(err)
	return got
}

func (s *DispatcherTestSuite) TestCategoryLinkEventIsApplied() {
	txn := s.transaction()
	cat, err := s.categories.CreateCategory(s.ctx, dto.CreateCategoryRequest{Name: "Groceries"})
	s.Require().NoError(err)

	s.Require().NoError(s.categories.RequestCategoryLinks(s.ctx, []int64{txn.ID}, []int64{cat.ID}))

	res := s.dispatcher.DispatchOnce(s.ctx)
	s.Equal(outbox.DispatchResult{Processed: 1, Published: 1}, res)

	linked, err := s.categories.ListTransactionCategories(s.ctx, txn.ID)
	s.Require().NoError(err)
	s.Require().Len(linked, 1)
	s.Equal(cat.ID, linked[0].ID)

	s.Equal(outbox.DispatchResult{}, s.dispatcher.DispatchOnce(s.ctx))
}

func (s *DispatcherTestSuite) TestRedeliveryOfLinkedPairSucceeds() {
	txn := s.transaction()
	cat, err := s.categories.CreateCategory(s.ctx, dto.CreateCategoryRequest{Name: "Rent"})
	s.Require().NoError(err)
	_, err = s.categories.LinkCategory(s.ctx, txn.ID, cat.ID)
	s.Require().NoError(err)

	event := s.enqueue(domain.CategoryLinkEventType, domain.CategoryLinkPayload{TransactionID: txn.ID, CategoryID: cat.ID})
	res := s.dispatcher.DispatchOnce(s.ctx)
	s.Equal(1, res.Published)
	s.Equal(domain.OutboxStatusPublished, s.status(event).Status)
}

func (s *DispatcherTestSuite) TestMissingRowsAreInvalid() {
	event := s.enqueue(domain.CategoryLinkEventType, domain.CategoryLinkPayload{TransactionID: 77, CategoryID: 88})

	res := s.dispatcher.DispatchOnce(s.ctx)
	s.Equal(1, res.Invalid)

	got := s.status(event)
	s.Equal(domain.OutboxStatusInvalid, got.Status)
	s.NotEmpty(got.LastError)
	s.Equal(1, got.Attempts)
}

func (s *DispatcherTestSuite) TestUnknownEventTypeIsInvalid() {
	event := s.enqueue("account.audit", map[string]int{"x": 1})
	s.Equal(1, s.dispatcher.DispatchOnce(s.ctx).Invalid)
	s.Equal(domain.OutboxStatusInvalid, s.status(event).Status)
}

func (s *DispatcherTestSuite) TestTransientFailureIsRetriedWithBackoff() {
	calls := 0
	s.Require().NoError(s.registry.Register("flaky", func(ctx context.Context, e *domain.OutboxEvent) error {
		calls++
		if calls < 3 {
			return errors.New("downstream unavailable")
		}
		return nil
	}))
	event := s.enqueue("flaky", map[string]string{})

	s.Equal(1, s.dispatcher.DispatchOnce(s.ctx).Failed)
	got := s.status(event)
	s.Equal(domain.OutboxStatusFailed, got.Status)
	s.Equal("downstream unavailable", got.LastError)
	s.False(got.AvailableAt.After(s.clock.Now().Add(time.Second)))

	s.clock.Advance(time.Second)
	s.Equal(1, s.dispatcher.DispatchOnce(s.ctx).Failed)

	s.clock.Advance(2 * time.Second)
	s.Equal(1, s.dispatcher.DispatchOnce(s.ctx).Published)
	s.Equal(domain.OutboxStatusPublished, s.status(event).Status)
	s.Equal(3, s.status(event).Attempts)
}

func (s *DispatcherTestSuite) TestEventsStopAfterMaxAttempts() {
	s.Require().NoError(s.registry.Register("broken", func(ctx context.Context, e *domain.OutboxEvent) error {
		return errors.New("still broken")
	}))
	event := s.enqueue("broken", map[string]string{})

	for i := 0; i < 5; i++ {
		s.dispatcher.DispatchOnce(s.ctx)
		s.clock.Advance(time.Hour)
	}
	got := s.status(event)
	s.Equal(domain.OutboxStatusFailed, got.Status)
	s.Equal(3, got.Attempts)
}

func (s *DispatcherTestSuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- s.dispatcher.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("dispatcher did not stop")
	}
}
