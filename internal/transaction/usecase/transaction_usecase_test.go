package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/database"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/events"
	transactionDomain "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/domain"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/usecase/mocks"
)

// MockTxManager is a mock implementation of database.TxManager that runs fn.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

// MockTransactionalPublisher is a MockPublisher that writes inside the
// caller's unit of work, like the outbox publisher.
type MockTransactionalPublisher struct {
	MockPublisher
}

func (m *MockTransactionalPublisher) Transactional() bool {
	return true
}

// stubTxManager runs fn and then fails the commit with commitErr when set.
// active is true only while fn runs.
type stubTxManager struct {
	commitErr error
	active    bool
	commits   int
}

func (m *stubTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.active = true
	err := fn(ctx)
	m.active = false
	if err != nil {
		return err
	}
	if m.commitErr != nil {
		return m.commitErr
	}
	m.commits++
	return nil
}

var (
	testCorrelationID = uuid.MustParse("0190c1d4-8a5e-7c8b-9f1e-2d3c4b5a6978")
	testNow           = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	testEventConfig   = EventConfig{Source: "lambda", DetailType: "Send Notification", BusName: "default"}
)

type testFixture struct {
	txManager *MockTxManager
	repo      *mocks.MockTransactionRepository
	publisher *MockPublisher
	useCase   TransactionUseCase
}

func newTestUseCase(txManager database.TxManager, repo TransactionRepository, publisher events.Publisher) TransactionUseCase {
	return NewTransactionUseCase(
		txManager,
		repo,
		publisher,
		testEventConfig,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithIDGenerator(func() (uuid.UUID, error) { return testCorrelationID, nil }),
		WithClock(func() time.Time { return testNow }),
	)
}

func newTestFixture() *testFixture {
	f := &testFixture{
		txManager: &MockTxManager{},
		repo:      &mocks.MockTransactionRepository{},
		publisher: &MockPublisher{},
	}
	f.useCase = newTestUseCase(f.txManager, f.repo, f.publisher)
	f.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil)
	return f
}

func (f *testFixture) assertExpectations(t *testing.T) {
	f.txManager.AssertExpectations(t)
	f.repo.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func createdTransaction() *transactionDomain.Transaction {
	return &transactionDomain.Transaction{
		ID:        8,
		SourceID:  1,
		DestID:    2,
		Amount:    transactionDomain.AmountFromFloat(17.0),
		Status:    transactionDomain.StatusCreated,
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func payload(id int64, hasError bool) transactionDomain.Payload {
	return transactionDomain.Payload{ID: &id, HasError: hasError}
}

func withStatus(status transactionDomain.Status) any {
	return mock.MatchedBy(func(trx *transactionDomain.Transaction) bool {
		return trx.ID == 8 && trx.Status == status
	})
}

func TestTransactionUseCase_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Done", func(t *testing.T) {
		f := newTestFixture()
		stored := createdTransaction()

		f.repo.On("GetByID", mock.Anything, int64(8)).Return(stored, nil).Once()
		f.repo.On("Update", mock.Anything, withStatus(transactionDomain.StatusDone)).Return(nil).Once()
		f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
			return e.Source == "lambda" && e.DetailType == "Send Notification" && e.BusName == "default"
		})).Return(true, nil).Once()

		processed, err := f.useCase.Process(ctx, []transactionDomain.Payload{payload(8, false)})
		require.NoError(t, err)
		require.Len(t, processed, 1)

		result := processed[0]
		assert.Equal(t, transactionDomain.StatusCreated, result.Input.Status)
		assert.Equal(t, transactionDomain.StatusDone, result.Output.Status)
		assert.Equal(t, testCorrelationID, result.Output.ID)
		assert.Equal(t, "17", result.Output.TrxDetails.Amount.String())
		assert.Equal(t, int64(1), *result.Output.TrxDetails.Source)
		assert.Equal(t, int64(2), *result.Output.TrxDetails.Dest)
		assert.Equal(t, testNow, *result.Output.TrxDetails.Timestamp)
		assert.True(t, result.EBStatus)
		assert.Equal(t, transactionDomain.StatusCreated, stored.Status, "looked up record is not mutated")
		f.assertExpectations(t)
	})

	t.Run("Success_FailureIsPersistedAndEmitted", func(t *testing.T) {
		f := newTestFixture()

		f.repo.On("GetByID", mock.Anything, int64(8)).Return(createdTransaction(), nil).Once()
		f.repo.On("Update", mock.Anything, withStatus(transactionDomain.StatusFailure)).Return(nil).Once()
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(true, nil).Once()

		processed, err := f.useCase.Process(ctx, []transactionDomain.Payload{payload(8, true)})
		require.NoError(t, err)
		require.Len(t, processed, 1)

		assert.Equal(t, transactionDomain.StatusFailure, processed[0].Output.Status)
		assert.True(t, processed[0].Output.TrxDetails.Error)
		assert.Equal(t, "Something goes wrong", processed[0].Output.TrxDetails.Message)
		f.assertExpectations(t)
	})

	t.Run("Success_UnacknowledgedEventDoesNotHaltBatch", func(t *testing.T) {
		f := newTestFixture()
		second := createdTransaction()
		second.ID = 9

		f.repo.On("GetByID", mock.Anything, int64(8)).Return(createdTransaction(), nil).Once()
		f.repo.On("GetByID", mock.Anything, int64(9)).Return(second, nil).Once()
		f.repo.On("Update", mock.Anything, mock.Anything).Return(nil).Twice()
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(false, nil).Once()
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(true, nil).Once()

		processed, err := f.useCase.Process(ctx, []transactionDomain.Payload{payload(8, false), payload(9, false)})
		require.NoError(t, err)
		require.Len(t, processed, 2)

		assert.False(t, processed[0].EBStatus)
		assert.True(t, processed[1].EBStatus)
		assert.Equal(t, int64(9), processed[1].Input.ID)
		f.assertExpectations(t)
	})

	t.Run("Success_RedeliveryReappliesAndReemits", func(t *testing.T) {
		f := newTestFixture()
		settled := createdTransaction()
		settled.Status = transactionDomain.StatusDone

		f.repo.On("GetByID", mock.Anything, int64(8)).Return(createdTransaction(), nil).Once()
		f.repo.On("GetByID", mock.Anything, int64(8)).Return(settled, nil).Once()
		f.repo.On("Update", mock.Anything, withStatus(transactionDomain.StatusDone)).Return(nil).Twice()
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(true, nil).Twice()

		first, err := f.useCase.Process(ctx, []transactionDomain.Payload{payload(8, false)})
		require.NoError(t, err)
		second, err := f.useCase.Process(ctx, []transactionDomain.Payload{payload(8, false)})
		require.NoError(t, err)

		assert.Equal(t, transactionDomain.StatusDone, first[0].Output.Status)
		assert.Equal(t, transactionDomain.StatusDone, second[0].Input.Status)
		assert.Equal(t, transactionDomain.StatusDone, second[0].Output.Status)
		f.publisher.AssertNumberOfCalls(t, "Publish", 2)
		f.assertExpectations(t)
	})

	t.Run("Success_EmptyBatch", func(t *testing.T) {
		f := newTestFixture()

		processed, err := f.useCase.Process(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, processed)
		assert.Empty(t, processed)
		f.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Error_MissingID", func(t *testing.T) {
		f := newTestFixture()

		processed, err := f.useCase.Process(ctx, []transactionDomain.Payload{{}})
		assert.Nil(t, processed)
		assert.ErrorIs(t, err, transactionDomain.ErrMissingTransactionID)
		assert.ErrorIs(t, err, transactionDomain.ErrTransactionNotFound)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("Error_NotFoundAbortsBatch", func(t *testing.T) {
		f := newTestFixture()

		f.repo.On("GetByID", mock.Anything, int64(404)).Return(nil, transactionDomain.ErrTransactionNotFound).Once()

		processed, err := f.useCase.Process(ctx, []transactionDomain.Payload{payload(404, false), payload(8, false)})
		assert.Nil(t, processed)
		assert.ErrorIs(t, err, transactionDomain.ErrTransactionNotFound)
		f.repo.AssertNotCalled(t, "GetByID", mock.Anything, int64(8))
		f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("Error_PersistenceFailure", func(t *testing.T) {
		f := newTestFixture()

		f.repo.On("GetByID", mock.Anything, int64(8)).Return(createdTransaction(), nil).Once()
		f.repo.On("Update", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

		_, err := f.useCase.Process(ctx, []transactionDomain.Payload{payload(8, false)})
		assert.ErrorContains(t, err, "connection reset")
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("Error_PublishFailureKeepsCommittedUpdate", func(t *testing.T) {
		txManager := &stubTxManager{}
		repo := &mocks.MockTransactionRepository{}
		publisher := &MockPublisher{}

		repo.On("GetByID", mock.Anything, int64(8)).Return(createdTransaction(), nil).Once()
		repo.On("Update", mock.Anything, withStatus(transactionDomain.StatusDone)).Return(nil).Once()
		publisher.On("Publish", mock.Anything, mock.Anything).Return(false, errors.New("throttled")).Once()

		processed, err := newTestUseCase(txManager, repo, publisher).Process(
			ctx, []transactionDomain.Payload{payload(8, false)},
		)
		assert.Nil(t, processed)
		assert.ErrorContains(t, err, "throttled")
		assert.ErrorContains(t, err, "transaction 8 committed as done")
		assert.Equal(t, 1, txManager.commits)
		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("Success_BusPublishedAfterCommit", func(t *testing.T) {
		txManager := &stubTxManager{}
		repo := &mocks.MockTransactionRepository{}
		publisher := &MockPublisher{}

		repo.On("GetByID", mock.Anything, int64(8)).Return(createdTransaction(), nil).Once()
		repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
		publisher.On("Publish", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			assert.False(t, txManager.active, "published inside the unit of work")
			assert.Equal(t, 1, txManager.commits, "published before commit")
		}).Return(true, nil).Once()

		processed, err := newTestUseCase(txManager, repo, publisher).Process(
			ctx, []transactionDomain.Payload{payload(8, false)},
		)
		require.NoError(t, err)
		require.Len(t, processed, 1)
		assert.True(t, processed[0].EBStatus)
		publisher.AssertExpectations(t)
	})

	t.Run("Error_CommitFailureDoesNotPublish", func(t *testing.T) {
		txManager := &stubTxManager{commitErr: errors.New("commit: connection reset")}
		repo := &mocks.MockTransactionRepository{}
		publisher := &MockPublisher{}

		repo.On("GetByID", mock.Anything, int64(8)).Return(createdTransaction(), nil).Once()
		repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

		processed, err := newTestUseCase(txManager, repo, publisher).Process(
			ctx, []transactionDomain.Payload{payload(8, false)},
		)
		assert.Nil(t, processed)
		assert.EqualError(t, err, "commit: connection reset")
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("Success_TransactionalPublisherWritesInsideUnitOfWork", func(t *testing.T) {
		txManager := &stubTxManager{}
		repo := &mocks.MockTransactionRepository{}
		publisher := &MockTransactionalPublisher{}

		repo.On("GetByID", mock.Anything, int64(8)).Return(createdTransaction(), nil).Once()
		repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
		publisher.On("Publish", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			assert.True(t, txManager.active, "outbox write outside the unit of work")
		}).Return(true, nil).Once()

		processed, err := newTestUseCase(txManager, repo, publisher).Process(
			ctx, []transactionDomain.Payload{payload(8, false)},
		)
		require.NoError(t, err)
		assert.True(t, processed[0].EBStatus)
		assert.Equal(t, 1, txManager.commits)
		publisher.AssertExpectations(t)
	})

	t.Run("Error_TransactionalPublisherFailureRollsBack", func(t *testing.T) {
		txManager := &stubTxManager{}
		repo := &mocks.MockTransactionRepository{}
		publisher := &MockTransactionalPublisher{}

		repo.On("GetByID", mock.Anything, int64(8)).Return(createdTransaction(), nil).Once()
		repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
		publisher.On("Publish", mock.Anything, mock.Anything).Return(false, errors.New("outbox insert failed")).Once()

		_, err := newTestUseCase(txManager, repo, publisher).Process(
			ctx, []transactionDomain.Payload{payload(8, false)},
		)
		assert.EqualError(t, err, "outbox insert failed")
		assert.Zero(t, txManager.commits)
	})

	t.Run("Error_IDGenerator", func(t *testing.T) {
		f := newTestFixture()
		useCase := NewTransactionUseCase(
			f.txManager, f.repo, f.publisher, testEventConfig,
			slog.New(slog.NewTextHandler(io.Discard, nil)),
			WithIDGenerator(func() (uuid.UUID, error) { return uuid.Nil, errors.New("entropy exhausted") }),
		)

		_, err := useCase.Process(ctx, []transactionDomain.Payload{payload(8, false)})
		assert.ErrorContains(t, err, "failed to generate correlation id")
	})
}

func TestTransactionUseCase_Get(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()

	f.repo.On("GetByID", ctx, int64(8)).Return(createdTransaction(), nil).Once()
	f.repo.On("GetByID", ctx, int64(404)).Return(nil, transactionDomain.ErrTransactionNotFound).Once()

	trx, err := f.useCase.Get(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(8), trx.ID)

	_, err = f.useCase.Get(ctx, 404)
	assert.ErrorIs(t, err, transactionDomain.ErrTransactionNotFound)
}

func TestTransactionUseCase_List(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()

	filter := transactionDomain.ListFilter{Limit: 50}
	f.repo.On("List", ctx, filter).Return([]*transactionDomain.Transaction{createdTransaction()}, nil).Once()

	transactions, err := f.useCase.List(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, transactions, 1)
	f.repo.AssertExpectations(t)
}
