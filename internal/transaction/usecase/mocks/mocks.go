// Package mocks provides mock implementations for testing transaction use cases and handlers.
package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	transactionDomain "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/domain"
)

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

// GetByID mocks the GetByID method.
func (m *MockTransactionRepository) GetByID(
	ctx context.Context,
	id int64,
) (*transactionDomain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transactionDomain.Transaction), args.Error(1)
}

// Update mocks the Update method.
func (m *MockTransactionRepository) Update(ctx context.Context, trx *transactionDomain.Transaction) error {
	args := m.Called(ctx, trx)
	return args.Error(0)
}

// Create mocks the Create method.
func (m *MockTransactionRepository) Create(ctx context.Context, trx *transactionDomain.Transaction) error {
	args := m.Called(ctx, trx)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockTransactionRepository) List(
	ctx context.Context,
	filter transactionDomain.ListFilter,
) ([]*transactionDomain.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transactionDomain.Transaction), args.Error(1)
}

// MockTransactionUseCase is a mock implementation of TransactionUseCase.
type MockTransactionUseCase struct {
	mock.Mock
}

// Process mocks the Process method.
func (m *MockTransactionUseCase) Process(
	ctx context.Context,
	payloads []transactionDomain.Payload,
) ([]transactionDomain.ProcessedTransaction, error) {
	args := m.Called(ctx, payloads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transactionDomain.ProcessedTransaction), args.Error(1)
}

// Get mocks the Get method.
func (m *MockTransactionUseCase) Get(ctx context.Context, id int64) (*transactionDomain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transactionDomain.Transaction), args.Error(1)
}

// List mocks the List method.
func (m *MockTransactionUseCase) List(
	ctx context.Context,
	filter transactionDomain.ListFilter,
) ([]*transactionDomain.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transactionDomain.Transaction), args.Error(1)
}

// Import mocks the Import method.
func (m *MockTransactionUseCase) Import(ctx context.Context, r io.Reader) (int, error) {
	args := m.Called(ctx, r)
	return args.Int(0), args.Error(1)
}
