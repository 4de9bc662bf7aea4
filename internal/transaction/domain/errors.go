package domain

import (
	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"
)

var (
	// ErrTransactionNotFound indicates no transaction exists for the requested id.
	ErrTransactionNotFound = apperrors.Wrap(apperrors.ErrNotFound, "transaction not found")

	// ErrMissingTransactionID indicates an inbound payload carried no id.
	ErrMissingTransactionID = apperrors.Wrap(ErrTransactionNotFound, "missing transaction id")

	// ErrInvalidStatusTransition indicates a transition that would regress a transaction.
	ErrInvalidStatusTransition = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid status transition")

	// ErrMissingRecords indicates an inbound batch without a Records collection.
	ErrMissingRecords = apperrors.Wrap(apperrors.ErrInvalidInput, "no records founded")
)
