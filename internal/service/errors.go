package service

import (
	"errors"

	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
)

// storeFailure passes domain errors through and wraps anything else,
// including failures to begin or commit a transaction, as StoreFailure.
func storeFailure(err error, op string) error {
	if err == nil {
		return nil
	}
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return domainerrors.StoreFailure(err, op)
}
