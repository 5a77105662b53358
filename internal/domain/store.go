package domain

import (
	"errors"
	"strings"
)

var ErrMissingStore = errors.New("store id is required")

// StoreScope is the tenant every query runs against. It is passed explicitly
// through repositories and services instead of riding on request state.
type StoreScope struct {
	StoreID string
}

func NewStoreScope(storeID string) (StoreScope, error) {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return StoreScope{}, ErrMissingStore
	}
	return StoreScope{StoreID: storeID}, nil
}

func (s StoreScope) String() string {
	return s.StoreID
}
