package errors

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[int]*FailedResponse)
	registryMu sync.RWMutex
)

// Register records a predefined FailedResponse. Panics if the code is
// already taken.
func Register(e *FailedResponse) *FailedResponse {
	registryMu.Lock()
	defer registryMu.Unlock()

	if existing, ok := registry[e.Code]; ok {
		panic(fmt.Sprintf("failed response code %d already registered: %s", e.Code, existing.Message))
	}
	registry[e.Code] = e
	return e
}

// Lookup returns the predefined FailedResponse for code.
func Lookup(code int) (*FailedResponse, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := registry[code]
	return e, ok
}

// Codes returns all registered codes in ascending order.
func Codes() []int {
	registryMu.RLock()
	defer registryMu.RUnlock()

	codes := make([]int, 0, len(registry))
	for c := range registry {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}
