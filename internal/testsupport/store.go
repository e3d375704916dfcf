package testsupport

import (
	"testing"

	"pagesmith/internal/config"
	"pagesmith/internal/logging"
	"pagesmith/internal/records"
)

// MustOpenRecords opens the upload record store named by cfg.
func MustOpenRecords(t testing.TB, cfg *config.Config) *records.Store {
	t.Helper()

	store, err := records.Open(cfg.Paths.RecordsFile, logging.NewNop())
	if err != nil {
		t.Fatalf("records.Open: %v", err)
	}
	return store
}
