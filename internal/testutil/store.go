package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/abhisek/mathstudent/internal/store"
)

// OpenStore opens a private in-memory SQLite store closed at test cleanup.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ErrWriteFailed is returned by a FailingSlot while FailWrites is set.
var ErrWriteFailed = errors.New("slot write failed")

// FailingSlot wraps a slot and rejects writes while FailWrites is set.
type FailingSlot struct {
	store.Slot
	FailWrites bool
}

func (s *FailingSlot) Write(ctx context.Context, data []byte) error {
	if s.FailWrites {
		return ErrWriteFailed
	}
	return s.Slot.Write(ctx, data)
}
