package affinity_test

import (
	"errors"
	"testing"

	"github.com/momentics/hioload-mux/affinity"
	"github.com/momentics/hioload-mux/api"
)

func TestSetAffinityRejectsNegativeCPU(t *testing.T) {
	err := affinity.SetAffinity(-1)
	if !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if api.CodeOf(err) != api.ErrCodeInvalidArgument {
		t.Errorf("expected code invalid_argument, got %v", api.CodeOf(err))
	}
}
