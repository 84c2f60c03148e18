package idgen_test

import (
	"testing"
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/idgen"
	"github.com/stretchr/testify/assert"
)

func TestNewULID_Sortable(t *testing.T) {
	first := idgen.NewULID()
	time.Sleep(2 * time.Millisecond)
	second := idgen.NewULID()

	assert.Len(t, first, 26)
	assert.Less(t, first, second)
}

func TestNewShortID_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := idgen.NewShortID()
		assert.Len(t, id, 15)
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
	}
}
