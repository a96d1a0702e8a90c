package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBudgetFromTotal(t *testing.T) {
	assert.Equal(t, unknownMemoryBudgetMB, budgetFromTotal(0))
	assert.Equal(t, minMemoryBudgetMB, budgetFromTotal(128))
	assert.Equal(t, 2048, budgetFromTotal(8192))
}

func TestCapEntries(t *testing.T) {
	// 64MB at 512KB per entry fits 128 entries
	assert.Equal(t, 128, capEntries(256, 512, 64))
	assert.Equal(t, 100, capEntries(100, 512, 64))
	assert.Equal(t, 1, capEntries(10, 1<<20, 64))
	assert.Equal(t, 10, capEntries(10, 0, 64))
}

func TestCacheEntriesForNeverExceedsRequest(t *testing.T) {
	got := CacheEntriesFor(16, 512)
	assert.GreaterOrEqual(t, got, 1)
	assert.LessOrEqual(t, got, 16)
}
