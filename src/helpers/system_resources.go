package helpers

const (
	// unknownMemoryBudgetMB is used when the platform probe fails.
	unknownMemoryBudgetMB = 256
	minMemoryBudgetMB     = 64
)

// MemoryBudgetMB is the memory the in-process history cache may use: a
// quarter of what the process can get, never below 64MB.
func MemoryBudgetMB() int {
	return budgetFromTotal(GetTotalSystemMemoryMB())
}

func budgetFromTotal(totalMB int) int {
	if totalMB <= 0 {
		return unknownMemoryBudgetMB
	}
	return max(totalMB/4, minMemoryBudgetMB)
}

// -----------------------------------------------------------------------------

// CacheEntriesFor lowers requested until requested*entryKB fits the memory
// budget. At least one entry is always allowed.
func CacheEntriesFor(requested, entryKB int) int {
	return capEntries(requested, entryKB, MemoryBudgetMB())
}

func capEntries(requested, entryKB, budgetMB int) int {
	if entryKB <= 0 || requested <= 0 {
		return requested
	}
	allowed := budgetMB * 1024 / entryKB
	return max(min(requested, allowed), 1)
}
