package skills

// TopSuggestions returns the first n entries of an already ranked queue.
func TopSuggestions(queue []Priority, n int) []Priority {
	if n <= 0 {
		return []Priority{}
	}
	if n > len(queue) {
		n = len(queue)
	}
	top := make([]Priority, n)
	copy(top, queue[:n])
	return top
}

// SuggestionsByOutcome splits a ranked queue per outcome, keeping at most
// perOutcome entries each and preserving queue order within an outcome.
func SuggestionsByOutcome(queue []Priority, perOutcome int) map[string][]Priority {
	grouped := make(map[string][]Priority)
	if perOutcome <= 0 {
		return grouped
	}
	for _, entry := range queue {
		id := entry.Skill.OutcomeID
		if len(grouped[id]) < perOutcome {
			grouped[id] = append(grouped[id], entry)
		}
	}
	return grouped
}

// FindPriority returns the queue entry for skillID, if ranked.
func FindPriority(queue []Priority, skillID string) (Priority, bool) {
	for _, entry := range queue {
		if entry.Skill.ID == skillID {
			return entry, true
		}
	}
	return Priority{}, false
}
