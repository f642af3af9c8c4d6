package domain

// ContainsID reports whether id is present in ids.
func ContainsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ToggleSaved returns saved with eventID removed when present, or appended
// once when absent, plus the resulting membership. The input slice is not
// modified and the result never holds duplicates of eventID.
func ToggleSaved(saved []string, eventID string) ([]string, bool) {
	if ContainsID(saved, eventID) {
		next := make([]string, 0, len(saved))
		for _, v := range saved {
			if v != eventID {
				next = append(next, v)
			}
		}
		return next, false
	}
	next := make([]string, len(saved), len(saved)+1)
	copy(next, saved)
	return append(next, eventID), true
}
