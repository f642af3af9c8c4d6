package domain

// CheckOwnership reports whether actingUserID may mutate or delete event.
// A nil event yields ErrNotFound; any creator mismatch yields ErrUnauthorized.
// It never modifies the event.
func CheckOwnership(event *Event, actingUserID string) error {
	if event == nil {
		return ErrNotFound
	}
	if actingUserID == "" || event.CreatedBy != actingUserID {
		return ErrUnauthorized
	}
	return nil
}
