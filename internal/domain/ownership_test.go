package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckOwnership(t *testing.T) {
	event := &Event{ID: "ev-1", Title: "Jazz night", CreatedBy: "user-a"}

	tests := []struct {
		name    string
		event   *Event
		userID  string
		wantErr error
	}{
		{name: "creator is allowed", event: event, userID: "user-a"},
		{name: "other user is unauthorized", event: event, userID: "user-b", wantErr: ErrUnauthorized},
		{name: "empty acting user is unauthorized", event: event, userID: "", wantErr: ErrUnauthorized},
		{name: "missing event is not found", event: nil, userID: "user-a", wantErr: ErrNotFound},
		{name: "missing event is not found for anyone", event: nil, userID: "user-b", wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOwnership(tt.event, tt.userID)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestCheckOwnership_does_not_mutate(t *testing.T) {
	event := &Event{ID: "ev-1", Title: "Jazz night", CreatedBy: "user-a"}
	before := *event

	_ = CheckOwnership(event, "user-b")
	_ = CheckOwnership(event, "user-a")

	assert.Equal(t, before, *event)
}
