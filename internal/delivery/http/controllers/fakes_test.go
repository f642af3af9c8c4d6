package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	eventUUID = "3f1c2b7e-8a4d-4c55-9b1e-0c6f2a9d7e11"
	userA     = "a1a1a1a1-0000-4000-8000-000000000001"
	userB     = "b2b2b2b2-0000-4000-8000-000000000002"
)

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err error

	event  *domain.Event
	events []*domain.Event
	total  int
	saved  bool

	lastCreate  *domain.Event
	lastFilter  domain.EventFilter
	lastParams  domain.PaginationParams
	lastEventID string
	lastUserID  string
	lastUpdate  domain.EventUpdate
	calls       int
}

func (f *fakeEventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	f.calls++
	f.lastCreate = event
	if f.err != nil {
		return f.err
	}
	event.ID = eventUUID
	return nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	f.calls++
	f.lastEventID = eventID
	return f.event, f.err
}

func (f *fakeEventService) ListEvents(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.calls++
	f.lastFilter, f.lastParams = filter, params
	return f.events, f.total, f.err
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, eventID, userID string, update domain.EventUpdate) (*domain.Event, error) {
	f.calls++
	f.lastEventID, f.lastUserID, f.lastUpdate = eventID, userID, update
	return f.event, f.err
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, eventID, userID string) error {
	f.calls++
	f.lastEventID, f.lastUserID = eventID, userID
	return f.err
}

func (f *fakeEventService) ToggleSave(ctx context.Context, eventID, userID string) (bool, error) {
	f.calls++
	f.lastEventID, f.lastUserID = eventID, userID
	return f.saved, f.err
}

func (f *fakeEventService) ListSavedEvents(ctx context.Context, userID string) ([]*domain.Event, error) {
	f.calls++
	f.lastUserID = userID
	return f.events, f.err
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	token string
	user  *domain.User
	err   error

	lastUsername, lastEmail, lastPassword string
}

func (f *fakeAuthService) Register(ctx context.Context, username, email, password string) (string, *domain.User, error) {
	f.lastUsername, f.lastEmail, f.lastPassword = username, email, password
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	f.lastEmail, f.lastPassword = email, password
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

// decodeEnvelope decodes the response envelope, unmarshalling data into dest when non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	if dest != nil && env.Error == nil {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return env.Error
}
