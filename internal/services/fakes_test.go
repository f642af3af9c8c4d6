package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"eventhub/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Event
	nextID  int
	err     error // if set, every call returns this error
	updates int
	deletes int
	lists   int
	// afterList, when set, runs once after the next List has read its rows.
	afterList func()
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	events, total, err := f.list(filter, params)
	if hook := f.afterList; hook != nil {
		f.afterList = nil
		hook()
	}
	return events, total, err
}

func (f *fakeEventRepo) list(filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []*domain.Event
	for _, e := range f.byID {
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.CreatedBy != "" && e.CreatedBy != filter.CreatedBy {
			continue
		}
		if filter.IDs != nil && !domain.ContainsID(filter.IDs, e.ID) {
			continue
		}
		if q := strings.ToLower(filter.Search); q != "" &&
			!strings.Contains(strings.ToLower(e.Title+" "+e.Description+" "+e.Location), q) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	total := len(out)
	if !params.Unbounded() {
		start := params.Offset()
		if start > len(out) {
			start = len(out)
		}
		end := start + params.PageSize
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, update domain.EventUpdate) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	update.Apply(e)
	e.UpdatedAt = time.Now()
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	createErr error
	getErr    error
	toggleErr error
	toggles   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) add(u *domain.User) *domain.User {
	f.byID[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email || existing.Username == u.Username {
			return domain.ErrDuplicateUser
		}
	}
	u.ID = fmt.Sprintf("user-%d", len(f.byID)+1)
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		cp := *u
		cp.SavedEvents = append([]string{}, u.SavedEvents...)
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) ToggleSavedEvent(ctx context.Context, userID, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggles++
	if f.toggleErr != nil {
		return false, f.toggleErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return false, domain.ErrNotFound
	}
	next, saved := domain.ToggleSaved(u.SavedEvents, eventID)
	u.SavedEvents = next
	return saved, nil
}

// fakeCache is an in-memory EventListCache with generation semantics:
// Set under a retired generation is dropped.
type fakeCache struct {
	entries     map[string]domain.EventPage
	gen         int64
	getErr      error
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]domain.EventPage)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (*domain.EventPage, int64, error) {
	if c.getErr != nil {
		return nil, 0, c.getErr
	}
	page, ok := c.entries[key]
	if !ok {
		return nil, c.gen, nil
	}
	return &page, c.gen, nil
}

func (c *fakeCache) Set(ctx context.Context, gen int64, key string, page domain.EventPage) error {
	if gen != c.gen {
		return nil
	}
	c.entries[key] = page
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context) error {
	c.invalidated++
	c.gen++
	c.entries = make(map[string]domain.EventPage)
	return nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	salt string
}

func (f *fakePasswordHasher) GenerateSalt() (string, error) { return f.salt, nil }
func (f *fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + salt + "-" + password, nil
}
func (f *fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+salt+"-"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(userID, username string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID, nil
}

// fakeEmailService records welcome messages.
type fakeEmailService struct {
	sent []*domain.WelcomeMessageEmailData
	err  error
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

var errStore = errors.New("connection reset")
