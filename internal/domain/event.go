package domain

import (
	"context"
	"strings"
	"time"
)

// Category is one of the fixed event categories.
type Category string

const (
	CategoryMusic      Category = "Music"
	CategorySports     Category = "Sports"
	CategoryArt        Category = "Art"
	CategoryFood       Category = "Food"
	CategoryTechnology Category = "Technology"
	CategoryBusiness   Category = "Business"
	CategoryOther      Category = "Other"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryMusic,
	CategorySports,
	CategoryArt,
	CategoryFood,
	CategoryTechnology,
	CategoryBusiness,
	CategoryOther,
}

// ParseCategory resolves s case-insensitively to a known category.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// EventCreator is the populated view of an event's owner.
// swagger:model EventCreator
type EventCreator struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Event represents a listed activity owned by the user who created it.
// swagger:model Event
type Event struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Date        time.Time     `json:"date"`
	Time        string        `json:"time"`
	Location    string        `json:"location"`
	Category    Category      `json:"category"`
	Image       *string       `json:"image,omitempty"`
	CreatedBy   string        `json:"created_by"`
	Creator     *EventCreator `json:"creator,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewEvent returns a new Event owned by createdBy. ID is set by the repository on create.
func NewEvent(title, description string, date time.Time, clock, location string, category Category, image *string, createdBy string, now time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Date:        date,
		Time:        clock,
		Location:    location,
		Category:    category,
		Image:       image,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// EventUpdate carries a partial update. Nil fields are left unchanged and an
// empty Image clears the image.
// There is deliberately no way to change CreatedBy.
type EventUpdate struct {
	Title       *string
	Description *string
	Date        *time.Time
	Time        *string
	Location    *string
	Category    *Category
	Image       *string
}

// IsEmpty reports whether the update changes nothing.
func (u EventUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Date == nil && u.Time == nil &&
		u.Location == nil && u.Category == nil && u.Image == nil
}

// Apply copies the set fields onto e.
func (u EventUpdate) Apply(e *Event) {
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.Date != nil {
		e.Date = *u.Date
	}
	if u.Time != nil {
		e.Time = *u.Time
	}
	if u.Location != nil {
		e.Location = *u.Location
	}
	if u.Category != nil {
		e.Category = *u.Category
	}
	if u.Image != nil {
		if *u.Image == "" {
			e.Image = nil
		} else {
			img := *u.Image
			e.Image = &img
		}
	}
}

// EventFilter narrows an event listing. Empty fields do not filter.
type EventFilter struct {
	Category  Category
	CreatedBy string
	Search    string
	// SavedBy restricts the listing to events saved by this user. The
	// service resolves it into IDs.
	SavedBy string
	// IDs restricts the listing to the given ids.
	IDs []string
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	Update(ctx context.Context, id string, update EventUpdate) (*Event, error)
	// Delete removes the event and drops it from every user's saved list.
	Delete(ctx context.Context, id string) error
}

// EventPage is one cached listing page.
type EventPage struct {
	Events []*Event `json:"events"`
	Total  int      `json:"total"`
}

// EventListCache caches public event listings keyed by an opaque string.
//
// Get reports the generation it looked under, hit or miss. A page loaded
// from the store after a miss must be written back with Set under that same
// generation, so a page read before a concurrent Invalidate is never served
// after it.
type EventListCache interface {
	Get(ctx context.Context, key string) (page *EventPage, gen int64, err error)
	Set(ctx context.Context, gen int64, key string, page EventPage) error
	// Invalidate drops every cached listing.
	Invalidate(ctx context.Context) error
}

// EventService defines the business logic for events and bookmarks.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, eventID, userID string, update EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, userID string) error
	// ToggleSave flips eventID in the user's saved list and reports the new state.
	ToggleSave(ctx context.Context, eventID, userID string) (saved bool, err error)
	ListSavedEvents(ctx context.Context, userID string) ([]*Event, error)
}
