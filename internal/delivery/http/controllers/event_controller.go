package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// Accepted formats for the event date and time-of-day fields.
const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// parseEventDate accepts a calendar date or a full RFC 3339 timestamp and
// returns midnight UTC of that day.
func parseEventDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(dateLayout, s); err == nil {
		return d, true
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := ts.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func validClock(s string) bool {
	_, err := time.Parse(timeLayout, strings.TrimSpace(s))
	return err == nil
}

// CreateEventRequest is the request body for POST /api/events. The creator is
// always the authenticated user and cannot be supplied.
type CreateEventRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Location    string  `json:"location"`
	Category    string  `json:"category"`
	Image       *string `json:"image"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(c.Description) == "" {
		errs = append(errs, "description is required")
	}
	if strings.TrimSpace(c.Date) == "" {
		errs = append(errs, "date is required")
	} else if _, ok := parseEventDate(c.Date); !ok {
		errs = append(errs, "date must be YYYY-MM-DD or RFC 3339")
	}
	if strings.TrimSpace(c.Time) == "" {
		errs = append(errs, "time is required")
	} else if !validClock(c.Time) {
		errs = append(errs, "time must be HH:MM")
	}
	if strings.TrimSpace(c.Location) == "" {
		errs = append(errs, "location is required")
	}
	if _, ok := domain.ParseCategory(c.Category); !ok {
		errs = append(errs, "category must be one of Music, Sports, Art, Food, Technology, Business, Other")
	}
	return errs
}

// UpdateEventRequest is the request body for PUT /api/events/{eventID}. All
// fields are optional; omitted fields are unchanged. An empty image clears it.
type UpdateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Location    *string `json:"location"`
	Category    *string `json:"category"`
	Image       *string `json:"image"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if u.Description != nil && strings.TrimSpace(*u.Description) == "" {
		errs = append(errs, "description cannot be empty")
	}
	if u.Date != nil {
		if _, ok := parseEventDate(*u.Date); !ok {
			errs = append(errs, "date must be YYYY-MM-DD or RFC 3339")
		}
	}
	if u.Time != nil && !validClock(*u.Time) {
		errs = append(errs, "time must be HH:MM")
	}
	if u.Location != nil && strings.TrimSpace(*u.Location) == "" {
		errs = append(errs, "location cannot be empty")
	}
	if u.Category != nil {
		if _, ok := domain.ParseCategory(*u.Category); !ok {
			errs = append(errs, "category must be one of Music, Sports, Art, Food, Technology, Business, Other")
		}
	}
	return errs
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// toUpdate converts a validated request into a domain update.
func (u UpdateEventRequest) toUpdate() domain.EventUpdate {
	update := domain.EventUpdate{
		Title:       trimmed(u.Title),
		Description: trimmed(u.Description),
		Time:        trimmed(u.Time),
		Location:    trimmed(u.Location),
		Image:       trimmed(u.Image),
	}
	if u.Date != nil {
		d, _ := parseEventDate(*u.Date)
		update.Date = &d
	}
	if u.Category != nil {
		c, _ := domain.ParseCategory(*u.Category)
		update.Category = &c
	}
	return update
}

// ListEventsResponse is the response body for event listings.
type ListEventsResponse struct {
	Events     []*domain.Event        `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListEventsSuccessResponse is the success response envelope for event listings (200).
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ToggleSaveResponse is the response body for POST /api/events/{eventID}/save.
type ToggleSaveResponse struct {
	Saved bool `json:"saved"`
}

// ToggleSaveSuccessResponse is the success response envelope for the save toggle (200).
type ToggleSaveSuccessResponse struct {
	Data  ToggleSaveResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// DeleteEventResponse is the response body for DELETE /api/events/{eventID}.
type DeleteEventResponse struct {
	Status string `json:"status"`
}

// EventController handles the event listing, CRUD, and bookmark endpoints.
type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

// NewEventController creates an EventController with the given logger and service.
func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// eventIDFromPath validates the {eventID} path value and writes a 400 when malformed.
func eventIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", false
	}
	if _, err := uuid.Parse(eventID); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return "", false
	}
	return eventID, true
}

func (c *EventController) writeList(w http.ResponseWriter, r *http.Request, filter domain.EventFilter) {
	params, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	events, total, err := c.Service.ListEvents(r.Context(), filter, params)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "user not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// ListEvents godoc
// @Summary List events
// @Description Lists events sorted by date ascending, each with its creator's username. Optional filters: category, created_by (user id), q (matches title, description, or location), saved=true (the caller's saved events; requires Bearer token).
// @Tags events
// @Produce json
// @Param category query string false "Category filter"
// @Param created_by query string false "Creator user ID"
// @Param q query string false "Search text"
// @Param saved query bool false "Only the caller's saved events"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains events and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized (saved=true without token)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter domain.EventFilter
	if s := strings.TrimSpace(q.Get("category")); s != "" {
		category, ok := domain.ParseCategory(s)
		if !ok {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown category")
			return
		}
		filter.Category = category
	}
	if s := strings.TrimSpace(q.Get("created_by")); s != "" {
		if _, err := uuid.Parse(s); err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid created_by")
			return
		}
		filter.CreatedBy = s
	}
	filter.Search = strings.TrimSpace(q.Get("q"))
	if q.Get("saved") == "true" {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		filter.SavedBy = userID
	}
	c.writeList(w, r, filter)
}

// ListEventsByCategory godoc
// @Summary List events in a category
// @Description Lists events of one category sorted by date ascending.
// @Tags events
// @Produce json
// @Param category path string true "Category (Music, Sports, Art, Food, Technology, Business, Other)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains events and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/category/{category} [get]
func (c *EventController) ListEventsByCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := domain.ParseCategory(r.PathValue("category"))
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown category")
		return
	}
	c.writeList(w, r, domain.EventFilter{Category: category})
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns one event with its creator's username.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Create a new event. The authenticated user becomes its creator; id and timestamps are server-generated.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	date, _ := parseEventDate(req.Date)
	category, _ := domain.ParseCategory(req.Category)
	event := domain.NewEvent(
		strings.TrimSpace(req.Title),
		strings.TrimSpace(req.Description),
		date,
		strings.TrimSpace(req.Time),
		strings.TrimSpace(req.Location),
		category,
		nonEmpty(trimmed(req.Image)),
		userID,
		time.Now(),
	)
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		writeServiceError(c.Logger, w, r, err, "creator not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Updates the given fields of an event. Only the creator may update it; the creator itself can never change.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the creator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, userID, req.toUpdate())
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes an event and removes it from every user's saved list. Only the creator may delete it.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the creator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, userID); err != nil {
		writeServiceError(c.Logger, w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{Status: "deleted"})
}

// ToggleSave godoc
// @Summary Save or unsave an event
// @Description Adds the event to the caller's saved list, or removes it if already saved. Returns the resulting state.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ToggleSaveSuccessResponse "data.saved is the new state"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/save [post]
func (c *EventController) ToggleSave(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	saved, err := c.Service.ToggleSave(r.Context(), eventID, userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ToggleSaveResponse{Saved: saved})
}

// ListSavedEvents godoc
// @Summary List my saved events
// @Description Returns the caller's saved events in the order they were saved.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListSavedEventsSuccessResponse "data contains the saved events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/saved [get]
func (c *EventController) ListSavedEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListSavedEvents(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "user not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// ListSavedEventsSuccessResponse is the success response envelope for GET /api/users/me/saved (200).
type ListSavedEventsSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}
