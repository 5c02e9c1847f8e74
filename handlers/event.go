package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
	"github.com/harryless17/memoria-backend/repository"
)

// EventHandler serves event CRUD for organizers.
type EventHandler struct {
	EventRepo repository.EventRepositoryInterface
	MediaRepo repository.MediaRepositoryInterface
}

// CreateEvent creates an event owned by the caller.
func (eh *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal", "user not found in context")
		return
	}

	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}

	event := models.Event{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		OwnerUserID: user.ID,
	}
	if err := eh.EventRepo.Create(&event, user); err != nil {
		log.Printf("Error creating event %q: %v", req.Name, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal", "Failed to create event")
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// ListEvents returns the caller's events.
func (eh *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal", "user not found in context")
		return
	}

	events, err := eh.EventRepo.ListByUser(user.ID)
	if err != nil {
		log.Printf("Error listing events for user %d: %v", user.ID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal", "Failed to list events")
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent returns one event the caller is a member of.
func (eh *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := EventIDFromRequest(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_event_id", err.Error())
		return
	}

	event, err := eh.EventRepo.GetByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "event not found")
			return
		}
		log.Printf("Error getting event %d: %v", eventID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal", "Failed to get event")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// ListMedia returns the media rows of an event.
func (eh *EventHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	eventID, err := EventIDFromRequest(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_event_id", err.Error())
		return
	}

	media, err := eh.MediaRepo.ListByEvent(eventID)
	if err != nil {
		log.Printf("Error listing media for event %d: %v", eventID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal", "Failed to list media")
		return
	}
	if media == nil {
		media = []models.Media{}
	}
	writeJSON(w, http.StatusOK, media)
}

// RegisterMedia records an uploaded media item. The bytes live elsewhere.
func (eh *EventHandler) RegisterMedia(w http.ResponseWriter, r *http.Request) {
	eventID, err := EventIDFromRequest(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_event_id", err.Error())
		return
	}
	user := UserFromContext(r.Context())
	if user == nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal", "user not found in context")
		return
	}

	var req struct {
		Path          string  `json:"path"`
		ThumbnailPath *string `json:"thumbnail_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "path is required")
		return
	}

	media := models.Media{
		EventID:          eventID,
		Path:             req.Path,
		ThumbnailPath:    req.ThumbnailPath,
		UploadedByUserID: user.ID,
	}
	if err := eh.MediaRepo.Create(&media); err != nil {
		log.Printf("Error registering media %s for event %d: %v", req.Path, eventID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal", "Failed to register media")
		return
	}
	writeJSON(w, http.StatusCreated, media)
}
