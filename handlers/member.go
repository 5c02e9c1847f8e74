package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/harryless17/memoria-backend/models"
	"github.com/harryless17/memoria-backend/repository"
)

// MemberHandler serves the event membership directory.
type MemberHandler struct {
	MemberRepo repository.EventMemberRepositoryInterface
	TagRepo    repository.TagRepositoryInterface
}

// ListMembers returns every member of the event.
func (mh *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	eventID, err := EventIDFromRequest(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_event_id", err.Error())
		return
	}

	members, err := mh.MemberRepo.ListByEvent(eventID)
	if err != nil {
		log.Printf("Error listing members for event %d: %v", eventID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal", "Failed to list members")
		return
	}
	if members == nil {
		members = []models.EventMember{}
	}
	writeJSON(w, http.StatusOK, members)
}

// CreateMember adds a member row to the event directory.
func (mh *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	eventID, err := EventIDFromRequest(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_event_id", err.Error())
		return
	}

	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		Role        string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.DisplayName) == "" {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "email and display_name are required")
		return
	}
	role := req.Role
	if role == "" {
		role = models.MemberRoleGuest
	}
	if !models.IsValidMemberRole(role) {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "invalid role")
		return
	}

	member := models.EventMember{
		EventID:     eventID,
		Email:       email,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Role:        role,
	}
	if err := mh.MemberRepo.Create(&member); err != nil {
		log.Printf("Error creating member %s for event %d: %v", email, eventID, err)
		WriteAPIError(w, http.StatusConflict, "member_exists", "a member with this email already exists in the event")
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

// MyMedia returns the media the calling participant appears in, the payload
// participants actually consume.
func (mh *MemberHandler) MyMedia(w http.ResponseWriter, r *http.Request) {
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

	media, err := mh.TagRepo.ListMediaForUser(eventID, user.ID)
	if err != nil {
		log.Printf("Error listing tagged media for user %d in event %d: %v", user.ID, eventID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal", "Failed to list media")
		return
	}
	if media == nil {
		media = []models.Media{}
	}
	writeJSON(w, http.StatusOK, media)
}
