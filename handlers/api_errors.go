package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/services"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{
		Errors: []APIErrorDetail{
			{
				Code:   code,
				Status: strconv.Itoa(httpStatus),
				Detail: detail,
			},
		},
	}

	_ = json.NewEncoder(w).Encode(resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

// writeResolutionError maps engine errors onto the error envelope. Validation
// errors are 400, conflicts 409, missing rows 404; ErrNoAccount gets its own
// code so the UI can switch to the invite flow.
func writeResolutionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNoParticipants):
		WriteAPIError(w, http.StatusBadRequest, "empty_participants", err.Error())
	case errors.Is(err, services.ErrSelfMerge):
		WriteAPIError(w, http.StatusBadRequest, "self_merge", err.Error())
	case errors.Is(err, services.ErrSingletonCluster):
		WriteAPIError(w, http.StatusBadRequest, "singleton_cluster", err.Error())
	case errors.Is(err, services.ErrInvalidEmail):
		WriteAPIError(w, http.StatusBadRequest, "invalid_email", err.Error())
	case errors.Is(err, services.ErrEventMismatch):
		WriteAPIError(w, http.StatusBadRequest, "event_mismatch", err.Error())
	case errors.Is(err, services.ErrNoAccount):
		WriteAPIError(w, http.StatusUnprocessableEntity, "no_account", "member has no claimed account; use the invite flow")
	case errors.Is(err, services.ErrClusterMerged):
		WriteAPIError(w, http.StatusConflict, "cluster_merged", err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		WriteAPIError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		WriteAPIError(w, http.StatusNotFound, "not_found", "resource not found")
	default:
		log.Printf("Resolution engine error: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal", "operation failed")
	}
}
