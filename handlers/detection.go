package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/harryless17/memoria-backend/realtime"
	"github.com/harryless17/memoria-backend/services"
)

// DetectionHandler is the ingest surface for the external clustering job.
type DetectionHandler struct {
	Resolution *services.ResolutionService
	Hub        *realtime.Hub
}

// IngestResults consumes the job's clustered faces for an event.
func (dh *DetectionHandler) IngestResults(w http.ResponseWriter, r *http.Request) {
	eventID, err := EventIDFromRequest(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_event_id", err.Error())
		return
	}

	var req struct {
		Clusters []services.DetectionCluster `json:"clusters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	result, err := dh.Resolution.IngestDetection(eventID, req.Clusters)
	if err != nil {
		log.Printf("Error ingesting detection results for event %d: %v", eventID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal", "Failed to ingest detection results")
		return
	}

	if dh.Hub != nil {
		dh.Hub.BroadcastEvent(realtime.Event{Type: "detection.completed", EventID: eventID, Payload: result})
	}
	writeJSON(w, http.StatusOK, result)
}

// UpdateJobStatus records a lifecycle change reported by the job.
func (dh *DetectionHandler) UpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	eventID, err := EventIDFromRequest(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_event_id", err.Error())
		return
	}

	var req struct {
		Status string  `json:"status"`
		Error  *string `json:"error"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if err := dh.Resolution.SetJobStatus(eventID, req.Status, req.Error); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	if dh.Hub != nil {
		dh.Hub.BroadcastEvent(realtime.Event{Type: "detection.status", EventID: eventID, Payload: req})
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}
