package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/harryless17/memoria-backend/realtime"
	"github.com/harryless17/memoria-backend/repository"
	"github.com/harryless17/memoria-backend/services"
)

// ClusterHandler exposes the resolution engine command surface.
type ClusterHandler struct {
	Resolution  *services.ResolutionService
	ClusterRepo repository.ClusterRepositoryInterface
	Hub         *realtime.Hub
}

func (ch *ClusterHandler) broadcast(eventType string, eventID uint, payload interface{}) {
	if ch.Hub == nil {
		return
	}
	ch.Hub.BroadcastEvent(realtime.Event{Type: eventType, EventID: eventID, Payload: payload})
}

// ListClusters returns the event's non-merged clusters plus the detection job
// status.
func (ch *ClusterHandler) ListClusters(w http.ResponseWriter, r *http.Request) {
	eventID, err := EventIDFromRequest(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_event_id", err.Error())
		return
	}

	list, err := ch.Resolution.ListClusters(eventID)
	if err != nil {
		log.Printf("Error listing clusters for event %d: %v", eventID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal", "Failed to list clusters")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetClusterFaces returns the faces of one cluster in natural media order.
func (ch *ClusterHandler) GetClusterFaces(w http.ResponseWriter, r *http.Request) {
	eventID, err := EventIDFromRequest(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_event_id", err.Error())
		return
	}
	clusterID, err := clusterIDFromRequest(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_cluster_id", err.Error())
		return
	}

	faces, err := ch.Resolution.ListClusterFaces(eventID, clusterID)
	if err != nil {
		writeResolutionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, faces)
}

// Assign links a cluster to one or more participants.
func (ch *ClusterHandler) Assign(w http.ResponseWriter, r *http.Request) {
	eventID, err := EventIDFromRequest(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_event_id", err.Error())
		return
	}
	clusterID, err := clusterIDFromRequest(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_cluster_id", err.Error())
		return
	}

	var req struct {
		MemberIDs []uint `json:"member_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	result, err := ch.Resolution.Assign(eventID, clusterID, req.MemberIDs)
	if err != nil {
		writeResolutionError(w, err)
		return
	}

	ch.broadcast("cluster.assigned", eventID, result)
	status := http.StatusOK
	if result.Failed > 0 {
		// partial success: some participants were tagged, some were not
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, result)
}

// Merge absorbs one cluster into another.
func (ch *ClusterHandler) Merge(w http.ResponseWriter, r *http.Request) {
	eventID, err := EventIDFromRequest(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_event_id", err.Error())
		return
	}

	var req struct {
		PrimaryID   uint `json:"primary_id"`
		SecondaryID uint `json:"secondary_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.PrimaryID == 0 || req.SecondaryID == 0 {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "primary_id and secondary_id are required")
		return
	}

	result, err := ch.Resolution.Merge(eventID, req.PrimaryID, req.SecondaryID)
	if err != nil {
		writeResolutionError(w, err)
		return
	}

	ch.broadcast("cluster.merged", eventID, result)
	writeJSON(w, http.StatusOK, result)
}

// Split removes one face from its cluster into a new singleton cluster.
func (ch *ClusterHandler) Split(w http.ResponseWriter, r *http.Request) {
	eventID, err := EventIDFromRequest(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_event_id", err.Error())
		return
	}
	idStr := chi.URLParam(r, "face_id")
	faceID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_face_id", "Invalid face ID format")
		return
	}

	result, err := ch.Resolution.Split(eventID, uint(faceID))
	if err != nil {
		writeResolutionError(w, err)
		return
	}

	ch.broadcast("cluster.split", eventID, result)
	writeJSON(w, http.StatusOK, result)
}

// Invite resolves a cluster to a participant who may not have an account yet.
func (ch *ClusterHandler) Invite(w http.ResponseWriter, r *http.Request) {
	eventID, err := EventIDFromRequest(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_event_id", err.Error())
		return
	}
	clusterID, err := clusterIDFromRequest(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_cluster_id", err.Error())
		return
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	caller := UserFromContext(r.Context())
	var callerID uint
	if caller != nil {
		callerID = caller.ID
	}

	result, err := ch.Resolution.InviteAndDefer(eventID, clusterID, req.Name, req.Email, callerID)
	if err != nil {
		writeResolutionError(w, err)
		return
	}

	ch.broadcast("cluster.invited", eventID, result)
	writeJSON(w, http.StatusOK, result)
}

func clusterIDFromRequest(r *http.Request) (uint, error) {
	idStr := chi.URLParam(r, "cluster_id")
	clusterID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(clusterID), nil
}
