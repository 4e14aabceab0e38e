package httpapi

import (
	"net/http"

	"github.com/thenoetrevino/plank/internal/services/status"
)

type createStatusBody struct {
	Name            string `json:"name"`
	Color           string `json:"color"`
	OrderIndex      int    `json:"order_index"`
	IsDefaultForNew bool   `json:"is_default_for_new"`
	IsCompleted     bool   `json:"is_completed"`
	IsCancelled     bool   `json:"is_cancelled"`
}

func (s *Server) handleCreateStatus(w http.ResponseWriter, r *http.Request) {
	if _, err := s.actor(r); err != nil {
		writeError(w, err)
		return
	}

	var body createStatusBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.statuses.CreateStatus(r.Context(), status.CreateStatusRequest{
		Name:            body.Name,
		Color:           body.Color,
		OrderIndex:      body.OrderIndex,
		IsDefaultForNew: body.IsDefaultForNew,
		IsCompleted:     body.IsCompleted,
		IsCancelled:     body.IsCancelled,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListStatuses(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	statuses, err := s.statuses.ListStatuses(r.Context(), activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

type updateStatusFieldsBody struct {
	Name       *string `json:"name"`
	Color      *string `json:"color"`
	OrderIndex *int    `json:"order_index"`
	IsActive   *bool   `json:"is_active"`
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	if _, err := s.actor(r); err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body updateStatusFieldsBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.statuses.UpdateStatus(r.Context(), status.UpdateStatusRequest{
		StatusID:   id,
		Name:       body.Name,
		Color:      body.Color,
		OrderIndex: body.OrderIndex,
		IsActive:   body.IsActive,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteStatus(w http.ResponseWriter, r *http.Request) {
	if _, err := s.actor(r); err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.statuses.DeleteStatus(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGetTransitions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	allowed, err := s.statuses.GetAllowedTransitions(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, allowed)
}

type setTransitionBody struct {
	FromStatusID int  `json:"from_status_id"`
	ToStatusID   int  `json:"to_status_id"`
	IsAllowed    bool `json:"is_allowed"`
}

func (s *Server) handleSetTransition(w http.ResponseWriter, r *http.Request) {
	if _, err := s.actor(r); err != nil {
		writeError(w, err)
		return
	}

	var body setTransitionBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := s.statuses.SetTransition(r.Context(), body.FromStatusID, body.ToStatusID, body.IsAllowed); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
