package httpapi

import (
	"net/http"

	"github.com/thenoetrevino/plank/internal/services/epic"
)

type createEpicBody struct {
	ProjectID  int    `json:"project_id"`
	Summary    string `json:"summary"`
	AssigneeID *int   `json:"assignee_id"`
	StatusID   int    `json:"status_id"`
	Priority   int    `json:"priority"`
}

func (s *Server) handleCreateEpic(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body createEpicBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.epics.CreateEpic(r.Context(), epic.CreateEpicRequest{
		ProjectID:  body.ProjectID,
		Summary:    body.Summary,
		AssigneeID: body.AssigneeID,
		StatusID:   body.StatusID,
		Priority:   body.Priority,
	}, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetEpic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	e, err := s.epics.GetEpic(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleListEpics(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	summaries, err := s.epics.ListEpicSummaries(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// updateEpicBody distinguishes "leave the assignee alone" (field
// absent) from "clear it" (clear_assignee true), which plain JSON null
// cannot express through encoding/json.
type updateEpicBody struct {
	Summary       *string `json:"summary"`
	AssigneeID    *int    `json:"assignee_id"`
	ClearAssignee bool    `json:"clear_assignee"`
	Priority      *int    `json:"priority"`
}

// assignee converts the body's assignee fields into the service's
// optional-update shape.
func (b updateEpicBody) assignee() **int {
	if b.ClearAssignee {
		var none *int
		return &none
	}
	if b.AssigneeID != nil {
		return &b.AssigneeID
	}
	return nil
}

func (s *Server) handleUpdateEpic(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body updateEpicBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	err = s.epics.UpdateEpic(r.Context(), epic.UpdateEpicRequest{
		EpicID:     id,
		Summary:    body.Summary,
		AssigneeID: body.assignee(),
		Priority:   body.Priority,
	}, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type updateStatusBody struct {
	StatusID int `json:"status_id"`
}

func (s *Server) handleUpdateEpicStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body updateStatusBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := s.epics.UpdateEpicStatus(r.Context(), id, body.StatusID, actor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteEpic(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.epics.DeleteEpic(r.Context(), id, actor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
