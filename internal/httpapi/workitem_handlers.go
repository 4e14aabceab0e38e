package httpapi

import (
	"net/http"
	"time"

	"github.com/thenoetrevino/plank/internal/services/workitem"
	"github.com/thenoetrevino/plank/internal/types"
)

type createWorkItemBody struct {
	ProjectID   int        `json:"project_id"`
	Type        int        `json:"type"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	EpicID      *int       `json:"epic_id"`
	ParentID    *int       `json:"parent_id"`
	AssigneeID  *int       `json:"assignee_id"`
	StatusID    int        `json:"status_id"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

func (s *Server) handleCreateWorkItem(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body createWorkItemBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.items.CreateWorkItem(r.Context(), workitem.CreateWorkItemRequest{
		ProjectID:   body.ProjectID,
		Type:        types.WorkItemType(body.Type),
		Summary:     body.Summary,
		Description: body.Description,
		EpicID:      body.EpicID,
		ParentID:    body.ParentID,
		AssigneeID:  body.AssigneeID,
		StatusID:    body.StatusID,
		Priority:    body.Priority,
		DueDate:     body.DueDate,
	}, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetWorkItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := s.items.GetWorkItemDetail(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// updateWorkItemBody uses explicit clear flags for the optional fields,
// since encoding/json cannot tell an absent field from a null one.
type updateWorkItemBody struct {
	Summary      *string    `json:"summary"`
	Description  *string    `json:"description"`
	Priority     *int       `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
}

func (b updateWorkItemBody) dueDate() **time.Time {
	if b.ClearDueDate {
		var none *time.Time
		return &none
	}
	if b.DueDate != nil {
		return &b.DueDate
	}
	return nil
}

func (s *Server) handleUpdateWorkItem(w http.ResponseWriter, r *http.Request) {
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

	var body updateWorkItemBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	err = s.items.UpdateWorkItem(r.Context(), workitem.UpdateWorkItemRequest{
		WorkItemID:  id,
		Summary:     body.Summary,
		Description: body.Description,
		Priority:    body.Priority,
		DueDate:     body.dueDate(),
	}, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleUpdateWorkItemStatus(w http.ResponseWriter, r *http.Request) {
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

	if err := s.items.UpdateWorkItemStatus(r.Context(), id, body.StatusID, actor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type updateParentBody struct {
	ParentID *int `json:"parent_id"`
}

func (s *Server) handleUpdateWorkItemParent(w http.ResponseWriter, r *http.Request) {
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

	var body updateParentBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := s.items.UpdateWorkItemParent(r.Context(), id, body.ParentID, actor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type updateEpicLinkBody struct {
	EpicID *int `json:"epic_id"`
}

func (s *Server) handleUpdateWorkItemEpic(w http.ResponseWriter, r *http.Request) {
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

	var body updateEpicLinkBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := s.items.UpdateWorkItemEpic(r.Context(), id, body.EpicID, actor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type assignBody struct {
	AssigneeID *int `json:"assignee_id"`
}

func (s *Server) handleAssignWorkItem(w http.ResponseWriter, r *http.Request) {
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

	var body assignBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := s.items.AssignWorkItem(r.Context(), id, body.AssigneeID, actor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteWorkItem(w http.ResponseWriter, r *http.Request) {
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

	if err := s.items.DeleteWorkItem(r.Context(), id, actor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
