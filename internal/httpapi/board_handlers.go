package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/thenoetrevino/plank/internal/models"
	"github.com/thenoetrevino/plank/internal/services/board"
)

type createBoardBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	if _, err := s.actor(r); err != nil {
		writeError(w, err)
		return
	}
	projectID, err := pathID(r, "projectId")
	if err != nil {
		writeError(w, err)
		return
	}

	var body createBoardBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.boards.CreateBoard(r.Context(), projectID, body.Name, body.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleBoardView(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectId")
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := s.boards.GetBoardView(r.Context(), projectID, boardFilterFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// boardFilterFromQuery parses ?epics=1,2&assignees=3&q=text.
func boardFilterFromQuery(r *http.Request) models.BoardFilter {
	q := r.URL.Query()
	return models.BoardFilter{
		EpicIDs:     parseIDList(q.Get("epics")),
		AssigneeIDs: parseIDList(q.Get("assignees")),
		Search:      q.Get("q"),
	}
}

func parseIDList(raw string) []int {
	if raw == "" {
		return nil
	}
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

type updateColumnBody struct {
	WIPLimit    *int   `json:"wip_limit"`
	IsCollapsed bool   `json:"is_collapsed"`
	RowVersion  string `json:"row_version"`
}

func (s *Server) handleUpdateColumn(w http.ResponseWriter, r *http.Request) {
	if _, err := s.actor(r); err != nil {
		writeError(w, err)
		return
	}
	projectID, err := pathID(r, "projectId")
	if err != nil {
		writeError(w, err)
		return
	}
	columnID, err := pathID(r, "columnId")
	if err != nil {
		writeError(w, err)
		return
	}

	var body updateColumnBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	b, err := s.boards.GetBoard(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.boards.UpdateColumn(r.Context(), board.UpdateColumnRequest{
		BoardID:     b.ID,
		ColumnID:    columnID,
		WIPLimit:    body.WIPLimit,
		IsCollapsed: body.IsCollapsed,
		RowVersion:  body.RowVersion,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type reorderColumnsBody struct {
	ColumnIDs []int `json:"column_ids"`
}

func (s *Server) handleReorderColumns(w http.ResponseWriter, r *http.Request) {
	if _, err := s.actor(r); err != nil {
		writeError(w, err)
		return
	}
	projectID, err := pathID(r, "projectId")
	if err != nil {
		writeError(w, err)
		return
	}

	var body reorderColumnsBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	b, err := s.boards.GetBoard(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.boards.ReorderColumns(r.Context(), b.ID, body.ColumnIDs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMoveWorkItem(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	projectID, err := pathID(r, "projectId")
	if err != nil {
		writeError(w, err)
		return
	}
	itemID, err := pathID(r, "workItemId")
	if err != nil {
		writeError(w, err)
		return
	}

	var body updateStatusBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := s.boards.MoveWorkItem(r.Context(), projectID, itemID, body.StatusID, actor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
