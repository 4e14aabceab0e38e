// Package httpapi exposes the planning services over REST. Routing uses
// net/http method+pattern mux; handlers stay thin and delegate every
// rule to the services.
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/thenoetrevino/plank/internal/events"
	"github.com/thenoetrevino/plank/internal/identity"
	"github.com/thenoetrevino/plank/internal/services/board"
	"github.com/thenoetrevino/plank/internal/services/epic"
	"github.com/thenoetrevino/plank/internal/services/project"
	"github.com/thenoetrevino/plank/internal/services/status"
	"github.com/thenoetrevino/plank/internal/services/workitem"
)

// Server bundles the services behind the REST routes.
type Server struct {
	projects project.Service
	epics    epic.Service
	items    workitem.Service
	statuses status.Service
	boards   board.Service
	resolver identity.Resolver
	bus      *events.Bus
}

// NewServer creates the API server.
func NewServer(
	projects project.Service,
	epics epic.Service,
	items workitem.Service,
	statuses status.Service,
	boards board.Service,
	resolver identity.Resolver,
	bus *events.Bus,
) *Server {
	return &Server{
		projects: projects,
		epics:    epics,
		items:    items,
		statuses: statuses,
		boards:   boards,
		resolver: resolver,
		bus:      bus,
	}
}

// Handler builds the route table. Every route runs behind the auth
// middleware except the event stream, which authenticates the same way
// but manages its own response lifecycle.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Projects
	mux.HandleFunc("POST /api/projects", s.handleCreateProject)
	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("GET /api/projects/{id}", s.handleGetProject)
	mux.HandleFunc("PUT /api/projects/{id}/archive", s.handleArchiveProject)
	mux.HandleFunc("DELETE /api/projects/{id}", s.handleDeleteProject)

	// Epics
	mux.HandleFunc("POST /api/epics", s.handleCreateEpic)
	mux.HandleFunc("GET /api/epics/{id}", s.handleGetEpic)
	mux.HandleFunc("PUT /api/epics/{id}", s.handleUpdateEpic)
	mux.HandleFunc("PUT /api/epics/{id}/status", s.handleUpdateEpicStatus)
	mux.HandleFunc("DELETE /api/epics/{id}", s.handleDeleteEpic)
	mux.HandleFunc("GET /api/projects/{id}/epics", s.handleListEpics)

	// Work items
	mux.HandleFunc("POST /api/workitems", s.handleCreateWorkItem)
	mux.HandleFunc("GET /api/workitems/{id}", s.handleGetWorkItem)
	mux.HandleFunc("PUT /api/workitems/{id}", s.handleUpdateWorkItem)
	mux.HandleFunc("DELETE /api/workitems/{id}", s.handleDeleteWorkItem)
	mux.HandleFunc("PUT /api/workitems/{id}/status", s.handleUpdateWorkItemStatus)
	mux.HandleFunc("PUT /api/workitems/{id}/parent", s.handleUpdateWorkItemParent)
	mux.HandleFunc("PUT /api/workitems/{id}/epic", s.handleUpdateWorkItemEpic)
	mux.HandleFunc("PUT /api/workitems/{id}/assign", s.handleAssignWorkItem)

	// Statuses
	mux.HandleFunc("POST /api/statuses", s.handleCreateStatus)
	mux.HandleFunc("GET /api/statuses", s.handleListStatuses)
	mux.HandleFunc("PUT /api/statuses/{id}", s.handleUpdateStatus)
	mux.HandleFunc("DELETE /api/statuses/{id}", s.handleDeleteStatus)
	mux.HandleFunc("GET /api/statuses/{id}/transitions", s.handleGetTransitions)
	mux.HandleFunc("POST /api/statuses/transitions", s.handleSetTransition)

	// Boards
	mux.HandleFunc("POST /api/projects/{projectId}/board", s.handleCreateBoard)
	mux.HandleFunc("GET /api/projects/{projectId}/board/view", s.handleBoardView)
	mux.HandleFunc("PUT /api/projects/{projectId}/board/columns/{columnId}", s.handleUpdateColumn)
	mux.HandleFunc("PUT /api/projects/{projectId}/board/columns/reorder", s.handleReorderColumns)
	mux.HandleFunc("PUT /api/projects/{projectId}/board/workitems/{workItemId}/move", s.handleMoveWorkItem)

	// Live updates
	mux.HandleFunc("GET /api/events", s.handleEvents)

	return s.withActor(mux)
}

// withActor lifts the X-User-ID header into the request context, where
// the resolver finds it. Requests without a parseable id still pass
// through; handlers that need an actor reject them with 401.
func (s *Server) withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get("X-User-ID"); raw != "" {
			if id, err := strconv.Atoi(raw); err == nil && id > 0 {
				r = r.WithContext(identity.WithUserID(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// actor resolves the acting user or fails with 401.
func (s *Server) actor(r *http.Request) (int, error) {
	return s.resolver.CurrentUserID(r.Context())
}
