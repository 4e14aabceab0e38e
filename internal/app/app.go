// Package app wires the service layer together. It is the single
// composition point: commands construct an App and hand its services to
// the transport.
package app

import (
	"database/sql"

	"github.com/thenoetrevino/plank/internal/events"
	"github.com/thenoetrevino/plank/internal/identity"
	"github.com/thenoetrevino/plank/internal/services/board"
	"github.com/thenoetrevino/plank/internal/services/epic"
	"github.com/thenoetrevino/plank/internal/services/project"
	"github.com/thenoetrevino/plank/internal/services/status"
	"github.com/thenoetrevino/plank/internal/services/workitem"
)

// App holds all application services and provides dependency injection.
type App struct {
	db        *sql.DB
	Directory identity.Directory

	// Service layer (business logic)
	Statuses  status.Service
	Projects  project.Service
	Epics     epic.Service
	WorkItems workitem.Service
	Boards    board.Service
}

// New creates a new App with all services initialized. eventClient may
// be nil, in which case no events are published.
func New(db *sql.DB, directory identity.Directory, eventClient events.Publisher) *App {
	statuses := status.NewService(db, eventClient)
	items := workitem.NewService(db, statuses, directory, eventClient)

	return &App{
		db:        db,
		Directory: directory,
		Statuses:  statuses,
		Projects:  project.NewService(db, directory, eventClient),
		Epics:     epic.NewService(db, statuses, directory, eventClient),
		WorkItems: items,
		Boards:    board.NewService(db, statuses, items, eventClient),
	}
}

// DB returns the underlying database handle.
func (a *App) DB() *sql.DB {
	return a.db
}
