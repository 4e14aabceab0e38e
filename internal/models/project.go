package models

import "time"

// Project is the top-level organizational unit. The key is short,
// unique, and immutable after creation; epics and work items derive
// their own keys from it.
type Project struct {
	ID          int
	Key         string
	Name        string
	Description string
	OwnerID     int
	IsActive    bool
	IsArchived  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectSummary is a DTO for project listings. Counts are filled by a
// grouped aggregate query, never per row.
type ProjectSummary struct {
	ID            int
	Key           string
	Name          string
	OwnerID       int
	OwnerName     string
	IsArchived    bool
	EpicCount     int
	WorkItemCount int
}
