package models

import "time"

// Project represents a Harbor project.
type Project struct {
	ProjectID    int64             `json:"project_id"`
	Name         string            `json:"name"`
	OwnerName    string            `json:"owner_name,omitempty"`
	RepoCount    int               `json:"repo_count"`
	CreationTime time.Time         `json:"creation_time"`
	UpdateTime   time.Time         `json:"update_time"`
	Metadata     map[string]string `json:"metadata,omitempty"` // e.g. "public": "true"
}

// Repository represents a repository inside a Harbor project. Name is fully
// qualified and starts with the project name, e.g. "library/team/app".
type Repository struct {
	ID            int64     `json:"id"`
	ProjectID     int64     `json:"project_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	ArtifactCount int64     `json:"artifact_count"`
	PullCount     int64     `json:"pull_count"`
	CreationTime  time.Time `json:"creation_time"`
	UpdateTime    time.Time `json:"update_time"`
}
