package models

import (
	_ "crypto/sha256" // registers the digest algorithm used by Harbor
	"strings"
	"time"

	digest "github.com/opencontainers/go-digest"
)

// AdditionVulnerabilities is the addition link name that points at an artifact's scan report.
const AdditionVulnerabilities = "vulnerabilities"

// Artifact represents a content addressed artifact (usually an image) in a repository.
type Artifact struct {
	ID                int64                   `json:"id"`
	Type              string                  `json:"type"` // IMAGE, CHART, ...
	MediaType         string                  `json:"media_type"`
	ManifestMediaType string                  `json:"manifest_media_type"`
	ProjectID         int64                   `json:"project_id"`
	RepositoryID      int64                   `json:"repository_id"`
	Digest            digest.Digest           `json:"digest"`
	Size              int64                   `json:"size"`
	PushTime          time.Time               `json:"push_time"`
	PullTime          time.Time               `json:"pull_time"`
	Tags              []Tag                   `json:"tags"`
	AdditionLinks     map[string]AdditionLink `json:"addition_links"`
}

// Tag is a human readable name attached to an artifact.
type Tag struct {
	ID           int64     `json:"id"`
	RepositoryID int64     `json:"repository_id"`
	ArtifactID   int64     `json:"artifact_id"`
	Name         string    `json:"name"`
	PushTime     time.Time `json:"push_time"`
	PullTime     time.Time `json:"pull_time"`
	Immutable    bool      `json:"immutable"`
}

// AdditionLink points at supplementary data for an artifact.
type AdditionLink struct {
	Href     string `json:"href"`
	Absolute bool   `json:"absolute"`
}

// TagNames returns the names of the artifact's tags, skipping unnamed entries.
func (a *Artifact) TagNames() []string {
	names := make([]string, 0, len(a.Tags))
	for _, tag := range a.Tags {
		if tag.Name == "" {
			continue
		}
		names = append(names, tag.Name)
	}
	return names
}

// JoinedTags returns the tag names joined with ", ".
func (a *Artifact) JoinedTags() string {
	return strings.Join(a.TagNames(), ", ")
}

// VulnerabilitiesLink returns the href of the vulnerabilities addition, if any.
func (a *Artifact) VulnerabilitiesLink() (string, bool) {
	link, ok := a.AdditionLinks[AdditionVulnerabilities]
	if !ok || link.Href == "" {
		return "", false
	}
	return link.Href, true
}
