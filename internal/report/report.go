// Package report walks a Harbor project and turns the scan results of every
// artifact into table rows.
package report

import (
	"context"

	"github.com/threatflux/harborster/internal/models"
)

// Title is the caption shown above the CVE table
const Title = "List of CVEs in Project"

// Columns are the table headers, in cell order
var Columns = []string{"Project", "Repository", "Artifact", "Tags", "CVEs"}

// RegistryClient is the subset of the Harbor API the driver needs
type RegistryClient interface {
	GetProjectRepositories(ctx context.Context, projectName string) ([]models.Repository, error)
	GetRepositoryArtifacts(ctx context.Context, projectName, repositoryName string) ([]models.Artifact, error)
	GetArtifactVulnerabilities(ctx context.Context, href string) (models.VulnerabilityReports, error)
}

// Renderer receives rows as they are produced
type Renderer interface {
	Append(cells ...string)
}

// Row is one line of the report: a scanned artifact and its CVE ids
type Row struct {
	// Project is the project the artifact belongs to
	Project string

	// Repository is the repository name without the project prefix
	Repository string

	// Digest identifies the artifact
	Digest string

	// Tags are the artifact's tag names joined with ", "
	Tags string

	// CVEs are the vulnerability ids joined with ", "
	CVEs string
}

// Cells returns the row in Columns order
func (r Row) Cells() []string {
	return []string{r.Project, r.Repository, r.Digest, r.Tags, r.CVEs}
}

// Summary counts what a run visited
type Summary struct {
	RunID        string
	Project      string
	Repositories int
	Artifacts    int
	Rows         int
	Skipped      int
}
