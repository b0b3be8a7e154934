package report

import (
	"context"
	"strings"

	"github.com/distribution/reference"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/threatflux/harborster/internal/models"
)

// Option configures a Driver
type Option func(*Driver)

// WithLogger sets the logger used for progress and skip messages
func WithLogger(logger *logrus.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRegistryHost sets the registry host used to build image references in log fields
func WithRegistryHost(host string) Option {
	return func(d *Driver) {
		d.registryHost = host
	}
}

// Driver traverses project -> repositories -> artifacts -> vulnerability
// reports and appends one row per scanned artifact to a Renderer.
type Driver struct {
	client       RegistryClient
	renderer     Renderer
	logger       *logrus.Logger
	registryHost string
}

// NewDriver creates a new report driver
func NewDriver(client RegistryClient, renderer Renderer, opts ...Option) *Driver {
	d := &Driver{
		client:   client,
		renderer: renderer,
		logger:   logrus.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run reports every scanned artifact of projectName. Any registry error
// aborts the run; the summary of what was processed so far is still returned.
func (d *Driver) Run(ctx context.Context, projectName string) (*Summary, error) {
	summary := &Summary{
		RunID:   uuid.New().String(),
		Project: projectName,
	}
	log := d.logger.WithFields(logrus.Fields{
		"run_id":  summary.RunID,
		"project": projectName,
	})

	log.Info("Collecting vulnerability reports")

	repositories, err := d.client.GetProjectRepositories(ctx, projectName)
	if err != nil {
		return summary, errors.Wrapf(err, "failed to list repositories of project %s", projectName)
	}
	log.WithField("count", len(repositories)).Debug("Listed repositories")

	for _, repository := range repositories {
		if err := ctx.Err(); err != nil {
			return summary, errors.Wrap(err, "report cancelled")
		}
		summary.Repositories++

		name := BareRepositoryName(projectName, repository.Name)
		if err := d.reportRepository(ctx, log.WithField("repository", name), summary, projectName, name); err != nil {
			return summary, err
		}
	}

	log.WithFields(logrus.Fields{
		"repositories": summary.Repositories,
		"artifacts":    summary.Artifacts,
		"rows":         summary.Rows,
		"skipped":      summary.Skipped,
	}).Info("Finished collecting vulnerability reports")

	return summary, nil
}

func (d *Driver) reportRepository(ctx context.Context, log *logrus.Entry, summary *Summary, projectName, repositoryName string) error {
	artifacts, err := d.client.GetRepositoryArtifacts(ctx, projectName, repositoryName)
	if err != nil {
		return errors.Wrapf(err, "failed to list artifacts of repository %s", repositoryName)
	}

	for i := range artifacts {
		artifact := &artifacts[i]
		summary.Artifacts++

		artifactLog := log.WithFields(logrus.Fields{
			"digest": artifact.Digest.String(),
			"image":  d.imageReference(projectName, repositoryName, artifact),
		})
		if err := artifact.Digest.Validate(); err != nil {
			artifactLog.WithError(err).Warn("Artifact digest is not valid")
		}

		row, ok, err := d.buildRow(ctx, artifactLog, projectName, repositoryName, artifact)
		if err != nil {
			return err
		}
		if !ok {
			summary.Skipped++
			continue
		}

		d.renderer.Append(row.Cells()...)
		summary.Rows++
	}

	return nil
}

// buildRow fetches the scan report of an artifact. ok is false when the
// artifact has nothing to report.
func (d *Driver) buildRow(ctx context.Context, log *logrus.Entry, projectName, repositoryName string, artifact *models.Artifact) (Row, bool, error) {
	href, ok := artifact.VulnerabilitiesLink()
	if !ok {
		log.Info("Artifact has no vulnerabilities link, skipping")
		return Row{}, false, nil
	}

	reports, err := d.client.GetArtifactVulnerabilities(ctx, href)
	if err != nil {
		return Row{}, false, errors.Wrapf(err, "failed to get vulnerabilities of artifact %s", artifact.Digest)
	}

	report, ok := reports.Lookup(models.ReportMediaType)
	if !ok {
		log.WithField("media_type", models.ReportMediaType).Info("No vulnerability report for artifact, skipping")
		return Row{}, false, nil
	}

	return Row{
		Project:    projectName,
		Repository: repositoryName,
		Digest:     artifact.Digest.String(),
		Tags:       artifact.JoinedTags(),
		CVEs:       report.JoinedIDs(),
	}, true, nil
}

// imageReference renders host/project/repository@digest for log fields,
// falling back to the plain path when the parts do not form a valid reference.
func (d *Driver) imageReference(projectName, repositoryName string, artifact *models.Artifact) string {
	path := projectName + "/" + repositoryName
	if d.registryHost != "" {
		path = d.registryHost + "/" + path
	}

	named, err := reference.WithName(path)
	if err != nil {
		return path + "@" + artifact.Digest.String()
	}
	canonical, err := reference.WithDigest(named, artifact.Digest)
	if err != nil {
		return named.String() + "@" + artifact.Digest.String()
	}
	return canonical.String()
}

// BareRepositoryName removes the leading "<project>/" from a fully qualified
// repository name. Names without that prefix are returned unchanged.
func BareRepositoryName(projectName, repositoryName string) string {
	return strings.TrimPrefix(repositoryName, projectName+"/")
}
