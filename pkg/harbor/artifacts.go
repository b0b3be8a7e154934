package harbor

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/threatflux/harborster/internal/models"
)

// EncodeRepositoryName escapes a bare repository name for use as a path
// segment. Harbor expects the path separators of nested repositories to be
// escaped twice, so "team/app" becomes "team%252Fapp".
func EncodeRepositoryName(name string) string {
	return strings.ReplaceAll(url.QueryEscape(name), "%2F", "%252F")
}

// GetRepositoryArtifacts lists the artifacts of a repository. repositoryName
// is the name without the leading "<project>/". Pages are followed while the
// X-Total-Count header reports more artifacts than have been read, up to the
// page count that total implies.
func (c *Client) GetRepositoryArtifacts(ctx context.Context, projectName, repositoryName string) ([]models.Artifact, error) {
	if repositoryName == "" {
		return nil, fmt.Errorf("repository name cannot be empty")
	}

	endpoint := c.buildURL(fmt.Sprintf("%s/%s/repositories/%s/artifacts",
		APIPathProjects, url.PathEscape(projectName), EncodeRepositoryName(repositoryName)))
	c.logger.WithFields(logrus.Fields{
		"repository": repositoryName,
		"endpoint":   endpoint,
	}).Debug("Getting list of artifacts for repository")

	var artifacts []models.Artifact
	for page := 1; ; page++ {
		var batch []models.Artifact
		header, err := c.get(ctx, endpoint, pageQuery(page), nil, &batch)
		if err != nil {
			c.logStatusError(err, logrus.Fields{"project": projectName, "repository": repositoryName}, "Failed to get artifacts for repository")
			return nil, err
		}
		artifacts = append(artifacts, batch...)

		total, err := strconv.Atoi(header.Get(HeaderTotalCount))
		if err != nil || len(batch) == 0 || len(artifacts) >= total || page >= PageCount(total, DefaultPageSize) {
			break
		}
	}

	return artifacts, nil
}

// GetArtifactVulnerabilities fetches the vulnerability reports behind an
// artifact's vulnerabilities addition link. href is the path Harbor returned
// in addition_links, resolved against the registry host.
func (c *Client) GetArtifactVulnerabilities(ctx context.Context, href string) (models.VulnerabilityReports, error) {
	if strings.TrimSpace(href) == "" {
		return nil, fmt.Errorf("%w: empty href", ErrInvalidLink)
	}
	if strings.Contains(href, "://") {
		return nil, fmt.Errorf("%w: %s is not a path", ErrInvalidLink, href)
	}

	endpoint := c.resolveLink(href)
	c.logger.WithField("endpoint", endpoint).Debug("Getting list of vulnerabilities for artifact")

	query := url.Values{}
	query.Set(QueryPageSize, strconv.Itoa(DefaultPageSize))
	headers := map[string]string{HeaderAcceptVulnerabilities: models.ReportMediaType}

	var reports models.VulnerabilityReports
	if _, err := c.get(ctx, endpoint, query, headers, &reports); err != nil {
		c.logStatusError(err, logrus.Fields{"href": href}, "Failed to get vulnerabilities for artifact")
		return nil, err
	}

	return reports, nil
}
