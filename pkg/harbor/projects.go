package harbor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/threatflux/harborster/internal/models"
)

// PageCount returns how many pages of pageSize items are needed for total items
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// pageQuery builds the pagination query for a 1-based page number
func pageQuery(page int) url.Values {
	query := url.Values{}
	query.Set(QueryPage, strconv.Itoa(page))
	query.Set(QueryPageSize, strconv.Itoa(DefaultPageSize))
	return query
}

// GetProject fetches the metadata of a project by name
func (c *Client) GetProject(ctx context.Context, name string) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name cannot be empty")
	}

	endpoint := c.buildURL(fmt.Sprintf("%s/%s", APIPathProjects, url.PathEscape(name)))
	c.logger.WithFields(logrus.Fields{
		"project":  name,
		"endpoint": endpoint,
	}).Debug("Getting project")

	var project models.Project
	headers := map[string]string{HeaderIsResourceName: "true"}
	if _, err := c.get(ctx, endpoint, nil, headers, &project); err != nil {
		c.logStatusError(err, logrus.Fields{"project": name}, "Failed to get details for project")
		return nil, err
	}

	return &project, nil
}

// GetProjectRepositories lists every repository of a project. The number of
// pages comes from the project's repo_count; results of all pages are returned.
func (c *Client) GetProjectRepositories(ctx context.Context, projectName string) ([]models.Repository, error) {
	project, err := c.GetProject(ctx, projectName)
	if err != nil {
		return nil, err
	}

	totalPages := PageCount(project.RepoCount, DefaultPageSize)
	c.logger.WithFields(logrus.Fields{
		"project":     projectName,
		"repo_count":  project.RepoCount,
		"total_pages": totalPages,
	}).Debug("Listing project repositories")

	endpoint := c.buildURL(fmt.Sprintf("%s/%s/repositories", APIPathProjects, url.PathEscape(projectName)))
	repositories := make([]models.Repository, 0, project.RepoCount)
	for page := 1; page <= totalPages; page++ {
		var batch []models.Repository
		if _, err := c.get(ctx, endpoint, pageQuery(page), nil, &batch); err != nil {
			c.logStatusError(err, logrus.Fields{"project": projectName, "page": page}, "Failed to get repositories for project")
			return nil, err
		}
		repositories = append(repositories, batch...)
	}

	return repositories, nil
}

// logStatusError logs non-200 responses at error level. Transport and decode
// errors are left to the caller.
func (c *Client) logStatusError(err error, fields logrus.Fields, msg string) {
	if !errors.Is(err, ErrUnexpectedStatus) {
		return
	}
	c.logger.WithError(err).WithFields(fields).Error(msg)
}
