package services

import (
	"fmt"
	"strings"

	"jirafa/internal/fields"
	"jirafa/internal/helpers"
	"jirafa/internal/models"
)

// TicketAPI is the set of single-call issue operations the ticket service
// delegates to. Satisfied by repositories.JiraRepository.
type TicketAPI interface {
	GetIssue(issueKey string) (*models.Issue, error)
	CreateIssue(issue *models.IssueCreate) (*models.CreateResponse, error)
	UpdateIssue(issueKey string, fields map[string]interface{}) error
	AddComment(issueKey, body string) error
	GetComments(issueKey string) ([]models.Comment, error)
	ListProjects() ([]models.ProjectInfo, error)
}

// TicketService handles single-ticket JIRA operations.
type TicketService struct {
	repo TicketAPI
}

// NewTicketService creates a new ticket service
func NewTicketService(repo TicketAPI) *TicketService {
	return &TicketService{repo: repo}
}

// Create creates an issue from a summary and a description file, optionally
// linked to an epic, and returns the new issue key.
func (s *TicketService) Create(projectKey, summary, descriptionFile, priority, epicKey, issueType string) (string, error) {
	if !helpers.FileExists(descriptionFile) {
		return "", fmt.Errorf("description file %s not found", descriptionFile)
	}
	description, err := helpers.ReadFile(descriptionFile)
	if err != nil {
		return "", err
	}

	issue := &models.IssueCreate{
		Fields: models.IssueCreateFields{
			Project:     models.ProjectRef{Key: projectKey},
			Summary:     summary,
			Description: description,
			IssueType:   models.IssueType{Name: issueType},
		},
	}
	if priority != "" {
		issue.Fields.Priority = &models.Priority{Name: priority}
	}
	// Epics cannot have a parent epic themselves.
	if epicKey != "" && issueType != "Epic" {
		issue.Fields.Parent = &models.ParentRef{Key: epicKey}
	}

	created, err := s.repo.CreateIssue(issue)
	if err != nil {
		return "", fmt.Errorf("failed to create issue: %w", err)
	}
	return created.Key, nil
}

// Edit updates a single field of an existing issue.
func (s *TicketService) Edit(issueKey, fieldName string, newValue interface{}) error {
	update := map[string]interface{}{fieldName: newValue}
	if err := s.repo.UpdateIssue(issueKey, update); err != nil {
		return fmt.Errorf("failed to update %s of %s: %w", fieldName, issueKey, err)
	}
	return nil
}

// Retrieve fetches the named fields of one issue. Absent fields map to a
// placeholder rather than failing.
func (s *TicketService) Retrieve(issueKey string, fieldNames []string) (map[string]string, error) {
	issue, err := s.repo.GetIssue(issueKey)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %s: %w", issueKey, err)
	}

	result := make(map[string]string, len(fieldNames))
	for _, name := range fieldNames {
		if name == "key" {
			result[name] = issue.Key
			continue
		}
		result[name] = fields.Lookup(issue.Fields, name, "Field not found")
	}
	return result, nil
}

// Comment adds a comment to an issue.
func (s *TicketService) Comment(issueKey, body string) error {
	if err := s.repo.AddComment(issueKey, body); err != nil {
		return fmt.Errorf("failed to comment on %s: %w", issueKey, err)
	}
	return nil
}

// Comments retrieves an issue's comments, applying author/text/date filters
// and an optional result cap. Malformed filters are skipped with a warning.
func (s *TicketService) Comments(issueKey string, filters []string, maxResults int) ([]models.Comment, error) {
	comments, err := s.repo.GetComments(issueKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of %s: %w", issueKey, err)
	}

	filtered := make([]models.Comment, 0, len(comments))
	for _, comment := range comments {
		if matchesCommentFilters(comment, filters) {
			filtered = append(filtered, comment)
		}
	}

	if maxResults > 0 && len(filtered) > maxResults {
		filtered = filtered[:maxResults]
	}
	return filtered, nil
}

func matchesCommentFilters(comment models.Comment, filters []string) bool {
	for _, filter := range filters {
		field, value, found := strings.Cut(filter, ":")
		if !found {
			helpers.PrintWarning("Invalid filter format: %s", filter)
			continue
		}
		field = strings.ToLower(strings.TrimSpace(field))
		value = strings.ToLower(strings.Trim(strings.TrimSpace(value), `"'`))

		switch field {
		case "author":
			if !strings.Contains(strings.ToLower(comment.Author.DisplayName), value) {
				return false
			}
		case "text":
			if !strings.Contains(strings.ToLower(comment.Body), value) {
				return false
			}
		case "date":
			if !matchesDate(commentDate(comment), value) {
				return false
			}
		default:
			helpers.PrintWarning("Unknown filter field: %s", field)
		}
	}
	return true
}

// commentDate extracts the YYYY-MM-DD part of a comment timestamp.
func commentDate(comment models.Comment) string {
	if len(comment.Created) < 10 {
		return comment.Created
	}
	return comment.Created[:10]
}

// matchesDate accepts either an exact date or a "start to end" range.
func matchesDate(date, value string) bool {
	if start, end, found := strings.Cut(value, "to"); found {
		start = strings.TrimSpace(start)
		end = strings.TrimSpace(end)
		return date >= start && date <= end
	}
	return date == value
}

// Projects lists all projects accessible to the configured user.
func (s *TicketService) Projects() ([]models.ProjectInfo, error) {
	projects, err := s.repo.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}
