package repositories

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jirafa/internal/config"
	"jirafa/internal/models"
)

// APIError is a non-2xx response from the JIRA API. Invalid JQL comes back
// this way too, with the API's own message in the body.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("JIRA API returned status %d: %s", e.StatusCode, e.Body)
}

// JiraRepository handles JIRA API interactions
type JiraRepository struct {
	config *config.JiraConfig
	client *http.Client
}

// NewJiraRepository creates a new JIRA repository
func NewJiraRepository(jiraConfig *config.JiraConfig) *JiraRepository {
	return &JiraRepository{
		config: jiraConfig,
		client: &http.Client{
			Timeout: time.Duration(jiraConfig.Timeout) * time.Second,
		},
	}
}

func (r *JiraRepository) newRequest(method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, r.config.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(r.config.Username, r.config.APIToken)

	return req, nil
}

// do executes a request, checks the status and decodes the JSON response
// into target when one is expected.
func (r *JiraRepository) do(req *http.Request, wantStatus int, target interface{}) error {
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// SearchIssues fetches one page of search results for a JQL query,
// requesting only the named fields.
func (r *JiraRepository) SearchIssues(jql string, fields []string, startAt, maxResults int) (*models.SearchResult, error) {
	q := make(url.Values)
	q.Set("jql", jql)
	q.Set("startAt", strconv.Itoa(startAt))
	q.Set("maxResults", strconv.Itoa(maxResults))
	if len(fields) > 0 {
		q.Set("fields", strings.Join(fields, ","))
	}

	req, err := r.newRequest("GET", "/rest/api/2/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result models.SearchResult
	if err := r.do(req, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetIssue fetches a single issue by key.
func (r *JiraRepository) GetIssue(issueKey string) (*models.Issue, error) {
	req, err := r.newRequest("GET", "/rest/api/2/issue/"+issueKey, nil)
	if err != nil {
		return nil, err
	}

	var issue models.Issue
	if err := r.do(req, http.StatusOK, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// CreateIssue creates a new JIRA issue
func (r *JiraRepository) CreateIssue(issue *models.IssueCreate) (*models.CreateResponse, error) {
	req, err := r.newRequest("POST", "/rest/api/2/issue", issue)
	if err != nil {
		return nil, err
	}

	var created models.CreateResponse
	if err := r.do(req, http.StatusCreated, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateIssue sets the given fields on an existing issue.
func (r *JiraRepository) UpdateIssue(issueKey string, fields map[string]interface{}) error {
	body := map[string]interface{}{"fields": fields}
	req, err := r.newRequest("PUT", "/rest/api/2/issue/"+issueKey, body)
	if err != nil {
		return err
	}

	return r.do(req, http.StatusNoContent, nil)
}

// AddComment adds a comment to an issue.
func (r *JiraRepository) AddComment(issueKey, body string) error {
	comment := map[string]string{"body": body}
	req, err := r.newRequest("POST", "/rest/api/2/issue/"+issueKey+"/comment", comment)
	if err != nil {
		return err
	}

	return r.do(req, http.StatusCreated, nil)
}

// GetComments fetches all comments of an issue.
func (r *JiraRepository) GetComments(issueKey string) ([]models.Comment, error) {
	req, err := r.newRequest("GET", "/rest/api/2/issue/"+issueKey+"/comment", nil)
	if err != nil {
		return nil, err
	}

	var list models.CommentList
	if err := r.do(req, http.StatusOK, &list); err != nil {
		return nil, err
	}
	return list.Comments, nil
}

// ListProjects returns all projects accessible to the configured user.
func (r *JiraRepository) ListProjects() ([]models.ProjectInfo, error) {
	req, err := r.newRequest("GET", "/rest/api/2/project", nil)
	if err != nil {
		return nil, err
	}

	var projects []models.ProjectInfo
	if err := r.do(req, http.StatusOK, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}
