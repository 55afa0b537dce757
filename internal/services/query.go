package services

import (
	"fmt"
	"strings"

	"jirafa/internal/models"
)

// NoLimit requests every matching record, fetched batch by batch.
const NoLimit = -1

// Searcher is the single search capability the query executor needs.
// Satisfied by repositories.JiraRepository; tests substitute fakes.
type Searcher interface {
	SearchIssues(jql string, fields []string, startAt, maxResults int) (*models.SearchResult, error)
}

// QuerySpec describes one listing or JQL invocation. Exactly one of
// ProjectKey and JQL is set.
type QuerySpec struct {
	ProjectKey string
	JQL        string
	Filters    []string // JQL clauses ANDed onto the project listing
	Fields     []string // resolved field identifiers to request and display
	MaxResults int      // NoLimit for unbounded
	BatchSize  int
}

// QueryService fetches search results in bounded-size batches.
type QueryService struct {
	repo Searcher
}

// NewQueryService creates a new query service over a search client.
func NewQueryService(repo Searcher) *QueryService {
	return &QueryService{repo: repo}
}

// FilterClause converts a key:value filter argument into a JQL clause.
func FilterClause(filter string) (string, error) {
	key, value, found := strings.Cut(filter, ":")
	if !found || key == "" {
		return "", fmt.Errorf("invalid filter %q: expected key:value", filter)
	}
	value = strings.Trim(value, `"'`)
	return fmt.Sprintf("%s = '%s'", key, value), nil
}

// buildJQL composes the final query: a raw JQL string passes through
// unchanged, a project listing folds its filters into an AND-joined clause.
func buildJQL(spec QuerySpec) string {
	if spec.JQL != "" {
		return spec.JQL
	}

	jql := fmt.Sprintf("project = %s", spec.ProjectKey)
	if len(spec.Filters) > 0 {
		jql += " AND " + strings.Join(spec.Filters, " AND ")
	}
	return jql
}

// Run executes the query, issuing search calls of at most spec.BatchSize
// records until the requested maximum is reached or the result set is
// exhausted. Any API error aborts the whole run; no partial results are
// returned.
func (s *QueryService) Run(spec QuerySpec) ([]models.Issue, error) {
	if spec.BatchSize < 1 {
		return nil, fmt.Errorf("items per batch must be positive, got %d", spec.BatchSize)
	}
	if spec.MaxResults < 0 && spec.MaxResults != NoLimit {
		return nil, fmt.Errorf("max results must not be negative, got %d", spec.MaxResults)
	}
	if spec.MaxResults == 0 {
		return []models.Issue{}, nil
	}

	jql := buildJQL(spec)

	var issues []models.Issue
	startAt := 0

	for {
		batchSize := spec.BatchSize
		if spec.MaxResults != NoLimit && spec.MaxResults-len(issues) < batchSize {
			batchSize = spec.MaxResults - len(issues)
		}

		result, err := s.repo.SearchIssues(jql, spec.Fields, startAt, batchSize)
		if err != nil {
			return nil, fmt.Errorf("search failed at offset %d: %w", startAt, err)
		}

		issues = append(issues, result.Issues...)
		startAt += len(result.Issues)

		// A short page means the result set is exhausted.
		if len(result.Issues) < batchSize {
			break
		}
		if spec.MaxResults != NoLimit && len(issues) >= spec.MaxResults {
			break
		}
	}

	return issues, nil
}
