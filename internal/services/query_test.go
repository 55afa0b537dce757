package services

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"jirafa/internal/models"
	"jirafa/internal/output"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearcher serves a fixed number of matching issues and records every
// page request it receives.
type fakeSearcher struct {
	total      int
	failAtCall int // 1-based; 0 means never fail
	jqls       []string
	batches    []int
	offsets    []int
}

func (f *fakeSearcher) SearchIssues(jql string, fields []string, startAt, maxResults int) (*models.SearchResult, error) {
	f.jqls = append(f.jqls, jql)
	f.batches = append(f.batches, maxResults)
	f.offsets = append(f.offsets, startAt)

	if f.failAtCall > 0 && len(f.batches) == f.failAtCall {
		return nil, errors.New("boom")
	}

	count := maxResults
	if startAt+count > f.total {
		count = f.total - startAt
	}
	if count < 0 {
		count = 0
	}

	issues := make([]models.Issue, count)
	for i := range issues {
		issues[i] = models.Issue{
			Key: fmt.Sprintf("ABC-%d", startAt+i+1),
			Fields: map[string]interface{}{
				"summary": fmt.Sprintf("Issue %d", startAt+i+1),
				"status":  map[string]interface{}{"name": "Done"},
			},
		}
	}

	return &models.SearchResult{
		StartAt:    startAt,
		MaxResults: maxResults,
		Total:      f.total,
		Issues:     issues,
	}, nil
}

func TestRunBatchesUpToMaxResults(t *testing.T) {
	fake := &fakeSearcher{total: 100}
	service := NewQueryService(fake)

	issues, err := service.Run(QuerySpec{
		ProjectKey: "ABC",
		Fields:     []string{"summary", "key"},
		MaxResults: 25,
		BatchSize:  10,
	})

	require.NoError(t, err)
	assert.Len(t, issues, 25)
	assert.Equal(t, []int{10, 10, 5}, fake.batches)
	assert.Equal(t, []int{0, 10, 20}, fake.offsets)
	assert.Equal(t, "ABC-1", issues[0].Key)
	assert.Equal(t, "ABC-25", issues[24].Key)
}

func TestRunStopsOnShortPage(t *testing.T) {
	fake := &fakeSearcher{total: 13}
	service := NewQueryService(fake)

	issues, err := service.Run(QuerySpec{
		ProjectKey: "ABC",
		MaxResults: 100,
		BatchSize:  10,
	})

	require.NoError(t, err)
	assert.Len(t, issues, 13)
	// The short second page signals exhaustion; no third call is made.
	assert.Equal(t, []int{10, 10}, fake.batches)
}

func TestRunUnlimitedFetchesUntilExhaustion(t *testing.T) {
	fake := &fakeSearcher{total: 30}
	service := NewQueryService(fake)

	issues, err := service.Run(QuerySpec{
		JQL:        "assignee = currentUser()",
		MaxResults: NoLimit,
		BatchSize:  10,
	})

	require.NoError(t, err)
	assert.Len(t, issues, 30)
	// 30 is a clean multiple of 10, so exhaustion shows up as an empty page.
	assert.Equal(t, []int{10, 10, 10, 10}, fake.batches)
}

func TestRunZeroMaxMakesNoCalls(t *testing.T) {
	fake := &fakeSearcher{total: 100}
	service := NewQueryService(fake)

	issues, err := service.Run(QuerySpec{ProjectKey: "ABC", MaxResults: 0, BatchSize: 10})

	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Empty(t, fake.batches)
}

func TestRunValidatesSpec(t *testing.T) {
	service := NewQueryService(&fakeSearcher{})

	_, err := service.Run(QuerySpec{ProjectKey: "ABC", MaxResults: 10, BatchSize: 0})
	assert.ErrorContains(t, err, "items per batch must be positive")

	_, err = service.Run(QuerySpec{ProjectKey: "ABC", MaxResults: -2, BatchSize: 10})
	assert.ErrorContains(t, err, "must not be negative")
}

func TestRunErrorDiscardsPartialResults(t *testing.T) {
	fake := &fakeSearcher{total: 100, failAtCall: 2}
	service := NewQueryService(fake)

	issues, err := service.Run(QuerySpec{
		ProjectKey: "ABC",
		MaxResults: 25,
		BatchSize:  10,
	})

	require.Error(t, err)
	assert.ErrorContains(t, err, "search failed at offset 10")
	assert.ErrorContains(t, err, "boom")
	assert.Nil(t, issues)
}

func TestRunComposesProjectJQL(t *testing.T) {
	fake := &fakeSearcher{total: 1}
	service := NewQueryService(fake)

	_, err := service.Run(QuerySpec{
		ProjectKey: "ABC",
		Filters:    []string{"status = 'Done'", "labels = 'infra'"},
		MaxResults: 1,
		BatchSize:  10,
	})

	require.NoError(t, err)
	require.Len(t, fake.jqls, 1)
	assert.Equal(t, "project = ABC AND status = 'Done' AND labels = 'infra'", fake.jqls[0])
}

func TestRunPassesRawJQLThrough(t *testing.T) {
	fake := &fakeSearcher{total: 1}
	service := NewQueryService(fake)

	jql := "project = ABC ORDER BY updated DESC"
	_, err := service.Run(QuerySpec{JQL: jql, MaxResults: 1, BatchSize: 10})

	require.NoError(t, err)
	require.Len(t, fake.jqls, 1)
	assert.Equal(t, jql, fake.jqls[0])
}

func TestFilterClause(t *testing.T) {
	tests := []struct {
		name     string
		filter   string
		expected string
		wantErr  bool
	}{
		{name: "simple", filter: "status:Done", expected: "status = 'Done'"},
		{name: "quoted value", filter: `status:"In Progress"`, expected: "status = 'In Progress'"},
		{name: "value containing colon", filter: "summary:a:b", expected: "summary = 'a:b'"},
		{name: "missing separator", filter: "status", wantErr: true},
		{name: "empty key", filter: ":Done", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, err := FilterClause(tt.filter)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, clause)
		})
	}
}

// End to end: a filtered project listing capped at two results renders a
// table with a header row plus exactly two data rows, in fetch order.
func TestListRendersFilteredTable(t *testing.T) {
	fake := &fakeSearcher{total: 10}
	service := NewQueryService(fake)

	fieldList := []string{"summary", "status", "key"}
	issues, err := service.Run(QuerySpec{
		ProjectKey: "ABC",
		Filters:    []string{"status = 'Done'"},
		Fields:     fieldList,
		MaxResults: 2,
		BatchSize:  50,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"project = ABC AND status = 'Done'"}, fake.jqls)

	var buf bytes.Buffer
	require.NoError(t, output.RenderIssues(&buf, output.FormatTable, fieldList, issues))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "summary")
	assert.Contains(t, lines[1], "Issue 1")
	assert.Contains(t, lines[1], "ABC-1")
	assert.Contains(t, lines[2], "Issue 2")
	assert.Contains(t, lines[2], "ABC-2")
}
