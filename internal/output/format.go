// Package output renders query results to the standard output stream as an
// aligned table, CSV, or JSON.
package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"jirafa/internal/fields"
	"jirafa/internal/models"
)

// Format selects how results are rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// FallbackValue is rendered when a requested field is absent from a record.
const FallbackValue = "N/A"

// ErrInvalidFormat reports an unknown output format selector.
var ErrInvalidFormat = errors.New("invalid output format")

// ParseFormat validates a format selector. It runs before any API call so an
// unknown format fails fast.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatTable:
		return FormatTable, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q (expected table, csv or json)", ErrInvalidFormat, s)
}

// fallbackFor returns the placeholder for a missing field. Unset assignees
// conventionally read "Unassigned" rather than the generic placeholder.
func fallbackFor(field string) string {
	if field == "assignee" || strings.HasPrefix(field, "assignee.") {
		return "Unassigned"
	}
	return FallbackValue
}

// displayValue renders one field of one issue as a string.
func displayValue(issue models.Issue, field string) string {
	if field == "key" {
		return issue.Key
	}
	return fields.Lookup(issue.Fields, field, fallbackFor(field))
}

// rawValue renders one field of one issue for JSON output. Scalar JSON types
// pass through unchanged; nested objects render as their display string, and
// missing fields render as the fallback string rather than null so that all
// three formats agree.
func rawValue(issue models.Issue, field string) interface{} {
	if field == "key" {
		return issue.Key
	}
	value, ok := fields.LookupRaw(issue.Fields, field)
	if !ok {
		return fallbackFor(field)
	}
	switch value.(type) {
	case string, bool, float64:
		return value
	}
	return fields.Render(value)
}

// RenderIssues writes the fetched issues to w in the selected format, one
// row per issue in fetch order, columns in field order.
func RenderIssues(w io.Writer, format Format, fieldList []string, issues []models.Issue) error {
	switch format {
	case FormatTable:
		return renderIssueTable(w, fieldList, issues)
	case FormatCSV:
		return renderIssueCSV(w, fieldList, issues)
	case FormatJSON:
		return renderIssueJSON(w, fieldList, issues)
	}
	return fmt.Errorf("%w: %q", ErrInvalidFormat, format)
}

func renderIssueTable(w io.Writer, fieldList []string, issues []models.Issue) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(fieldList, "\t"))
	for _, issue := range issues {
		row := make([]string, len(fieldList))
		for i, field := range fieldList {
			row[i] = displayValue(issue, field)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

func renderIssueCSV(w io.Writer, fieldList []string, issues []models.Issue) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(fieldList); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, issue := range issues {
		row := make([]string, len(fieldList))
		for i, field := range fieldList {
			row[i] = displayValue(issue, field)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func renderIssueJSON(w io.Writer, fieldList []string, issues []models.Issue) error {
	records := make([]map[string]interface{}, 0, len(issues))
	for _, issue := range issues {
		record := make(map[string]interface{}, len(fieldList))
		for _, field := range fieldList {
			record[field] = rawValue(issue, field)
		}
		records = append(records, record)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

var commentHeaders = []string{"ID", "Author", "Date", "Comment"}

// commentRow flattens a comment for display. The timestamp keeps only the
// date and time part, and table output truncates long bodies.
func commentRow(comment models.Comment, truncate bool) []string {
	date := comment.Created
	if len(date) > 19 {
		date = strings.Replace(date[:19], "T", " ", 1)
	}
	body := comment.Body
	if truncate && len(body) > 50 {
		body = body[:50] + "..."
	}
	return []string{comment.ID, comment.Author.DisplayName, date, body}
}

// RenderComments writes issue comments to w in the selected format.
func RenderComments(w io.Writer, format Format, comments []models.Comment) error {
	switch format {
	case FormatTable:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(commentHeaders, "\t"))
		for _, comment := range comments {
			fmt.Fprintln(tw, strings.Join(commentRow(comment, true), "\t"))
		}
		return tw.Flush()

	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(commentHeaders); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		for _, comment := range comments {
			if err := cw.Write(commentRow(comment, false)); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		cw.Flush()
		return cw.Error()

	case FormatJSON:
		records := make([]map[string]string, 0, len(comments))
		for _, comment := range comments {
			row := commentRow(comment, false)
			records = append(records, map[string]string{
				"id":     row[0],
				"author": row[1],
				"date":   row[2],
				"body":   row[3],
			})
		}
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	return fmt.Errorf("%w: %q", ErrInvalidFormat, format)
}
