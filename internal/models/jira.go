package models

// Issue is a single search or lookup result. Field values stay a raw JSON
// tree because projects differ in which fields (and custom fields) exist;
// callers go through the fields package instead of assuming structure.
type Issue struct {
	ID     string                 `json:"id"`
	Key    string                 `json:"key"`
	Fields map[string]interface{} `json:"fields"`
}

// SearchResult is the response body of the search endpoint.
type SearchResult struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// IssueCreate is the request body for creating an issue.
type IssueCreate struct {
	Fields IssueCreateFields `json:"fields"`
}

// IssueCreateFields represents the fields of a new issue.
type IssueCreateFields struct {
	Project     ProjectRef `json:"project"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	IssueType   IssueType  `json:"issuetype"`
	Priority    *Priority  `json:"priority,omitempty"`
	Parent      *ParentRef `json:"parent,omitempty"`
}

// ProjectRef references a project by key.
type ProjectRef struct {
	Key string `json:"key"`
}

// IssueType names an issue type (Task, Story, Bug, Epic).
type IssueType struct {
	Name string `json:"name"`
}

// Priority names an issue priority.
type Priority struct {
	Name string `json:"name"`
}

// ParentRef links an issue to its parent epic.
type ParentRef struct {
	Key string `json:"key"`
}

// CreateResponse is returned by the issue creation endpoint.
type CreateResponse struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// ProjectInfo describes one accessible project.
type ProjectInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// User is a JIRA account reference as it appears on comments and fields.
type User struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// Comment is one issue comment.
type Comment struct {
	ID      string `json:"id"`
	Author  User   `json:"author"`
	Body    string `json:"body"`
	Created string `json:"created"`
}

// CommentList is the response body of the comment listing endpoint.
type CommentList struct {
	Comments []Comment `json:"comments"`
}
