package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"jirafa/internal/config"
	"jirafa/internal/fields"
	"jirafa/internal/helpers"
	"jirafa/internal/output"
	"jirafa/internal/repositories"
	"jirafa/internal/services"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "jirafa",
		Short: "Jirafa - create, edit, retrieve, comment on and list JIRA issues",
		Long: `Jirafa is a command-line tool to interact with the JIRA API for creating,
retrieving, editing and managing tickets, and for running arbitrary JQL queries.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "jirafa.yaml", "Configuration file path")

	// List command
	var listCmd = &cobra.Command{
		Use:   "list <project_key>",
		Short: "List tickets in a JIRA project",
		Long:  "List tickets in a JIRA project with optional filters and custom output",
		Args:  cobra.ExactArgs(1),
		RunE:  runList,
	}
	listCmd.Flags().String("fields", "summary,status,key", "Comma-separated list of fields to display")
	listCmd.Flags().StringArrayP("filter", "f", nil, "Field filter in key:value format, e.g. 'status:Done'")
	listCmd.Flags().StringP("output", "o", "table", "Output format (table, csv, json)")
	listCmd.Flags().Int("max_results", 0, "Maximum number of tickets to fetch (-1 for all)")
	listCmd.Flags().Int("items_per_batch", 0, "Number of tickets to fetch per batch")
	rootCmd.AddCommand(listCmd)

	// JQL command
	var jqlCmd = &cobra.Command{
		Use:   "jql \"<jql_query>\"",
		Short: "Run an arbitrary JQL query and list matching tickets",
		Args:  cobra.ExactArgs(1),
		RunE:  runJQL,
	}
	jqlCmd.Flags().String("fields", "summary,status,assignee,key", "Comma-separated list of fields to display")
	jqlCmd.Flags().StringP("output", "o", "table", "Output format (table, csv, json)")
	jqlCmd.Flags().Int("max_results", 0, "Maximum number of tickets to fetch (-1 for all)")
	jqlCmd.Flags().Int("items_per_batch", 0, "Number of tickets to fetch per batch")
	rootCmd.AddCommand(jqlCmd)

	// Create command
	var createCmd = &cobra.Command{
		Use:   "create <summary> <description_file>",
		Short: "Create a new JIRA ticket",
		Long:  "Create a new JIRA ticket with the description read from a markdown file",
		Args:  cobra.ExactArgs(2),
		RunE:  runCreate,
	}
	createCmd.Flags().String("priority", "Medium", "Priority of the ticket")
	createCmd.Flags().String("epic_key", "", "Epic key to link the ticket to")
	createCmd.Flags().String("project_key", "", "JIRA project key (defaults to the configured project)")
	createCmd.Flags().String("issue_type", "Task", "Issue type, e.g. Task, Story, Bug")
	rootCmd.AddCommand(createCmd)

	// Edit command
	var editCmd = &cobra.Command{
		Use:   "edit <issue_key> <field_name> <new_value>",
		Short: "Edit a specific field of a JIRA ticket",
		Args:  cobra.ExactArgs(3),
		RunE:  runEdit,
	}
	rootCmd.AddCommand(editCmd)

	// Retrieve command
	var retrieveCmd = &cobra.Command{
		Use:   "retrieve <issue_key> <field>...",
		Short: "Retrieve specific fields from a JIRA ticket",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runRetrieve,
	}
	rootCmd.AddCommand(retrieveCmd)

	// Comment command
	var commentCmd = &cobra.Command{
		Use:   "comment <issue_key> <comment>",
		Short: "Add a comment to a JIRA ticket",
		Args:  cobra.ExactArgs(2),
		RunE:  runComment,
	}
	rootCmd.AddCommand(commentCmd)

	// Comments command
	var commentsCmd = &cobra.Command{
		Use:   "comments <issue_key>",
		Short: "Retrieve comments from a JIRA ticket",
		Long:  "Retrieve comments from a JIRA ticket with optional author, text and date filters",
		Args:  cobra.ExactArgs(1),
		RunE:  runComments,
	}
	commentsCmd.Flags().StringArrayP("filter", "f", nil, "Comment filter in key:value format, e.g. 'author:JohnDoe', 'text:important', 'date:2023-01-01'")
	commentsCmd.Flags().Int("max_results", 0, "Maximum number of comments to fetch (0 for all)")
	commentsCmd.Flags().StringP("output", "o", "table", "Output format (table, csv, json)")
	rootCmd.AddCommand(commentsCmd)

	// Projects command
	var projectsCmd = &cobra.Command{
		Use:   "projects",
		Short: "List all available JIRA projects",
		Args:  cobra.NoArgs,
		RunE:  runProjects,
	}
	rootCmd.AddCommand(projectsCmd)

	if err := rootCmd.Execute(); err != nil {
		helpers.PrintError("Error: %v", err)
		os.Exit(1)
	}
}

// ticketService loads configuration and wires the repository into a ticket
// service.
func newTicketService() (*config.Config, *services.TicketService, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, err
	}
	repo := repositories.NewJiraRepository(&cfg.Jira)
	return cfg, services.NewTicketService(repo), nil
}

// splitFields parses a comma-separated field list. An empty list is rejected
// here so that downstream components never see zero columns.
func splitFields(list string) ([]string, error) {
	var parsed []string
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field != "" {
			parsed = append(parsed, field)
		}
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("no fields requested")
	}
	return parsed, nil
}

// querySettings resolves max_results and items_per_batch from flags with
// config fallbacks. An unset maximum means unbounded fetching.
func querySettings(cmd *cobra.Command, cfg *config.Config) (maxResults, batchSize int) {
	maxResults = services.NoLimit
	if cmd.Flags().Changed("max_results") {
		maxResults, _ = cmd.Flags().GetInt("max_results")
	} else if cfg.Query.DefaultMaxResults > 0 {
		maxResults = cfg.Query.DefaultMaxResults
	}

	batchSize = cfg.Query.ItemsPerBatch
	if cmd.Flags().Changed("items_per_batch") {
		batchSize, _ = cmd.Flags().GetInt("items_per_batch")
	}
	return maxResults, batchSize
}

func runQuery(cmd *cobra.Command, spec services.QuerySpec, format output.Format) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}
	spec.MaxResults, spec.BatchSize = querySettings(cmd, cfg)

	queryService := services.NewQueryService(repositories.NewJiraRepository(&cfg.Jira))
	issues, err := queryService.Run(spec)
	if err != nil {
		return err
	}

	return output.RenderIssues(os.Stdout, format, spec.Fields, issues)
}

func runList(cmd *cobra.Command, args []string) error {
	// Validate the output format before touching config or network.
	outputFlag, _ := cmd.Flags().GetString("output")
	format, err := output.ParseFormat(outputFlag)
	if err != nil {
		return err
	}

	fieldsFlag, _ := cmd.Flags().GetString("fields")
	fieldList, err := splitFields(fieldsFlag)
	if err != nil {
		return err
	}

	filterFlags, _ := cmd.Flags().GetStringArray("filter")
	filters := make([]string, 0, len(filterFlags))
	for _, filter := range filterFlags {
		clause, err := services.FilterClause(filter)
		if err != nil {
			return err
		}
		filters = append(filters, clause)
	}

	spec := services.QuerySpec{
		ProjectKey: args[0],
		Filters:    filters,
		// Listings always show the issue key.
		Fields: fields.Resolve(fieldList, []string{"key"}),
	}
	return runQuery(cmd, spec, format)
}

func runJQL(cmd *cobra.Command, args []string) error {
	outputFlag, _ := cmd.Flags().GetString("output")
	format, err := output.ParseFormat(outputFlag)
	if err != nil {
		return err
	}

	fieldsFlag, _ := cmd.Flags().GetString("fields")
	fieldList, err := splitFields(fieldsFlag)
	if err != nil {
		return err
	}

	spec := services.QuerySpec{
		JQL:    args[0],
		Fields: fields.Resolve(fieldList, nil),
	}
	return runQuery(cmd, spec, format)
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, ticketService, err := newTicketService()
	if err != nil {
		return err
	}

	projectKey, _ := cmd.Flags().GetString("project_key")
	if projectKey == "" {
		projectKey = cfg.Jira.ProjectKey
	}
	if projectKey == "" {
		return fmt.Errorf("no project key provided (use --project_key or configure one)")
	}

	priority, _ := cmd.Flags().GetString("priority")
	epicKey, _ := cmd.Flags().GetString("epic_key")
	issueType, _ := cmd.Flags().GetString("issue_type")

	key, err := ticketService.Create(projectKey, args[0], args[1], priority, epicKey, issueType)
	if err != nil {
		return err
	}

	helpers.PrintSuccess("Created issue %s", key)
	if epicKey != "" {
		helpers.PrintInfo("Issue %s linked to epic %s", key, epicKey)
	}
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	_, ticketService, err := newTicketService()
	if err != nil {
		return err
	}

	issueKey, fieldName, newValue := args[0], args[1], args[2]
	if err := ticketService.Edit(issueKey, fieldName, newValue); err != nil {
		return err
	}

	helpers.PrintSuccess("Updated %s of %s to %s", fieldName, issueKey, newValue)
	return nil
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	_, ticketService, err := newTicketService()
	if err != nil {
		return err
	}

	result, err := ticketService.Retrieve(args[0], args[1:])
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func runComment(cmd *cobra.Command, args []string) error {
	_, ticketService, err := newTicketService()
	if err != nil {
		return err
	}

	if err := ticketService.Comment(args[0], args[1]); err != nil {
		return err
	}

	helpers.PrintSuccess("Added comment to %s", args[0])
	return nil
}

func runComments(cmd *cobra.Command, args []string) error {
	outputFlag, _ := cmd.Flags().GetString("output")
	format, err := output.ParseFormat(outputFlag)
	if err != nil {
		return err
	}

	_, ticketService, err := newTicketService()
	if err != nil {
		return err
	}

	filters, _ := cmd.Flags().GetStringArray("filter")
	maxResults, _ := cmd.Flags().GetInt("max_results")

	comments, err := ticketService.Comments(args[0], filters, maxResults)
	if err != nil {
		return err
	}

	return output.RenderComments(os.Stdout, format, comments)
}

func runProjects(cmd *cobra.Command, args []string) error {
	_, ticketService, err := newTicketService()
	if err != nil {
		return err
	}

	projects, err := ticketService.Projects()
	if err != nil {
		return err
	}

	helpers.PrintInfo("Available JIRA Projects:")
	for _, project := range projects {
		fmt.Printf("%s - %s\n", project.Key, project.Name)
	}
	return nil
}
