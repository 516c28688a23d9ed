package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/naag/gh-project-export/internal/config"
	"github.com/naag/gh-project-export/internal/export"
	"github.com/naag/gh-project-export/internal/github"
	"github.com/naag/gh-project-export/internal/github/projecturl"
	"github.com/naag/gh-project-export/internal/sheets"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "gh-project-export",
	Short:        "Export GitHub project items to Google Sheets",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Configure logging based on verbose level
		var level slog.Level
		switch verboseLevel {
		case 0:
			level = slog.LevelInfo
		default:
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

var exportCmd = &cobra.Command{
	Use:          "export",
	Short:        "Export the sub-issues of a project board into a dated spreadsheet tab",
	SilenceUsage: true,
	RunE:         runExport,
}

var (
	org           string
	projectNumber int
	projectURL    string
	viewNumber    int
	spreadsheetID string
	createTab     bool
	dryRun        bool
	csvFile       string
	verboseLevel  int
)

func init() {
	rootCmd.AddCommand(exportCmd)

	rootCmd.PersistentFlags().CountVarP(&verboseLevel, "verbose", "v", "Verbosity level (-v for debug logs, -vv for debug logs and HTTP traffic)")

	exportCmd.Flags().StringVar(&org, "org", "", "GitHub organization (overrides GITHUB_ORG)")
	exportCmd.Flags().IntVar(&projectNumber, "project", 0, "Project number (overrides GITHUB_PROJECT_NUMBER)")
	exportCmd.Flags().StringVar(&projectURL, "project-url", "", "Project URL (e.g., https://github.com/orgs/org/projects/1/views/8), overrides --org and --project")
	exportCmd.Flags().IntVar(&viewNumber, "view", 0, "Project view number (overrides GITHUB_VIEW_NUMBER)")
	exportCmd.Flags().StringVar(&spreadsheetID, "spreadsheet", "", "Spreadsheet ID or URL (overrides GOOGLE_SHEETS_ID)")
	exportCmd.Flags().BoolVar(&createTab, "create-tab", true, "Create the export tab if missing (overrides CREATE_NEW_TAB)")
	exportCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Fetch and filter items without writing to the spreadsheet")
	exportCmd.Flags().StringVar(&csvFile, "csv", "", "Also write the rows as CSV to this file ('-' for stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	project, view, err := applyFlags(cmd, cfg)
	if err != nil {
		return err
	}

	if err := cfg.Validate(!dryRun); err != nil {
		return err
	}

	// Initialize GitHub client
	client, err := github.NewGraphQLClient(github.Options{
		Token: cfg.GitHubToken,
		Debug: verboseLevel >= 2,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize GitHub client: %w", err)
	}

	ctx := context.Background()

	var sink export.Sink
	if !dryRun {
		creds, err := sheets.CredentialsOption(ctx, cfg.Credentials)
		if err != nil {
			return err
		}
		s, err := sheets.New(ctx, cfg.SpreadsheetID, creds)
		if err != nil {
			return fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		sink = s
	}

	var out io.Writer
	switch csvFile {
	case "":
	case "-":
		out = os.Stdout
	default:
		f, err := os.Create(csvFile)
		if err != nil {
			return fmt.Errorf("failed to create CSV file: %w", err)
		}
		defer f.Close()
		out = f
	}

	result, err := export.NewExporter(client, sink).Run(ctx, export.Options{
		Project:           project,
		ViewNumber:        view,
		CreateNewTab:      cfg.CreateNewTab,
		DryRun:            dryRun,
		CSV:               out,
		ExcludedAssignees: cfg.ExcludedAssignees,
	})
	if err != nil {
		slog.Error("export failed", "error", err)
		return err
	}

	slog.Info("export completed successfully",
		"run_id", result.RunID,
		"tab", result.TabName,
		"exported", result.Exported,
		"total", result.TotalItems,
	)
	return nil
}

// applyFlags overlays command line flags on the loaded configuration
func applyFlags(cmd *cobra.Command, cfg *config.Config) (github.ProjectInfo, int, error) {
	flags := cmd.Flags()

	if flags.Changed("org") {
		cfg.Org = org
	}
	if flags.Changed("project") {
		cfg.ProjectNumber = projectNumber
	}
	if flags.Changed("view") {
		cfg.ViewNumber = viewNumber
	}
	if flags.Changed("spreadsheet") {
		cfg.SpreadsheetID = spreadsheetID
	}
	if flags.Changed("create-tab") {
		cfg.CreateNewTab = createTab
	}

	project := github.ProjectInfo{
		OwnerType:     github.OwnerTypeOrg,
		OwnerLogin:    cfg.Org,
		ProjectNumber: cfg.ProjectNumber,
	}

	if projectURL != "" {
		info, urlView, err := projecturl.ParseView(projectURL)
		if err != nil {
			return github.ProjectInfo{}, 0, fmt.Errorf("invalid project URL: %w", err)
		}
		project = *info
		cfg.Org = info.OwnerLogin
		cfg.ProjectNumber = info.ProjectNumber
		if urlView != 0 && !flags.Changed("view") {
			cfg.ViewNumber = urlView
		}
	}

	return project, cfg.ViewNumber, nil
}
