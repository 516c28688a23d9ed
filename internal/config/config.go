// Package config loads the exporter settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the settings of an export run
type Config struct {
	// GitHub
	GitHubToken   string
	Org           string
	ProjectNumber int
	ViewNumber    int

	// Google Sheets
	SpreadsheetID string
	Credentials   string
	CreateNewTab  bool

	// Filtering
	ExcludedAssignees []string
}

// Load reads a .env file when present, then the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("PRODUCTS_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	projectNumber, err := getEnvAsIntWithDefault("GITHUB_PROJECT_NUMBER", 1)
	if err != nil {
		return nil, err
	}

	viewNumber, err := getEnvAsIntWithDefault("GITHUB_VIEW_NUMBER", 8)
	if err != nil {
		return nil, err
	}

	return &Config{
		GitHubToken:       token,
		Org:               getEnvWithDefault("GITHUB_ORG", "phac-aspc"),
		ProjectNumber:     projectNumber,
		ViewNumber:        viewNumber,
		SpreadsheetID:     os.Getenv("GOOGLE_SHEETS_ID"),
		Credentials:       os.Getenv("GOOGLE_CREDENTIALS"),
		CreateNewTab:      getEnvAsBoolWithDefault("CREATE_NEW_TAB", true),
		ExcludedAssignees: splitList(getEnvWithDefault("EXCLUDED_ASSIGNEES", "halligater,smannan9")),
	}, nil
}

// Validate checks required settings. Sheets settings are only required when
// the rows are written to a spreadsheet.
func (c *Config) Validate(needSheets bool) error {
	var missing []string
	if c.GitHubToken == "" {
		missing = append(missing, "PRODUCTS_TOKEN")
	}
	if needSheets && c.SpreadsheetID == "" {
		missing = append(missing, "GOOGLE_SHEETS_ID")
	}
	if needSheets && c.Credentials == "" {
		missing = append(missing, "GOOGLE_CREDENTIALS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if c.Org == "" {
		return fmt.Errorf("organization not set")
	}
	if c.ProjectNumber <= 0 {
		return fmt.Errorf("invalid project number: %d", c.ProjectNumber)
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntWithDefault(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

// getEnvAsBoolWithDefault treats only "true" (any case) as true
func getEnvAsBoolWithDefault(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	return strings.EqualFold(valueStr, "true")
}

func splitList(s string) []string {
	var list []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	return list
}
