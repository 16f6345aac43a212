package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/bibsync/internal/reference"
)

// Constants for output formatting.
const (
	ImportTitleMaxLen = 60 // Used in import command output
	ListTitleMaxLen   = 50 // Used in venue list output
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	logger.Sync()
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// ConfigResponse is the response for config get commands.
type ConfigResponse struct {
	Locale             string `json:"locale,omitempty"`
	AllowProxyVenues   bool   `json:"allow_proxy_venues"`
	RequireKnownAuthor bool   `json:"require_known_author"`
	Workers            int    `json:"workers,omitempty"`
	CatalogPath        string `json:"catalog_path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// formatVenueHuman renders one registry venue as a single line.
func formatVenueHuman(v reference.Venue) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %d: %s", v.Kind, v.ID, truncateString(v.Name, ListTitleMaxLen))
	if v.ISSN != "" {
		fmt.Fprintf(&sb, " [ISSN %s]", v.ISSN)
	}
	if v.ISBN != "" {
		fmt.Fprintf(&sb, " [ISBN %s]", v.ISBN)
	}
	if v.Publisher != "" {
		fmt.Fprintf(&sb, " (%s)", v.Publisher)
	}
	return sb.String()
}

// formatPersonHuman renders one known person as a single line.
func formatPersonHuman(p reference.Person) string {
	s := fmt.Sprintf("%d: %s", p.ID, p.DisplayName())
	if p.ORCID != "" {
		s += " [ORCID " + p.ORCID + "]"
	}
	return s
}
