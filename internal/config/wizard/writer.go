package wizard

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/imamik/planguard/internal/config"
)

// Function variable for dependency injection in tests.
var confirmOverwrite = defaultConfirmOverwrite

// WriteConfig writes cfg to a YAML file with a descriptive header.
// Credentials are never written; the header names the environment
// variables that supply them.
func WriteConfig(cfg *config.Config, outputPath string) error {
	out := *cfg
	out.Store.S3.AccessKey = ""
	out.Store.S3.SecretKey = ""

	yamlBytes, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(generateHeader(cfg, outputPath))
	sb.WriteString("\n")
	sb.Write(yamlBytes)

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// generateHeader creates the YAML file header comment.
func generateHeader(cfg *config.Config, outputPath string) string {
	var env string
	switch cfg.Store.Backend {
	case config.BackendS3:
		env = fmt.Sprintf("#\n# Required environment variables:\n#   %s, %s\n", config.EnvS3AccessKey, config.EnvS3SecretKey)
	case config.BackendPostgres:
		if cfg.Store.Postgres.DSN == "" {
			env = fmt.Sprintf("#\n# Required environment variable:\n#   %s\n", config.EnvPostgresDSN)
		}
	}
	return fmt.Sprintf(`# planguard configuration
# Generated by: planguard init
# Generated at: %s
# Backend: %s
%s#
# Usage:
#   planguard seed -c %s
#   planguard list -c %s
`, time.Now().Format(time.RFC3339), cfg.Store.Backend, env, outputPath, outputPath)
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ConfirmOverwrite prompts the user to confirm overwriting an existing file.
func ConfirmOverwrite(path string) (bool, error) {
	return confirmOverwrite(path)
}

// defaultConfirmOverwrite is the default implementation that prompts via stdin.
func defaultConfirmOverwrite(path string) (bool, error) {
	fmt.Printf("\nFile already exists: %s\n", path)
	fmt.Print("Overwrite? (y/n): ")

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false, err
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}
