package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/planguard/internal/config"
	"github.com/imamik/planguard/internal/config/wizard"
)

// Factory function variables for init - can be replaced in tests.
var (
	fileExists       = wizard.FileExists
	confirmOverwrite = wizard.ConfirmOverwrite
	runConfigWizard  = wizard.RunWizard
	writeConfig      = wizard.WriteConfig
)

// Init runs the configuration wizard and writes planguard.yaml.
func Init(ctx context.Context, outputPath string, force bool) error {
	if !force && fileExists(outputPath) {
		ok, err := confirmOverwrite(outputPath)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(stdout, "Aborted.")
			return nil
		}
	}

	printWelcome()

	result, err := runConfigWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg := wizard.BuildConfig(result)

	if err := writeConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)
	return nil
}

func printWelcome() {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "planguard - plan governance policies")
	fmt.Fprintln(stdout, "====================================")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "This wizard picks a policy store and the global default decision.")
	fmt.Fprintln(stdout)
}

func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Configuration saved!")
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "  File: %s\n", outputPath)
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, "Summary")
	fmt.Fprintln(stdout, "-------")
	fmt.Fprintf(stdout, "  Backend:        %s\n", cfg.Store.Backend)
	switch cfg.Store.Backend {
	case config.BackendKubernetes:
		fmt.Fprintf(stdout, "  Namespace:      %s\n", cfg.Store.Kubernetes.Namespace)
	case config.BackendS3:
		fmt.Fprintf(stdout, "  Bucket:         %s (%s)\n", cfg.Store.S3.Bucket, cfg.Store.S3.Endpoint)
	}
	fmt.Fprintf(stdout, "  Global default: %s\n", cfg.GlobalDefault())
	fmt.Fprintf(stdout, "  Strict schema:  %t\n", cfg.Schema.Strict)
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, "Next Steps")
	fmt.Fprintln(stdout, "----------")
	step := 1
	switch cfg.Store.Backend {
	case config.BackendS3:
		fmt.Fprintf(stdout, "  %d. Export your S3 credentials:\n", step)
		fmt.Fprintf(stdout, "     export %s=<key> %s=<secret>\n", config.EnvS3AccessKey, config.EnvS3SecretKey)
		fmt.Fprintln(stdout)
		step++
	case config.BackendPostgres:
		if cfg.Store.Postgres.DSN == "" {
			fmt.Fprintf(stdout, "  %d. Export the database connection string:\n", step)
			fmt.Fprintf(stdout, "     export %s=<dsn>\n", config.EnvPostgresDSN)
			fmt.Fprintln(stdout)
			step++
		}
	}
	fmt.Fprintf(stdout, "  %d. Create the built-in policies:\n", step)
	fmt.Fprintf(stdout, "     planguard seed -c %s\n", outputPath)
	fmt.Fprintln(stdout)
}
