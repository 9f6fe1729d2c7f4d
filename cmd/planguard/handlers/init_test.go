package handlers

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/planguard/internal/config"
	"github.com/imamik/planguard/internal/config/wizard"
)

// saveAndRestoreInitFactories saves and restores init factory functions.
func saveAndRestoreInitFactories(t *testing.T) *bytes.Buffer {
	origFileExists := fileExists
	origConfirmOverwrite := confirmOverwrite
	origRunWizard := runConfigWizard
	origWriteConfig := writeConfig
	origStdout := stdout

	t.Cleanup(func() {
		fileExists = origFileExists
		confirmOverwrite = origConfirmOverwrite
		runConfigWizard = origRunWizard
		writeConfig = origWriteConfig
		stdout = origStdout
	})

	var buf bytes.Buffer
	stdout = &buf
	return &buf
}

func s3Result() *wizard.WizardResult {
	return &wizard.WizardResult{
		Backend:       string(config.BackendS3),
		S3Region:      "nbg1",
		S3Endpoint:    "https://nbg1.your-objectstorage.com",
		S3Bucket:      "policies",
		GlobalDefault: "DefaultAllow",
		StrictSchema:  true,
	}
}

func TestInit(t *testing.T) {
	t.Run("writes config", func(t *testing.T) {
		out := saveAndRestoreInitFactories(t)
		fileExists = func(string) bool { return false }
		runConfigWizard = func(context.Context) (*wizard.WizardResult, error) { return s3Result(), nil }

		var written *config.Config
		var writtenPath string
		writeConfig = func(cfg *config.Config, path string) error {
			written, writtenPath = cfg, path
			return nil
		}

		require.NoError(t, Init(t.Context(), "out.yaml", false))
		require.NotNil(t, written)
		assert.Equal(t, "out.yaml", writtenPath)
		assert.Equal(t, config.BackendS3, written.Store.Backend)
		assert.Equal(t, "policies", written.Store.S3.Bucket)
		assert.True(t, written.Schema.Strict)

		text := out.String()
		assert.Contains(t, text, "planguard - plan governance policies")
		assert.Contains(t, text, "Configuration saved!")
		assert.Contains(t, text, "Bucket:         policies")
		assert.Contains(t, text, "Global default: DefaultAllow")
		assert.Contains(t, text, config.EnvS3AccessKey)
		assert.Contains(t, text, "planguard seed -c out.yaml")
	})

	t.Run("declined overwrite", func(t *testing.T) {
		out := saveAndRestoreInitFactories(t)
		fileExists = func(string) bool { return true }
		confirmOverwrite = func(string) (bool, error) { return false, nil }
		runConfigWizard = func(context.Context) (*wizard.WizardResult, error) {
			t.Fatal("wizard must not run")
			return nil, nil
		}

		require.NoError(t, Init(t.Context(), "planguard.yaml", false))
		assert.Contains(t, out.String(), "Aborted.")
	})

	t.Run("force skips confirmation", func(t *testing.T) {
		saveAndRestoreInitFactories(t)
		fileExists = func(string) bool { return true }
		confirmOverwrite = func(string) (bool, error) {
			t.Fatal("confirmation must not be asked")
			return false, nil
		}
		runConfigWizard = func(context.Context) (*wizard.WizardResult, error) {
			return &wizard.WizardResult{Backend: string(config.BackendKubernetes), Namespace: "policies"}, nil
		}
		writeConfig = func(*config.Config, string) error { return nil }

		require.NoError(t, Init(t.Context(), "planguard.yaml", true))
	})

	t.Run("wizard canceled", func(t *testing.T) {
		saveAndRestoreInitFactories(t)
		fileExists = func(string) bool { return false }
		runConfigWizard = func(context.Context) (*wizard.WizardResult, error) {
			return nil, errors.New("user aborted")
		}

		err := Init(t.Context(), "planguard.yaml", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "wizard canceled")
	})

	t.Run("write failure", func(t *testing.T) {
		saveAndRestoreInitFactories(t)
		fileExists = func(string) bool { return false }
		runConfigWizard = func(context.Context) (*wizard.WizardResult, error) { return s3Result(), nil }
		writeConfig = func(*config.Config, string) error { return errors.New("read-only file system") }

		err := Init(t.Context(), "planguard.yaml", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to write config")
	})
}
