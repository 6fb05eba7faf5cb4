package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docbench/internal/config"
)

func clearVendorEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"AZURE_DOCUMENT_INTELLIGENCE_ENDPOINT", "AZURE_DOCUMENT_INTELLIGENCE_KEY", "AZURE_MODEL_ID",
		"GOOGLE_CLOUD_PROJECT_ID", "GOOGLE_CLOUD_LOCATION", "GOOGLE_APPLICATION_CREDENTIALS",
		"GOOGLE_DOCUMENT_AI_PROCESSOR_ID", "DOCBENCH_AZURE_ENDPOINT", "DOCBENCH_AZURE_API_KEY",
		"DOCBENCH_GOOGLE_PROJECT_ID", "DOCBENCH_COMPARISON_CONCURRENCY",
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearVendorEnv(t)
	path := writeEnvFile(t, "")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prebuilt-layout", cfg.Azure.ModelID)
	assert.Equal(t, "2023-07-31", cfg.Azure.APIVersion)
	assert.Equal(t, "us", cfg.Google.Location)
	assert.Equal(t, 1, cfg.Comparison.Concurrency)
	assert.True(t, cfg.Comparison.ParallelVendors)
	assert.Equal(t, 5*time.Minute, cfg.Comparison.CallTimeout)
	assert.Equal(t, []string{"json", "csv"}, cfg.Report.Formats)
	assert.Equal(t, "noop", cfg.Notify.Provider)
	assert.False(t, cfg.Azure.Configured())
	assert.False(t, cfg.Google.Configured())
}

func TestLoad_VendorEnvNames(t *testing.T) {
	clearVendorEnv(t)
	t.Setenv("AZURE_DOCUMENT_INTELLIGENCE_ENDPOINT", "https://res.cognitiveservices.azure.com/")
	t.Setenv("AZURE_DOCUMENT_INTELLIGENCE_KEY", "az-key")
	t.Setenv("GOOGLE_CLOUD_PROJECT_ID", "proj-1")
	t.Setenv("GOOGLE_CLOUD_LOCATION", "eu")
	t.Setenv("GOOGLE_DOCUMENT_AI_PROCESSOR_ID", "proc-9")
	path := writeEnvFile(t, "")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://res.cognitiveservices.azure.com", cfg.Azure.Endpoint)
	assert.Equal(t, "az-key", cfg.Azure.APIKey)
	assert.True(t, cfg.Azure.Configured())
	assert.Equal(t, "proj-1", cfg.Google.ProjectID)
	assert.Equal(t, "eu", cfg.Google.Location)
	assert.Equal(t, "proc-9", cfg.Google.ProcessorID)
	assert.True(t, cfg.Google.Configured())
}

func TestLoad_PrefixedNameWins(t *testing.T) {
	clearVendorEnv(t)
	t.Setenv("DOCBENCH_AZURE_ENDPOINT", "https://prefixed.example.com")
	t.Setenv("AZURE_DOCUMENT_INTELLIGENCE_ENDPOINT", "https://plain.example.com")
	path := writeEnvFile(t, "")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://prefixed.example.com", cfg.Azure.Endpoint)
}

func TestLoad_EnvFile(t *testing.T) {
	clearVendorEnv(t)
	path := writeEnvFile(t, "GOOGLE_CLOUD_PROJECT_ID=from-file\nDOCBENCH_COMPARISON_CONCURRENCY=0\n")
	t.Cleanup(func() {
		_ = os.Unsetenv("GOOGLE_CLOUD_PROJECT_ID")
		_ = os.Unsetenv("DOCBENCH_COMPARISON_CONCURRENCY")
	})

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Google.ProjectID)
	assert.Equal(t, 1, cfg.Comparison.Concurrency)
}

func TestLoad_MissingExplicitEnvFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"json", "csv", "xlsx"}, config.SplitList(" json, csv ,,xlsx"))
	assert.Nil(t, config.SplitList(""))
}

func TestCheckEnv_MasksSecrets(t *testing.T) {
	env := map[string]string{
		"AZURE_DOCUMENT_INTELLIGENCE_ENDPOINT": "https://x",
		"AZURE_DOCUMENT_INTELLIGENCE_KEY":      "secret",
		"GOOGLE_CLOUD_PROJECT_ID":              "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	statuses := config.CheckEnv(lookup)
	require.Len(t, statuses, len(config.EnvChecklist))

	byName := map[string]config.EnvStatus{}
	for _, st := range statuses {
		byName[st.Name] = st
	}
	assert.True(t, byName["AZURE_DOCUMENT_INTELLIGENCE_ENDPOINT"].Set)
	assert.Equal(t, "https://x", byName["AZURE_DOCUMENT_INTELLIGENCE_ENDPOINT"].Value)
	assert.True(t, byName["AZURE_DOCUMENT_INTELLIGENCE_KEY"].Set)
	assert.Empty(t, byName["AZURE_DOCUMENT_INTELLIGENCE_KEY"].Value)
	assert.False(t, byName["GOOGLE_CLOUD_PROJECT_ID"].Set)

	missing := config.MissingRequired(statuses)
	assert.Contains(t, missing, "GOOGLE_CLOUD_PROJECT_ID")
	assert.Contains(t, missing, "GOOGLE_DOCUMENT_AI_PROCESSOR_ID")
	assert.NotContains(t, missing, "GOOGLE_CLOUD_LOCATION")
}

func TestExampleEnvFile(t *testing.T) {
	content := config.ExampleEnvFile()
	for _, ev := range config.EnvChecklist {
		assert.Contains(t, content, ev.Name+"=")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := &config.Config{}
	assert.Len(t, cfg.Validate(), 4)

	cfg.Azure.Endpoint = "https://x"
	cfg.Azure.APIKey = "k"
	cfg.Google.ProjectID = "p"
	cfg.Google.ProcessorID = "proc"
	assert.Empty(t, cfg.Validate())
}
