package config

import (
	"fmt"
	"os"
	"strings"
)

// EnvVar describes one environment variable of the vendor setup checklist.
type EnvVar struct {
	Name        string
	Description string
	Secret      bool
	Required    bool
}

// EnvChecklist lists the variables needed to talk to both vendors.
var EnvChecklist = []EnvVar{
	{Name: "AZURE_DOCUMENT_INTELLIGENCE_ENDPOINT", Description: "Azure Document Intelligence endpoint URL (e.g., https://your-resource.cognitiveservices.azure.com/)", Required: true},
	{Name: "AZURE_DOCUMENT_INTELLIGENCE_KEY", Description: "Azure Document Intelligence API key", Secret: true, Required: true},
	{Name: "GOOGLE_CLOUD_PROJECT_ID", Description: "Google Cloud project ID", Required: true},
	{Name: "GOOGLE_CLOUD_LOCATION", Description: "Google Cloud location (default: 'us')"},
	{Name: "GOOGLE_APPLICATION_CREDENTIALS", Description: "Path to the Google Cloud service account JSON file", Required: true},
	{Name: "GOOGLE_DOCUMENT_AI_PROCESSOR_ID", Description: "Google Document AI processor ID", Required: true},
	{Name: "AZURE_MODEL_ID", Description: "Azure model ID (default: prebuilt-layout)"},
}

// EnvStatus is the state of one checklist variable in the current environment.
type EnvStatus struct {
	EnvVar
	Set   bool
	Value string
}

// CheckEnv reports which checklist variables are set. Values of secret
// variables are never returned.
func CheckEnv(lookup func(string) (string, bool)) []EnvStatus {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	out := make([]EnvStatus, 0, len(EnvChecklist))
	for _, ev := range EnvChecklist {
		val, ok := lookup(ev.Name)
		ok = ok && val != ""
		st := EnvStatus{EnvVar: ev, Set: ok}
		if ok && !ev.Secret {
			st.Value = val
		}
		out = append(out, st)
	}
	return out
}

// MissingRequired returns the names of unset required variables.
func MissingRequired(statuses []EnvStatus) []string {
	var missing []string
	for _, st := range statuses {
		if st.Required && !st.Set {
			missing = append(missing, st.Name)
		}
	}
	return missing
}

// ExampleEnvFile returns the content of a sample .env file.
func ExampleEnvFile() string {
	var b strings.Builder
	b.WriteString("# Azure Document Intelligence Configuration\n")
	b.WriteString("AZURE_DOCUMENT_INTELLIGENCE_ENDPOINT=https://your-resource.cognitiveservices.azure.com/\n")
	b.WriteString("AZURE_DOCUMENT_INTELLIGENCE_KEY=your_azure_api_key_here\n\n")
	b.WriteString("# Google Cloud Document AI Configuration\n")
	b.WriteString("GOOGLE_CLOUD_PROJECT_ID=your-google-cloud-project-id\n")
	b.WriteString("GOOGLE_CLOUD_LOCATION=us\n")
	b.WriteString("GOOGLE_APPLICATION_CREDENTIALS=/path/to/your/service-account-key.json\n")
	b.WriteString("GOOGLE_DOCUMENT_AI_PROCESSOR_ID=your_processor_id_here\n\n")
	b.WriteString("# Optional\n")
	fmt.Fprintf(&b, "AZURE_MODEL_ID=%s\n", "prebuilt-layout")
	b.WriteString("DOCBENCH_COMPARISON_CONCURRENCY=1\n")
	b.WriteString("DOCBENCH_REPORT_FORMATS=json,csv\n")
	return b.String()
}
