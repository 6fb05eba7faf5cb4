package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration. It is built once at startup
// and treated as read-only afterwards.
type Config struct {
	Azure      AzureConfig
	Google     GoogleConfig
	Comparison ComparisonConfig
	Report     ReportConfig
	S3         S3Config
	Notify     NotifyConfig
	Server     ServerConfig
	Log        LogConfig
}

// AzureConfig holds Azure Document Intelligence settings.
type AzureConfig struct {
	Endpoint           string `mapstructure:"endpoint"`
	APIKey             string `mapstructure:"api_key"`
	ModelID            string `mapstructure:"model_id"`
	APIVersion         string `mapstructure:"api_version"`
	TimeoutSecs        int    `mapstructure:"timeout_secs"`
	PollIntervalMillis int    `mapstructure:"poll_interval_ms"`
}

// Configured reports whether the endpoint and key are both set.
func (a *AzureConfig) Configured() bool {
	return a.Endpoint != "" && a.APIKey != ""
}

// GoogleConfig holds Google Cloud Document AI settings.
type GoogleConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	Location        string `mapstructure:"location"`
	ProcessorID     string `mapstructure:"processor_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Endpoint        string `mapstructure:"endpoint"`
	TimeoutSecs     int    `mapstructure:"timeout_secs"`
}

// Configured reports whether a project is set. Credentials may come from
// application default credentials and the processor may be given per call.
func (g *GoogleConfig) Configured() bool {
	return g.ProjectID != ""
}

// ComparisonConfig holds comparison engine settings.
type ComparisonConfig struct {
	Concurrency     int           `mapstructure:"concurrency"`
	ParallelVendors bool          `mapstructure:"parallel_vendors"`
	CallTimeout     time.Duration `mapstructure:"call_timeout"`
}

// ReportConfig holds report output settings.
type ReportConfig struct {
	OutputDir string   `mapstructure:"output_dir"`
	Formats   []string `mapstructure:"formats"`
	CSVBOM    bool     `mapstructure:"csv_bom"`
}

// S3Config holds AWS S3 settings used for report upload and S3 document sources.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// NotifyConfig holds run notification settings.
type NotifyConfig struct {
	Provider    string   `mapstructure:"provider"`
	Region      string   `mapstructure:"region"`
	FromAddress string   `mapstructure:"from_address"`
	FromName    string   `mapstructure:"from_name"`
	Recipients  []string `mapstructure:"recipients"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          string        `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	Environment   string        `mapstructure:"environment"`
	MaxUploadSize int64         `mapstructure:"max_upload_mb"`
	CORSOrigins   []string      `mapstructure:"cors_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// envBindings maps config keys to the environment variables they are read
// from, in precedence order. The unprefixed names are the ones the vendor
// tooling documents.
var envBindings = map[string][]string{
	"azure.endpoint":              {"DOCBENCH_AZURE_ENDPOINT", "AZURE_DOCUMENT_INTELLIGENCE_ENDPOINT"},
	"azure.api_key":               {"DOCBENCH_AZURE_API_KEY", "AZURE_DOCUMENT_INTELLIGENCE_KEY"},
	"azure.model_id":              {"DOCBENCH_AZURE_MODEL_ID", "AZURE_MODEL_ID"},
	"azure.api_version":           {"DOCBENCH_AZURE_API_VERSION"},
	"azure.timeout_secs":          {"DOCBENCH_AZURE_TIMEOUT_SECS"},
	"azure.poll_interval_ms":      {"DOCBENCH_AZURE_POLL_INTERVAL_MS"},
	"google.project_id":           {"DOCBENCH_GOOGLE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT_ID"},
	"google.location":             {"DOCBENCH_GOOGLE_LOCATION", "GOOGLE_CLOUD_LOCATION"},
	"google.processor_id":         {"DOCBENCH_GOOGLE_PROCESSOR_ID", "GOOGLE_DOCUMENT_AI_PROCESSOR_ID"},
	"google.credentials_file":     {"DOCBENCH_GOOGLE_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS"},
	"google.endpoint":             {"DOCBENCH_GOOGLE_ENDPOINT"},
	"google.timeout_secs":         {"DOCBENCH_GOOGLE_TIMEOUT_SECS"},
	"comparison.concurrency":      {"DOCBENCH_COMPARISON_CONCURRENCY"},
	"comparison.parallel_vendors": {"DOCBENCH_COMPARISON_PARALLEL_VENDORS"},
	"comparison.call_timeout":     {"DOCBENCH_COMPARISON_CALL_TIMEOUT"},
	"report.output_dir":           {"DOCBENCH_REPORT_OUTPUT_DIR"},
	"report.formats":              {"DOCBENCH_REPORT_FORMATS"},
	"report.csv_bom":              {"DOCBENCH_REPORT_CSV_BOM"},
	"s3.region":                   {"DOCBENCH_S3_REGION"},
	"s3.bucket":                   {"DOCBENCH_S3_BUCKET"},
	"s3.prefix":                   {"DOCBENCH_S3_PREFIX"},
	"s3.endpoint":                 {"DOCBENCH_S3_ENDPOINT"},
	"s3.access_key":               {"DOCBENCH_S3_ACCESS_KEY"},
	"s3.secret_key":               {"DOCBENCH_S3_SECRET_KEY"},
	"notify.provider":             {"DOCBENCH_NOTIFY_PROVIDER"},
	"notify.region":               {"DOCBENCH_NOTIFY_REGION"},
	"notify.from_address":         {"DOCBENCH_NOTIFY_FROM_ADDRESS"},
	"notify.from_name":            {"DOCBENCH_NOTIFY_FROM_NAME"},
	"notify.recipients":           {"DOCBENCH_NOTIFY_RECIPIENTS"},
	"server.port":                 {"DOCBENCH_SERVER_PORT"},
	"server.read_timeout":         {"DOCBENCH_SERVER_READ_TIMEOUT"},
	"server.write_timeout":        {"DOCBENCH_SERVER_WRITE_TIMEOUT"},
	"server.environment":          {"DOCBENCH_SERVER_ENVIRONMENT"},
	"server.max_upload_mb":        {"DOCBENCH_SERVER_MAX_UPLOAD_MB"},
	"server.cors_origins":         {"DOCBENCH_SERVER_CORS_ORIGINS"},
	"log.level":                   {"DOCBENCH_LOG_LEVEL"},
	"log.format":                  {"DOCBENCH_LOG_FORMAT"},
}

// Load reads configuration from the environment. Variables found in the given
// env files (or ./.env when none are given) are loaded first; variables that
// are already set in the process environment win.
func Load(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("DOCBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Azure defaults
	v.SetDefault("azure.model_id", "prebuilt-layout")
	v.SetDefault("azure.api_version", "2023-07-31")
	v.SetDefault("azure.timeout_secs", 120)
	v.SetDefault("azure.poll_interval_ms", 1000)

	// Google defaults
	v.SetDefault("google.location", "us")
	v.SetDefault("google.timeout_secs", 120)

	// Comparison defaults
	v.SetDefault("comparison.concurrency", 1)
	v.SetDefault("comparison.parallel_vendors", true)
	v.SetDefault("comparison.call_timeout", "5m")

	// Report defaults
	v.SetDefault("report.output_dir", ".")
	v.SetDefault("report.formats", "json,csv")
	v.SetDefault("report.csv_bom", false)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.prefix", "docbench")

	// Notify defaults
	v.SetDefault("notify.provider", "noop")
	v.SetDefault("notify.region", "us-east-1")
	v.SetDefault("notify.from_name", "docbench")

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "10m")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_mb", 50)
	v.SetDefault("server.cors_origins", "http://localhost:3000")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	cfg := &Config{}

	cfg.Azure = AzureConfig{
		Endpoint:           strings.TrimRight(v.GetString("azure.endpoint"), "/"),
		APIKey:             v.GetString("azure.api_key"),
		ModelID:            v.GetString("azure.model_id"),
		APIVersion:         v.GetString("azure.api_version"),
		TimeoutSecs:        v.GetInt("azure.timeout_secs"),
		PollIntervalMillis: v.GetInt("azure.poll_interval_ms"),
	}
	cfg.Google = GoogleConfig{
		ProjectID:       v.GetString("google.project_id"),
		Location:        v.GetString("google.location"),
		ProcessorID:     v.GetString("google.processor_id"),
		CredentialsFile: v.GetString("google.credentials_file"),
		Endpoint:        v.GetString("google.endpoint"),
		TimeoutSecs:     v.GetInt("google.timeout_secs"),
	}
	cfg.Comparison = ComparisonConfig{
		Concurrency:     v.GetInt("comparison.concurrency"),
		ParallelVendors: v.GetBool("comparison.parallel_vendors"),
		CallTimeout:     v.GetDuration("comparison.call_timeout"),
	}
	cfg.Report = ReportConfig{
		OutputDir: v.GetString("report.output_dir"),
		Formats:   SplitList(v.GetString("report.formats")),
		CSVBOM:    v.GetBool("report.csv_bom"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Prefix:    v.GetString("s3.prefix"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Notify = NotifyConfig{
		Provider:    v.GetString("notify.provider"),
		Region:      v.GetString("notify.region"),
		FromAddress: v.GetString("notify.from_address"),
		FromName:    v.GetString("notify.from_name"),
		Recipients:  SplitList(v.GetString("notify.recipients")),
	}
	cfg.Server = ServerConfig{
		Port:          v.GetString("server.port"),
		ReadTimeout:   v.GetDuration("server.read_timeout"),
		WriteTimeout:  v.GetDuration("server.write_timeout"),
		Environment:   v.GetString("server.environment"),
		MaxUploadSize: v.GetInt64("server.max_upload_mb"),
		CORSOrigins:   SplitList(v.GetString("server.cors_origins")),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	if cfg.Comparison.Concurrency < 1 {
		cfg.Comparison.Concurrency = 1
	}

	return cfg, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("loading env files: %w", err)
	}
	return nil
}

// SplitList parses a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate returns one message per vendor setting that is missing. An empty
// result means both vendors can be called.
func (c *Config) Validate() []string {
	var problems []string
	if c.Azure.Endpoint == "" {
		problems = append(problems, "azure: endpoint is not set (AZURE_DOCUMENT_INTELLIGENCE_ENDPOINT)")
	}
	if c.Azure.APIKey == "" {
		problems = append(problems, "azure: api key is not set (AZURE_DOCUMENT_INTELLIGENCE_KEY)")
	}
	if c.Google.ProjectID == "" {
		problems = append(problems, "google: project id is not set (GOOGLE_CLOUD_PROJECT_ID)")
	}
	if c.Google.ProcessorID == "" {
		problems = append(problems, "google: processor id is not set (GOOGLE_DOCUMENT_AI_PROCESSOR_ID)")
	}
	return problems
}
