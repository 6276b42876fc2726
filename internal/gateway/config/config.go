package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	// ProjectStorePath is used when DatabaseURL is empty; "" keeps projects in memory.
	ProjectStorePath string
	// AllowedOrigins restricts CORS; empty allows any origin.
	AllowedOrigins []string

	LLM      LLMConfig
	Search   SearchConfig
	Extract  ExtractConfig
	Pipeline PipelineConfig
	Artifact ArtifactConfig
}

type LLMConfig struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	RPS        float64
	Burst      int
	MaxRetries int
	RetryDelay time.Duration
}

type SearchConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func (c SearchConfig) Enabled() bool { return strings.TrimSpace(c.APIKey) != "" }

type ExtractConfig struct {
	// Extractor is "tavily", "direct" or "none". Empty picks tavily when a
	// key is set, else direct.
	Extractor    string
	TavilyAPIKey string
	TavilyURL    string
}

type PipelineConfig struct {
	Timeout        time.Duration
	InitialCredits int
}

type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func (c ArtifactConfig) CanUseS3() bool {
	return c.Enabled &&
		strings.TrimSpace(c.Endpoint) != "" &&
		strings.TrimSpace(c.AccessKey) != "" &&
		strings.TrimSpace(c.SecretKey) != "" &&
		strings.TrimSpace(c.Bucket) != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	cfg := FromEnv()
	cfg.Port = *port
	return cfg, nil
}

// FromEnv resolves everything except the listen port. The CLI uses it
// directly since it has its own flags.
func FromEnv() *Config {
	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	cfg := &Config{
		Port:             ":8081",
		Env:              env,
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ProjectStorePath: firstNonEmpty(strings.TrimSpace(os.Getenv("PROJECT_STORE_PATH")), "tmp/projects.json"),
		AllowedOrigins:   envList("CORS_ALLOWED_ORIGINS"),
		LLM:              loadLLMConfig(),
		Search:           loadSearchConfig(),
		Extract:          loadExtractConfig(),
		Pipeline: PipelineConfig{
			Timeout:        envDuration("PIPELINE_TIMEOUT", 5*time.Minute),
			InitialCredits: envInt("INITIAL_CREDITS", 20),
		},
		Artifact: loadArtifactConfig(env),
	}
	if strings.EqualFold(env, "local") {
		applyLocalDefaults(cfg)
	}
	return cfg
}

func loadLLMConfig() LLMConfig {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	var key, baseURL string
	switch provider {
	case "gemini":
		key = os.Getenv("GEMINI_API_KEY")
	case "openai":
		key = os.Getenv("OPENAI_API_KEY")
		baseURL = os.Getenv("OPENAI_BASE_URL")
	case "anthropic":
		key = os.Getenv("ANTHROPIC_API_KEY")
	}
	return LLMConfig{
		Provider:   provider,
		Model:      firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_MODEL")), defaultModel(provider)),
		APIKey:     strings.TrimSpace(key),
		BaseURL:    strings.TrimSpace(baseURL),
		RPS:        envFloat("LLM_RPS", 2),
		Burst:      envInt("LLM_BURST", 2),
		MaxRetries: envInt("LLM_RETRIES", 2),
		RetryDelay: envDuration("LLM_RETRY_DELAY", 2*time.Second),
	}
}

func defaultModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-2.5-flash"
	case "openai":
		return "gpt-4o-mini"
	case "anthropic":
		return "claude-sonnet-4-5"
	}
	return ""
}

func loadSearchConfig() SearchConfig {
	return SearchConfig{
		APIKey:  firstNonEmpty(strings.TrimSpace(os.Getenv("SEARCH_API_KEY")), strings.TrimSpace(os.Getenv("PERPLEXITY_API_KEY"))),
		BaseURL: firstNonEmpty(strings.TrimSpace(os.Getenv("SEARCH_BASE_URL")), "https://api.perplexity.ai"),
		Model:   firstNonEmpty(strings.TrimSpace(os.Getenv("SEARCH_MODEL")), "sonar-reasoning"),
	}
}

func loadExtractConfig() ExtractConfig {
	return ExtractConfig{
		Extractor:    strings.ToLower(strings.TrimSpace(os.Getenv("EXTRACTOR"))),
		TavilyAPIKey: strings.TrimSpace(os.Getenv("TAVILY_API_KEY")),
		TavilyURL:    strings.TrimSpace(os.Getenv("TAVILY_EXTRACT_URL")),
	}
}

func loadArtifactConfig(env string) ArtifactConfig {
	endpoint := strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
	return ArtifactConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "idea2app-artifacts"),
		UseSSL:    envBool("ARTIFACT_S3_USE_SSL", true),
	}
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

// envDuration accepts Go durations ("90s") or a bare number of seconds.
func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
