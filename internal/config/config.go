package config

import (
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime settings for the harness, read from the environment
// (AGENTOPS_ prefix) with an optional .env file.
type Config struct {
	DataDir      string
	JudgeAPIKey  string
	JudgeModel   string
	JudgeBaseURL string
	PlannerModel string
	DisableJudge bool
	LogLevel     string
}

// TracesPath is the trace log location under the data dir.
func (c Config) TracesPath() string {
	return filepath.Join(c.DataDir, "traces.jsonl")
}

// MemoryPath is the memory bank location under the data dir.
func (c Config) MemoryPath() string {
	return filepath.Join(c.DataDir, "memory", "bank.jsonl")
}

// Load reads configuration from environment variables and an optional .env
// file. Missing credentials are not an error here; clients that need them
// fail at construction time instead.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("AGENTOPS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("data_dir", "data")
	v.SetDefault("judge.model", "gpt-4o-mini")
	v.SetDefault("planner.model", "gpt-4o")
	v.SetDefault("log.level", "info")

	cfg := Config{
		DataDir:      v.GetString("data_dir"),
		JudgeAPIKey:  firstNonEmpty(v.GetString("judge.api_key"), v.GetString("api_key")),
		JudgeModel:   v.GetString("judge.model"),
		JudgeBaseURL: v.GetString("judge.base_url"),
		PlannerModel: v.GetString("planner.model"),
		DisableJudge: v.GetBool("disable_judge"),
		LogLevel:     v.GetString("log.level"),
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
