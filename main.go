package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/cso-health-insurance/server/internal/agent/model"
	"github.com/cso-health-insurance/server/internal/core"
	logx "github.com/cso-health-insurance/server/pkg/logger"
	pkgmilvus "github.com/cso-health-insurance/server/pkg/milvus"
	pkgpostgres "github.com/cso-health-insurance/server/pkg/postgres"
	pkgredis "github.com/cso-health-insurance/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the service,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`

	// Infrastructure
	Redis    pkgredis.Config
	Postgres pkgpostgres.Config
	Milvus   pkgmilvus.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Rephrase     model.RephraseModelConfig
	Embedding    model.EmbeddingConfig
	Store        model.StoreConfig
	Conversation model.ConversationConfig
}

var (
	envFile string
	appCfg  AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "cso",
	Short: "Grounded customer-service assistant for health insurance",
	Long: `cso answers policy status, plan, cashless, limit, benefit, claim and
partner-hospital questions from the customer, hospital and policy-document stores.

Available subcommands:
  chat    - Interactive conversation in the terminal
  ask     - One-shot question
  serve   - HTTP API
  lookup  - Run a single lookup adapter (operator console)
  migrate - Create the Postgres tables`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
}

func loadConfig() error {
	if err := godotenv.Load(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load %s file: %v\n", envFile, err)
	}
	if err := envconfig.Process("", &appCfg); err != nil {
		return fmt.Errorf("failed to process environment config: %w", err)
	}
	logx.Init(logx.LoggerOpts{
		Environment: core.ParseEnvironment(appCfg.Environment),
		Level:       appCfg.LogLevel,
	})
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
