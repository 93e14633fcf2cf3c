package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-screener/internal/ai/ollama"
	"github.com/spigell/resume-screener/internal/filtering"
	"github.com/spigell/resume-screener/internal/report"
	"github.com/spigell/resume-screener/internal/server"
)

const (
	app = "resume-screener"
)

type Config struct {
	LogFile        string        `mapstructure:"log-file"`
	Criteria       string        `mapstructure:"criteria"`
	JobDescription string        `mapstructure:"job-description"`
	Dir            string        `mapstructure:"dir"`
	Output         string        `mapstructure:"output"`
	ExcludeFile    string        `mapstructure:"exclude-file"`
	MaxFileSize    int64         `mapstructure:"max-file-size"`
	Concurrency    int           `mapstructure:"concurrency"`
	AI             *AIConfig     `mapstructure:"ai"`
	Server         *ServerConfig `mapstructure:"server"`
}

type AIConfig struct {
	Provider     string        `mapstructure:"provider"`
	Model        string        `mapstructure:"model"`
	Temperature  float64       `mapstructure:"temperature"`
	MaxTokens    int           `mapstructure:"max-tokens"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Ollama       *OllamaConfig `mapstructure:"ollama"`
	OpenAI       *OpenAIConfig `mapstructure:"openai"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
}

type OllamaConfig struct {
	BaseURL string `mapstructure:"base-url"`
	Model   string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api-key" json:"-"`
	APIKeyFile string `mapstructure:"api-key-file"`
	BaseURL    string `mapstructure:"base-url"`
	Model      string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key" json:"-"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	AllowOrigins    []string      `mapstructure:"allow-origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
	MaxUploadBytes  int64         `mapstructure:"max-upload-bytes"`
}

var envBindings = map[string]string{
	"ai.model":               "SCREENER_MODEL",
	"ai.ollama.base-url":     "OLLAMA_BASE_URL",
	"ai.ollama.model":        "OLLAMA_MODEL",
	"ai.openai.api-key":      "OPENAI_API_KEY",
	"ai.openai.api-key-file": "OPENAI_API_KEY_FILE",
	"ai.gemini.api-key":      "GEMINI_API_KEY",
	"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	"server.port":            "PORT",
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-screener scores resumes against a job description with a language model",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("provider", "", "model backend: ollama, openai or gemini")
	rootCmd.PersistentFlags().String("model", "", "model name overriding the backend default")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("ai.provider", rootCmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("ai.model", rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
}

func setDefaults() {
	viper.SetDefault("dir", "resumes")
	viper.SetDefault("criteria", "config/criteria.json")
	viper.SetDefault("job-description", "config/job_description.json")
	viper.SetDefault("output", report.DefaultPath)
	viper.SetDefault("max-file-size", filtering.DefaultMaxFileSize)

	viper.SetDefault("ai.provider", "ollama")
	viper.SetDefault("ai.temperature", 0.3)
	viper.SetDefault("ai.max-tokens", 1000)
	viper.SetDefault("ai.max-log-length", 200)
	viper.SetDefault("ai.ollama.base-url", ollama.DefaultBaseURL)
	viper.SetDefault("ai.ollama.model", ollama.DefaultModel)

	viper.SetDefault("server.port", server.DefaultPort)
	viper.SetDefault("server.allow-origins", server.DefaultAllowOrigins)
	viper.SetDefault("server.shutdown-timeout", server.DefaultShutdownTimeout)
	viper.SetDefault("server.max-upload-bytes", server.DefaultMaxUploadBytes)
}

func initConfig() {
	// .env is a local development convenience; a missing file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	// The config file is optional, but a broken one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}

	return config, nil
}
