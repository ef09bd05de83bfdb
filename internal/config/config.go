package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the gateway service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	StatePath         string
	JWTSecret         string
	RecruiterBaseURL  string
	JudgeBaseURL      string
	JudgeAPIKey       string
	JudgeAPIHost      string
	JudgePollInterval time.Duration
	JudgePollAttempts int
	VoiceBaseURL      string
	VoicePublicKey    string
	NATSURL           string
	EventSubjectBase  string
	TestDuration      time.Duration
	MaxCallSeconds    int
	SilenceTimeoutSec int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("HIREHUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "HireHub Gateway")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("state.path", "hirehub.db")
	v.SetDefault("judge.poll_interval", "1s")
	v.SetDefault("judge.poll_attempts", 10)
	v.SetDefault("test.duration", "30m")
	v.SetDefault("voice.max_call_seconds", 270)
	v.SetDefault("voice.silence_timeout_seconds", 15)
	v.SetDefault("events.subject_base", "hirehub")

	pollInterval, err := time.ParseDuration(v.GetString("judge.poll_interval"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid judge poll interval: %w", err)
	}

	testDuration, err := time.ParseDuration(v.GetString("test.duration"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid test duration: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		StatePath:         v.GetString("state.path"),
		JWTSecret:         v.GetString("jwt.secret"),
		RecruiterBaseURL:  strings.TrimRight(v.GetString("recruiter.base_url"), "/"),
		JudgeBaseURL:      strings.TrimRight(v.GetString("judge.base_url"), "/"),
		JudgeAPIKey:       v.GetString("judge.api_key"),
		JudgeAPIHost:      v.GetString("judge.api_host"),
		JudgePollInterval: pollInterval,
		JudgePollAttempts: v.GetInt("judge.poll_attempts"),
		VoiceBaseURL:      strings.TrimRight(v.GetString("voice.base_url"), "/"),
		VoicePublicKey:    v.GetString("voice.public_key"),
		NATSURL:           v.GetString("nats.url"),
		EventSubjectBase:  v.GetString("events.subject_base"),
		TestDuration:      testDuration,
		MaxCallSeconds:    v.GetInt("voice.max_call_seconds"),
		SilenceTimeoutSec: v.GetInt("voice.silence_timeout_seconds"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.RecruiterBaseURL == "" {
		return Config{}, fmt.Errorf("recruiter base url must be provided")
	}

	if cfg.JudgePollAttempts <= 0 {
		cfg.JudgePollAttempts = 10
	}

	if cfg.TestDuration <= 0 {
		cfg.TestDuration = 30 * time.Minute
	}

	return cfg, nil
}
