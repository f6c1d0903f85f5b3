package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Thresholds are the policy constants behind every classification the engine
// makes. They live in one place so they can be tuned or tested independently
// of the algorithms that consume them.
type Thresholds struct {
	MasteryIntervalDays      float64 `yaml:"mastery_interval_days"`
	StruggleHalfLifeDays     float64 `yaml:"struggle_half_life_days"`
	StruggleWindowDays       int     `yaml:"struggle_window_days"`
	ErrorRateWeight          float64 `yaml:"error_rate_weight"`
	LapseWeight              float64 `yaml:"lapse_weight"`
	ResponseExcessWeight     float64 `yaml:"response_excess_weight"`
	LapseSaturation          int     `yaml:"lapse_saturation"` // lapses at which the lapse term maxes out
	TopStrugglersPerDeck     int     `yaml:"top_strugglers_per_deck"`
	TrendSlopePct            float64 `yaml:"trend_slope_pct"`
	InterferenceWindow       int     `yaml:"interference_window"` // max intervening reviews between a pair
	InterferenceRatio        float64 `yaml:"interference_ratio"`
	MinCooccurrence          int     `yaml:"min_cooccurrence"`
	GapStruggleFloor         float64 `yaml:"gap_struggle_floor"`
	PrereqAccuracyFloor      float64 `yaml:"prereq_accuracy_floor"`
	FatigueDropTolerance     float64 `yaml:"fatigue_drop_tolerance"`
	MinFatigueSessions       int     `yaml:"min_fatigue_sessions"`
	MinSessionReviews        int     `yaml:"min_session_reviews"`
	MinBucketSamples         int     `yaml:"min_bucket_samples"`
	MinPopulationUsers       int     `yaml:"min_population_users"`
	DefaultVelocityWeeks     int     `yaml:"default_velocity_weeks"`
	MaxVelocityWeeks         int     `yaml:"max_velocity_weeks"`
	DefaultSummaryDays       int     `yaml:"default_summary_days"`
	MaxSummaryDays           int     `yaml:"max_summary_days"`
	DefaultStruggleThreshold float64 `yaml:"default_struggle_threshold"`
	DefaultStruggleLimit     int     `yaml:"default_struggle_limit"`
	MaxStruggleLimit         int     `yaml:"max_struggle_limit"`
	DefaultHardestLimit      int     `yaml:"default_hardest_limit"`
	MaxHardestLimit          int     `yaml:"max_hardest_limit"`
	MaxQueryRows             int     `yaml:"max_query_rows"`
	CallTimeoutSec           int     `yaml:"call_timeout_sec"`
	CacheTTLSec              int     `yaml:"cache_ttl_sec"`
}

// CallTimeout is the per-operation deadline.
func (t Thresholds) CallTimeout() time.Duration {
	return time.Duration(t.CallTimeoutSec) * time.Second
}

// CacheTTL bounds the staleness of cached analytics results.
func (t Thresholds) CacheTTL() time.Duration {
	return time.Duration(t.CacheTTLSec) * time.Second
}

// DigestRecipient pairs a learner with the Telegram chat receiving their
// weekly digest.
type DigestRecipient struct {
	UserID int64
	ChatID int64
}

// Config is the full service configuration. Connection details come from the
// environment; policy constants come from an optional YAML file.
type Config struct {
	DatabaseDriver   string // "postgres" or "sqlite3"
	DatabaseURL      string
	ListenAddr       string
	LogMode          string
	RedisAddr        string // optional; empty disables the Redis cache backend
	TelegramToken    string // optional; empty disables the digest job
	DigestRecipients []DigestRecipient
	Thresholds       Thresholds
}

// DefaultThresholds returns the tuned defaults. Every value can be overridden
// from the YAML config file.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MasteryIntervalDays:      21,
		StruggleHalfLifeDays:     14,
		StruggleWindowDays:       90,
		ErrorRateWeight:          0.5,
		LapseWeight:              0.3,
		ResponseExcessWeight:     0.2,
		LapseSaturation:          3,
		TopStrugglersPerDeck:     5,
		TrendSlopePct:            0.10,
		InterferenceWindow:       5,
		InterferenceRatio:        1.5,
		MinCooccurrence:          3,
		GapStruggleFloor:         0.5,
		PrereqAccuracyFloor:      0.7,
		FatigueDropTolerance:     0.15,
		MinFatigueSessions:       5,
		MinSessionReviews:        5,
		MinBucketSamples:         10,
		MinPopulationUsers:       5,
		DefaultVelocityWeeks:     12,
		MaxVelocityWeeks:         52,
		DefaultSummaryDays:       30,
		MaxSummaryDays:           365,
		DefaultStruggleThreshold: 0.5,
		DefaultStruggleLimit:     20,
		MaxStruggleLimit:         100,
		DefaultHardestLimit:      10,
		MaxHardestLimit:          50,
		MaxQueryRows:             50000,
		CallTimeoutSec:           10,
		CacheTTLSec:              300,
	}
}

// Load reads the environment (optionally seeded from .env) and the YAML
// policy file named by ANALYTICS_CONFIG. A missing .env or YAML file is fine;
// defaults cover everything except the database URL.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseDriver: envOr("DATABASE_DRIVER", "postgres"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ListenAddr:     envOr("LISTEN_ADDR", ":8080"),
		LogMode:        envOr("LOG_MODE", "dev"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		Thresholds:     DefaultThresholds(),
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	if raw := os.Getenv("DIGEST_RECIPIENTS"); raw != "" {
		recipients, err := parseRecipients(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid DIGEST_RECIPIENTS: %w", err)
		}
		cfg.DigestRecipients = recipients
	}

	if path := os.Getenv("ANALYTICS_CONFIG"); path != "" {
		if err := loadThresholds(path, &cfg.Thresholds); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func loadThresholds(path string, t *Thresholds) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseRecipients reads "userID:chatID" pairs separated by commas.
func parseRecipients(raw string) ([]DigestRecipient, error) {
	var recipients []DigestRecipient
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		userRaw, chatRaw, found := strings.Cut(part, ":")
		if !found {
			return nil, fmt.Errorf("expected userID:chatID, got %q", part)
		}
		userID, err := strconv.ParseInt(userRaw, 10, 64)
		if err != nil {
			return nil, err
		}
		chatID, err := strconv.ParseInt(chatRaw, 10, 64)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, DigestRecipient{UserID: userID, ChatID: chatID})
	}
	return recipients, nil
}
