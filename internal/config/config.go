// Package config loads runtime configuration from an optional YAML file,
// with environment variables taking precedence. A .env file in the working
// directory is honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines the runtime configuration for the surveillance server.
type Config struct {
	HTTPAddr    string `yaml:"http_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
	PprofAddr   string `yaml:"pprof_addr"`
	CORSOrigin  string `yaml:"cors_origin"`

	CameraDevice    int           `yaml:"camera_device"`
	CaptureInterval time.Duration `yaml:"capture_interval"`
	StageInterval   time.Duration `yaml:"stage_interval"`
	StreamIdle      time.Duration `yaml:"stream_idle"`
	JPEGQuality     int           `yaml:"jpeg_quality"`

	AlertCooldown  time.Duration `yaml:"alert_cooldown"`
	CrowdThreshold int           `yaml:"crowd_threshold"`
	WeaponLabels   []string      `yaml:"weapon_labels"`
	WeaponMinConf  float64       `yaml:"weapon_min_conf"`
	WeaponMinArea  int           `yaml:"weapon_min_area"`
	FaceTolerance  float64       `yaml:"face_tolerance"`
	FaceFrameSkip  int           `yaml:"face_frame_skip"`
	Location       string        `yaml:"location"`

	GalleryPath      string `yaml:"gallery_path"`
	DatabasePath     string `yaml:"database_path"`
	EvidencePath     string `yaml:"evidence_path"`
	InferenceBaseURL string `yaml:"inference_base_url"`

	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID string `yaml:"telegram_chat_id"`

	LogLevel string `yaml:"log_level"`
}

// Default returns a config aligned with the original deployment constants.
func Default() Config {
	return Config{
		HTTPAddr:         ":5000",
		MetricsAddr:      ":9090",
		PprofAddr:        ":6060",
		CORSOrigin:       "http://localhost:8080",
		CameraDevice:     0,
		CaptureInterval:  10 * time.Millisecond,
		StageInterval:    10 * time.Millisecond,
		StreamIdle:       30 * time.Millisecond,
		JPEGQuality:      80,
		AlertCooldown:    12 * time.Second,
		CrowdThreshold:   35,
		WeaponLabels:     []string{"gun", "knife", "handgun"},
		WeaponMinConf:    0.75,
		WeaponMinArea:    0,
		FaceTolerance:    0.45,
		FaceFrameSkip:    2,
		Location:         "Camera 1",
		GalleryPath:      "models/face_recognition/encodings.json",
		DatabasePath:     "surveillance.db",
		EvidencePath:     "evidence",
		InferenceBaseURL: "http://localhost:8500",
		LogLevel:         "info",
	}
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist), then applies environment overrides on top of defaults.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setString(&c.MetricsAddr, "METRICS_ADDR")
	setString(&c.CORSOrigin, "CORS_ORIGIN")
	setInt(&c.CameraDevice, "CAMERA_DEVICE")
	setDuration(&c.AlertCooldown, "ALERT_COOLDOWN")
	setInt(&c.CrowdThreshold, "CROWD_THRESHOLD")
	setFloat(&c.WeaponMinConf, "WEAPON_MIN_CONF")
	setFloat(&c.FaceTolerance, "FACE_TOLERANCE")
	setString(&c.Location, "LOCATION")
	setString(&c.GalleryPath, "GALLERY_PATH")
	setString(&c.DatabasePath, "DATABASE_PATH")
	setString(&c.EvidencePath, "EVIDENCE_PATH")
	setString(&c.InferenceBaseURL, "INFERENCE_BASE_URL")
	setString(&c.TelegramToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.TelegramChatID, "TELEGRAM_CHAT_ID")
	setString(&c.LogLevel, "LOG_LEVEL")
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.AlertCooldown <= 0 {
		return fmt.Errorf("alert_cooldown must be positive, got %v", c.AlertCooldown)
	}
	if c.CrowdThreshold <= 0 {
		return fmt.Errorf("crowd_threshold must be positive, got %d", c.CrowdThreshold)
	}
	if c.WeaponMinConf < 0 || c.WeaponMinConf > 1 {
		return fmt.Errorf("weapon_min_conf must be in [0,1], got %v", c.WeaponMinConf)
	}
	if c.FaceTolerance <= 0 {
		return fmt.Errorf("face_tolerance must be positive, got %v", c.FaceTolerance)
	}
	if c.FaceFrameSkip < 1 {
		return fmt.Errorf("face_frame_skip must be >= 1, got %d", c.FaceFrameSkip)
	}
	if len(c.WeaponLabels) == 0 {
		return fmt.Errorf("weapon_labels must not be empty")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
