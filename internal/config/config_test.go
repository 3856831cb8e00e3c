package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	require.Equal(t, ":5000", cfg.HTTPAddr)
	require.Equal(t, 12*time.Second, cfg.AlertCooldown)
	require.Equal(t, 35, cfg.CrowdThreshold)
	require.Equal(t, []string{"gun", "knife", "handgun"}, cfg.WeaponLabels)
	require.Equal(t, 0.75, cfg.WeaponMinConf)
	require.Equal(t, 0.45, cfg.FaceTolerance)
	require.Equal(t, 2, cfg.FaceFrameSkip)
	require.Equal(t, "Camera 1", cfg.Location)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default().HTTPAddr, cfg.HTTPAddr)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "http_addr: \":8081\"\ncrowd_threshold: 20\nalert_cooldown: 30s\nweapon_labels: [rifle]\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8081", cfg.HTTPAddr)
	require.Equal(t, 20, cfg.CrowdThreshold)
	require.Equal(t, 30*time.Second, cfg.AlertCooldown)
	require.Equal(t, []string{"rifle"}, cfg.WeaponLabels)
	require.Equal(t, 0.75, cfg.WeaponMinConf, "untouched fields keep their defaults")
}

func TestEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crowd_threshold: 20\n"), 0o644))

	t.Setenv("CROWD_THRESHOLD", "50")
	t.Setenv("LOCATION", "Gate B")
	t.Setenv("ALERT_COOLDOWN", "45s")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 50, cfg.CrowdThreshold)
	require.Equal(t, "Gate B", cfg.Location)
	require.Equal(t, 45*time.Second, cfg.AlertCooldown)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\tnot yaml"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero cooldown", func(c *Config) { c.AlertCooldown = 0 }},
		{"negative threshold", func(c *Config) { c.CrowdThreshold = -1 }},
		{"confidence above one", func(c *Config) { c.WeaponMinConf = 1.5 }},
		{"zero tolerance", func(c *Config) { c.FaceTolerance = 0 }},
		{"zero frame skip", func(c *Config) { c.FaceFrameSkip = 0 }},
		{"empty vocabulary", func(c *Config) { c.WeaponLabels = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
