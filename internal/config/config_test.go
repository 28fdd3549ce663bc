package config

import (
	"os"
	"testing"
)

func loadWithEnv(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	for k, v := range env {
		os.Setenv(k, v)
	}
	t.Cleanup(func() {
		for k := range env {
			os.Unsetenv(k)
		}
	})
	return Load()
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadWithEnv(t, map[string]string{
		"DATABASE_URL": "postgres://localhost/clinic",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.DoctorShare != 0.9 || cfg.ClinicShare != 0.1 {
		t.Errorf("expected default shares 0.9/0.1, got %v/%v", cfg.DoctorShare, cfg.ClinicShare)
	}
	if cfg.TokenTTLMins != 60 {
		t.Errorf("expected default token TTL 60, got %d", cfg.TokenTTLMins)
	}
}

func TestLoad_DatabaseURLRequired(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	if _, err := Load(); err == nil {
		t.Error("expected error for missing DATABASE_URL")
	}
}

func TestValidate_JWTSecretRequiredInProduction(t *testing.T) {
	cfg := &Config{Env: "production", DoctorShare: 0.9, ClinicShare: 0.1, TokenTTLMins: 60}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing JWT_SECRET in production")
	}
	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_ShareRange(t *testing.T) {
	cfg := &Config{Env: "development", DoctorShare: 1.5, ClinicShare: 0.1, TokenTTLMins: 60}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for DOCTOR_SHARE out of range")
	}
	cfg.DoctorShare = 0.9
	cfg.ClinicShare = -0.2
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for CLINIC_SHARE out of range")
	}
}
