package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE", "DB_PATH", "JWT_SECRET", "JWT_EXPIRES_DAYS", "APP_ENV", "REQUEST_TIMEOUT"} {
		t.Setenv(k, "")
	}
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != "5175" || c.Store != StoreSQLite || c.JWTExpiry != 14*24*time.Hour || c.RequestTimeout != 10*time.Second {
		t.Errorf("defaults = %+v", c)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "bad store", env: map[string]string{"STORE": "redis"}, wantErr: "STORE"},
		{name: "bad expiry", env: map[string]string{"JWT_EXPIRES_DAYS": "soon"}, wantErr: "JWT_EXPIRES_DAYS"},
		{name: "bad timeout", env: map[string]string{"REQUEST_TIMEOUT": "ten"}, wantErr: "REQUEST_TIMEOUT"},
		{name: "prod without secret", env: map[string]string{"APP_ENV": "production", "JWT_SECRET": ""}, wantErr: "JWT_SECRET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRES_DAYS", "2")
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Store != StoreMemory || !c.Production || c.JWTSecret != "s3cret" || c.JWTExpiry != 48*time.Hour {
		t.Errorf("config = %+v", c)
	}
}
