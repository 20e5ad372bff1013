package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/erazemk/labshaker/internal/blob"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBDriver != DriverSQLite || cfg.DBPath != "labshaker.sqlite3" || cfg.Addr != ":8080" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.BlobDriver != blob.DriverFS || cfg.BlobDir != "blobs" {
		t.Errorf("unexpected blob defaults: %+v", cfg)
	}
	if cfg.LoginPerMinute != 10 || cfg.LoginBurst != 5 {
		t.Errorf("unexpected rate limit: %v/%d", cfg.LoginPerMinute, cfg.LoginBurst)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("LABSHAKER_ADDR", ":9000")
	t.Setenv("LABSHAKER_DB_PATH", "env.sqlite3")

	cfg, err := Load([]string{"-a", ":7000", "-log", "x.log"}, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":7000" {
		t.Errorf("Addr = %s, want flag value", cfg.Addr)
	}
	if cfg.DBPath != "env.sqlite3" {
		t.Errorf("DBPath = %s, want env value", cfg.DBPath)
	}
	if cfg.LogPath != "x.log" {
		t.Errorf("LogPath = %s", cfg.LogPath)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "LABSHAKER_BLOB_DRIVER=s3\nLABSHAKER_S3_BUCKET=lab-photos\nLABSHAKER_S3_PATH_STYLE=true\nLABSHAKER_CORS_ORIGINS=http://a.test, http://b.test\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		for _, k := range []string{"BLOB_DRIVER", "S3_BUCKET", "S3_PATH_STYLE", "CORS_ORIGINS"} {
			os.Unsetenv(EnvPrefix + k)
		}
	})

	cfg, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BlobDriver != blob.DriverS3 || cfg.S3.Bucket != "lab-photos" || !cfg.S3.PathStyle {
		t.Errorf("unexpected s3 config: %+v", cfg.S3)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	if _, err := Load(nil, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored: %v", err)
	}
}

func TestLoadPostgresFlag(t *testing.T) {
	cfg, err := Load([]string{"-postgres", "postgres://lab@localhost/lab"}, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBDriver != DriverPostgres || cfg.PostgresDSN != "postgres://lab@localhost/lab" {
		t.Errorf("unexpected db config: %s %s", cfg.DBDriver, cfg.PostgresDSN)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"postgres without dsn", map[string]string{"LABSHAKER_DB_DRIVER": "postgres"}, nil},
		{"unknown db driver", map[string]string{"LABSHAKER_DB_DRIVER": "mysql"}, nil},
		{"s3 without bucket", map[string]string{"LABSHAKER_BLOB_DRIVER": "s3"}, nil},
		{"bad burst", map[string]string{"LABSHAKER_LOGIN_BURST": "many"}, nil},
		{"zero rate", map[string]string{"LABSHAKER_LOGIN_PER_MINUTE": "0"}, nil},
		{"stray argument", nil, []string{"extra"}},
		{"unknown flag", nil, []string{"-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(tt.args, ""); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadHelp(t *testing.T) {
	if _, err := Load([]string{"-h"}, ""); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("expected flag.ErrHelp, got %v", err)
	}
}
