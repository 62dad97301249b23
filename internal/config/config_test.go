package config

import (
	"strings"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	conf, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if conf.Service.Port != 8080 {
		t.Fatalf("default port = %d, want 8080", conf.Service.Port)
	}
	if conf.Storage.Driver != "sqlite" || conf.Storage.SQLitePath != "patomove.db" {
		t.Fatalf("unexpected storage defaults: %+v", conf.Storage)
	}
	if conf.Blob.Driver != "fs" || conf.Blob.Root != "storage" {
		t.Fatalf("unexpected blob defaults: %+v", conf.Blob)
	}
	if conf.Logging.Mode != "production" {
		t.Fatalf("unexpected logging mode %q", conf.Logging.Mode)
	}
}

func TestParseExpandsEnvReferences(t *testing.T) {
	t.Setenv("PATOMOVE_TEST_DSN", "postgres://pato:secret@db/patomove")
	conf, err := Parse([]byte(`
storage:
  driver: postgres
  postgres_dsn: ${PATOMOVE_TEST_DSN}
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if conf.Storage.PostgresDSN != "postgres://pato:secret@db/patomove" {
		t.Fatalf("dsn not expanded: %q", conf.Storage.PostgresDSN)
	}
}

func TestEnvOverridesBeatFileValues(t *testing.T) {
	t.Setenv("PATOMOVE_PORT", "9090")
	t.Setenv("PATOMOVE_STORAGE_DRIVER", "memory")
	t.Setenv("PATOMOVE_BLOB_DRIVER", "s3")
	t.Setenv("PATOMOVE_BLOB_BUCKET", "patomove-genomes")
	conf, err := Parse([]byte(`
service:
  port: 8081
storage:
  driver: sqlite
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if conf.Service.Port != 9090 {
		t.Fatalf("port = %d, want 9090", conf.Service.Port)
	}
	if conf.Storage.Driver != "memory" {
		t.Fatalf("storage driver = %q, want memory", conf.Storage.Driver)
	}
	if conf.Blob.Driver != "s3" || conf.Blob.Bucket != "patomove-genomes" {
		t.Fatalf("unexpected blob config: %+v", conf.Blob)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"storage:\n  driver: redis", "invalid storage driver"},
		{"blob:\n  driver: gcs", "invalid blob driver"},
		{"blob:\n  driver: s3", "requires a bucket"},
		{"service:\n  port: 70000", "invalid port"},
		{"logging:\n  mode: verbose", "invalid logging mode"},
	}
	for _, tc := range cases {
		if _, err := Parse([]byte(tc.input)); err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("input %q: error = %v, want containing %q", tc.input, err, tc.want)
		}
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	conf, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if conf.Service.Port != 8080 || conf.Storage.Driver != "sqlite" {
		t.Fatalf("unexpected defaults: %+v", conf)
	}
}
