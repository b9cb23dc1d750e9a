package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.GW2.Concurrency != 10 || cfg.GW2.ChunkSize != 200 {
		t.Errorf("GW2 = %+v", cfg.GW2)
	}
	if cfg.GW2.BaseURL != "https://api.guildwars2.com" {
		t.Errorf("BaseURL = %q", cfg.GW2.BaseURL)
	}
	if cfg.Cache.TTL != 10*time.Minute || cfg.Validation.CacheTTL != 5*time.Minute {
		t.Errorf("ttl = %v / %v", cfg.Cache.TTL, cfg.Validation.CacheTTL)
	}
	if cfg.Server.Address() != "0.0.0.0:8080" {
		t.Errorf("Address = %q", cfg.Server.Address())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{name: "db type", key: "SNAPSHOT_DB_TYPE", value: "oracle", want: "SNAPSHOT_DB_TYPE"},
		{name: "cache type", key: "CACHE_TYPE", value: "memcached", want: "CACHE_TYPE"},
		{name: "concurrency", key: "GW2_CONCURRENCY", value: "0", want: "GW2_CONCURRENCY"},
		{name: "chunk size", key: "GW2_CHUNK_SIZE", value: "201", want: "GW2_CHUNK_SIZE"},
		{name: "bad duration", key: "GW2_TIMEOUT", value: "soon", want: "failed to load config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestDSNs(t *testing.T) {
	db := SnapshotDBConfig{Host: "db", Name: "gw2vault", User: "vault", Password: "p@ss word", SSLMode: "disable"}

	if got := db.PostgresDSN(); got != "postgres://vault:p%40ss%20word@db:5432/gw2vault?sslmode=disable" {
		t.Errorf("PostgresDSN = %q", got)
	}
	if got := db.MySQLDSN(); got != "vault:p@ss word@tcp(db:3306)/gw2vault?parseTime=true" {
		t.Errorf("MySQLDSN = %q", got)
	}
}
