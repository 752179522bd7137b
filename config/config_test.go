package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/finvault"
)

// chdir moves to an empty directory so that no .env or finvault.yaml leaks in.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Database.Path != "finvault.db" {
		t.Errorf("database.path = %q", c.Database.Path)
	}
	if c.Cache.QuoteTTL != 15*time.Minute || c.Cache.FxTTL != 12*time.Hour {
		t.Errorf("cache ttls = %v %v", c.Cache.QuoteTTL, c.Cache.FxTTL)
	}
	if m, _ := c.CostBasis(); m != finvault.FIFO {
		t.Errorf("cost basis = %v", m)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("FINVAULT_DATABASE_PATH", "/tmp/other.db")
	t.Setenv("FINVAULT_REPORTING_CURRENCY", "eur")
	t.Setenv("FINVAULT_REPORTING_COST_BASIS", "average")
	t.Setenv("FINVAULT_CACHE_QUOTE_TTL", "1m")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Database.Path != "/tmp/other.db" {
		t.Errorf("database.path = %q", c.Database.Path)
	}
	if c.Reporting.Currency != "EUR" {
		t.Errorf("reporting.currency = %q", c.Reporting.Currency)
	}
	if m, _ := c.CostBasis(); m != finvault.AverageCost {
		t.Errorf("cost basis = %v", m)
	}
	if c.Cache.QuoteTTL != time.Minute {
		t.Errorf("quote ttl = %v", c.Cache.QuoteTTL)
	}
}

func TestLoad_File(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "custom.yaml")
	content := "log:\n  level: debug\nlegacy:\n  dir: /data/legacy\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Log.Level != "debug" || c.Legacy.Dir != "/data/legacy" {
		t.Errorf("got %+v", c)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("an explicit missing config file must fail")
	}
}

func TestLoad_Invalid(t *testing.T) {
	chdir(t)
	t.Setenv("FINVAULT_REPORTING_CURRENCY", "XXQ")
	if _, err := Load(""); err == nil {
		t.Error("expected an error for an unknown currency")
	}
}
