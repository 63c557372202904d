package main

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scan.IntervalMinutes != 60 {
		t.Errorf("interval = %d, want 60", cfg.Scan.IntervalMinutes)
	}
	if cfg.Scan.StaleAfterDuration() != 90*24*time.Hour {
		t.Errorf("stale_after = %v, want 2160h", cfg.Scan.StaleAfterDuration())
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("address = %q, want :8080", cfg.Server.Address)
	}
}

func TestConfigValidate_RequiresBaseURLWithoutDemoData(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source.UseDemoData = false
	cfg.Source.BaseURL = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error without base_url")
	}

	cfg.Source.UseDemoData = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}
}

func TestConfigValidate_RejectsShortStaleWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source.UseDemoData = true
	cfg.Scan.StaleAfter = "10m"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for stale_after under 1h")
	}
}

func TestConfigValidate_RejectsInvalidStaleDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source.UseDemoData = true
	cfg.Scan.StaleAfter = "ninety days"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for invalid stale_after")
	}
}

func TestConfigValidate_RejectsZeroInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source.UseDemoData = true
	cfg.Scan.IntervalMinutes = -5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for negative interval")
	}
}
