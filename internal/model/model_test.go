package model

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		query string
		want  Intent
	}{
		{"What is the latest version of Acme?", IntentVersion},
		{"acme 3.4 release date", IntentVersion},
		{"Any CVE fixed in acme?", IntentCVE},
		{"acme vulnerability patch", IntentCVE},
		{"latest acme hotfix", IntentPatch},
		{"acme security update notes", IntentPatch},
		{"who maintains acme", IntentOther},
	}
	for _, tt := range tests {
		if got := ClassifyIntent(tt.query); got != tt.want {
			t.Errorf("ClassifyIntent(%q) = %s, want %s", tt.query, got, tt.want)
		}
	}
}

func TestParseIntent(t *testing.T) {
	if ParseIntent(" cve ") != IntentCVE {
		t.Error("expected CVE")
	}
	if ParseIntent("unknown") != IntentOther {
		t.Error("expected OTHER for unknown names")
	}
}

func TestAbstainAnswer(t *testing.T) {
	a := AbstainAnswer("meta", 40)
	if !a.Abstained || a.ShortAnswer != AbstainText || a.Confidence != 40 {
		t.Errorf("unexpected abstain answer: %+v", a)
	}
	if len(a.Citations) != 0 || len(a.Evidence) != 0 {
		t.Error("abstain answers carry no citations or evidence")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no db path", func(c *Config) { c.Paths.DBPath = "" }},
		{"no cache dir", func(c *Config) { c.Paths.CacheDir = "" }},
		{"zero timeout", func(c *Config) { c.HTTP.Timeout = 0 }},
		{"zero sentences", func(c *Config) { c.Limits.MaxSentencesPerItem = 0 }},
		{"zero evidence", func(c *Config) { c.Limits.EvidenceLimit = 0 }},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "gemini" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
