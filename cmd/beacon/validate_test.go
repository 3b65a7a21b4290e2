package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestValidateConfig(t *testing.T) {
	dir := t.TempDir()
	cfgFile = writeFile(t, dir, "config.yaml", `
routes:
  openai:
    upstream_base_url: "https://api.openai.com"
    default_secret: "sk-test"
`)
	if err := validateConfig(validateCmd, nil); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateConfig_BadUpstream(t *testing.T) {
	dir := t.TempDir()
	cfgFile = writeFile(t, dir, "config.yaml", `
routes:
  openai:
    upstream_base_url: "not a url"
`)
	if err := validateConfig(validateCmd, nil); err == nil {
		t.Fatal("expected error for invalid upstream URL")
	}
}

func TestValidateConfig_BadRulesFile(t *testing.T) {
	dir := t.TempDir()
	rules := writeFile(t, dir, "rules.yaml", `
banned_ips:
  - "not-an-ip"
`)
	cfgFile = writeFile(t, dir, "config.yaml", `
routes:
  openai:
    upstream_base_url: "https://api.openai.com"
    default_secret: "sk-test"
access:
  rules_file: "`+rules+`"
`)
	if err := validateConfig(validateCmd, nil); err == nil {
		t.Fatal("expected error for invalid rules file")
	}
}
