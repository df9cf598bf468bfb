// main_test.go - Tests for command-line parsing

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseFlags_Defaults(t *testing.T) {
	cfg := defaultAppConfig()
	features, help, err := parseFlags(nil, &cfg)
	if err != nil || help || features {
		t.Fatalf("unexpected result: features=%v help=%v err=%v", features, help, err)
	}
	if cfg.source != sourceMic || cfg.gain != 1 || cfg.buffer != 2048 || cfg.window != 1024 || cfg.rate != 44100 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestParseFlags_Values(t *testing.T) {
	cfg := defaultAppConfig()
	_, _, err := parseFlags([]string{"-source", "tone", "-tone", "A4,E5", "-units", "hz", "-map", "keys.lua", "-monitor", "-gain", "0.5", "-tps", "30"}, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.source != sourceTone || cfg.tones != "A4,E5" || cfg.units != "hz" || cfg.mapFile != "keys.lua" || !cfg.monitor || cfg.gain != 0.5 || cfg.tps != 30 {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"-bogus"}, "bogus"},
		{"stray argument", []string{"file.lua"}, "unexpected argument"},
		{"buffer below window", []string{"-buffer", "512", "-window", "1024"}, "-buffer"},
		{"zero rate", []string{"-rate", "0"}, "-rate"},
		{"zero tps", []string{"-tps", "0"}, "-tps"},
		{"negative gain", []string{"-gain", "-1"}, "-gain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultAppConfig()
			_, _, err := parseFlags(tt.args, &cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParseFlags_Features(t *testing.T) {
	cfg := defaultAppConfig()
	features, _, err := parseFlags([]string{"-features"}, &cfg)
	if err != nil || !features {
		t.Fatalf("expected features request, got %v %v", features, err)
	}
}

func TestNewLogger_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug output without -debug: %q", buf.String())
	}
	newLogger(&buf, true).Debug("shown", "key", "jump")
	if !strings.Contains(buf.String(), "shown") || !strings.Contains(buf.String(), "key=jump") {
		t.Fatalf("expected debug record, got %q", buf.String())
	}
}
