// app_test.go - End-to-end cycle tests with the tone source

package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/intuitionamiga/IntuitionPitch/pitchinput"
)

type pressedKeys map[string]bool

func (p pressedKeys) KeyHeld(name string) bool     { return p[name] }
func (p pressedKeys) KeyPressed(name string) bool  { return false }
func (p pressedKeys) KeyReleased(name string) bool { return false }

func newToneApp(t *testing.T, tones string, host pitchinput.HostKeys) *pitchApp {
	t.Helper()
	cfg := defaultAppConfig()
	cfg.source = sourceTone
	cfg.tones = tones
	app, err := newPitchApp(cfg, host, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("newPitchApp: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func runCycles(app *pitchApp, n int, each func()) {
	for i := 0; i < n; i++ {
		app.step()
		if each != nil {
			each()
		}
	}
}

func TestApp_ToneDrivesDefaultMappings(t *testing.T) {
	app := newToneApp(t, "A4", nil)

	downs := 0
	runCycles(app, 10, func() {
		if GetKeyDown("jump") {
			downs++
		}
	})
	if downs != 1 {
		t.Fatalf("expected exactly one jump press, got %d", downs)
	}
	if !GetKey("jump") || GetKey("fire") || GetKey("duck") {
		t.Fatalf("expected only jump held, got %+v", app.keyStatuses())
	}
	if names := app.observedNames(); len(names) != 1 || names[0] != "A4" {
		t.Fatalf("expected A4 heard, got %v", names)
	}

	app.tone.SetFrequencies(659.26) // E5
	ups := 0
	runCycles(app, 10, func() {
		if GetKeyUp("jump") {
			ups++
		}
	})
	if ups != 1 {
		t.Fatalf("expected jump released once, got %d", ups)
	}
	if !GetKey("fire") || GetKey("jump") {
		t.Fatalf("expected fire held after the tone moved up, got %+v", app.keyStatuses())
	}

	app.tone.SetMuted(true)
	runCycles(app, 10, nil)
	for _, s := range app.keyStatuses() {
		if s.Held {
			t.Fatalf("expected silence to release %s", s.Name)
		}
	}
	if app.level() != 0 {
		t.Fatalf("expected zero level for silence, got %f", app.level())
	}
}

func TestApp_PhysicalFallback(t *testing.T) {
	app := newToneApp(t, "", pressedKeys{"duck": true, "space": true})
	runCycles(app, 3, nil)
	if !GetKey("duck") {
		t.Fatal("held host key must satisfy a mapped key with no pitch")
	}
	if !GetKey("space") {
		t.Fatal("unmapped names must fall back to the host")
	}
	if GetKey("none") {
		t.Fatal("none is never held")
	}
}

func TestApp_LoadScriptKeepsMappingsOnError(t *testing.T) {
	app := newToneApp(t, "A4", nil)
	before := app.engine.Table().Mappings()

	err := app.loadScript("broken", `map_pitch(60, 72, "jump")
map_pitch(80, 70, "oops")`)
	if err == nil || !strings.Contains(err.Error(), "minVal must be less than maxVal") {
		t.Fatalf("expected invalid range error, got %v", err)
	}
	after := app.engine.Table().Mappings()
	if len(after) != len(before) || app.scriptName != defaultMappingName {
		t.Fatalf("failed script replaced mappings: %v", after)
	}

	if err := app.loadScript("one", `map_pitch(note("G#4"), note("A4"), "a4")`); err != nil {
		t.Fatal(err)
	}
	if app.engine.Table().Len() != 1 || !app.engine.MapsKey("a4") {
		t.Fatalf("expected the new script to replace the table, got %v", app.engine.Table().Mappings())
	}
	runCycles(app, 5, nil)
	if !GetKey("a4") {
		t.Fatal("expected A4 tone to hold the narrow mapping")
	}
}

func TestApp_ReloadKeepsHeldKeys(t *testing.T) {
	app := newToneApp(t, "A4", nil)
	runCycles(app, 5, nil)
	if !GetKey("jump") {
		t.Fatal("expected jump held before reload")
	}

	if err := app.loadScript("same", app.exportScript()); err != nil {
		t.Fatal(err)
	}
	downs := 0
	runCycles(app, 5, func() {
		if GetKeyDown("jump") {
			downs++
		}
	})
	if downs != 0 || !GetKey("jump") {
		t.Fatalf("reloading identical mappings re-pressed jump %d times", downs)
	}

	if err := app.loadScript("fire only", `map_pitch(note("B4"), note("B5"), "fire")`); err != nil {
		t.Fatal(err)
	}
	if !GetKeyUp("jump") || GetKey("jump") {
		t.Fatal("dropping a held key must report its release")
	}
	app.step()
	if GetKeyUp("jump") {
		t.Fatal("release edge must last one cycle")
	}
}

func TestApp_SourceLabel(t *testing.T) {
	app := newToneApp(t, "440,660", nil)
	if got := app.sourceLabel(); got != "tone 440.0Hz,660.0Hz" {
		t.Fatalf("sourceLabel() = %q", got)
	}
	app.tone.Transpose(12)
	if got := app.sourceLabel(); got != "tone 880.0Hz,1320.0Hz" {
		t.Fatalf("sourceLabel() after transpose = %q", got)
	}
}

func TestApp_ExportRoundTrip(t *testing.T) {
	app := newToneApp(t, "A4", nil)
	script := app.exportScript()

	path := filepath.Join(t.TempDir(), "export.lua")
	if err := os.WriteFile(path, []byte(script), 0644); err != nil {
		t.Fatal(err)
	}
	before := app.engine.Table().Mappings()
	if err := app.loadScriptFile(path); err != nil {
		t.Fatalf("reload exported script: %v\n%s", err, script)
	}
	after := app.engine.Table().Mappings()
	if len(before) != len(after) {
		t.Fatalf("expected %d mappings, got %d", len(before), len(after))
	}
	for i := range before {
		if before[i].MinVal != after[i].MinVal || before[i].MaxVal != after[i].MaxVal || before[i].Key != after[i].Key {
			t.Fatalf("mapping %d changed: %v -> %v", i, before[i], after[i])
		}
	}
	if app.scriptName != path {
		t.Fatalf("expected script name %q, got %q", path, app.scriptName)
	}
}

func TestApp_ConfigErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		name   string
		mutate func(*appConfig)
	}{
		{"unknown source", func(c *appConfig) { c.source = "theremin" }},
		{"bad units", func(c *appConfig) { c.units = "cents" }},
		{"bad tone", func(c *appConfig) { c.source = sourceTone; c.tones = "Q9" }},
		{"missing script", func(c *appConfig) { c.source = sourceTone; c.mapFile = "/nonexistent/map.lua" }},
		{"window too small", func(c *appConfig) { c.source = sourceTone; c.window = 8 }},
	}
	before := activeRouter.Load()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultAppConfig()
			tt.mutate(&cfg)
			if app, err := newPitchApp(cfg, nil, logger); err == nil {
				app.Close()
				t.Fatal("expected error")
			}
		})
	}
	if activeRouter.Load() != before {
		t.Fatal("failed construction must not install a router")
	}
}

func TestInputAPI_NoRouter(t *testing.T) {
	setActiveRouter(nil)
	if GetKey("jump") || GetKeyDown("jump") || GetKeyUp("jump") {
		t.Fatal("queries without a router must answer false")
	}
	if GetKeyCode(keyLabel("Space")) || GetKeyCodeDown(keyLabel("Space")) || GetKeyCodeUp(keyLabel("Space")) {
		t.Fatal("key code queries without a router must answer false")
	}
}

func TestInputAPI_HostRouterBeforeEngine(t *testing.T) {
	host := pressedKeys{"jump": true}
	installHostRouter(host)
	t.Cleanup(func() { setActiveRouter(nil) })
	if !GetKey("jump") || GetKey("fire") {
		t.Fatal("without an engine queries must use the host keys")
	}

	cfg := defaultAppConfig()
	cfg.source = sourceTone
	cfg.tones = "E5"
	app, err := newPitchApp(cfg, host, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	runCycles(app, 5, nil)
	if !GetKey("fire") || !GetKey("jump") {
		t.Fatal("expected pitch fire and physical jump with the engine attached")
	}

	app.Close()
	if GetKey("fire") || !GetKey("jump") {
		t.Fatal("after close queries must fall back to the host keys")
	}
}

type keyLabel string

func (k keyLabel) String() string { return string(k) }

func TestInputAPI_KeyCodeThroughRouter(t *testing.T) {
	r := pitchinput.NewRouter(pressedKeys{"space": true})
	setActiveRouter(r)
	t.Cleanup(func() { setActiveRouter(nil) })
	if !GetKeyCode(keyLabel("Space")) {
		t.Fatal("key codes are lowercased before the host lookup")
	}
}
