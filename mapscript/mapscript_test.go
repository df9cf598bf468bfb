// mapscript_test.go - Tests for Lua mapping scripts

package mapscript

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/intuitionamiga/IntuitionPitch/pitchdetect"
	"github.com/intuitionamiga/IntuitionPitch/pitchinput"
)

func TestEval_MapAndRemove(t *testing.T) {
	table := pitchinput.NewMappingTable()
	src := `
map_pitch(60, 72, "jump")
map_pitch(note("C3"), note("B3"), "duck")
map_pitch(40, 50, "fire")
remove_mapping(40, 50, "fire")
`
	if err := Eval("test.lua", src, table, pitchdetect.UnitsMIDI); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	got := table.Mappings()
	if len(got) != 2 {
		t.Fatalf("expected 2 mappings, got %v", got)
	}
	if got[0].MinVal != 60 || got[0].MaxVal != 72 || got[0].Key != "jump" {
		t.Fatalf("unexpected first mapping %v", got[0])
	}
	if got[1].MinVal != 48 || got[1].MaxVal != 59 || got[1].Key != "duck" {
		t.Fatalf("unexpected second mapping %v", got[1])
	}
}

func TestEval_HzHelpersRound(t *testing.T) {
	table := pitchinput.NewMappingTable()
	if err := Eval("hz.lua", `map_pitch(hz("A4") - 10, hz("A4") + 10.4, "a")`, table, pitchdetect.UnitsHz); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	m := table.Mappings()[0]
	if m.MinVal != 430 || m.MaxVal != 450 {
		t.Fatalf("expected (430, 450], got %v", m)
	}
}

func TestEval_UnitsGlobal(t *testing.T) {
	table := pitchinput.NewMappingTable()
	src := `
if units == "midi" then
	map_pitch(60, 72, "jump")
else
	map_pitch(250, 520, "jump")
end`
	if err := Eval("units.lua", src, table, pitchdetect.UnitsHz); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if m := table.Mappings()[0]; m.MinVal != 250 {
		t.Fatalf("expected hz branch, got %v", m)
	}
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"invalid range", `map_pitch(72, 60, "jump")`, "minVal must be less than maxVal"},
		{"empty key", `map_pitch(60, 72, "")`, "key name is empty"},
		{"bad note", `map_pitch(note("H9"), 72, "x")`, "invalid note name"},
		{"syntax", `map_pitch(60, 72, "jump"`, "bad.lua"},
		{"missing arg", `map_pitch(60)`, "number expected"},
		{"no os library", `os.exit(1)`, "exit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Eval("bad.lua", tt.src, pitchinput.NewMappingTable(), pitchdetect.UnitsMIDI)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestEval_PartialScriptKeepsEarlierMappings(t *testing.T) {
	table := pitchinput.NewMappingTable()
	err := Eval("partial.lua", "map_pitch(60, 72, \"jump\")\nmap_pitch(9, 1, \"bad\")", table, pitchdetect.UnitsMIDI)
	if err == nil {
		t.Fatal("expected error from second call")
	}
	if !table.MapsKey("jump") {
		t.Fatal("mappings made before the error are kept")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.lua")
	if err := os.WriteFile(path, []byte(`map_pitch(60, 72, "jump")`), 0644); err != nil {
		t.Fatal(err)
	}
	e := pitchinput.NewInputEngine(nil, nil)
	if err := Load(path, e, pitchdetect.UnitsMIDI); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !e.MapsKey("jump") {
		t.Fatal("expected jump mapped on the engine")
	}

	if err := Load(filepath.Join(t.TempDir(), "missing.lua"), e, pitchdetect.UnitsMIDI); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestExportRoundTrip(t *testing.T) {
	src := pitchinput.NewMappingTable()
	_ = src.MapPitch(60, 72, "jump")
	_ = src.MapPitch(-5, 5, "space")
	_ = src.MapPitch(60, 72, "jump")

	script := Export(src.Mappings())
	dst := pitchinput.NewMappingTable()
	if err := Eval("export.lua", script, dst, pitchdetect.UnitsMIDI); err != nil {
		t.Fatalf("Eval(exported): %v\n%s", err, script)
	}
	a, b := src.Mappings(), dst.Mappings()
	if len(a) != len(b) {
		t.Fatalf("expected %d mappings, got %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("mapping %d: %v != %v", i, a[i], b[i])
		}
	}
}

func TestEval_EndlessScriptTimesOut(t *testing.T) {
	old := Timeout
	Timeout = 50 * time.Millisecond
	t.Cleanup(func() { Timeout = old })

	table := pitchinput.NewMappingTable()
	done := make(chan error, 1)
	go func() {
		done <- Eval("spin.lua", `map_pitch(60, 72, "jump")
while true do end`, table, pitchdetect.UnitsMIDI)
	}()
	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline error, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("endless script was not stopped")
	}
}

func TestEvalContext_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := EvalContext(ctx, "spin.lua", `while true do end`, pitchinput.NewMappingTable(), pitchdetect.UnitsMIDI)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}
}
