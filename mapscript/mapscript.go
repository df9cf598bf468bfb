// mapscript.go - Lua mapping scripts

// Package mapscript loads pitch-to-key mappings from Lua scripts and renders
// mapping tables back into script form.
//
// Scripts see these globals:
//
//	map_pitch(min, max, key)       add a mapping for the interval (min, max]
//	remove_mapping(min, max, key)  remove the first exact match
//	note(name)                     MIDI note number for a name such as "A4"
//	hz(name)                       frequency in Hz for a note name
//	units                          "hz" or "midi", the units pitches arrive in
package mapscript

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/intuitionamiga/IntuitionPitch/pitchdetect"
	"github.com/intuitionamiga/IntuitionPitch/pitchinput"
)

// Mapper receives the mapping calls made by a script. Both
// *pitchinput.MappingTable and *pitchinput.InputEngine satisfy it.
type Mapper interface {
	MapPitch(minVal, maxVal int, key string) error
	RemoveMapping(minVal, maxVal int, key string) error
}

// Load runs the script at path against m.
func Load(path string, m Mapper, units pitchdetect.Units) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("mapscript: %w", err)
	}
	return Eval(path, string(src), m, units)
}

// Timeout bounds a single script run.
var Timeout = 2 * time.Second

// Eval runs src against m. name is used in error messages only. A script
// that runs past Timeout fails with context.DeadlineExceeded.
func Eval(name, src string, m Mapper, units pitchdetect.Units) error {
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()
	return EvalContext(ctx, name, src, m, units)
}

// EvalContext is Eval with a caller-supplied context.
func EvalContext(ctx context.Context, name, src string, m Mapper, units pitchdetect.Units) error {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	L.SetContext(ctx)
	openSafeLibs(L)
	bind(L, m, units)

	fn, err := L.Load(strings.NewReader(src), name)
	if err != nil {
		return fmt.Errorf("mapscript %s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("mapscript %s: %w", name, ctxErr)
		}
		return fmt.Errorf("mapscript %s: %w", name, err)
	}
	return nil
}

// openSafeLibs opens the libraries a mapping script needs, leaving out io and os.
func openSafeLibs(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

func bind(L *lua.LState, m Mapper, units pitchdetect.Units) {
	L.SetGlobal("units", lua.LString(units.String()))
	L.SetGlobal("map_pitch", L.NewFunction(func(L *lua.LState) int {
		minVal, maxVal, key := checkMapping(L)
		if err := m.MapPitch(minVal, maxVal, key); err != nil {
			L.RaiseError("map_pitch: %v", err)
		}
		return 0
	}))
	L.SetGlobal("remove_mapping", L.NewFunction(func(L *lua.LState) int {
		minVal, maxVal, key := checkMapping(L)
		if err := m.RemoveMapping(minVal, maxVal, key); err != nil {
			L.RaiseError("remove_mapping: %v", err)
		}
		return 0
	}))
	L.SetGlobal("note", L.NewFunction(func(L *lua.LState) int {
		n, err := pitchdetect.ParseNote(L.CheckString(1))
		if err != nil {
			L.ArgError(1, err.Error())
		}
		L.Push(lua.LNumber(n))
		return 1
	}))
	L.SetGlobal("hz", L.NewFunction(func(L *lua.LState) int {
		n, err := pitchdetect.ParseNote(L.CheckString(1))
		if err != nil {
			L.ArgError(1, err.Error())
		}
		L.Push(lua.LNumber(pitchdetect.MIDIToFreq(float64(n))))
		return 1
	}))
}

// checkMapping reads (min, max, key). Fractional bounds are rounded so
// hz("C4") style expressions can be used directly.
func checkMapping(L *lua.LState) (int, int, string) {
	minVal := int(math.Round(float64(L.CheckNumber(1))))
	maxVal := int(math.Round(float64(L.CheckNumber(2))))
	key := L.CheckString(3)
	return minVal, maxVal, key
}

// Export renders mappings as a script that recreates them.
func Export(mappings []pitchinput.PitchMapping) string {
	var sb strings.Builder
	sb.WriteString("-- pitch mappings\n")
	for _, m := range mappings {
		fmt.Fprintf(&sb, "map_pitch(%d, %d, %q)\n", m.MinVal, m.MaxVal, m.Key)
	}
	return sb.String()
}
