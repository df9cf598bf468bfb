package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/intuitionamiga/IntuitionPitch/mapscript"
	"github.com/intuitionamiga/IntuitionPitch/pitchdetect"
	"github.com/intuitionamiga/IntuitionPitch/pitchinput"
)

func main() {
	units := flag.String("units", "midi", "Units the script is written for (hz or midi)")
	probe := flag.String("probe", "", "Comma separated pitches to test against the mappings, e.g. 69,C5")
	export := flag.Bool("export", false, "Print the normalised script instead of a table")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mapcheck [options] mappings.lua\n\nValidates a pitch mapping script and prints its mappings.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  mapcheck default_mappings.lua\n")
		fmt.Fprintf(os.Stderr, "  mapcheck -probe 69,72 default_mappings.lua\n")
		fmt.Fprintf(os.Stderr, "  mapcheck -units hz -export voice.lua\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	u, err := pitchdetect.ParseUnits(*units)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := run(os.Stdout, flag.Arg(0), u, *probe, *export); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, path string, units pitchdetect.Units, probe string, export bool) error {
	engine := pitchinput.NewInputEngine(nil, nil)
	if err := mapscript.Load(path, engine, units); err != nil {
		return err
	}
	mappings := engine.Table().Mappings()

	if export {
		_, err := io.WriteString(w, mapscript.Export(mappings))
		return err
	}

	fmt.Fprintln(w, mappingTable(mappings, units))
	fmt.Fprintf(w, "%d mappings, %d keys\n", len(mappings), len(engine.Table().Keys()))

	if probe == "" {
		return nil
	}
	pitches, err := parsePitches(probe, units)
	if err != nil {
		return err
	}
	for _, p := range pitches {
		engine.UpdateObserved(p)
		var held []string
		for _, key := range engine.Table().Keys() {
			if engine.GetKey(key) || engine.GetKeyDown(key) {
				held = append(held, key)
			}
		}
		if len(held) == 0 {
			held = []string{"-"}
		}
		fmt.Fprintf(w, "%s -> %s\n", formatPitch(pitchinput.RoundPitch(p), units), strings.Join(held, ", "))
	}
	return nil
}

func mappingTable(mappings []pitchinput.PitchMapping, units pitchdetect.Units) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF1493")).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "KEY", "ABOVE", "UP TO").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for i, m := range mappings {
		t.Row(strconv.Itoa(i+1), m.Key, formatPitch(m.MinVal, units), formatPitch(m.MaxVal, units))
	}
	return t.Render()
}

func formatPitch(p int, units pitchdetect.Units) string {
	if units == pitchdetect.UnitsMIDI {
		return fmt.Sprintf("%d %s", p, pitchdetect.NoteName(p))
	}
	return fmt.Sprintf("%d Hz", p)
}

// parsePitches accepts numbers in the script's units or note names.
func parsePitches(s string, units pitchdetect.Units) ([]float64, error) {
	var out []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if v, err := strconv.ParseFloat(field, 64); err == nil {
			out = append(out, v)
			continue
		}
		n, err := pitchdetect.ParseNote(field)
		if err != nil {
			return nil, err
		}
		out = append(out, units.FromMIDI(float64(n)))
	}
	return out, nil
}
