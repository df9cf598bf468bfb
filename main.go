// main.go - Main entry point for Intuition Pitch

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionPitch
License: GPLv3 or later
*/

package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/denizsincar29/goerror"
)

func boilerPlate() {
	fmt.Println("\n\033[38;2;255;20;147m ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████\033[0m\n\033[38;2;255;50;147m▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀\033[0m\n\033[38;2;255;80;147m▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███\033[0m\n\033[38;2;255;110;147m░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄\033[0m\n\033[38;2;255;140;147m░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒\033[0m\n\033[38;2;255;170;147m░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░\033[0m\n\033[38;2;255;200;147m ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░\033[0m\n\033[38;2;255;230;147m ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░\033[0m\n\033[38;2;255;255;147m ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░\033[0m")
	fmt.Println("\nPitch-driven virtual keys: sing, whistle or play to press buttons.")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("https://github.com/IntuitionAmiga/IntuitionPitch")
	fmt.Println("Buy me a coffee: https://ko-fi.com/intuition/tip")
	fmt.Println("License: GPLv3 or later")
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseFlags fills cfg from args. help reports -h; the caller exits 0.
func parseFlags(args []string, cfg *appConfig) (features bool, help bool, err error) {
	flagSet := flag.NewFlagSet("intuition_pitch", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&cfg.source, "source", cfg.source, "Pitch source: mic, tone or midi")
	flagSet.StringVar(&cfg.tones, "tone", cfg.tones, "Tone source frequencies or notes, e.g. 440,660 or A4,E5")
	flagSet.StringVar(&cfg.midiPort, "midi-port", cfg.midiPort, "MIDI input port name (substring match, default first port)")
	flagSet.StringVar(&cfg.mapFile, "map", cfg.mapFile, "Lua mapping script (default: built-in mappings)")
	flagSet.StringVar(&cfg.units, "units", cfg.units, "Pitch units for mappings: hz or midi")
	flagSet.IntVar(&cfg.rate, "rate", cfg.rate, "Sample rate in Hz")
	flagSet.IntVar(&cfg.buffer, "buffer", cfg.buffer, "Samples analysed per cycle")
	flagSet.IntVar(&cfg.window, "window", cfg.window, "FFT window size in samples")
	flagSet.Float64Var(&cfg.threshold, "threshold", cfg.threshold, "RMS level below which input is silence")
	flagSet.Float64Var(&cfg.minFreq, "min-freq", cfg.minFreq, "Lowest detected frequency in Hz")
	flagSet.Float64Var(&cfg.maxFreq, "max-freq", cfg.maxFreq, "Highest detected frequency in Hz")
	flagSet.IntVar(&cfg.tps, "tps", cfg.tps, "Cycles per second")
	flagSet.BoolVar(&cfg.monitor, "monitor", cfg.monitor, "Play the input back through the speakers")
	flagSet.Float64Var(&cfg.gain, "gain", cfg.gain, "Monitor playback gain")
	flagSet.BoolVar(&cfg.debug, "debug", cfg.debug, "Log every key edge")
	flagSet.BoolVar(&features, "features", false, "Print compiled features and exit")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./intuition_pitch [-source mic|tone|midi] [-map mappings.lua] [-units hz|midi] [-monitor]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return false, true, nil
		}
		return false, false, err
	}
	if flagSet.NArg() > 0 {
		return false, false, fmt.Errorf("unexpected argument %q", flagSet.Arg(0))
	}
	switch {
	case cfg.rate <= 0:
		return false, false, fmt.Errorf("-rate must be positive")
	case cfg.buffer < cfg.window:
		return false, false, fmt.Errorf("-buffer (%d) must be at least -window (%d)", cfg.buffer, cfg.window)
	case cfg.tps <= 0:
		return false, false, fmt.Errorf("-tps must be positive")
	case cfg.gain < 0:
		return false, false, fmt.Errorf("-gain must not be negative")
	}
	return features, false, nil
}

func main() {
	cfg := defaultAppConfig()
	features, help, err := parseFlags(os.Args[1:], &cfg)
	if help {
		os.Exit(0)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if features {
		printFeatures()
		return
	}

	boilerPlate()

	logger := newLogger(os.Stderr, cfg.debug)
	slog.SetDefault(logger)
	e := goerror.NewError(logger)

	host := newPlatformHost()
	installHostRouter(host.Keys())
	app, err := newPitchApp(cfg, host.Keys(), logger)
	e.Must(err, "Failed to initialize pitch input")
	defer app.Close()

	if cfg.monitor {
		player, err := NewOtoPlayer(cfg.rate)
		e.Must(err, "Failed to initialize audio monitor")
		player.SetGain(float32(cfg.gain))
		player.SetupPlayer(app.ring)
		player.Start()
		defer player.Close()
		logger.Info("monitor", "started", player.IsStarted(), "gain", cfg.gain)
	}

	logger.Info("pitch input ready", "source", cfg.source, "units", cfg.units, "keys", app.engine.Table().Keys())
	if err := host.Run(app); err != nil {
		fmt.Printf("Failed to run host: %v\n", err)
		os.Exit(1)
	}
}
