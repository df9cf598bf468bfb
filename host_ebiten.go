//go:build !headless

// host_ebiten.go - Ebiten window host: cycle loop, key overlay and demo actor

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
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"

	"github.com/intuitionamiga/IntuitionPitch/pitchinput"
)

func init() {
	compiledFeatures = append(compiledFeatures, "host:ebiten")
}

const (
	screenW      = 640
	screenH      = 480
	maxPasteSize = 64 * 1024
	messageTicks = 150
	groundY      = 440
)

// EbitenHost runs the pitch cycle inside ebiten's Update and draws the
// state of every mapped key.
type EbitenHost struct {
	app  *pitchApp
	keys *ebitenKeys

	fullscreen  bool
	showOverlay bool

	clipboardOnce sync.Once
	clipboardOK   bool

	message      string
	messageTicks int

	actor demoActor
}

func newPlatformHost() *EbitenHost {
	return newEbitenHost(newEbitenKeys())
}

func newEbitenHost(keys *ebitenKeys) *EbitenHost {
	return &EbitenHost{
		keys:        keys,
		showOverlay: true,
		actor:       demoActor{y: groundY},
	}
}

func (h *EbitenHost) Keys() pitchinput.HostKeys {
	return h.keys
}

func (h *EbitenHost) Run(app *pitchApp) error {
	h.app = app
	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle("Intuition Pitch (c) 2024 - 2026 Zayn Otley")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetTPS(app.cfg.tps)
	return ebiten.RunGame(h)
}

func (h *EbitenHost) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		h.fullscreen = !h.fullscreen
		ebiten.SetFullscreen(h.fullscreen)
		if !h.fullscreen {
			ebiten.SetWindowSize(screenW, screenH)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		h.showOverlay = !h.showOverlay
	}
	h.handleHotkeys()

	h.app.step()
	h.actor.update()

	if h.messageTicks > 0 {
		h.messageTicks--
	}
	return nil
}

func (h *EbitenHost) handleHotkeys() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		h.pasteMappings()
	}
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		h.copyMappings()
	}

	tone := h.app.tone
	if tone == nil {
		return
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		tone.Transpose(1)
		h.say("tone %s", formatFreqs(tone.Frequencies()))
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		tone.Transpose(-1)
		h.say("tone %s", formatFreqs(tone.Frequencies()))
	case inpututil.IsKeyJustPressed(ebiten.KeyF9):
		tone.SetMuted(!tone.Muted())
		if tone.Muted() {
			h.say("tone muted")
		} else {
			h.say("tone on")
		}
	}
}

func (h *EbitenHost) clipboardReady() bool {
	h.clipboardOnce.Do(func() {
		h.clipboardOK = clipboard.Init() == nil
	})
	return h.clipboardOK
}

func (h *EbitenHost) pasteMappings() {
	if !h.clipboardReady() {
		h.say("clipboard unavailable")
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		h.say("clipboard is empty")
		return
	}
	data = capPasteText(normalizePasteText(data), maxPasteSize)
	if err := h.app.loadScript("clipboard", string(data)); err != nil {
		h.app.logger.Warn("paste mappings", "err", err)
		h.say("paste failed: %v", err)
		return
	}
	h.say("pasted %d mappings", h.app.engine.Table().Len())
}

func (h *EbitenHost) copyMappings() {
	if !h.clipboardReady() {
		h.say("clipboard unavailable")
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(h.app.exportScript()))
	h.say("copied %d mappings", h.app.engine.Table().Len())
}

func (h *EbitenHost) say(format string, args ...any) {
	h.message = fmt.Sprintf(format, args...)
	h.messageTicks = messageTicks
}

func normalizePasteText(raw []byte) []byte {
	norm := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\r' {
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
			norm = append(norm, '\n')
			continue
		}
		norm = append(norm, raw[i])
	}
	return norm
}

func capPasteText(raw []byte, max int) []byte {
	if len(raw) <= max {
		return raw
	}
	return raw[:max]
}

var (
	bgColor     = color.RGBA{16, 16, 24, 255}
	labelColor  = color.RGBA{190, 190, 190, 255}
	dimColor    = color.RGBA{120, 120, 120, 255}
	heldColor   = color.RGBA{0, 220, 90, 255}
	downColor   = color.RGBA{255, 220, 0, 255}
	upColor     = color.RGBA{255, 70, 70, 255}
	idleColor   = color.RGBA{60, 60, 70, 255}
	meterColor  = color.RGBA{0, 160, 255, 255}
	actorColor  = color.RGBA{255, 20, 147, 255}
	groundColor = color.RGBA{80, 80, 90, 255}
)

func keyColor(s keyStatus) color.Color {
	switch {
	case s.Down:
		return downColor
	case s.Up:
		return upColor
	case s.Held:
		return heldColor
	}
	return idleColor
}

func (h *EbitenHost) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	face := basicfont.Face7x13

	text.Draw(screen, fmt.Sprintf("source %s   script %s   cycle %d", h.app.sourceLabel(), h.app.scriptName, h.app.engine.Cycle()), face, 8, 18, labelColor)

	level := min(h.app.level()*4, 1)
	ebitenutil.DrawRect(screen, 8, 28, 200, 8, idleColor)
	ebitenutil.DrawRect(screen, 8, 28, 200*level, 8, meterColor)
	heard := strings.Join(h.app.observedNames(), " ")
	if heard == "" {
		heard = "-"
	}
	text.Draw(screen, "heard "+heard, face, 220, 37, labelColor)

	if h.showOverlay {
		y := 60
		for _, s := range h.app.keyStatuses() {
			ebitenutil.DrawRect(screen, 8, float64(y-11), 14, 14, keyColor(s))
			text.Draw(screen, s.Name, face, 30, y, labelColor)
			ranges := make([]string, len(s.Mappings))
			for i, m := range s.Mappings {
				ranges[i] = h.app.formatRange(m)
			}
			text.Draw(screen, strings.Join(ranges, " "), face, 140, y, dimColor)
			y += 20
		}
	}

	ebitenutil.DrawRect(screen, 0, groundY, screenW, 2, groundColor)
	h.actor.draw(screen)

	if h.messageTicks > 0 {
		text.Draw(screen, h.message, face, 8, screenH-40, downColor)
	}
	legend := "F11 Fullscreen  F12 Overlay  Ctrl+Shift+V/C Paste/Copy mappings"
	if h.app.tone != nil {
		legend += "  PgUp/PgDn Tone  F9 Mute"
	}
	text.Draw(screen, legend, face, 8, screenH-8, dimColor)
}

func (h *EbitenHost) Layout(_, _ int) (int, int) {
	return screenW, screenH
}

// demoActor is a block that jumps on "jump" (or Space) and crouches while
// "duck" is held, so mappings can be tried out without a game.
type demoActor struct {
	y, vy   float64
	ducking bool
	flash   int
}

func (a *demoActor) update() {
	onGround := a.y >= groundY
	if onGround && (GetKeyDown("jump") || GetKeyCodeDown(ebiten.KeySpace)) {
		a.vy = -9
	}
	a.ducking = GetKey("duck")
	if GetKeyDown("fire") {
		a.flash = 10
	}
	if a.flash > 0 {
		a.flash--
	}
	a.vy += 0.5
	a.y += a.vy
	if a.y > groundY {
		a.y = groundY
		a.vy = 0
	}
}

func (a *demoActor) draw(screen *ebiten.Image) {
	w, hgt := 24.0, 32.0
	if a.ducking {
		hgt = 16
	}
	c := color.Color(actorColor)
	if a.flash > 0 {
		c = downColor
	}
	ebitenutil.DrawRect(screen, screenW/2-w/2, a.y-hgt, w, hgt, c)
}
