//go:build !headless

// physical_keys_ebiten.go - Host keys backed by ebiten's keyboard state

package main

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

func init() {
	compiledFeatures = append(compiledFeatures, "keys:ebiten")
}

// ebitenKeys resolves key names through the lowercased ebiten.Key names.
type ebitenKeys struct {
	byName map[string]ebiten.Key
}

func newEbitenKeys() *ebitenKeys {
	k := &ebitenKeys{byName: make(map[string]ebiten.Key, int(ebiten.KeyMax)+1)}
	for key := ebiten.Key(0); key <= ebiten.KeyMax; key++ {
		k.byName[strings.ToLower(key.String())] = key
	}
	return k
}

func (k *ebitenKeys) lookup(name string) (ebiten.Key, bool) {
	key, ok := k.byName[canonicalKeyName(name)]
	return key, ok
}

func (k *ebitenKeys) KeyHeld(name string) bool {
	key, ok := k.lookup(name)
	return ok && ebiten.IsKeyPressed(key)
}

func (k *ebitenKeys) KeyPressed(name string) bool {
	key, ok := k.lookup(name)
	return ok && inpututil.IsKeyJustPressed(key)
}

func (k *ebitenKeys) KeyReleased(name string) bool {
	key, ok := k.lookup(name)
	return ok && inpututil.IsKeyJustReleased(key)
}
