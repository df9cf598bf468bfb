// physical_keys.go - Host key name normalisation

package main

import (
	"strings"
	"unicode/utf8"
)

// Host key names follow the lowercased ebiten key names ("a", "space",
// "arrowup", "digit1"). These aliases let scripts and game code use the
// short forms on every host.
var keyAliases = map[string]string{
	"up":       "arrowup",
	"down":     "arrowdown",
	"left":     "arrowleft",
	"right":    "arrowright",
	"return":   "enter",
	"esc":      "escape",
	"ctrl":     "controlleft",
	"shift":    "shiftleft",
	"alt":      "altleft",
	"del":      "delete",
	"pgup":     "pageup",
	"pgdown":   "pagedown",
	"spacebar": "space",
}

func canonicalKeyName(name string) string {
	if name == " " {
		return "space"
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := keyAliases[name]; ok {
		return alias
	}
	if utf8.RuneCountInString(name) == 1 && name[0] >= '0' && name[0] <= '9' {
		return "digit" + name
	}
	return name
}
