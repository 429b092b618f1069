// File: internal/action/keycodes.go
package action

import (
	"sort"
	"strings"
)

// keyCodes maps the fixed hardware key vocabulary to Android key codes. The
// table must stay exactly as-is for interoperability with `input keyevent`.
var keyCodes = map[string]int{
	"HOME":        3,
	"BACK":        4,
	"ENTER":       66,
	"DELETE":      67,
	"MENU":        82,
	"POWER":       26,
	"VOLUME_UP":   24,
	"VOLUME_DOWN": 25,
	"TAB":         61,
	"SPACE":       62,
}

// KeyCode resolves a key name (case-insensitive) to its numeric key code.
func KeyCode(name string) (int, bool) {
	code, ok := keyCodes[strings.ToUpper(strings.TrimSpace(name))]
	return code, ok
}

// KeyNames returns the supported key names in sorted order, for prompts and
// error messages.
func KeyNames() []string {
	names := make([]string, 0, len(keyCodes))
	for name := range keyCodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
