// Package input describes keyboard keys independently of the terminal or
// windowing system that reported them.
package input

import (
	"fmt"
	"strings"
	"unicode"
)

// Key is a physical key, independent of the keyboard layout.
type Key int

const (
	KeyUnknown Key = iota
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeySpace
	KeyEnter
	KeyTab
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyMinus
	KeyEqual
	KeyComma
	KeyPeriod
	KeySlash
	KeySemicolon
	KeyQuote
	KeyBracketLeft
	KeyBracketRight
	KeyBackslash
	KeyGrave
)

var keyNames = map[Key]string{
	KeySpace:        "space",
	KeyEnter:        "enter",
	KeyTab:          "tab",
	KeyEscape:       "esc",
	KeyBackspace:    "backspace",
	KeyDelete:       "delete",
	KeyLeft:         "left",
	KeyRight:        "right",
	KeyUp:           "up",
	KeyDown:         "down",
	KeyHome:         "home",
	KeyEnd:          "end",
	KeyPageUp:       "pgup",
	KeyPageDown:     "pgdown",
	KeyMinus:        "minus",
	KeyEqual:        "equal",
	KeyComma:        "comma",
	KeyPeriod:       "period",
	KeySlash:        "slash",
	KeySemicolon:    "semicolon",
	KeyQuote:        "quote",
	KeyBracketLeft:  "bracket_left",
	KeyBracketRight: "bracket_right",
	KeyBackslash:    "backslash",
	KeyGrave:        "grave",
}

// punctuation maps the unshifted US-layout characters to their keys.
var punctuation = map[rune]Key{
	' ':  KeySpace,
	'-':  KeyMinus,
	'=':  KeyEqual,
	',':  KeyComma,
	'.':  KeyPeriod,
	'/':  KeySlash,
	';':  KeySemicolon,
	'\'': KeyQuote,
	'[':  KeyBracketLeft,
	']':  KeyBracketRight,
	'\\': KeyBackslash,
	'`':  KeyGrave,
	'\t': KeyTab,
	'\n': KeyEnter,
}

func (k Key) String() string {
	switch {
	case k >= KeyA && k <= KeyZ:
		return string(rune('a' + int(k-KeyA)))
	case k >= Key0 && k <= Key9:
		return string(rune('0' + int(k-Key0)))
	}
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}

// Character is the character the key types on a US layout without
// modifiers, or 0 for keys that type nothing.
func (k Key) Character() rune {
	switch {
	case k >= KeyA && k <= KeyZ:
		return rune('a' + int(k-KeyA))
	case k >= Key0 && k <= Key9:
		return rune('0' + int(k-Key0))
	}
	for r, key := range punctuation {
		if key == k {
			return r
		}
	}
	return 0
}

// ParseKey parses the name printed by Key.String.
func ParseKey(name string) (Key, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if r := []rune(name); len(r) == 1 {
		if k := keyForRune(r[0]); k != KeyUnknown {
			return k, nil
		}
	}
	for k, n := range keyNames {
		if n == name {
			return k, nil
		}
	}
	return KeyUnknown, fmt.Errorf("unknown key %q", name)
}

func keyForRune(r rune) Key {
	r = unicode.ToLower(r)
	switch {
	case r >= 'a' && r <= 'z':
		return KeyA + Key(r-'a')
	case r >= '0' && r <= '9':
		return Key0 + Key(r-'0')
	}
	return punctuation[r]
}

// KeyboardKey pairs a physical key with the character it produced under the
// active layout. Two KeyboardKeys are equal when both the key and the
// character match; the struct is comparable, so == gives the same answer as
// Equal.
type KeyboardKey struct {
	Key       Key
	Character rune
}

// From returns the KeyboardKey for k carrying its default character.
func From(k Key) KeyboardKey {
	return KeyboardKey{Key: k, Character: k.Character()}
}

// KeyFromRune returns the KeyboardKey that typed r. Characters with no key
// on a US layout, such as 'é', get KeyUnknown and keep the character.
func KeyFromRune(r rune) KeyboardKey {
	return KeyboardKey{Key: keyForRune(r), Character: r}
}

func (k KeyboardKey) Equal(o KeyboardKey) bool {
	return k.Key == o.Key && k.Character == o.Character
}

// Printable reports whether the key produced a character to insert.
func (k KeyboardKey) Printable() bool {
	return k.Character != 0 && unicode.IsPrint(k.Character)
}

func (k KeyboardKey) String() string {
	if k.Character == 0 {
		return fmt.Sprintf("KeyboardKey(%s)", k.Key)
	}
	return fmt.Sprintf("KeyboardKey(%s, %q)", k.Key, k.Character)
}
