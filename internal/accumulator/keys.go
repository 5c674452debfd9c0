package accumulator

// keyEvents maps keyboard keys to input events. ASCII operators are
// translated to the display glyphs.
var keyEvents = map[string]Event{
	".": {Type: EventDot},
	"+": {Type: EventToken, Value: "+"},
	"-": {Type: EventToken, Value: "−"},
	"*": {Type: EventToken, Value: "×"},
	"/": {Type: EventToken, Value: "÷"},
	"^": {Type: EventToken, Value: "^"},
	"(": {Type: EventToken, Value: "("},
	")": {Type: EventToken, Value: ")"},

	"Backspace": {Type: EventBackspace},
	"Enter":     {Type: EventEquals},
	"=":         {Type: EventEquals},
	"Escape":    {Type: EventClear},
	"c":         {Type: EventClear},
	"C":         {Type: EventClear},

	// Scientific shortcuts.
	"s": {Type: EventFunction, Value: "sin"},
	"o": {Type: EventFunction, Value: "cos"},
	"t": {Type: EventFunction, Value: "tan"},
	"l": {Type: EventFunction, Value: "log"},
	"n": {Type: EventFunction, Value: "ln"},
	"r": {Type: EventFunction, Value: "√"},
	"p": {Type: EventToken, Value: "π"},
	"e": {Type: EventToken, Value: "e"},
	"q": {Type: EventSquare},
	"_": {Type: EventSign},
	"a": {Type: EventAngle},
}

// EventForKey returns the event bound to a keyboard key, using the
// browser-style key names "Backspace", "Enter" and "Escape".
func EventForKey(key string) (Event, bool) {
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return Event{Type: EventToken, Value: key}, true
	}
	if ev, ok := keyEvents[key]; ok {
		return ev, true
	}
	// Glyphs typed directly behave like their keypad buttons.
	switch key {
	case "−", "×", "÷", "π":
		return Event{Type: EventToken, Value: key}, true
	case "√":
		return Event{Type: EventFunction, Value: key}, true
	}
	return Event{}, false
}
