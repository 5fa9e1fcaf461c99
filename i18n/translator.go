package i18n

import "sync"

// Translator retrieves localized messages for issue codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "max").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "de":
		switch code {
		case "invalid_type":
			return "ungültiger Typ"
		case "required":
			return "Pflichtfeld fehlt"
		case "unknown_key":
			return "unbekanntes Feld"
		case "too_short":
			return "zu kurz"
		case "too_long":
			return "zu lang"
		case "length":
			return "falsche Länge"
		case "pattern":
			return "ungültiges Zeichenmuster"
		case "invalid_enum":
			return "unzulässiger Code"
		case "invalid_format":
			return "ungültiges Format"
		case "parse_error":
			return "Syntaxfehler"
		case "conflict":
			return "Registrierungskonflikt"
		case "definition":
			return "ungültige Segmentdefinition"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "required":
			return "required field missing"
		case "unknown_key":
			return "unknown field"
		case "too_short":
			return "too short"
		case "too_long":
			return "too long"
		case "length":
			return "wrong length"
		case "pattern":
			return "invalid characters"
		case "invalid_enum":
			return "code not allowed"
		case "invalid_format":
			return "invalid format"
		case "parse_error":
			return "parse error"
		case "conflict":
			return "registration conflict"
		case "definition":
			return "invalid schema definition"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"de").
func SetLanguage(lang string) {
	if lang != "de" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). A nil Translator restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
