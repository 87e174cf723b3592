package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// maxRawEcho limita cuanto del texto crudo se conserva cuando el parseo
// falla por completo.
const maxRawEcho = 500

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// SafeParse convierte la salida de un LLM en un objeto JSON con tolerancia
// creciente: parseo directo, extraccion del primer objeto balanceado,
// reparacion de sintaxis y la combinacion de ambas. Si todo falla devuelve
// ok=false y un objeto de error con un eco truncado del texto crudo.
func SafeParse(raw string) (map[string]any, bool) {
	candidates := []string{
		raw,
		ExtractJSONObject(raw),
		repairJSON(raw),
		repairJSON(ExtractJSONObject(raw)),
	}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(candidate), &out); err == nil {
			return out, true
		}
	}
	return map[string]any{
		"error":        "unparseable llm output",
		"raw_response": truncate(raw, maxRawEcho),
	}, false
}

// ExtractJSONObject devuelve el primer objeto {...} balanceado del texto,
// ignorando llaves dentro de strings. Vacio si no hay ninguno.
func ExtractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

// repairJSON arregla los defectos mas comunes de la salida de un LLM:
// fences de markdown, comas colgantes y claves sin comillas.
func repairJSON(s string) string {
	if s == "" {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2":`)
	return s
}
