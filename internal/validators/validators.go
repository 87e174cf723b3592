// Package validators centraliza la validacion y saneamiento de entrada
// externa antes de que toque la capa de dominio.
package validators

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidUUID       = errors.New("invalid uuid")
	ErrInvalidQuestionID = errors.New("invalid question id")
	ErrValueOutOfRange   = errors.New("response value out of range")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrWeakPassword      = errors.New("password does not meet minimum length")
	ErrEmptyAnswers      = errors.New("answers payload is empty")
)

const (
	// MinPasswordLength es el largo minimo aceptado en signup y reset.
	MinPasswordLength = 8

	// MaxTextLength limita campos de texto libre.
	MaxTextLength = 2000

	scaleMin = 1
	scaleMax = 5
)

var (
	questionIDRe = regexp.MustCompile(`^Q\d{3}$`)
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
)

// UUID valida que s sea un UUID bien formado y lo devuelve normalizado.
func UUID(s string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidUUID, s)
	}
	return id.String(), nil
}

// QuestionID valida el formato Q seguido de tres digitos.
func QuestionID(s string) error {
	if !questionIDRe.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidQuestionID, s)
	}
	return nil
}

// ResponseValue valida que el valor este dentro de la escala Likert.
func ResponseValue(v int) error {
	if v < scaleMin || v > scaleMax {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrValueOutOfRange, v, scaleMin, scaleMax)
	}
	return nil
}

// SanitizeText quita tags HTML, colapsa espacios de borde y trunca.
func SanitizeText(s string) string {
	s = htmlTagRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if len(s) > MaxTextLength {
		s = s[:MaxTextLength]
	}
	return s
}

// Email valida y normaliza una direccion de correo.
func Email(s string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}

// Password aplica la politica minima sin registrar el contenido.
func Password(s string) error {
	if len(s) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Answers valida un payload de respuestas completo. Devuelve el map
// saneado (ids con formato valido y valores en escala) junto con la lista
// de problemas; el caller decide si un payload parcialmente invalido se
// rechaza o se puntua con lo que quedo.
func Answers(raw map[string]int) (map[string]int, []string, error) {
	if len(raw) == 0 {
		return nil, nil, ErrEmptyAnswers
	}
	clean := make(map[string]int, len(raw))
	var problems []string
	for id, value := range raw {
		if err := QuestionID(id); err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if err := ResponseValue(value); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		clean[id] = value
	}
	if len(clean) == 0 {
		return nil, problems, fmt.Errorf("%w: no valid answers after sanitization", ErrEmptyAnswers)
	}
	return clean, problems, nil
}
