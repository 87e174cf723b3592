package scorer

// axisMidpoint separa los dos polos de cada eje MBTI. Un score exactamente
// en el punto medio cae del lado alto del eje (E, N, F, J).
const axisMidpoint = 0.5

// Umbrales de nivel de neuroticismo.
const (
	neuroticismLow  = 0.35
	neuroticismHigh = 0.65
)

// deriveMBTI mapea los cinco traits a un proxy MBTI de cuatro letras.
// Requiere perfil completo: el caller solo lo invoca con los cinco traits
// presentes.
func deriveMBTI(traits map[string]*float64) string {
	e := *traits["E"]
	o := *traits["O"]
	a := *traits["A"]
	c := *traits["C"]

	code := make([]byte, 0, 4)
	if e >= axisMidpoint {
		code = append(code, 'E')
	} else {
		code = append(code, 'I')
	}
	if o >= axisMidpoint {
		code = append(code, 'N')
	} else {
		code = append(code, 'S')
	}
	if a >= axisMidpoint {
		code = append(code, 'F')
	} else {
		code = append(code, 'T')
	}
	if c >= axisMidpoint {
		code = append(code, 'J')
	} else {
		code = append(code, 'P')
	}
	return string(code)
}

// neuroticismLevel clasifica el score de neuroticismo en tres bandas.
func neuroticismLevel(n float64) string {
	switch {
	case n < neuroticismLow:
		return "Stable"
	case n < neuroticismHigh:
		return "Balanced"
	default:
		return "Sensitive"
	}
}
