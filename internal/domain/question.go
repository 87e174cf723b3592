package domain

// Question es un item inmutable del banco de preguntas OCEAN.
type Question struct {
	ID      string  `json:"id"`
	Text    string  `json:"text"`
	Trait   string  `json:"trait"`
	Facet   string  `json:"facet"`
	Reverse bool    `json:"reverse"`
	Weight  float64 `json:"weight"`
}

// Traits en orden canonico. Todos los recorridos por traits usan este orden.
var TraitCodes = []string{"O", "C", "E", "A", "N"}

// TraitNames mapea codigos OCEAN a nombres largos.
var TraitNames = map[string]string{
	"O": "Openness",
	"C": "Conscientiousness",
	"E": "Extraversion",
	"A": "Agreeableness",
	"N": "Neuroticism",
}
