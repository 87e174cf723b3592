package scorer

import (
	"fmt"

	"lifesync-engine/internal/domain"
	"lifesync-engine/internal/questionbank"
)

// Validate revisa un set de respuestas contra el catalogo y arma un reporte
// de cobertura. No modifica las respuestas ni corta el flujo: los problemas
// se reportan como warnings y el caller decide si rechaza.
func Validate(bank *questionbank.Bank, responses map[string]int) domain.ValidationReport {
	scaleMin, scaleMax := bank.Scale()

	report := domain.ValidationReport{
		IsValid:        true,
		Warnings:       []domain.ValidationWarning{},
		Coverage:       make(map[string]int, len(domain.TraitCodes)),
		MissingTraits:  []string{},
		TotalResponses: len(responses),
	}
	for _, trait := range domain.TraitCodes {
		report.Coverage[trait] = 0
	}

	unknown := 0
	outOfRange := 0
	for qid, value := range responses {
		q, ok := bank.Get(qid)
		if !ok {
			unknown++
			continue
		}
		if value < scaleMin || value > scaleMax {
			outOfRange++
			continue
		}
		report.Coverage[q.Trait]++
		report.ValidResponses++
	}

	if unknown > 0 {
		// Un id desconocido invalida el set aunque la cobertura alcance.
		report.IsValid = false
		report.Warnings = append(report.Warnings, domain.ValidationWarning{
			Severity: "error",
			Type:     "unknown_question",
			Message:  fmt.Sprintf("%d responses reference unknown question ids", unknown),
			Count:    unknown,
		})
	}
	if outOfRange > 0 {
		report.Warnings = append(report.Warnings, domain.ValidationWarning{
			Severity: "warning",
			Type:     "out_of_range",
			Message:  fmt.Sprintf("%d responses fall outside the %d-%d scale", outOfRange, scaleMin, scaleMax),
			Count:    outOfRange,
		})
	}

	for _, trait := range domain.TraitCodes {
		if report.Coverage[trait] < MinQuestionsPerTrait {
			report.IsValid = false
			report.MissingTraits = append(report.MissingTraits, trait)
			report.Warnings = append(report.Warnings, domain.ValidationWarning{
				Severity:  "error",
				Type:      "missing_trait",
				Trait:     trait,
				TraitName: domain.TraitNames[trait],
				Message: fmt.Sprintf("trait %s has %d valid responses, needs at least %d",
					domain.TraitNames[trait], report.Coverage[trait], MinQuestionsPerTrait),
				Count:    report.Coverage[trait],
				Required: MinQuestionsPerTrait,
			})
		}
	}
	return report
}
