package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lifesync-engine/internal/persona"
	"lifesync-engine/internal/questionbank"
	"lifesync-engine/internal/repository"
	"lifesync-engine/internal/scorer"
)

// Herramienta offline: exporta el catalogo de preguntas, puntua un archivo
// de respuestas sin servidor, o vuelca el historial de un usuario a CSV.
func main() {
	questions := flag.Bool("questions", false, "exportar el catalogo de preguntas como JSON")
	limit := flag.Int("limit", 0, "limite de preguntas a exportar (0 = todas)")
	answersPath := flag.String("answers", "", "puntuar un archivo JSON {\"Q001\": 3, ...}")
	historyUser := flag.String("history", "", "exportar el historial de este user_id como CSV (usa DATABASE_URL)")
	out := flag.String("out", "", "archivo de salida (default stdout)")
	flag.Parse()

	dst := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("creando salida: %v", err)
		}
		defer f.Close()
		dst = f
	}

	switch {
	case *questions:
		bank := mustBank()
		enc := json.NewEncoder(dst)
		enc.SetIndent("", "  ")
		if err := enc.Encode(bank.Questions(*limit)); err != nil {
			log.Fatal(err)
		}
	case *answersPath != "":
		scoreFile(*answersPath, dst)
	case *historyUser != "":
		exportHistory(*historyUser, dst)
	default:
		fmt.Fprintln(os.Stderr, "uso: export -questions [-limit N] | export -answers archivo.json | export -history user_id [-out archivo.csv]")
		os.Exit(2)
	}
}

func mustBank() *questionbank.Bank {
	bank, err := questionbank.Load()
	if err != nil {
		log.Fatalf("question bank: %v", err)
	}
	return bank
}

func scoreFile(path string, dst *os.File) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("leyendo respuestas: %v", err)
	}
	var answers map[string]int
	if err := json.Unmarshal(raw, &answers); err != nil {
		log.Fatalf("parseando respuestas: %v", err)
	}

	result := scorer.New(mustBank()).Score(answers)
	registry, err := persona.Load()
	if err != nil {
		log.Fatalf("persona registry: %v", err)
	}

	enc := json.NewEncoder(dst)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{
		"result":  result,
		"persona": registry.Resolve(result.PersonaID),
	}); err != nil {
		log.Fatal(err)
	}
}

func exportHistory(userID string, dst *os.File) {
	_ = godotenv.Load()
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL no esta configurada")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("conectando a la base: %v", err)
	}
	defer pool.Close()

	repo := repository.NewPgAssessmentRepository(pool, zap.NewNop())
	w := csv.NewWriter(dst)
	if err := w.Write([]string{"assessment_id", "created_at", "quiz_type", "mbti_code", "persona_id", "confidence", "needs_retake"}); err != nil {
		log.Fatal(err)
	}

	for page := 1; ; page++ {
		hp, err := repo.History(ctx, userID, page, 100)
		if err != nil {
			log.Fatalf("leyendo historial: %v", err)
		}
		for _, s := range hp.Data {
			row := []string{
				s.ID,
				s.CreatedAt.UTC().Format(time.RFC3339),
				s.QuizType,
				s.MBTICode,
				s.PersonaID,
				strconv.FormatFloat(s.Confidence, 'f', 2, 64),
				strconv.FormatBool(s.NeedsRetake),
			}
			if err := w.Write(row); err != nil {
				log.Fatal(err)
			}
		}
		if len(hp.Data) < 100 {
			break
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatal(err)
	}
}
