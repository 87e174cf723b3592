package scorer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"lifesync-engine/internal/domain"
)

// hashResponses produce un hash estable del input: pares id=valor ordenados
// por id, independiente del orden de iteracion del map.
func hashResponses(responses map[string]int) string {
	ids := make([]string, 0, len(responses))
	for id := range responses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "%s=%d;", id, responses[id])
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// hashResult fija los campos derivados del resultado para auditoria de
// paridad entre versiones del motor.
func hashResult(r domain.ScoringResult) string {
	var b strings.Builder
	for _, trait := range domain.TraitCodes {
		fmt.Fprintf(&b, "%s=%.3f;", trait, r.Ocean[trait])
	}
	fmt.Fprintf(&b, "mbti=%s;code=%s;conf=%.2f;ver=%s", r.MBTIProxy, r.PersonalityCode, r.Confidence, r.Metadata.ScoringVersion)
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
