package illuminate

import (
	"strings"

	"github.com/ardenvale/illuminator-go/internal/models"
)

// Tones the rewrite operation knows how to ask for. "archival" is the
// fallback when nothing about the record suggests otherwise.
var Tones = []string{"archival", "mythic", "elegiac", "triumphal", "clinical"}

// SuggestTone picks a rewrite tone for a record that doesn't carry one yet.
// The heuristics mirror how historians tag material: early eras and legend
// material read mythic, eras that ended in ruin read elegiac, and so on.
func SuggestTone(era, currentTone string) string {
	if currentTone != "" {
		return currentTone
	}
	e := strings.ToLower(era)
	switch {
	case strings.Contains(e, "dawn") || strings.Contains(e, "first") || strings.Contains(e, "myth"):
		return "mythic"
	case strings.Contains(e, "fall") || strings.Contains(e, "ruin") || strings.Contains(e, "last"):
		return "elegiac"
	case strings.Contains(e, "conquest") || strings.Contains(e, "ascend"):
		return "triumphal"
	default:
		return "archival"
	}
}

// BuildInterleavedQueue orders a mixed annotation run so chronicles and
// entities alternate. Annotating a chronicle primes the model's context for
// the entities it mentions, so strict alternation beats grouping by kind.
// Whichever list runs out first, the remainder is appended in order.
func BuildInterleavedQueue(chronicles, entities []models.WorkItem) []models.WorkItem {
	queue := make([]models.WorkItem, 0, len(chronicles)+len(entities))
	i, j := 0, 0
	for i < len(chronicles) || j < len(entities) {
		if i < len(chronicles) {
			queue = append(queue, chronicles[i])
			i++
		}
		if j < len(entities) {
			queue = append(queue, entities[j])
			j++
		}
	}
	return queue
}
