// internal/app/features/skills/stats.go
package skills

import (
	"math"
	"sort"

	"github.com/dalemusser/bilanhub/internal/domain/models"
)

// Stats summarizes the evaluations of a bilan.
type Stats struct {
	TotalSkills    int             `json:"totalSkills"`
	AverageLevel   float64         `json:"averageLevel"`
	ValidatedCount int             `json:"validatedCount"`
	ValidationRate int             `json:"validationRate"`
	CategoryStats  []CategoryStats `json:"categoryStats"`
}

type CategoryStats struct {
	Category     string  `json:"category"`
	Count        int     `json:"count"`
	AverageLevel float64 `json:"averageLevel"`
}

// ComputeStats rounds the overall average to one decimal and the
// validation rate to a whole percent. Uncategorized skills count under
// models.DefaultSkillCategory. Categories are sorted by name.
func ComputeStats(evals []models.SkillsEvaluation) Stats {
	s := Stats{TotalSkills: len(evals), CategoryStats: []CategoryStats{}}
	if len(evals) == 0 {
		return s
	}

	type acc struct{ count, total int }
	byCat := map[string]*acc{}
	sum := 0
	for _, e := range evals {
		sum += e.Level
		if e.ValidatedByConsultant {
			s.ValidatedCount++
		}
		cat := e.Category
		if cat == "" {
			cat = models.DefaultSkillCategory
		}
		c, ok := byCat[cat]
		if !ok {
			c = &acc{}
			byCat[cat] = c
		}
		c.count++
		c.total += e.Level
	}

	n := float64(len(evals))
	s.AverageLevel = math.Round(float64(sum)/n*10) / 10
	s.ValidationRate = int(math.Round(float64(s.ValidatedCount) / n * 100))
	for cat, c := range byCat {
		s.CategoryStats = append(s.CategoryStats, CategoryStats{
			Category:     cat,
			Count:        c.count,
			AverageLevel: float64(c.total) / float64(c.count),
		})
	}
	sort.Slice(s.CategoryStats, func(i, j int) bool {
		return s.CategoryStats[i].Category < s.CategoryStats[j].Category
	})
	return s
}
