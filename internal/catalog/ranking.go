package catalog

import (
	"sort"
	"strings"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
)

// relevanceScore computes the integer match score for one product against a
// lowercased term. Weights favour product code over name over description.
func relevanceScore(product models.Product, term string) int {
	if term == "" {
		return 0
	}

	score := 0
	if product.ProductCode != nil {
		code := strings.ToLower(*product.ProductCode)
		if strings.Contains(code, term) {
			score += 3
			if code == term {
				score += 2
			}
		}
	}

	name := strings.ToLower(product.Name)
	if strings.Contains(name, term) {
		score += 2
		if name == term {
			score++
		}
	}

	if strings.Contains(strings.ToLower(product.Description), term) {
		score++
	}

	return score
}

// rankBySearch reorders a single fetched page in place by relevance score
// descending. Ties keep available products first, then newer products first.
func rankBySearch(products []models.Product, term string) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return
	}

	scores := make(map[int64]int, len(products))
	for _, p := range products {
		scores[p.ID] = relevanceScore(p, term)
	}

	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if scores[a.ID] != scores[b.ID] {
			return scores[a.ID] > scores[b.ID]
		}
		return lessByFreshness(a, b)
	})
}

// rankByProductCode reorders a page so exact code matches come first. Within
// each group the availability/recency tie-break applies.
func rankByProductCode(products []models.Product, code string) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return
	}

	exact := func(p models.Product) bool {
		return p.ProductCode != nil && strings.EqualFold(*p.ProductCode, code)
	}

	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if exact(a) != exact(b) {
			return exact(a)
		}
		return lessByFreshness(a, b)
	})
}

// lessByFreshness is the shared tie-break: available before unavailable, then
// newest first.
func lessByFreshness(a, b models.Product) bool {
	if a.IsAvailable != b.IsAvailable {
		return a.IsAvailable
	}
	return a.CreatedAt.After(b.CreatedAt)
}
