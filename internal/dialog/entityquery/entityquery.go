// internal/dialog/entityquery/entityquery.go

// Package entityquery looks up entities of a turn by category tag.
package entityquery

import "kiosk-dialog/internal/models"

// FindFirst returns the first entity tagged category, or nil.
func FindFirst(entities []models.Entity, category string) *models.Entity {
	return FindFirstOr(entities, category, nil)
}

// FindFirstOr returns the first entity tagged category, or def when there is none.
func FindFirstOr(entities []models.Entity, category string, def *models.Entity) *models.Entity {
	for i := range entities {
		if entities[i].Entity == category {
			e := entities[i]
			return &e
		}
	}
	return def
}

// Has reports whether any entity is tagged category.
func Has(entities []models.Entity, category string) bool {
	return FindFirst(entities, category) != nil
}

// FindAll returns every entity tagged category in input order.
// The result is never nil.
func FindAll(entities []models.Entity, category string) []models.Entity {
	result := make([]models.Entity, 0)
	for _, e := range entities {
		if e.Entity == category {
			result = append(result, e)
		}
	}
	return result
}
