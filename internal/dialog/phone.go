// internal/dialog/phone.go
package dialog

import (
	"context"
	"strings"

	"kiosk-dialog/internal/dialog/entityquery"
	"kiosk-dialog/internal/models"
)

// PhoneCategory maps a phone entity category to its directory key.
type PhoneCategory struct {
	Category string
	Key      string
}

// PhoneCategories is ordered: replies list numbers in this order.
var PhoneCategories = []PhoneCategory{
	{"accounting", "accounting"},
	{"manager", "manager"},
	{"manager_chores", "manager_chores"},
	{"manager_education", "manager_education"},
	{"medical_office", "medical_office"},
	{"HR", "HR"},
}

// phone queries the directory once per present category. Any failed lookup
// fails the whole turn rather than answering with a partial list.
func (d *Dispatcher) phone(ctx context.Context, entities []models.Entity) Result {
	phones := make([]string, 0, len(PhoneCategories))
	for _, pc := range PhoneCategories {
		if !entityquery.Has(entities, pc.Category) {
			continue
		}

		lctx, cancel := d.lookupContext(ctx)
		value, err := d.sources.Directory.Phone(lctx, pc.Key)
		cancel()
		if err != nil {
			return d.unavailable(RulePhone, "directory", pc.Key, err)
		}
		phones = append(phones, value)
	}

	if len(phones) == 0 {
		return d.fallback(RulePhone)
	}
	return d.answered(RulePhone, strings.Join(phones, ". "))
}
