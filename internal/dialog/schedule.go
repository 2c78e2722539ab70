// internal/dialog/schedule.go
package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kiosk-dialog/internal/datasource"
	"kiosk-dialog/internal/dialog/entityquery"
	"kiosk-dialog/internal/models"
)

// TimeEntity carries the requested date as an ISO date-time value.
const TimeEntity = "time"

// ScheduleTable describes one daily schedule rule.
type ScheduleTable struct {
	Source   string   // datasource schedule name
	Slots    []string // entity categories, in reply order
	Template string   // date, joined slot values
	Nothing  string   // date
}

var MenuTable = ScheduleTable{
	Source:   datasource.ScheduleMenu,
	Slots:    []string{"time_breakfast", "time_dinner", "time_afternoon_tea", "time_supper"},
	Template: "Меню на %s: %s",
	Nothing:  "На %s меню не запланировано",
}

var EventPlanTable = ScheduleTable{
	Source: datasource.ScheduleEvents,
	Slots: []string{
		"group_1", "group_2", "group_3", "group_4", "group_5", "group_6",
		"group_7", "group_8", "group_9", "group_10", "group_11", "group_12",
	},
	Template: "План мероприятий на %s: %s",
	Nothing:  "На %s мероприятий не запланировано",
}

// requestedDay returns the date part of the first time entity, or today
// when there is none or it carries no date.
func requestedDay(entities []models.Entity, today string) string {
	e := entityquery.FindFirst(entities, TimeEntity)
	if e == nil {
		return today
	}
	day, _, _ := strings.Cut(strings.TrimSpace(e.Value), "T")
	if day == "" {
		return today
	}
	return day
}

// schedule answers only for today; other dates get the nothing-scheduled
// message without touching the source. Explicitly requested slots must exist.
// When serving the whole day, absent slots are skipped.
func (d *Dispatcher) schedule(ctx context.Context, kind RuleKind, table ScheduleTable, src datasource.Schedule, entities []models.Entity) Result {
	today := d.now().In(d.config.Location).Format(datasource.DayLayout)
	day := requestedDay(entities, today)
	if day != today {
		return d.answered(kind, fmt.Sprintf(table.Nothing, day))
	}

	slots := make([]string, 0, len(table.Slots))
	for _, slot := range table.Slots {
		if entityquery.Has(entities, slot) {
			slots = append(slots, slot)
		}
	}
	wholeDay := len(slots) == 0
	if wholeDay {
		slots = table.Slots
	}

	values := make([]string, 0, len(slots))
	for _, slot := range slots {
		lctx, cancel := d.lookupContext(ctx)
		value, err := src.Slot(lctx, day, slot)
		cancel()
		if err != nil {
			if wholeDay && errors.Is(err, datasource.ErrNotFound) {
				continue
			}
			return d.unavailable(kind, table.Source, slot, err)
		}
		values = append(values, value)
	}

	if len(values) == 0 {
		return d.answered(kind, fmt.Sprintf(table.Nothing, day))
	}
	return d.answered(kind, fmt.Sprintf(table.Template, day, strings.Join(values, ", ")))
}
