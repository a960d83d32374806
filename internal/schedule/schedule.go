// Package schedule implements the pure scheduling core: weekday
// expansion of recurring booking requests and per-period availability
// status.  Nothing in this package touches the database; the booking
// handlers feed it catalog and occupancy data from the repositories.
//
// Dates are handled as opaque "YYYY-MM-DD" strings throughout and are
// compared lexicographically.  The only parsing ever performed is a
// civil-date parse in UTC to derive the weekday, so no timezone-aware
// constructor can shift a date by one day.
package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the canonical wire format for calendar dates.
const DateLayout = "2006-01-02"

// Status values reported per period for a (room, date) query.  Exactly
// one of them applies to each period.
const (
	StatusDisponivel = "disponivel"
	StatusOcupado    = "ocupado"
	StatusPassou     = "passou"
)

// dias holds the weekday labels used by the client, indexed by
// time.Weekday (Sunday first).
var dias = [7]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sab"}

// DiaLabel returns the weekday label for a "YYYY-MM-DD" date.  The
// date is parsed as a civil date in UTC.
func DiaLabel(data string) (string, error) {
	t, err := time.ParseInLocation(DateLayout, data, time.UTC)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", data, err)
	}
	return dias[t.Weekday()], nil
}

// ValidDia reports whether s is a known weekday label.
func ValidDia(s string) bool {
	for _, d := range dias {
		if d == s {
			return true
		}
	}
	return false
}

// NormalizeDias validates, deduplicates and orders a weekday label set
// (Sunday first).  It returns an error naming the first unknown label.
func NormalizeDias(in []string) ([]string, error) {
	seen := make(map[string]bool, len(in))
	for _, d := range in {
		d = strings.TrimSpace(d)
		if !ValidDia(d) {
			return nil, fmt.Errorf("unknown weekday label %q", d)
		}
		seen[d] = true
	}
	out := make([]string, 0, len(seen))
	for _, d := range dias {
		if seen[d] {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("weekday set is empty")
	}
	return out, nil
}

// ValidData reports whether data is a well-formed "YYYY-MM-DD" date.
func ValidData(data string) bool {
	_, err := time.ParseInLocation(DateLayout, data, time.UTC)
	return err == nil
}

// Hoje returns today's date in the given location formatted as
// "YYYY-MM-DD".  Handlers pass time.UTC; tests pass a fixed zone.
func Hoje(loc *time.Location) string {
	return time.Now().In(loc).Format(DateLayout)
}

// Passou reports whether data falls strictly before hoje.  Both are
// "YYYY-MM-DD" strings, so a lexicographic comparison is exact.
func Passou(data, hoje string) bool {
	return data < hoje
}

// ExpandDates enumerates every date in [dataInicio, dataFim] whose
// weekday label is contained in dias.  Both bounds are inclusive and
// must be well-formed, with dataInicio <= dataFim.  The returned
// dates are in ascending order.  An empty result is not an error;
// callers decide whether a request that matches no dates is valid.
func ExpandDates(dataInicio, dataFim string, diasSet []string) ([]string, error) {
	start, err := time.ParseInLocation(DateLayout, dataInicio, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", dataInicio, err)
	}
	end, err := time.ParseInLocation(DateLayout, dataFim, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", dataFim, err)
	}
	if dataInicio > dataFim {
		return nil, fmt.Errorf("start date %s after end date %s", dataInicio, dataFim)
	}
	want := make(map[string]bool, len(diasSet))
	for _, d := range diasSet {
		want[d] = true
	}
	var out []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if want[dias[d.Weekday()]] {
			out = append(out, d.Format(DateLayout))
		}
	}
	return out, nil
}

// Slot is a (room, period, date) triple, the unit of conflict
// detection.
type Slot struct {
	SalaID    uint64 `json:"fk_id_sala"`
	PeriodoID uint64 `json:"fk_id_periodo"`
	Data      string `json:"data"`
}

// ExpandSlots crosses the expanded date set with the requested period
// ids, yielding the candidate slots of a recurrence request.  Slots
// are ordered by date then period id so batch inserts and conflict
// reports are deterministic.
func ExpandSlots(salaID uint64, periodoIDs []uint64, dates []string) []Slot {
	slots := make([]Slot, 0, len(dates)*len(periodoIDs))
	for _, d := range dates {
		for _, p := range periodoIDs {
			slots = append(slots, Slot{SalaID: salaID, PeriodoID: p, Data: d})
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Data != slots[j].Data {
			return slots[i].Data < slots[j].Data
		}
		return slots[i].PeriodoID < slots[j].PeriodoID
	})
	return slots
}

// StatusFor computes the availability status of every period id for
// one (room, date) query.  ocupados is the set of period ids with an
// active reservation on that room and date.  When the date is in the
// past every period reports passou regardless of occupancy, matching
// how the client dims historical cards.
func StatusFor(periodoIDs []uint64, ocupados map[uint64]bool, data, hoje string) map[uint64]string {
	out := make(map[uint64]string, len(periodoIDs))
	past := Passou(data, hoje)
	for _, id := range periodoIDs {
		switch {
		case past:
			out[id] = StatusPassou
		case ocupados[id]:
			out[id] = StatusOcupado
		default:
			out[id] = StatusDisponivel
		}
	}
	return out
}

// HoraCurta trims a "HH:MM:SS" time to "HH:MM" for display, the same
// slicing the client applies to period times.
func HoraCurta(h string) string {
	if len(h) >= 5 {
		return h[:5]
	}
	return h
}
