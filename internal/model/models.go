package model

// Timing is a named time-of-day slot at which a medication is taken.
type Timing string

const (
	TimingWake        Timing = "wake"
	TimingMorning     Timing = "morning"
	TimingNoon        Timing = "noon"
	TimingEvening     Timing = "evening"
	TimingBeforeSleep Timing = "before_sleep"
)

// DefaultTiming is the slot assigned to medications created before the
// timings field existed (backfilled by the schema upgrade).
const DefaultTiming = TimingMorning

// Timings lists all valid slots in day order.
var Timings = []Timing{TimingWake, TimingMorning, TimingNoon, TimingEvening, TimingBeforeSleep}

// ValidTiming reports whether t is one of the known slots.
func ValidTiming(t Timing) bool {
	for _, known := range Timings {
		if t == known {
			return true
		}
	}
	return false
}

// Medication is an entry in the user's drug roster.
type Medication struct {
	ID      string   `json:"id"`      // UUID, assigned at creation
	Name    string   `json:"name"`    // Display name, required
	Dosage  string   `json:"dosage"`  // Default amount+unit as free text, e.g. "1 tablet"
	Memo    string   `json:"memo"`    // Optional note
	Timings []Timing `json:"timings"` // Slots at which this medication is typically taken
}

// RecordItem is one medication line within an intake record. Name and Dosage
// are denormalized snapshots of the roster entry at logging time; later edits
// to the roster do not touch historical records.
type RecordItem struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`                 // Prescribed dosage
	ActualDosage string `json:"actualDosage,omitempty"` // What was actually taken, if different
	Memo         string `json:"memo,omitempty"`
}

// EffectiveDosage returns the dosage actually taken, falling back to the
// prescribed dosage when no actual dosage was recorded.
func (i RecordItem) EffectiveDosage() string {
	if i.ActualDosage != "" {
		return i.ActualDosage
	}
	return i.Dosage
}

// MedicationRecord is a single logged intake event.
type MedicationRecord struct {
	ID         string       `json:"id"`               // UUID, assigned at creation
	Date       string       `json:"date"`             // YYYY-MM-DD; range-query key
	Time       string       `json:"time"`             // HH:MM, 24-hour
	Timing     Timing       `json:"timing,omitempty"` // Slot this intake corresponds to, if tagged
	Items      []RecordItem `json:"medications"`
	RecordMemo string       `json:"recordMemo,omitempty"`
}
