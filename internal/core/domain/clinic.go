package domain

import "time"

// UnknownClinicName is shown for appointments whose clinic record is missing.
const UnknownClinicName = "Unknown Clinic"

// DateLayout is the key format of Clinic.Availability.
const DateLayout = "2006-01-02"

// Clinic is a bookable location.
type Clinic struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Address      string          `json:"address"`
	Phone        string          `json:"phone"`
	Services     []string        `json:"services"`
	Availability map[string]bool `json:"availability"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DateKey normalises t to the calendar date used as an availability key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// NormalizeServices trims duplicates and blanks while keeping input order.
func NormalizeServices(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
