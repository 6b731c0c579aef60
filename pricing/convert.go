package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseDilutionRatioInput reads a dilution ratio typed as "1:100" or "100" and
// returns X. Anything unparseable yields 0.
func ParseDilutionRatioInput(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	parts := strings.Split(s, ":")
	if len(parts) == 2 && strings.TrimSpace(parts[0]) == "1" {
		return parseNonNegative(parts[1])
	}
	return parseNonNegative(s)
}

// FormatDilutionRatio renders a ratio back into the "1:X" form used in forms.
func FormatDilutionRatio(ratio float64) string {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return ""
	}
	return "1:" + strconv.FormatFloat(ratio, 'f', -1, 64)
}

// ParseHHMMToMinutes converts "HH:MM" into minutes. Invalid input yields 0.
func ParseHHMMToMinutes(s string) int {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0
	}

	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hours < 0 {
		return 0
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minutes < 0 || minutes >= 60 {
		return 0
	}

	return hours*60 + minutes
}

// ParseDuration reads an execution time typed as "HH:MM" or as whole minutes.
// Zero is valid in any padding ("0", "0:0", "000:00"). Blank input is not a
// duration.
func ParseDuration(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	if !strings.Contains(raw, ":") {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hours < 0 {
		return 0, false
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minutes < 0 || minutes >= 60 {
		return 0, false
	}
	return hours*60 + minutes, true
}

// FormatMinutesToHHMM converts minutes into a zero padded "HH:MM" string.
func FormatMinutesToHHMM(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseAmount is the lenient numeric coercion used for derived values: blank or
// malformed input becomes 0. Decimal commas are accepted.
func ParseAmount(s string) float64 {
	v, err := strconv.ParseFloat(normalizeNumber(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseNonNegative(s string) float64 {
	v := ParseAmount(s)
	if v < 0 {
		return 0
	}
	return v
}

func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return s
}
