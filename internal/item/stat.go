package item

import (
	"regexp"
	"strconv"
	"strings"
)

// StatType describes how a stat value is expressed.
type StatType string

const (
	StatFlat         StatType = "flat"
	StatPercent      StatType = "percent"
	StatFlatRange    StatType = "flat-range"
	StatPercentRange StatType = "percent-range"
)

// Range is an inclusive roll range.
type Range struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Stat is one affix line of an item.
type Stat struct {
	Raw     string   `json:"raw"`
	Name    string   `json:"name,omitempty"`
	Value   int      `json:"value"`
	Range   Range    `json:"range"`
	Type    StatType `json:"type"`
	Special bool     `json:"special"`
}

const maxStatLine = 128

var (
	statRangeRe = regexp.MustCompile(`\[(\d+)-(\d+)\]`)
	statValueRe = regexp.MustCompile(`[+-]?\d+%?`)
)

// ParseStat extracts the value, roll range and kind from one stat line.
// Lines longer than the display limit yield an empty flat stat.
func ParseStat(line string, special bool) Stat {
	line = strings.TrimSpace(line)
	if len(line) > maxStatLine {
		return Stat{Type: StatFlat}
	}
	st := Stat{Raw: line, Type: StatFlat, Special: special}
	if m := statRangeRe.FindStringSubmatch(line); m != nil {
		st.Range.From, _ = strconv.Atoi(m[1])
		st.Range.To, _ = strconv.Atoi(m[2])
	}
	if v := statValueRe.FindString(line); v != "" {
		if strings.HasSuffix(v, "%") {
			st.Type = StatPercent
			v = strings.TrimSuffix(v, "%")
		}
		st.Value, _ = strconv.Atoi(v)
	}
	return st
}

// ParseStats parses a newline separated stat block, skipping blank lines.
func ParseStats(block string) []Stat {
	var out []Stat
	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, ParseStat(line, false))
	}
	return out
}

// RangeToValue rewrites "+[10-20] Strength" style lines so the first value
// takes the range's place and the range is appended, e.g. "+10 Strength[10-20]".
// Lines without both a range and a value are returned unchanged.
func RangeToValue(line string) string {
	rng := statRangeRe.FindString(line)
	val := statValueRe.FindString(line)
	if rng == "" || val == "" {
		return line
	}
	return strings.Replace(line, rng, val, 1) + rng
}
