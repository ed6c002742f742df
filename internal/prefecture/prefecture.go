package prefecture

import (
	"regexp"
	"sort"
	"strings"
)

// PortQuarantine is the pseudo-prefecture used for cases found by airport
// and port quarantine.
const PortQuarantine = "Port Quarantine"

// Count is the number of canonical prefectures.
const Count = 47

var (
	// FromJapanese is the union of Short and Long.
	FromJapanese = union(Short, Long)

	names     = sortedValues(Long)
	longNames = invert(Long)
	pattern   = compilePattern(FromJapanese)
)

// Names returns the 47 canonical prefecture names in alphabetical order.
// The returned slice is a copy.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Lookup resolves a short or long Japanese name to its canonical name.
func Lookup(ja string) (string, bool) {
	name, ok := FromJapanese[ja]
	return name, ok
}

// LongName returns the full Japanese name for a canonical name.
func LongName(canonical string) (string, bool) {
	ja, ok := longNames[canonical]
	return ja, ok
}

// IDPrefix returns the patient-number prefix for a canonical name,
// including PortQuarantine.
func IDPrefix(canonical string) (string, bool) {
	p, ok := idPrefixes[canonical]
	return p, ok
}

// Canonicalize matches name case-insensitively against the canonical names
// and PortQuarantine, returning the canonical spelling. Japanese names are
// resolved through Lookup.
func Canonicalize(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if en, ok := Lookup(name); ok {
		return en, true
	}
	for canonical := range idPrefixes {
		if strings.EqualFold(canonical, name) {
			return canonical, true
		}
	}
	return "", false
}

// Pattern returns the alternation of every Japanese form, longest first.
func Pattern() *regexp.Regexp {
	return pattern
}

// Find returns the canonical name of the first prefecture mentioned in text.
func Find(text string) (string, bool) {
	m := pattern.FindString(text)
	if m == "" {
		return "", false
	}
	return Lookup(m)
}

// Order returns the values of counts positioned by Names. Missing
// prefectures are reported as zero.
func Order(counts map[string]int) []int {
	out := make([]int, len(names))
	for i, name := range names {
		out[i] = counts[name]
	}
	return out
}

func union(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func sortedValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// compilePattern builds an alternation of every Japanese form. Longer names
// come first so 和歌山県 is preferred over 和歌山 at the same position.
func compilePattern(m map[string]string) *regexp.Regexp {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, regexp.QuoteMeta(k))
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return regexp.MustCompile("(" + strings.Join(keys, "|") + ")")
}
