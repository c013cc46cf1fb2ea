package dataprocessing

import (
	"math"
	"strings"

	"github.com/hbollon/go-edlib"
)

// FuzzyThreshold is the minimum similarity ratio accepted by the fuzzy pass.
const FuzzyThreshold = 80

// Synonyms maps each logical field to its candidate header phrases in priority order.
type Synonyms map[FieldKey][]string

// DefaultSynonyms is the header vocabulary used by common order/invoice exporters.
var DefaultSynonyms = Synonyms{
	FieldOrderDate:     {"so date", "sales order date", "order date"},
	FieldOrderVolume:   {"so total cbm", "sales order total cbm", "total cbm", "so cbm"},
	FieldInvoiceDate:   {"sales invoice date", "si date", "invoice date"},
	FieldInvoiceVolume: {"si total cbm", "sales invoice total cbm", "invoice cbm", "si cbm"},
	FieldUnitVolume:    {"per unit cbm", "unit cbm", "cbm per unit"},
	FieldOrderQty:      {"sales order qty", "so qty", "order qty", "quantity"},
	FieldInvoiceQty:    {"sales invoice qty", "si qty", "invoice qty"},
}

// NormalizeColumnName lower-cases name and keeps only ASCII letters and digits,
// so "SO_Total_CBM", "so total cbm" and "SO-TOTAL-CBM" compare equal.
func NormalizeColumnName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SimilarityRatio scores two strings from 0 (unrelated) to 100 (identical)
// from their insert/delete edit distance relative to their combined length.
// A substitution costs two edits, so "abc" and "xyz" score 0.
func SimilarityRatio(a, b string) int {
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 100
	}
	dist := edlib.LCSEditDistance(a, b)
	return int(math.Round(100 * float64(total-dist) / float64(total)))
}

type normalizedHeader struct {
	key      string
	original string
}

// normalizeHeaders keeps table order; the first header wins when two
// normalize to the same key.
func normalizeHeaders(headers []string) []normalizedHeader {
	seen := make(map[string]bool, len(headers))
	out := make([]normalizedHeader, 0, len(headers))
	for _, h := range headers {
		key := NormalizeColumnName(h)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, normalizedHeader{key: key, original: h})
	}
	return out
}

// ResolveColumn returns the raw header that best matches any of the
// candidate phrases. An exact normalized match on the earliest candidate wins
// outright; otherwise the highest fuzzy score at or above FuzzyThreshold is
// taken, ties going to the first pair evaluated (candidates outer, headers
// inner). The boolean is false when nothing qualifies.
func ResolveColumn(headers []string, candidates []string) (string, bool) {
	normalized := normalizeHeaders(headers)

	for _, candidate := range candidates {
		want := NormalizeColumnName(candidate)
		for _, h := range normalized {
			if h.key == want {
				return h.original, true
			}
		}
	}

	best := ""
	bestScore := 0
	for _, candidate := range candidates {
		want := NormalizeColumnName(candidate)
		for _, h := range normalized {
			score := SimilarityRatio(want, h.key)
			if score > bestScore && score >= FuzzyThreshold {
				bestScore = score
				best = h.original
			}
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// Resolve looks up one logical field against headers.
func (s Synonyms) Resolve(headers []string, key FieldKey) (string, bool) {
	candidates, ok := s[key]
	if !ok {
		return "", false
	}
	return ResolveColumn(headers, candidates)
}
