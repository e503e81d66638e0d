// Package search generates fuzzy match patterns for roster lookups.
//
// Operators type queries against noisy data: phone numbers stored with
// or without leading zeros, country codes, assorted separators, record
// numbers written "12/345" or "REC12345". Generate expands one query
// into every substring pattern worth trying, in priority order, capped
// so the downstream OR query stays bounded. Each pattern is matched
// case-insensitively as a containment test against name, record number
// and phone.
package search

import "strings"

// MaxPatterns bounds the generated list; generation order is the
// implicit ranking, so the cap keeps the highest-priority variants.
const MaxPatterns = 100

const (
	countryCode        = "961"
	minPhoneDigits     = 6
	minRecordDigits    = 3
	minChunkLen        = 3
	maxLeadingZeros    = 4
	maxSepLeadingZeros = 3
)

var mobilePrefixes = []string{"03", "70", "71", "76", "78", "79", "81"}

var separators = []string{"/", "-", " ", "_", ".", "(", ")", "+"}

// Generate produces the ordered, de-duplicated pattern list for a raw
// query. Pure and deterministic; an empty query degenerates to the
// single empty pattern.
func Generate(query string) []string {
	b := newBuilder()

	b.add(strings.ToLower(query))

	digits := extractDigits(query)
	if len(digits) >= 2 {
		trimmed := emitDigitBasics(b, digits)
		emitPhoneVariants(b, digits, trimmed)
		emitSeparatorSplits(b, digits, trimmed)
		emitPhoneFormats(b, digits, trimmed)
		emitRecordShapes(b, digits, trimmed)
		emitReversed(b, digits, trimmed)
		emitChunks(b, digits, trimmed)
	}

	if !isPureNumeric(query) {
		emitNameVariants(b, query)
	}

	return b.patterns
}

type builder struct {
	patterns []string
	seen     map[string]struct{}
}

func newBuilder() *builder {
	return &builder{seen: make(map[string]struct{})}
}

func (b *builder) add(p string) {
	if len(b.patterns) >= MaxPatterns {
		return
	}
	if _, ok := b.seen[p]; ok {
		return
	}

	b.seen[p] = struct{}{}
	b.patterns = append(b.patterns, p)
}

func extractDigits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}

	return sb.String()
}

func isPureNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

func zeros(n int) string {
	return strings.Repeat("0", n)
}

// emitDigitBasics emits the raw digit run, its leading-zero variants,
// and the progressively zero-trimmed forms with basic separator splits.
// It returns the fully trimmed digit string.
func emitDigitBasics(b *builder, digits string) string {
	b.add(digits)

	for n := 1; n <= maxLeadingZeros; n++ {
		b.add(zeros(n) + digits)
	}

	trimmed := digits
	for strings.HasPrefix(trimmed, "0") && len(trimmed) > 1 {
		trimmed = trimmed[1:]
		b.add(trimmed)

		if len(trimmed) >= minRecordDigits {
			for i := 1; i < len(trimmed); i++ {
				before, after := trimmed[:i], trimmed[i:]
				b.add(before + "/" + after)
				b.add(before + "-" + after)
				b.add(before + " " + after)
			}
		}
	}

	return trimmed
}

// emitPhoneVariants emits country-code and local mobile prefix forms.
func emitPhoneVariants(b *builder, digits, trimmed string) {
	if len(digits) < minPhoneDigits {
		return
	}

	b.add(countryCode + digits)
	b.add("+" + countryCode + digits)
	b.add("00" + countryCode + digits)

	if trimmed != digits && len(trimmed) >= minPhoneDigits {
		b.add(countryCode + trimmed)
		b.add("+" + countryCode + trimmed)
		b.add("00" + countryCode + trimmed)
	}

	for _, prefix := range mobilePrefixes {
		for _, ds := range []string{digits, trimmed} {
			if !strings.Contains(ds, prefix) {
				continue
			}

			rest := strings.Replace(ds, prefix, "", 1)
			b.add(prefix + rest)
			b.add("0" + prefix + rest)
			b.add(countryCode + prefix + rest)
			b.add("+" + countryCode + prefix + rest)
		}
	}

	b.add("+" + digits)
	b.add("00" + digits)
	if trimmed != digits {
		b.add("+" + trimmed)
		b.add("00" + trimmed)
	}
}

// emitSeparatorSplits emits every single-separator split of both digit
// strings, with leading-zero variants on either half and phone-shaped
// country-code forms.
func emitSeparatorSplits(b *builder, digits, trimmed string) {
	for _, ds := range []string{digits, trimmed} {
		if len(ds) < 2 {
			continue
		}

		for i := 1; i < len(ds); i++ {
			before, after := ds[:i], ds[i:]

			for _, sep := range separators {
				b.add(before + sep + after)

				for n := 1; n <= maxSepLeadingZeros; n++ {
					b.add(zeros(n) + before + sep + after)
					b.add(before + sep + zeros(n) + after)
				}

				if len(ds) >= minPhoneDigits {
					b.add(countryCode + sep + before + sep + after)
					b.add("+" + countryCode + sep + before + sep + after)
					b.add("00" + countryCode + sep + before + sep + after)
				}
			}
		}
	}
}

// emitPhoneFormats emits common multi-separator phone renderings at a
// few split positions, including three-part splits for longer runs.
func emitPhoneFormats(b *builder, digits, trimmed string) {
	for _, ds := range []string{digits, trimmed} {
		if len(ds) < minPhoneDigits {
			continue
		}

		maxSplit := 4
		if ds2 := len(ds) - 2; ds2 < maxSplit {
			maxSplit = ds2
		}

		for splitPos := 2; splitPos <= maxSplit; splitPos++ {
			part1, part2 := ds[:splitPos], ds[splitPos:]

			b.add("+" + countryCode + " " + part1 + " " + part2)
			b.add("+" + countryCode + "-" + part1 + "-" + part2)
			b.add(countryCode + " " + part1 + " " + part2)
			b.add(countryCode + "-" + part1 + "-" + part2)
			b.add("00" + countryCode + " " + part1 + " " + part2)
			b.add("00" + countryCode + "-" + part1 + "-" + part2)
			b.add("0" + part1 + " " + part2)
			b.add("0" + part1 + "-" + part2)
			b.add("0" + part1 + "/" + part2)
			b.add("(+" + countryCode + ") " + part1 + " " + part2)
			b.add("(" + countryCode + ") " + part1 + " " + part2)

			if len(part2) >= 4 {
				mid := len(part2) / 2
				sub1, sub2 := part2[:mid], part2[mid:]

				b.add("+" + countryCode + " " + part1 + " " + sub1 + " " + sub2)
				b.add("+" + countryCode + "-" + part1 + "-" + sub1 + "-" + sub2)
				b.add(countryCode + " " + part1 + " " + sub1 + " " + sub2)
				b.add(countryCode + "-" + part1 + "-" + sub1 + "-" + sub2)
				b.add("0" + part1 + " " + sub1 + " " + sub2)
				b.add("0" + part1 + "-" + sub1 + "-" + sub2)
				b.add("(+" + countryCode + ") " + part1 + " " + sub1 + " " + sub2)
				b.add("(" + countryCode + ") " + part1 + " " + sub1 + " " + sub2)
			}
		}
	}
}

// emitRecordShapes emits record-number renderings ("12/345", "REC123")
// with leading-zero variants.
func emitRecordShapes(b *builder, digits, trimmed string) {
	for _, ds := range []string{digits, trimmed} {
		if len(ds) < minRecordDigits {
			continue
		}

		shapes := []string{
			ds[:2] + "/" + ds[2:],
			ds[:2] + "-" + ds[2:],
			"REC" + ds,
			"rec" + ds,
			"R" + ds,
			"r" + ds,
		}
		if len(ds) > 3 {
			shapes = append(shapes, ds[:3]+"/"+ds[3:], ds[:3]+"-"+ds[3:])
		}

		for _, shape := range shapes {
			b.add(shape)
			for n := 1; n <= maxSepLeadingZeros; n++ {
				b.add(strings.Replace(shape, ds, zeros(n)+ds, 1))
			}
		}
	}
}

// emitReversed emits the reversed digit string and its separator
// splits, covering values keyed in the opposite direction.
func emitReversed(b *builder, digits, trimmed string) {
	for _, ds := range []string{digits, trimmed} {
		if len(ds) < 4 {
			continue
		}

		reversed := reverse(ds)
		b.add(reversed)

		for i := 1; i < len(reversed); i++ {
			before, after := reversed[:i], reversed[i:]
			b.add(before + "/" + after)
			b.add(before + "-" + after)
			b.add(before + " " + after)
		}
	}
}

// emitChunks emits every contiguous digit substring of length >= 3 with
// up to two synthetic leading zeros, the broadest stage.
func emitChunks(b *builder, digits, trimmed string) {
	for _, ds := range []string{digits, trimmed} {
		if len(ds) < 4 {
			continue
		}

		for start := 0; start <= len(ds)-minChunkLen; start++ {
			for end := start + minChunkLen; end <= len(ds); end++ {
				chunk := ds[start:end]
				b.add(chunk)
				b.add("0" + chunk)
				b.add("00" + chunk)
			}
		}
	}
}

var (
	namePrefixes = []string{"mr", "mrs", "ms", "dr", "prof"}
	nameSuffixes = []string{"jr", "sr", "ii", "iii"}
)

// emitNameVariants emits case and honorific variants for non-numeric
// queries.
func emitNameVariants(b *builder, query string) {
	lower := strings.ToLower(query)

	b.add(strings.ToUpper(query))

	for _, prefix := range namePrefixes {
		b.add(prefix + " " + lower)
		b.add(strings.ToUpper(prefix) + " " + lower)
	}
	for _, suffix := range nameSuffixes {
		b.add(lower + " " + suffix)
		b.add(lower + " " + strings.ToUpper(suffix))
	}
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}

	return string(b)
}
