// internal/core/sped/classifier.go
package sped

import (
	"regexp"
	"strings"

	"extraction-service/internal/domain"
)

// classifierScanLimit bounds how many non-blank lines the content
// classifier inspects before deciding.
const classifierScanLimit = 100

// filenamePatterns is checked in order from the most specific family
// (contributions) to the most generic (the fiscal goods ledger, whose
// keywords also appear in the other families' file names).
var filenamePatterns = []struct {
	family   domain.DocumentFamily
	patterns []*regexp.Regexp
}{
	{domain.FamilyContributions, compilePatterns(
		`contribuic`, `piscofins`, `pis[-_ ]?cofins`, `efd[-_ ]?contrib`,
	)},
	{domain.FamilyECF, compilePatterns(
		`\becf\b`, `^ecf`, `ecf[-_0-9]`, `lucro[-_ ]?real`, `lalur`,
	)},
	{domain.FamilyECD, compilePatterns(
		`\becd\b`, `^ecd`, `ecd[-_0-9]`, `contabil`, `escrituracao[-_ ]?contabil`,
	)},
	{domain.FamilyFiscal, compilePatterns(
		`icms`, `\bipi\b`, `efd`, `fiscal`, `sped`,
	)},
}

func compilePatterns(exprs ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		patterns = append(patterns, regexp.MustCompile(expr))
	}
	return patterns
}

// distinctiveCodes lists, per family, record codes that do not occur in
// the other families' layouts. Shared codes such as 0000 and C100 carry
// no signal and are deliberately absent.
var distinctiveCodes = map[domain.DocumentFamily]map[string]bool{
	domain.FamilyFiscal: setOf(
		"0005", "C170", "C190", "D100", "E100", "E110", "E111", "E200",
		"E210", "E500", "E510", "E520", "E530", "H005", "H010",
	),
	domain.FamilyContributions: setOf(
		"0110", "0140", "A100", "F100", "M100", "M105", "M200", "M210",
		"M215", "M220", "M400", "M500", "M505", "M600", "M610", "M615",
		"M620", "M800",
	),
	domain.FamilyECF: setOf(
		"0010", "J050", "L300", "N500", "N620", "N630", "N660", "N670",
		"P200", "P300", "P400", "P500", "Y540",
	),
	domain.FamilyECD: setOf(
		"I010", "I050", "I150", "I155", "I200", "I250", "J100", "J150",
	),
}

func setOf(codes ...string) map[string]bool {
	set := make(map[string]bool, len(codes))
	for _, code := range codes {
		set[code] = true
	}
	return set
}

// Classify determines which SPED family a set of lines represents. The
// filename hint wins when it matches a family's keyword set; otherwise
// the first lines are scanned and the family whose distinctive codes
// appear most often is chosen, defaulting to the goods ledger.
func Classify(lines []string, filename string) domain.DocumentFamily {
	if family, ok := classifyByFilename(filename); ok {
		return family
	}
	return classifyByContent(lines)
}

func classifyByFilename(filename string) (domain.DocumentFamily, bool) {
	name := strings.ToLower(strings.TrimSpace(filename))
	if name == "" {
		return "", false
	}
	for _, entry := range filenamePatterns {
		for _, pattern := range entry.patterns {
			if pattern.MatchString(name) {
				return entry.family, true
			}
		}
	}
	return "", false
}

func classifyByContent(lines []string) domain.DocumentFamily {
	tallies := make(map[domain.DocumentFamily]int)
	scanned := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		scanned++
		if scanned > classifierScanLimit {
			break
		}
		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}
		code := strings.TrimSpace(parts[1])
		for family, codes := range distinctiveCodes {
			if codes[code] {
				tallies[family]++
			}
		}
	}

	best := domain.FamilyFiscal
	bestCount := 0
	// Deterministic order so ties resolve to the default family.
	for _, family := range domain.FamilyPriority {
		if tallies[family] > bestCount {
			best = family
			bestCount = tallies[family]
		}
	}
	return best
}
