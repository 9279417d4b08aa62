// internal/core/sped/registry.go
package sped

import (
	"extraction-service/internal/domain"
)

// decoded is the result of a successful record decode: a typed entity
// tagged with the semantic kind the dispatch engine routes on.
type decoded struct {
	kind   domain.RecordKind
	entity any
}

// decodeContext is threaded through every decoder call for one document.
// It replaces any cross-call global state: decoders that open an
// apuration block store it here and child-record decoders read it back.
type decodeContext struct {
	recon *ReconciliationContext
}

// decodeFunc turns the split fields of one line into a decoded entity.
// Returning nil signals a recoverable decode failure for that record.
type decodeFunc func(ctx *decodeContext, f []string) *decoded

// recordSpec pairs a decoder with its minimum-field-count contract.
type recordSpec struct {
	minFields int
	decode    decodeFunc
}

// schemaTable maps a record type code to its spec for one family.
type schemaTable map[string]recordSpec

// registries is the static two-level dispatch table, built once at
// startup: family -> type code -> decoder.
var registries = map[domain.DocumentFamily]schemaTable{
	domain.FamilyFiscal:        fiscalSchema,
	domain.FamilyContributions: contributionsSchema,
	domain.FamilyECF:           ecfSchema,
	domain.FamilyECD:           ecdSchema,
}

// lookupSpec resolves the decoder for a type code within a family.
func lookupSpec(family domain.DocumentFamily, typeCode string) (recordSpec, bool) {
	table, ok := registries[family]
	if !ok {
		return recordSpec{}, false
	}
	spec, ok := table[typeCode]
	return spec, ok
}

// num reads field i as a normalized decimal, tolerating short lines.
func num(f []string, i int) float64 {
	if i < 0 || i >= len(f) {
		return 0.0
	}
	return Normalize(f[i])
}

// pct reads field i as a normalized percentage.
func pct(f []string, i int) float64 {
	if i < 0 || i >= len(f) {
		return 0.0
	}
	return NormalizePercent(f[i])
}

// str reads field i as a trimmed string, tolerating short lines.
func str(f []string, i int) string {
	if i < 0 || i >= len(f) {
		return ""
	}
	return trimField(f[i])
}

func trimField(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
