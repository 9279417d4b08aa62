// internal/core/sped/parser.go
package sped

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"extraction-service/internal/domain"
)

// Parser is the line dispatch engine: it iterates lines in file order,
// resolves each record's decoder through the schema registry and folds
// the decoded entities into the document's category buckets.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a dispatch engine. A nil logger disables logging.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// ParseDocument decodes every line of one SPED file. Unknown record
// codes are counted as skipped; recognized records that fail their
// structural guard or whose decoder rejects them are appended to the
// error list with their line number. Processing never stops on a bad
// record. Lines must be processed strictly in file order because the
// parent/child reconciliation context depends on it.
func (p *Parser) ParseDocument(lines []string, family domain.DocumentFamily, filename string) *domain.ParsedDocument {
	doc := &domain.ParsedDocument{
		ID:       uuid.NewString(),
		Family:   family,
		FileName: filename,
		Extras:   make(map[string][]domain.GenericRecord),
	}
	recon := NewReconciliationContext()
	ctx := &decodeContext{recon: recon}

	for i, line := range lines {
		lineNumber := i + 1
		doc.Meta.LinesTotal++

		trimmed := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}

		parts := strings.Split(trimmed, "|")
		if len(parts) < 2 {
			doc.Meta.RecordsSkipped++
			continue
		}
		typeCode := strings.TrimSpace(parts[1])

		spec, known := lookupSpec(family, typeCode)
		if !known {
			doc.Meta.RecordsSkipped++
			continue
		}

		if parts[0] != "" || len(parts) < spec.minFields {
			doc.Meta.RecordsSkipped++
			doc.AddError(lineNumber, fmt.Sprintf("registro %s com estrutura inválida (%d campos)", typeCode, len(parts)))
			p.logger.Debug("registro com estrutura inválida",
				zap.String("tipo", typeCode), zap.Int("linha", lineNumber), zap.Int("campos", len(parts)))
			continue
		}

		result := p.decodeRecord(ctx, spec, parts, typeCode, lineNumber, doc)
		if result == nil {
			continue
		}

		doc.Meta.RecordsDecoded++
		p.route(doc, typeCode, result)
	}

	ReconcileDocument(doc)
	p.logger.Info("documento processado",
		zap.String("familia", string(family)),
		zap.String("arquivo", filename),
		zap.Int("linhas", doc.Meta.LinesTotal),
		zap.Int("decodificados", doc.Meta.RecordsDecoded),
		zap.Int("ignorados", doc.Meta.RecordsSkipped),
		zap.Int("erros", len(doc.Meta.Errors)))
	return doc
}

// decodeRecord invokes a decoder, converting panics on unexpected
// content into recoverable per-record errors.
func (p *Parser) decodeRecord(ctx *decodeContext, spec recordSpec, parts []string, typeCode string, lineNumber int, doc *domain.ParsedDocument) (result *decoded) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			doc.AddError(lineNumber, fmt.Sprintf("falha ao decodificar registro %s: %v", typeCode, r))
			p.logger.Warn("falha ao decodificar registro",
				zap.String("tipo", typeCode), zap.Int("linha", lineNumber), zap.Any("causa", r))
		}
	}()

	result = spec.decode(ctx, parts)
	if result == nil {
		doc.AddError(lineNumber, fmt.Sprintf("registro %s rejeitado pelo decodificador", typeCode))
	}
	return result
}

// route folds a decoded entity into its category bucket. The type
// switch is exhaustive over the entities the decoders produce; anything
// else lands in the generic extras bucket keyed by record code.
func (p *Parser) route(doc *domain.ParsedDocument, typeCode string, d *decoded) {
	switch entity := d.entity.(type) {
	case domain.CompanyInfo:
		if doc.Company.CNPJ == "" && doc.Company.Name == "" {
			doc.Company = entity
		}
	case domain.RegimeInfo:
		doc.Regimes = append(doc.Regimes, entity)
	case domain.Participant:
		doc.Participants = append(doc.Participants, entity)
	case domain.FiscalDocument:
		doc.Documents = append(doc.Documents, entity)
	case domain.LineItem:
		doc.Items = append(doc.Items, entity)
	case domain.TaxSummary:
		doc.Summaries = append(doc.Summaries, entity)
	case domain.TaxCredit:
		doc.Credits = append(doc.Credits, entity)
	case domain.TaxDebit:
		doc.Debits = append(doc.Debits, entity)
	case *domain.ApurationRecord:
		doc.Apurations = append(doc.Apurations, entity)
	case *domain.AdjustmentDetail:
		doc.Adjustments = append(doc.Adjustments, entity)
	case domain.InventoryRecord:
		doc.Inventories = append(doc.Inventories, entity)
	case domain.Account:
		doc.Accounts = append(doc.Accounts, entity)
	case domain.AccountBalance:
		doc.Balances = append(doc.Balances, entity)
	case domain.StatementLine:
		doc.Statements = append(doc.Statements, entity)
	case domain.TaxComputation:
		doc.Computations = append(doc.Computations, entity)
	case domain.RevenueRecord:
		doc.Revenues = append(doc.Revenues, entity)
		if doc.Company.CNAE == "" && entity.CNAE != "" {
			doc.Company.CNAE = entity.CNAE
		}
	case domain.RecordCount:
		doc.Counts = append(doc.Counts, entity)
	case domain.GenericRecord:
		doc.Extras[typeCode] = append(doc.Extras[typeCode], entity)
	default:
		doc.Extras[typeCode] = append(doc.Extras[typeCode], domain.GenericRecord{TypeCode: typeCode})
	}
}
