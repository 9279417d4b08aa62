// internal/core/sped/service.go
package sped

import (
	"bufio"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"extraction-service/internal/domain"
)

// Service defines the interface of the SPED extraction pipeline.
type Service interface {
	ExtractDocument(file io.Reader, filename string) (*domain.ParsedDocument, error)
	ExtractConsolidated(files []io.Reader, filenames []string, opts domain.Options) (*domain.ConsolidatedReport, error)
}

type service struct {
	parser *Parser
	logger *zap.Logger
}

// NewService creates a new extraction service.
func NewService(logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		parser: NewParser(logger),
		logger: logger,
	}
}

// ExtractDocument classifies and parses one SPED file, returning the
// decoded document with its parse metadata.
func (s *service) ExtractDocument(file io.Reader, filename string) (*domain.ParsedDocument, error) {
	lines, err := readLines(file)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler arquivo SPED: %w", err)
	}
	family := Classify(lines, filename)
	return s.parser.ParseDocument(lines, family, filename), nil
}

// ExtractConsolidated parses every file and consolidates the results
// into one report. Per-record problems never fail the call; only a read
// failure or an unexpected error escaping the consolidation does, and
// the latter is wrapped once as a single extraction error.
func (s *service) ExtractConsolidated(files []io.Reader, filenames []string, opts domain.Options) (report *domain.ConsolidatedReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			report = nil
			err = fmt.Errorf("falha na extração dos arquivos SPED: %v", r)
			s.logger.Error("falha na extração", zap.Any("causa", r))
		}
	}()

	if len(files) == 0 {
		return nil, fmt.Errorf("nenhum arquivo SPED enviado")
	}

	docs := make([]*domain.ParsedDocument, 0, len(files))
	for i, file := range files {
		filename := ""
		if i < len(filenames) {
			filename = filenames[i]
		}
		doc, derr := s.ExtractDocument(file, filename)
		if derr != nil {
			return nil, derr
		}
		docs = append(docs, doc)
	}

	return Consolidate(docs, opts, s.logger)
}

// readLines decodes the ISO-8859-1 content of a SPED file into a line
// slice. The whole file is materialized before parsing starts; the core
// never streams mid-parse.
func readLines(file io.Reader) ([]string, error) {
	decoder := charmap.ISO8859_1.NewDecoder()
	scanner := bufio.NewScanner(decoder.Reader(file))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
