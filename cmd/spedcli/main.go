// cmd/spedcli/main.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"extraction-service/internal/core/report"
	"extraction-service/internal/core/sped"
	"extraction-service/internal/domain"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:     "spedcli",
		Short:   "Extrator de escriturações SPED",
		Long:    "spedcli decodifica arquivos SPED (EFD ICMS/IPI, EFD Contribuições, ECF e ECD)\ne consolida tributos, resultados financeiros e ciclo de caixa em um relatório único.",
		Version: version,
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(inspectCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func extractCmd() *cobra.Command {
	var (
		uf         string
		targetRate float64
		projection bool
		xlsxOut    string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "extract [arquivos...]",
		Short: "Consolida um ou mais arquivos SPED em um relatório",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger(verbose)
			defer logger.Sync()

			service := sped.NewService(logger)
			readers, filenames, closeAll, err := openFiles(args)
			if err != nil {
				return err
			}
			defer closeAll()

			opts := domain.Options{
				UF:             strings.ToUpper(strings.TrimSpace(uf)),
				TargetRate:     targetRate,
				WithProjection: projection,
			}
			consolidated, err := service.ExtractConsolidated(readers, filenames, opts)
			if err != nil {
				return err
			}

			if xlsxOut != "" {
				workbook, err := report.BuildWorkbook(consolidated)
				if err != nil {
					return fmt.Errorf("falha ao gerar planilha: %w", err)
				}
				if err := workbook.SaveAs(xlsxOut); err != nil {
					return fmt.Errorf("falha ao salvar planilha: %w", err)
				}
				fmt.Printf("Relatório salvo em %s\n", xlsxOut)
				return nil
			}

			return printJSON(consolidated)
		},
	}

	cmd.Flags().StringVar(&uf, "uf", "", "UF usada nas estimativas regionais de ICMS")
	cmd.Flags().Float64Var(&targetRate, "aliquota-alvo", 0, "alíquota alvo da projeção de transição (padrão 26.5)")
	cmd.Flags().BoolVar(&projection, "projecao", true, "inclui a projeção de transição no relatório")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "grava o relatório como planilha no caminho informado")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "registra o processamento de cada documento")
	return cmd
}

func inspectCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "inspect [arquivo]",
		Short: "Decodifica um único arquivo SPED e imprime o documento com os metadados do parse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger(verbose)
			defer logger.Sync()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("falha ao abrir %s: %w", args[0], err)
			}
			defer file.Close()

			service := sped.NewService(logger)
			doc, err := service.ExtractDocument(file, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			return printJSON(doc)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "registra o processamento do documento")
	return cmd
}

func openFiles(paths []string) ([]io.Reader, []string, func(), error) {
	var readers []io.Reader
	var filenames []string
	var files []*os.File

	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, nil, nil, fmt.Errorf("falha ao abrir %s: %w", path, err)
		}
		files = append(files, f)
		readers = append(readers, f)
		filenames = append(filenames, filepath.Base(path))
	}
	return readers, filenames, closeAll, nil
}

func buildLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
