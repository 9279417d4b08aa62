// internal/api/handlers/extraction_handler.go
package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"extraction-service/internal/api/responses"
	"extraction-service/internal/core/report"
	"extraction-service/internal/core/sped"
	"extraction-service/internal/domain"
)

// ExtractionHandler handles SPED extraction API requests.
type ExtractionHandler struct {
	service sped.Service
}

// NewExtractionHandler creates a new extraction handler.
func NewExtractionHandler(service sped.Service) *ExtractionHandler {
	return &ExtractionHandler{
		service: service,
	}
}

// HandleExtract consolidates one or more uploaded SPED files into a
// single report. With format=xlsx the report is returned as a workbook.
func (h *ExtractionHandler) HandleExtract(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Requisição multipart inválida")
		return
	}
	fileHeaders := form.File["spedFiles"]
	if len(fileHeaders) == 0 {
		responses.Error(c, http.StatusBadRequest, "Nenhum arquivo SPED foi enviado")
		return
	}

	var readers []io.Reader
	var filenames []string
	var closers []io.Closer
	defer func() {
		for _, closer := range closers {
			closer.Close()
		}
	}()

	for _, header := range fileHeaders {
		file, err := header.Open()
		if err != nil {
			responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir um dos arquivos SPED")
			return
		}
		readers = append(readers, file)
		filenames = append(filenames, header.Filename)
		closers = append(closers, file)
	}

	opts := domain.Options{
		UF:             strings.ToUpper(strings.TrimSpace(c.PostForm("uf"))),
		TargetRate:     sped.Normalize(c.PostForm("aliquotaAlvo")),
		WithProjection: c.PostForm("projecao") != "false",
	}

	consolidated, err := h.service.ExtractConsolidated(readers, filenames, opts)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro na extração dos arquivos SPED", err.Error())
		return
	}

	if c.Query("format") == "xlsx" {
		h.writeWorkbook(c, consolidated)
		return
	}
	responses.Success(c, consolidated, "Extração concluída com sucesso")
}

// HandleExtractDocument parses a single SPED file and returns the
// decoded document with its parse metadata.
func (h *ExtractionHandler) HandleExtractDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("spedFile")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Arquivo SPED não encontrado ou inválido")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo SPED")
		return
	}
	defer file.Close()

	doc, err := h.service.ExtractDocument(file, fileHeader.Filename)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao processar o arquivo SPED", err.Error())
		return
	}

	responses.Success(c, doc, "Arquivo processado com sucesso")
}

func (h *ExtractionHandler) writeWorkbook(c *gin.Context, consolidated *domain.ConsolidatedReport) {
	workbook, err := report.BuildWorkbook(consolidated)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao gerar a planilha do relatório", err.Error())
		return
	}

	var buffer bytes.Buffer
	if err := workbook.Write(&buffer); err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao gravar a planilha do relatório", err.Error())
		return
	}

	filename := "relatorio-sped.xlsx"
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buffer.Bytes())
}
