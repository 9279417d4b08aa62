// internal/api/handlers/extraction_handler_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extraction-service/internal/core/sped"
)

var contribFixture = strings.Join([]string{
	"|0000|006|0|||01012024|31012024|EMPRESA TESTE LTDA|11222333000181|SP|3550308|||",
	"|0110|1|1|1||",
	"|M210|01|50000,00|39393,94|0|0|39393,94|1,65|||650,00|0|0|0|0|650,00|",
}, "\n")

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewExtractionHandler(sped.NewService(nil))
	router := gin.New()
	router.POST("/extract", handler.HandleExtract)
	router.POST("/extract/document", handler.HandleExtractDocument)
	return router
}

func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, content := range files {
		part, err := writer.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHandleExtractDocument(t *testing.T) {
	router := newRouter()
	body, contentType := multipartBody(t, "spedFile", map[string]string{
		"efd_contribuicoes_012024.txt": contribFixture,
	})

	req := httptest.NewRequest(http.MethodPost, "/extract/document", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "success", envelope.Status)

	var doc struct {
		Family  string `json:"family"`
		Company struct {
			Name string `json:"name"`
		} `json:"company"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &doc))
	assert.Equal(t, "EFD_CONTRIBUICOES", doc.Family)
	assert.Equal(t, "EMPRESA TESTE LTDA", doc.Company.Name)
}

func TestHandleExtractConsolidatedJSON(t *testing.T) {
	router := newRouter()
	body, contentType := multipartBody(t, "spedFiles", map[string]string{
		"efd_contribuicoes_012024.txt": contribFixture,
	})

	req := httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Status string `json:"status"`
		Data   struct {
			Composition struct {
				TotalNetLiability float64 `json:"total_net_liability"`
			} `json:"tax_composition"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "success", envelope.Status)
	assert.InDelta(t, 650.0, envelope.Data.Composition.TotalNetLiability, 0.01)
}

func TestHandleExtractXLSXDownload(t *testing.T) {
	router := newRouter()
	body, contentType := multipartBody(t, "spedFiles", map[string]string{
		"efd_contribuicoes_012024.txt": contribFixture,
	})

	req := httptest.NewRequest(http.MethodPost, "/extract?format=xlsx", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "relatorio-sped.xlsx")
	assert.NotZero(t, resp.Body.Len())
}

func TestHandleExtractWithoutFiles(t *testing.T) {
	router := newRouter()
	body, contentType := multipartBody(t, "outroCampo", map[string]string{
		"arquivo.txt": "conteudo",
	})

	req := httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHandleExtractDocumentMissingFile(t *testing.T) {
	router := newRouter()

	req := httptest.NewRequest(http.MethodPost, "/extract/document", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
