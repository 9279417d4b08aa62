// cmd/extraction/main.go
package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"extraction-service/internal/api/handlers"
	"extraction-service/internal/api/responses"
	"extraction-service/internal/config"
	"extraction-service/internal/core/sped"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Falha ao carregar a configuração: ", err)
	}

	logger := responses.InitLogger()
	defer logger.Sync()

	extractionService := sped.NewService(logger)
	extractionHandler := handlers.NewExtractionHandler(extractionService)

	gin.SetMode(cfg.GinMode)
	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxUploadMB << 20

	apiV1 := router.Group("/api/v1")
	{
		// Sem Middleware -- Gateway lida com isso
		apiV1.POST("/extract", extractionHandler.HandleExtract)
		apiV1.POST("/extract/document", extractionHandler.HandleExtractDocument)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": "extraction-service"})
	})

	log.Printf("🚀 Extraction Service (Go) iniciado e escutando na porta %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Falha ao iniciar o servidor de extração: ", err)
	}
}
