package api

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reportpress/internal/api/middleware"
	"reportpress/internal/extract"
)

// ExtractHandler serves AI-assisted field extraction from uploaded PDF
// documents.
type ExtractHandler struct {
	Extractor *extract.FieldExtractor
}

func NewExtractHandler(extractor *extract.FieldExtractor) *ExtractHandler {
	return &ExtractHandler{Extractor: extractor}
}

type extractFieldsRequest struct {
	PDFData     string            `json:"pdfData"`
	FieldLabels map[string]string `json:"fieldLabels"`
}

type extractSelectiveRequest struct {
	PDFData         string   `json:"pdfData"`
	FieldsToExtract []string `json:"fieldsToExtract"`
	DocumentType    string   `json:"documentType"`
}

// decodePDF strips an optional data-URI prefix and decodes the base64
// payload.
func decodePDF(pdfData string) ([]byte, error) {
	raw := pdfData
	if idx := strings.Index(raw, ","); idx >= 0 && strings.HasPrefix(raw, "data:") {
		raw = raw[idx+1:]
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
}

// Fields extracts the standard bill-of-entry field set, with optional
// per-field label overrides from the caller.
func (h *ExtractHandler) Fields(c *gin.Context) {
	var req extractFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	if req.PDFData == "" {
		BadRequest(c, "pdfData is required")
		return
	}

	log := middleware.LoggerFromContext(c)

	pdfBytes, err := decodePDF(req.PDFData)
	if err != nil {
		BadRequest(c, "pdfData is not valid base64")
		return
	}

	doc, err := extract.ReadPDF(pdfBytes)
	if err != nil {
		log.Warn("pdf text extraction failed", slog.Any("error", err))
		BadRequest(c, err.Error())
		return
	}

	data, err := h.Extractor.ExtractBillFields(c.Request.Context(), doc.Text, req.FieldLabels)
	if err != nil {
		log.Error("field extraction failed", slog.Any("error", err))
		UpstreamFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fields": data, "pages": doc.Pages})
}

// Selective extracts only the fields the caller names.
func (h *ExtractHandler) Selective(c *gin.Context) {
	var req extractSelectiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	if req.PDFData == "" {
		BadRequest(c, "pdfData is required")
		return
	}
	if len(req.FieldsToExtract) == 0 {
		BadRequest(c, "fieldsToExtract must name at least one field")
		return
	}

	log := middleware.LoggerFromContext(c)

	pdfBytes, err := decodePDF(req.PDFData)
	if err != nil {
		BadRequest(c, "pdfData is not valid base64")
		return
	}

	doc, err := extract.ReadPDF(pdfBytes)
	if err != nil {
		log.Warn("pdf text extraction failed", slog.Any("error", err))
		BadRequest(c, err.Error())
		return
	}

	data, err := h.Extractor.ExtractSelective(c.Request.Context(), doc.Text, req.FieldsToExtract, req.DocumentType)
	if err != nil {
		log.Error("selective extraction failed", slog.Any("error", err))
		UpstreamFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fields": data, "pages": doc.Pages})
}
