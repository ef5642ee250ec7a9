package http

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/auditoria/docgen/internal/application/port"
	"github.com/auditoria/docgen/internal/domain/entity"
	"github.com/auditoria/docgen/internal/generator"
)

// Content types for the generated attachments.
const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeXLSM = "application/vnd.ms-excel.sheet.macroEnabled.12"
	contentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	audits      port.AuditRepository
	gen         *generator.Generator
	templateDir string
	logger      *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(audits port.AuditRepository, gen *generator.Generator, templateDir string, logger *zap.Logger) *Handlers {
	return &Handlers{
		audits:      audits,
		gen:         gen,
		templateDir: templateDir,
		logger:      logger,
	}
}

// Response represents a standard JSON error response
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DownloadWorkPaper handles GET /auditoria/download/:auditID/:pattern.
// It resolves the nomenclature pattern to a template, fills it for the audit
// and streams the result as an attachment.
func (h *Handlers) DownloadWorkPaper(c *gin.Context) {
	auditID, err := strconv.ParseInt(c.Param("auditID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid audit id"})
		return
	}
	pattern := c.Param("pattern")

	audit, err := h.audits.GetByID(c.Request.Context(), auditID)
	if err != nil {
		c.JSON(http.StatusNotFound, Response{Error: "audit not found"})
		return
	}

	templateName, ok := h.gen.ResolveTemplate(pattern)
	if !ok {
		c.JSON(http.StatusNotFound, Response{Error: fmt.Sprintf("no template for pattern %q", pattern)})
		return
	}
	templatePath := filepath.Join(h.templateDir, templateName)

	kind := generator.DetectKind(templateName)
	h.logger.Info("Generating work paper",
		zap.Int64("audit_id", auditID),
		zap.String("pattern", pattern),
		zap.String("template", templateName),
		zap.String("kind", kind.String()))

	switch {
	case kind == generator.KindMacroWorkbook:
		h.serveMacroWorkbook(c, templatePath, templateName, audit)
	case strings.EqualFold(filepath.Ext(templateName), ".docx"):
		h.serveWord(c, templatePath, templateName, audit)
	default:
		h.serveExcel(c, templatePath, templateName, audit)
	}
}

func (h *Handlers) serveMacroWorkbook(c *gin.Context, templatePath, templateName string, audit *entity.Audit) {
	path, cleanup, err := h.gen.ModifyDocumentExcelWithMacros(c.Request.Context(), templatePath, audit)
	if err != nil {
		h.fail(c, templateName, err)
		return
	}
	defer cleanup()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", templateName))
	c.Header("Content-Type", contentTypeXLSM)
	c.File(path)
}

func (h *Handlers) serveWord(c *gin.Context, templatePath, templateName string, audit *entity.Audit) {
	doc, err := h.gen.ModifyDocumentWord(c.Request.Context(), templatePath, audit)
	if err != nil {
		h.fail(c, templateName, err)
		return
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		h.fail(c, templateName, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", templateName))
	c.Data(http.StatusOK, contentTypeDOCX, buf.Bytes())
}

func (h *Handlers) serveExcel(c *gin.Context, templatePath, templateName string, audit *entity.Audit) {
	f, err := h.gen.ModifyDocumentExcel(c.Request.Context(), templatePath, audit)
	if err != nil {
		h.fail(c, templateName, err)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		h.fail(c, templateName, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", templateName))
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

func (h *Handlers) fail(c *gin.Context, templateName string, err error) {
	h.logger.Error("Document generation failed",
		zap.String("template", templateName), zap.Error(err))
	c.JSON(http.StatusInternalServerError, Response{Error: "document generation failed"})
}
