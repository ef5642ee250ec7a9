package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/auditoria/docgen/internal/domain/entity"
	"github.com/auditoria/docgen/internal/findata"
	"github.com/auditoria/docgen/internal/generator"
	"github.com/auditoria/docgen/internal/replacements"
)

type stubAuditRepo struct {
	audit *entity.Audit
}

func (s stubAuditRepo) GetByID(ctx context.Context, id int64) (*entity.Audit, error) {
	if s.audit != nil && s.audit.ID == id {
		return s.audit, nil
	}
	return nil, fmt.Errorf("audit %d not found", id)
}

type emptyFinancialRepo struct{}

func (emptyFinancialRepo) ListBalances(ctx context.Context, auditID int64) ([]entity.BalanceRecord, error) {
	return nil, nil
}

func (emptyFinancialRepo) ListAdjustments(ctx context.Context, auditID int64) ([]entity.AdjustmentRecord, error) {
	return nil, nil
}

func (emptyFinancialRepo) ListAuxiliaries(ctx context.Context, auditID int64) ([]entity.AuxiliaryRecord, error) {
	return nil, nil
}

func (emptyFinancialRepo) ListInitialBalances(ctx context.Context, auditID int64) ([]entity.InitialBalanceRecord, error) {
	return nil, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := zap.NewNop()
	dir := t.TempDir()

	replPath := filepath.Join(dir, "replacements.json")
	tablesPath := filepath.Join(dir, "tables.json")
	require.NoError(t, os.WriteFile(replPath, []byte(`{"campos": {"entidad": {"placeholders": ["[ENTIDAD]"]}}}`), 0644))
	require.NoError(t, os.WriteFile(tablesPath, []byte(`{"patterns": {"A-1": "INFORME.xlsx"}}`), 0644))

	templateDir := filepath.Join(dir, "templates")
	require.NoError(t, os.MkdirAll(templateDir, 0755))
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Entidad: [ENTIDAD]"))
	require.NoError(t, f.SaveAs(filepath.Join(templateDir, "INFORME.xlsx")))
	require.NoError(t, f.Close())

	gen := generator.New(generator.Config{
		ReplacementsPath: replPath,
		TablesPath:       tablesPath,
		DownloadBaseURL:  "http://localhost:8080",
	}, findata.NewAccessor(emptyFinancialRepo{}, logger), replacements.NewLoader(logger), logger)

	audit := &entity.Audit{ID: 1, Title: "Auditoría", Identidad: "Empresa S.A.", CreatedAt: time.Now()}
	handlers := NewHandlers(stubAuditRepo{audit: audit}, gen, templateDir, logger)
	return NewServer(ServerConfig{Host: "127.0.0.1", Port: 0}, handlers, logger)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestDownloadWorkPaper(t *testing.T) {
	srv := newTestServer(t)

	t.Run("serves filled workbook", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auditoria/download/1/A-1", nil)
		srv.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, contentTypeXLSX, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "INFORME.xlsx")
		assert.NotZero(t, w.Body.Len())
	})

	t.Run("invalid audit id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auditoria/download/abc/A-1", nil)
		srv.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown audit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auditoria/download/42/A-1", nil)
		srv.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown pattern", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auditoria/download/1/Z-9", nil)
		srv.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
