package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/auditoria/docgen/internal/application/port"
	"github.com/auditoria/docgen/internal/domain/entity"
	"go.uber.org/zap"
)

// AuditRepository implements port.AuditRepository
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB, logger *zap.Logger) port.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves an audit by its ID
func (r *AuditRepository) GetByID(ctx context.Context, id int64) (*entity.Audit, error) {
	query := `
		SELECT id, title, identidad, tipo_auditoria, moneda, audit_manager,
		       fecha_init, fecha_end, created_at
		FROM audits
		WHERE id = ?
	`

	var audit entity.Audit
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&audit.ID,
		&audit.Title,
		&audit.Identidad,
		&audit.TipoAuditoria,
		&audit.Moneda,
		&audit.AuditManager,
		&audit.FechaInit,
		&audit.FechaEnd,
		&audit.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("audit %d not found", id)
	}
	if err != nil {
		r.logger.Error("Failed to get audit", zap.Int64("audit_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get audit: %w", err)
	}

	return &audit, nil
}
