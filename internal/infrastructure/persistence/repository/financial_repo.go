package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/auditoria/docgen/internal/application/port"
	"github.com/auditoria/docgen/internal/domain/entity"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FinancialDataRepository implements port.FinancialDataRepository backed by sqlite
type FinancialDataRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewFinancialDataRepository creates a new financial data repository
func NewFinancialDataRepository(db *sql.DB, logger *zap.Logger) port.FinancialDataRepository {
	return &FinancialDataRepository{
		db:     db,
		logger: logger,
	}
}

// ListBalances returns every balance record for an audit
func (r *FinancialDataRepository) ListBalances(ctx context.Context, auditID int64) ([]entity.BalanceRecord, error) {
	query := `
		SELECT id, audit_id, tipo_balance, fecha_corte, seccion,
		       nombre_cuenta, COALESCE(tipo_cuenta, ''), valor
		FROM balances
		WHERE audit_id = ?
		ORDER BY fecha_corte, seccion, nombre_cuenta
	`

	rows, err := r.db.QueryContext(ctx, query, auditID)
	if err != nil {
		r.logger.Error("Failed to list balances", zap.Int64("audit_id", auditID), zap.Error(err))
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	defer rows.Close()

	var records []entity.BalanceRecord
	for rows.Next() {
		var rec entity.BalanceRecord
		var valor string
		if err := rows.Scan(
			&rec.ID,
			&rec.AuditID,
			&rec.TipoBalance,
			&rec.FechaCorte,
			&rec.Seccion,
			&rec.NombreCuenta,
			&rec.TipoCuenta,
			&valor,
		); err != nil {
			return nil, fmt.Errorf("failed to scan balance record: %w", err)
		}
		rec.Valor, err = decimal.NewFromString(valor)
		if err != nil {
			return nil, fmt.Errorf("invalid balance value %q: %w", valor, err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListAdjustments returns every adjustment record for an audit
func (r *FinancialDataRepository) ListAdjustments(ctx context.Context, auditID int64) ([]entity.AdjustmentRecord, error) {
	query := `
		SELECT id, audit_id, nombre_cuenta, debe, haber
		FROM adjustments
		WHERE audit_id = ?
		ORDER BY nombre_cuenta
	`

	rows, err := r.db.QueryContext(ctx, query, auditID)
	if err != nil {
		r.logger.Error("Failed to list adjustments", zap.Int64("audit_id", auditID), zap.Error(err))
		return nil, fmt.Errorf("failed to list adjustments: %w", err)
	}
	defer rows.Close()

	var records []entity.AdjustmentRecord
	for rows.Next() {
		var rec entity.AdjustmentRecord
		var debe, haber string
		if err := rows.Scan(&rec.ID, &rec.AuditID, &rec.NombreCuenta, &debe, &haber); err != nil {
			return nil, fmt.Errorf("failed to scan adjustment record: %w", err)
		}
		if rec.Debe, err = decimal.NewFromString(debe); err != nil {
			return nil, fmt.Errorf("invalid debit value %q: %w", debe, err)
		}
		if rec.Haber, err = decimal.NewFromString(haber); err != nil {
			return nil, fmt.Errorf("invalid credit value %q: %w", haber, err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListAuxiliaries returns every auxiliary record for an audit
func (r *FinancialDataRepository) ListAuxiliaries(ctx context.Context, auditID int64) ([]entity.AuxiliaryRecord, error) {
	query := `
		SELECT id, audit_id, cuenta, fecha_corte, valor
		FROM auxiliaries
		WHERE audit_id = ?
		ORDER BY cuenta, fecha_corte
	`

	rows, err := r.db.QueryContext(ctx, query, auditID)
	if err != nil {
		r.logger.Error("Failed to list auxiliaries", zap.Int64("audit_id", auditID), zap.Error(err))
		return nil, fmt.Errorf("failed to list auxiliaries: %w", err)
	}
	defer rows.Close()

	var records []entity.AuxiliaryRecord
	for rows.Next() {
		var rec entity.AuxiliaryRecord
		var valor string
		if err := rows.Scan(&rec.ID, &rec.AuditID, &rec.Cuenta, &rec.FechaCorte, &valor); err != nil {
			return nil, fmt.Errorf("failed to scan auxiliary record: %w", err)
		}
		if rec.Valor, err = decimal.NewFromString(valor); err != nil {
			return nil, fmt.Errorf("invalid auxiliary value %q: %w", valor, err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListInitialBalances returns every opening balance record for an audit
func (r *FinancialDataRepository) ListInitialBalances(ctx context.Context, auditID int64) ([]entity.InitialBalanceRecord, error) {
	query := `
		SELECT id, audit_id, cuenta, valor
		FROM initial_balances
		WHERE audit_id = ?
		ORDER BY cuenta
	`

	rows, err := r.db.QueryContext(ctx, query, auditID)
	if err != nil {
		r.logger.Error("Failed to list initial balances", zap.Int64("audit_id", auditID), zap.Error(err))
		return nil, fmt.Errorf("failed to list initial balances: %w", err)
	}
	defer rows.Close()

	var records []entity.InitialBalanceRecord
	for rows.Next() {
		var rec entity.InitialBalanceRecord
		var valor string
		if err := rows.Scan(&rec.ID, &rec.AuditID, &rec.Cuenta, &valor); err != nil {
			return nil, fmt.Errorf("failed to scan initial balance record: %w", err)
		}
		if rec.Valor, err = decimal.NewFromString(valor); err != nil {
			return nil, fmt.Errorf("invalid initial balance value %q: %w", valor, err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
