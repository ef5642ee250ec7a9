// Package port defines the interfaces the application layer expects from
// persistence adapters.
package port

import (
	"context"

	"github.com/auditoria/docgen/internal/domain/entity"
)

// AuditRepository provides read access to the audit aggregate.
type AuditRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Audit, error)
}

// FinancialDataRepository provides read access to the financial records
// backing a single audit. The document generators never write through it.
type FinancialDataRepository interface {
	ListBalances(ctx context.Context, auditID int64) ([]entity.BalanceRecord, error)
	ListAdjustments(ctx context.Context, auditID int64) ([]entity.AdjustmentRecord, error)
	ListAuxiliaries(ctx context.Context, auditID int64) ([]entity.AuxiliaryRecord, error)
	ListInitialBalances(ctx context.Context, auditID int64) ([]entity.InitialBalanceRecord, error)
}
