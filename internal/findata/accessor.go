// Package findata queries the financial records behind an audit and reshapes
// them into the flat composite-key mappings the document engines consume.
package findata

import (
	"context"

	"github.com/auditoria/docgen/internal/application/port"
	"go.uber.org/zap"
)

// Adjustment is the flattened debit/credit pair for one account name.
type Adjustment struct {
	Debe  float64 `json:"debe"`
	Haber float64 `json:"haber"`
}

// FinancialData carries every financial record of one audit, both as plain
// serialized rows and folded into composite-key maps. It is built once per
// document-generation request and never mutated afterwards.
type FinancialData struct {
	Raw             map[string][]map[string]interface{}
	Balances        map[string]float64
	Auxiliaries     map[string]float64
	InitialBalances map[string]float64
	Adjustments     map[string]Adjustment
}

// Accessor loads and flattens financial data for audits.
type Accessor struct {
	repo   port.FinancialDataRepository
	logger *zap.Logger
}

// NewAccessor creates a new financial data accessor
func NewAccessor(repo port.FinancialDataRepository, logger *zap.Logger) *Accessor {
	return &Accessor{
		repo:   repo,
		logger: logger,
	}
}

// GetAllFinancialData loads every record family for an audit. Query errors
// degrade to empty collections: a template filled with partially missing
// values beats blocking the user on a secondary error.
func (a *Accessor) GetAllFinancialData(ctx context.Context, auditID int64) *FinancialData {
	data := &FinancialData{
		Raw:             make(map[string][]map[string]interface{}),
		Balances:        make(map[string]float64),
		Auxiliaries:     make(map[string]float64),
		InitialBalances: make(map[string]float64),
		Adjustments:     make(map[string]Adjustment),
	}

	balances, err := a.repo.ListBalances(ctx, auditID)
	if err != nil {
		a.logger.Warn("Failed to load balances, continuing with empty set",
			zap.Int64("audit_id", auditID), zap.Error(err))
	}
	for _, rec := range balances {
		fecha := rec.FechaCorte.Format("2006-01-02")
		valor, _ := rec.Valor.Float64()
		data.Raw["balances"] = append(data.Raw["balances"], map[string]interface{}{
			"tipo_balance":  string(rec.TipoBalance),
			"fecha_corte":   fecha,
			"seccion":       string(rec.Seccion),
			"nombre_cuenta": rec.NombreCuenta,
			"tipo_cuenta":   rec.TipoCuenta,
			"valor":         valor,
		})
		key := BalanceKey(rec.TipoBalance, fecha, rec.Seccion, rec.NombreCuenta, rec.TipoCuenta)
		data.Balances[key] = valor
	}

	adjustments, err := a.repo.ListAdjustments(ctx, auditID)
	if err != nil {
		a.logger.Warn("Failed to load adjustments, continuing with empty set",
			zap.Int64("audit_id", auditID), zap.Error(err))
	}
	for _, rec := range adjustments {
		debe, _ := rec.Debe.Float64()
		haber, _ := rec.Haber.Float64()
		data.Raw["ajustes"] = append(data.Raw["ajustes"], map[string]interface{}{
			"nombre_cuenta": rec.NombreCuenta,
			"debe":          debe,
			"haber":         haber,
		})
		data.Adjustments[rec.NombreCuenta] = Adjustment{Debe: debe, Haber: haber}
	}

	auxiliaries, err := a.repo.ListAuxiliaries(ctx, auditID)
	if err != nil {
		a.logger.Warn("Failed to load auxiliaries, continuing with empty set",
			zap.Int64("audit_id", auditID), zap.Error(err))
	}
	for _, rec := range auxiliaries {
		fecha := rec.FechaCorte.Format("2006-01-02")
		valor, _ := rec.Valor.Float64()
		data.Raw["auxiliares"] = append(data.Raw["auxiliares"], map[string]interface{}{
			"cuenta":      rec.Cuenta,
			"fecha_corte": fecha,
			"valor":       valor,
		})
		data.Auxiliaries[AuxiliaryKey(rec.Cuenta, fecha)] = valor
	}

	initials, err := a.repo.ListInitialBalances(ctx, auditID)
	if err != nil {
		a.logger.Warn("Failed to load initial balances, continuing with empty set",
			zap.Int64("audit_id", auditID), zap.Error(err))
	}
	for _, rec := range initials {
		valor, _ := rec.Valor.Float64()
		data.Raw["saldos_iniciales"] = append(data.Raw["saldos_iniciales"], map[string]interface{}{
			"cuenta": rec.Cuenta,
			"valor":  valor,
		})
		data.InitialBalances[rec.Cuenta] = valor
	}

	a.logger.Debug("Financial data loaded",
		zap.Int64("audit_id", auditID),
		zap.Int("balances", len(data.Balances)),
		zap.Int("adjustments", len(data.Adjustments)),
		zap.Int("auxiliaries", len(data.Auxiliaries)),
		zap.Int("initial_balances", len(data.InitialBalances)))

	return data
}
