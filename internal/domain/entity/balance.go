package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TipoBalance distinguishes annual balances (two dated cross-sections) from
// semesterly balances (up to four dated cross-sections across two half-years).
type TipoBalance string

const (
	TipoBalanceAnual     TipoBalance = "ANUAL"
	TipoBalanceSemestral TipoBalance = "SEMESTRAL"
)

// Seccion is the financial-statement section an account belongs to.
type Seccion string

const (
	SeccionActivo             Seccion = "Activo"
	SeccionPasivo             Seccion = "Pasivo"
	SeccionPatrimonio         Seccion = "Patrimonio"
	SeccionEstadoDeResultados Seccion = "EstadoDeResultados"
)

// Secciones lists every known section, in statement order.
var Secciones = []Seccion{
	SeccionActivo,
	SeccionPasivo,
	SeccionPatrimonio,
	SeccionEstadoDeResultados,
}

// BalanceRecord is one account balance at one cut-off date.
// Valor is non-negative; uniqueness is not enforced at this layer
// (duplicates accumulate in the flattened mapping, last write wins).
type BalanceRecord struct {
	ID           int64           `json:"id"`
	AuditID      int64           `json:"audit_id"`
	TipoBalance  TipoBalance     `json:"tipo_balance"`
	FechaCorte   time.Time       `json:"fecha_corte"`
	Seccion      Seccion         `json:"seccion"`
	NombreCuenta string          `json:"nombre_cuenta"`
	TipoCuenta   string          `json:"tipo_cuenta,omitempty"`
	Valor        decimal.Decimal `json:"valor"`
}

// AdjustmentRecord is a debit/credit adjustment tied to an account name.
// The account name is a free-text match against BalanceRecord.NombreCuenta.
type AdjustmentRecord struct {
	ID           int64           `json:"id"`
	AuditID      int64           `json:"audit_id"`
	NombreCuenta string          `json:"nombre_cuenta"`
	Debe         decimal.Decimal `json:"debe"`
	Haber        decimal.Decimal `json:"haber"`
}

// AuxiliaryRecord is an auxiliary balance keyed by account and cut-off date.
type AuxiliaryRecord struct {
	ID         int64           `json:"id"`
	AuditID    int64           `json:"audit_id"`
	Cuenta     string          `json:"cuenta"`
	FechaCorte time.Time       `json:"fecha_corte"`
	Valor      decimal.Decimal `json:"valor"`
}

// InitialBalanceRecord is an opening balance keyed by account alone.
type InitialBalanceRecord struct {
	ID      int64           `json:"id"`
	AuditID int64           `json:"audit_id"`
	Cuenta  string          `json:"cuenta"`
	Valor   decimal.Decimal `json:"valor"`
}
