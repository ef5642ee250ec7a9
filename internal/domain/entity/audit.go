package entity

import "time"

// Audit represents the audit aggregate consumed by the document generators.
// The entry/import subsystems that create these rows live outside this
// service; the generators only read them.
type Audit struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Identidad     string     `json:"identidad"`
	TipoAuditoria string     `json:"tipo_auditoria"`
	Moneda        string     `json:"moneda"`
	AuditManager  string     `json:"audit_manager"`
	FechaInit     *time.Time `json:"fecha_init"`
	FechaEnd      *time.Time `json:"fecha_end"`
	CreatedAt     time.Time  `json:"created_at"`
}
