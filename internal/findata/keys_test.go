package findata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/auditoria/docgen/internal/domain/entity"
)

func TestBalanceKey(t *testing.T) {
	t.Run("without account type", func(t *testing.T) {
		key := BalanceKey(entity.TipoBalanceAnual, "2024-12-31", entity.SeccionActivo, "Caja", "")
		assert.Equal(t, "ANUAL-2024-12-31-Activo-Caja", key)
	})

	t.Run("with account type", func(t *testing.T) {
		key := BalanceKey(entity.TipoBalanceSemestral, "2024-06-30", entity.SeccionPasivo, "Proveedores", "Corriente")
		assert.Equal(t, "SEMESTRAL-2024-06-30-Pasivo-Proveedores-Corriente", key)
	})
}

func TestAuxiliaryKey(t *testing.T) {
	assert.Equal(t, "Caja Chica-2024-06-30", AuxiliaryKey("Caja Chica", "2024-06-30"))
}

func TestSemesterDates(t *testing.T) {
	balances := map[string]float64{
		"SEMESTRAL-2024-06-30-Activo-Caja":   100,
		"SEMESTRAL-2023-12-31-Activo-Caja":   90,
		"SEMESTRAL-2024-06-30-Pasivo-Deudas": 50,
		"ANUAL-2024-12-31-Activo-Caja":       120,
	}

	dates := SemesterDates(balances)
	assert.Equal(t, []string{"2023-12-31", "2024-06-30"}, dates)
}

func TestAnnualYears(t *testing.T) {
	t.Run("full dates and bare years", func(t *testing.T) {
		balances := map[string]float64{
			"ANUAL-2024-12-31-Activo-Caja":     120,
			"ANUAL-2023-Activo-Caja":           100,
			"SEMESTRAL-2024-06-30-Activo-Caja": 60,
		}
		assert.Equal(t, []string{"2023", "2024"}, AnnualYears(balances))
	})

	t.Run("empty map", func(t *testing.T) {
		assert.Empty(t, AnnualYears(map[string]float64{}))
	})
}

func TestAccountsBySection(t *testing.T) {
	balances := map[string]float64{
		"ANUAL-2024-Activo-Caja":              100,
		"ANUAL-2024-Activo-Bancos":            200,
		"ANUAL-2024-Pasivo-Proveedores":       50,
		"ANUAL-2023-Activo-Inversiones":       80,
		"SEMESTRAL-2024-06-30-Activo-Almacén": 30,
	}

	t.Run("filtered by year", func(t *testing.T) {
		cuentas := AccountsBySection(balances, entity.TipoBalanceAnual, entity.SeccionActivo, "2024")
		assert.Equal(t, []string{"Bancos", "Caja"}, cuentas)
	})

	t.Run("all years", func(t *testing.T) {
		cuentas := AccountsBySection(balances, entity.TipoBalanceAnual, entity.SeccionActivo, "")
		assert.Equal(t, []string{"Bancos", "Caja", "Inversiones"}, cuentas)
	})

	t.Run("other section untouched", func(t *testing.T) {
		cuentas := AccountsBySection(balances, entity.TipoBalanceAnual, entity.SeccionPasivo, "2024")
		assert.Equal(t, []string{"Proveedores"}, cuentas)
	})

	t.Run("account type suffix kept so lookups round-trip", func(t *testing.T) {
		suffixed := map[string]float64{
			BalanceKey(entity.TipoBalanceSemestral, "2024-06-30", entity.SeccionPasivo, "Proveedores", "Corriente"): 700,
		}

		cuentas := AccountsBySection(suffixed, entity.TipoBalanceSemestral, entity.SeccionPasivo, "")
		assert.Equal(t, []string{"Proveedores-Corriente"}, cuentas)

		v, ok := LookupBalance(suffixed, entity.TipoBalanceSemestral, "2024-06-30", cuentas[0])
		assert.True(t, ok)
		assert.Equal(t, 700.0, v)
	})
}

func TestLookupBalance(t *testing.T) {
	balances := map[string]float64{
		"SEMESTRAL-2024-06-30-Activo-Caja y Bancos": 1500,
		"SEMESTRAL-2024-06-30-Pasivo-Proveedores":   700,
	}

	t.Run("exact key", func(t *testing.T) {
		v, ok := LookupBalance(balances, entity.TipoBalanceSemestral, "2024-06-30", "Caja y Bancos")
		assert.True(t, ok)
		assert.Equal(t, 1500.0, v)
	})

	t.Run("substring fallback", func(t *testing.T) {
		v, ok := LookupBalance(balances, entity.TipoBalanceSemestral, "2024-06-30", "caja")
		assert.True(t, ok)
		assert.Equal(t, 1500.0, v)
	})

	t.Run("reverse substring fallback", func(t *testing.T) {
		v, ok := LookupBalance(balances, entity.TipoBalanceSemestral, "2024-06-30", "Pasivo-Proveedores del exterior")
		assert.True(t, ok)
		assert.Equal(t, 700.0, v)
	})

	t.Run("wrong date misses", func(t *testing.T) {
		_, ok := LookupBalance(balances, entity.TipoBalanceSemestral, "2023-12-31", "Caja y Bancos")
		assert.False(t, ok)
	})
}

func TestLookupAnnual(t *testing.T) {
	balances := map[string]float64{
		"ANUAL-2024-12-31-Activo-Caja": 120,
		"ANUAL-2023-Activo-Caja":       100,
	}

	t.Run("full date key", func(t *testing.T) {
		v, ok := LookupAnnual(balances, "2024", entity.SeccionActivo, "Caja")
		assert.True(t, ok)
		assert.Equal(t, 120.0, v)
	})

	t.Run("bare year key", func(t *testing.T) {
		v, ok := LookupAnnual(balances, "2023", entity.SeccionActivo, "Caja")
		assert.True(t, ok)
		assert.Equal(t, 100.0, v)
	})

	t.Run("missing account", func(t *testing.T) {
		_, ok := LookupAnnual(balances, "2024", entity.SeccionActivo, "Bancos")
		assert.False(t, ok)
	})
}

func TestLookupAdjustment(t *testing.T) {
	adjustments := map[string]Adjustment{
		"Caja y Bancos": {Debe: 100, Haber: 40},
	}

	t.Run("exact match", func(t *testing.T) {
		adj, ok := LookupAdjustment(adjustments, "Caja y Bancos")
		assert.True(t, ok)
		assert.Equal(t, 100.0, adj.Debe)
		assert.Equal(t, 40.0, adj.Haber)
	})

	t.Run("substring match", func(t *testing.T) {
		adj, ok := LookupAdjustment(adjustments, "caja")
		assert.True(t, ok)
		assert.Equal(t, 100.0, adj.Debe)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := LookupAdjustment(adjustments, "Inventarios")
		assert.False(t, ok)
	})
}
