package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderKey(t *testing.T) {
	tests := map[string]string{
		"Empresa":                   "empresa",
		"Prazo de Pagamento (dias)": "prazo_de_pagamento_dias",
		"Dívida Total":              "divida_total",
		"Notícias Recentes":         "noticias_recentes",
		"  annual_revenue ":         "annual_revenue",
		"Razão-Social":              "razao_social",
		"CLASSIFICAÇÃO":             "classificacao",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, headerKey(in))
		})
	}
}

func TestNormalize_MapsPortugueseHeaders(t *testing.T) {
	table := &Table{
		Columns: []string{"Empresa", "Receita Anual", "Dívida Total", "Prazo de Pagamento (dias)", "Setor", "Rating", "Notícias Recentes"},
		Rows: []Row{{
			"Empresa": "Acme", "Receita Anual": "1000", "Dívida Total": "10",
			"Prazo de Pagamento (dias)": "30", "Setor": "Varejo", "Rating": "B", "Notícias Recentes": nil,
		}},
	}

	records := Normalize(table)
	require.Len(t, records, 1)
	assert.Equal(t, Record{
		Line: 1, Name: "Acme", AnnualRevenue: "1000", TotalDebt: "10", PaymentTermDays: "30",
		Sector: "Varejo", Rating: "B", RecentNews: "",
	}, records[0])
}

func TestNormalize_IsTotal(t *testing.T) {
	table := &Table{
		Columns: []string{"unrelated", "sector"},
		Rows: []Row{
			{"unrelated": "x", "sector": "Agro"},
			{"unrelated": nil, "sector": nil},
		},
	}

	records := Normalize(table)
	require.Len(t, records, 2, "every row in yields one record out")
	assert.Equal(t, "", records[0].Name, "a row without a name is passed through")
	assert.Equal(t, "Agro", records[0].Sector)
	assert.Equal(t, 2, records[1].Line)
	assert.Equal(t, Record{Line: 2}, records[1])
}

func TestNormalize_FirstMatchingColumnWins(t *testing.T) {
	table := &Table{
		Columns: []string{"Empresa", "company_name"},
		Rows:    []Row{{"Empresa": "Primeira", "company_name": "Second"}},
	}
	records := Normalize(table)
	assert.Equal(t, "Primeira", records[0].Name)
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", cellString(nil))
	assert.Equal(t, "abc", cellString("  abc "))
	assert.Equal(t, "true", cellString(true))
	assert.Equal(t, "12", cellString(int64(12)))
	assert.Equal(t, "1.5", cellString(1.5))
}
