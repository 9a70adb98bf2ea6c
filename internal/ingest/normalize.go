package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Record is a source row mapped onto the canonical company fields. Every
// field is text; numeric coercion happens in the Writer. Line is the 1-based
// data row the record came from.
type Record struct {
	Line            int
	Name            string
	AnnualRevenue   string
	TotalDebt       string
	PaymentTermDays string
	Sector          string
	Rating          string
	RecentNews      string
}

type field int

const (
	fieldName field = iota
	fieldAnnualRevenue
	fieldTotalDebt
	fieldPaymentTermDays
	fieldSector
	fieldRating
	fieldRecentNews
)

// aliases maps folded header names (see headerKey) to canonical fields.
var aliases = map[string]field{
	"empresa":         fieldName,
	"nome":            fieldName,
	"nome_da_empresa": fieldName,
	"razao_social":    fieldName,
	"name":            fieldName,
	"company":         fieldName,
	"company_name":    fieldName,

	"receita_anual":     fieldAnnualRevenue,
	"receita":           fieldAnnualRevenue,
	"faturamento_anual": fieldAnnualRevenue,
	"annual_revenue":    fieldAnnualRevenue,
	"revenue":           fieldAnnualRevenue,

	"divida_total": fieldTotalDebt,
	"divida":       fieldTotalDebt,
	"total_debt":   fieldTotalDebt,
	"debt":         fieldTotalDebt,

	"prazo_de_pagamento_dias": fieldPaymentTermDays,
	"prazo_de_pagamento":      fieldPaymentTermDays,
	"prazo_pagamento":         fieldPaymentTermDays,
	"prazo_pagamento_dias":    fieldPaymentTermDays,
	"payment_term_days":       fieldPaymentTermDays,
	"payment_term":            fieldPaymentTermDays,
	"term_days":               fieldPaymentTermDays,

	"setor":    fieldSector,
	"segmento": fieldSector,
	"sector":   fieldSector,

	"rating":        fieldRating,
	"classificacao": fieldRating,
	"credit_rating": fieldRating,

	"noticias_recentes": fieldRecentNews,
	"noticias":          fieldRecentNews,
	"recent_news":       fieldRecentNews,
	"news":              fieldRecentNews,
}

// headerKey folds a column name to lowercase ASCII-ish snake case:
// "Prazo de Pagamento (dias)" becomes "prazo_de_pagamento_dias".
func headerKey(h string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), h)
	if err != nil {
		folded = h
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// Normalize maps every row of t onto a Record. It never drops a row: missing
// columns and null cells become "", and a row without a name is kept so the
// Writer can report it.
func Normalize(t *Table) []Record {
	// Resolve each canonical field to the first source column carrying it.
	var columns [fieldRecentNews + 1]string
	var found [fieldRecentNews + 1]bool
	for _, col := range t.Columns {
		f, ok := aliases[headerKey(col)]
		if !ok || found[f] {
			continue
		}
		columns[f] = col
		found[f] = true
	}

	cell := func(row Row, f field) string {
		if !found[f] {
			return ""
		}
		return cellString(row[columns[f]])
	}

	records := make([]Record, len(t.Rows))
	for i, row := range t.Rows {
		records[i] = Record{
			Line:            i + 1,
			Name:            cell(row, fieldName),
			AnnualRevenue:   cell(row, fieldAnnualRevenue),
			TotalDebt:       cell(row, fieldTotalDebt),
			PaymentTermDays: cell(row, fieldPaymentTermDays),
			Sector:          cell(row, fieldSector),
			Rating:          cell(row, fieldRating),
			RecentNews:      cell(row, fieldRecentNews),
		}
	}
	return records
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
