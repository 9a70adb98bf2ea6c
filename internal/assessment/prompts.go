package assessment

import (
	"strings"
	"unicode/utf8"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	notAvailable = "N/A"

	maxFieldBytes     = 200
	maxNewsBytes      = 2000
	maxNarrativeBytes = 8000
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// narrativePrompt renders the fixed-shape stage-1 prompt. Every field is
// present; blank text and missing figures read N/A.
func narrativePrompt(c *models.Company) string {
	var b strings.Builder
	line(&b, "Empresa", text(c.Name, maxFieldBytes))
	line(&b, "Receita Anual", figure(c, models.FigureAnnualRevenue, money(c.AnnualRevenue)))
	line(&b, "Dívida Total", figure(c, models.FigureTotalDebt, money(c.TotalDebt)))
	line(&b, "Prazo de Pagamento", figure(c, models.FigurePaymentTerm, days(c.PaymentTermDays)))
	line(&b, "Setor", text(c.Sector, maxFieldBytes))
	line(&b, "Rating", text(c.Rating, maxFieldBytes))
	line(&b, "Notícias Recentes", text(c.RecentNews, maxNewsBytes))
	return b.String()
}

// proposalPrompt embeds the company figures and the stage-1 report.
func proposalPrompt(c *models.Company, narrative string) string {
	var b strings.Builder
	b.WriteString("## Dados da Empresa:\n")
	line(&b, "- Empresa", text(c.Name, maxFieldBytes))
	line(&b, "- Receita Anual", figure(c, models.FigureAnnualRevenue, money(c.AnnualRevenue)))
	line(&b, "- Dívida Total", figure(c, models.FigureTotalDebt, money(c.TotalDebt)))
	line(&b, "- Prazo de Pagamento", figure(c, models.FigurePaymentTerm, days(c.PaymentTermDays)))
	line(&b, "- Rating", text(c.Rating, maxFieldBytes))
	line(&b, "- Setor", text(c.Sector, maxFieldBytes))
	line(&b, "- Notícias Recentes", text(c.RecentNews, maxNewsBytes))
	b.WriteString("\n## Análise Qualitativa Recebida:\n")
	b.WriteString(truncate(strings.TrimSpace(narrative), maxNarrativeBytes))
	b.WriteString("\n\nCom base em TUDO isso, gere a sugestão de crédito em formato JSON.\n")
	return b.String()
}

func line(b *strings.Builder, label, value string) {
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}

func text(s string, max int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return notAvailable
	}
	return truncate(s, max)
}

func figure(c *models.Company, f models.Figures, rendered string) string {
	if c.Missing.Has(f) {
		return notAvailable
	}
	return rendered
}

func money(v int64) string {
	return brl.Sprintf("R$ %d", v)
}

func days(v int) string {
	return brl.Sprintf("%d dias", v)
}

// truncate cuts s to at most maxBytes without splitting a UTF-8 sequence.
func truncate(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
