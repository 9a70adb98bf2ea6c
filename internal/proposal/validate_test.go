package proposal_test

import (
	"strings"
	"testing"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/proposal"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBody = `{"valor_sugerido": 150000, "taxa_juros": 1.8, "prazo_pagamento": 24, "justificativa": "Risco moderado."}`

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare", validBody, validBody},
		{"json fence", "```json\n" + validBody + "\n```", validBody},
		{"upper fence", "```JSON\n" + validBody + "\n```", validBody},
		{"plain fence", "```\n" + validBody + "\n```", validBody},
		{"opening fence only", "```json\n" + validBody, validBody},
		{"closing fence only", validBody + "\n```", validBody},
		{"single line fence", "```json" + validBody + "```", validBody},
		{"surrounding prose", "Segue a proposta:\n" + validBody + "\nEspero ter ajudado.", validBody},
		{"prose then fence", "Aqui está:\n```json\n" + validBody + "\n```", validBody},
		{"whitespace", "\n\t  " + validBody + "  \n", validBody},
		{"no object", "sem proposta", "sem proposta"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, proposal.ExtractJSON(tt.raw))
		})
	}
}

func TestParse_FencedValidJSON(t *testing.T) {
	p, err := proposal.Parse("```json\n" + validBody + "\n```")
	require.NoError(t, err)
	assert.Equal(t, &models.CreditProposal{
		SuggestedAmount:     150000,
		MonthlyInterestRate: 1.8,
		TermMonths:          24,
		Justification:       "Risco moderado.",
	}, p)
}

func TestParse_MissingKeyRejectsWholeObject(t *testing.T) {
	for _, key := range []string{"valor_sugerido", "taxa_juros", "prazo_pagamento", "justificativa"} {
		t.Run(key, func(t *testing.T) {
			body := removeKey(t, key)
			p, err := proposal.Parse("```json\n" + body + "\n```")
			require.Error(t, err)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, proposal.ErrMalformedProposal)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func removeKey(t *testing.T, key string) string {
	t.Helper()
	parts := map[string]string{
		"valor_sugerido":  `"valor_sugerido": 150000`,
		"taxa_juros":      `"taxa_juros": 1.8`,
		"prazo_pagamento": `"prazo_pagamento": 24`,
		"justificativa":   `"justificativa": "Risco moderado."`,
	}
	var kept []string
	for _, k := range []string{"valor_sugerido", "taxa_juros", "prazo_pagamento", "justificativa"} {
		if k != key {
			kept = append(kept, parts[k])
		}
	}
	return "{" + strings.Join(kept, ", ") + "}"
}

func TestParse_ShapeViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative amount", `{"valor_sugerido": -1, "taxa_juros": 1.8, "prazo_pagamento": 24, "justificativa": "x"}`},
		{"fractional amount", `{"valor_sugerido": 1000.5, "taxa_juros": 1.8, "prazo_pagamento": 24, "justificativa": "x"}`},
		{"amount as string", `{"valor_sugerido": "150000", "taxa_juros": 1.8, "prazo_pagamento": 24, "justificativa": "x"}`},
		{"rate as string", `{"valor_sugerido": 1, "taxa_juros": "1,8%", "prazo_pagamento": 24, "justificativa": "x"}`},
		{"rate of one hundred", `{"valor_sugerido": 1, "taxa_juros": 100, "prazo_pagamento": 24, "justificativa": "x"}`},
		{"negative rate", `{"valor_sugerido": 1, "taxa_juros": -0.5, "prazo_pagamento": 24, "justificativa": "x"}`},
		{"fractional term", `{"valor_sugerido": 1, "taxa_juros": 1.8, "prazo_pagamento": 12.5, "justificativa": "x"}`},
		{"term overflows", `{"valor_sugerido": 1, "taxa_juros": 1.8, "prazo_pagamento": 99999999999, "justificativa": "x"}`},
		{"justification not string", `{"valor_sugerido": 1, "taxa_juros": 1.8, "prazo_pagamento": 24, "justificativa": null}`},
		{"array", `[1, 2, 3]`},
		{"empty", ``},
		{"prose only", `Não foi possível calcular.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := proposal.Parse(tt.body)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, proposal.ErrMalformedProposal)
		})
	}
}

func TestParse_Accepts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.CreditProposal
	}{
		{
			name: "whole float amount",
			raw:  `{"valor_sugerido": 150000.0, "taxa_juros": 2, "prazo_pagamento": 12, "justificativa": "ok"}`,
			want: models.CreditProposal{SuggestedAmount: 150000, MonthlyInterestRate: 2, TermMonths: 12, Justification: "ok"},
		},
		{
			name: "refusal with zero amount",
			raw:  `{"valor_sugerido": 0, "taxa_juros": 0, "prazo_pagamento": 0, "justificativa": "Recusado."}`,
			want: models.CreditProposal{Justification: "Recusado."},
		},
		{
			name: "extra keys ignored",
			raw:  `{"valor_sugerido": 5, "taxa_juros": 1.1, "prazo_pagamento": 6, "justificativa": "ok", "moeda": "BRL"}`,
			want: models.CreditProposal{SuggestedAmount: 5, MonthlyInterestRate: 1.1, TermMonths: 6, Justification: "ok"},
		},
		{
			name: "trailing comma repaired",
			raw:  "```json\n{\"valor_sugerido\": 5, \"taxa_juros\": 1.1, \"prazo_pagamento\": 6, \"justificativa\": \"ok\",}\n```",
			want: models.CreditProposal{SuggestedAmount: 5, MonthlyInterestRate: 1.1, TermMonths: 6, Justification: "ok"},
		},
		{
			name: "single quotes repaired",
			raw:  `{'valor_sugerido': 5, 'taxa_juros': 1.1, 'prazo_pagamento': 6, 'justificativa': 'ok'}`,
			want: models.CreditProposal{SuggestedAmount: 5, MonthlyInterestRate: 1.1, TermMonths: 6, Justification: "ok"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := proposal.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *p)
		})
	}
}

func TestParse_RepairKeepsExactNumbers(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"trailing comma", "```json\n{\"valor_sugerido\": 123456789, \"taxa_juros\": 2.3, \"prazo_pagamento\": 12, \"justificativa\": \"ok\",}\n```"},
		{"missing closing brace", `{"valor_sugerido": 123456789, "taxa_juros": 2.3, "prazo_pagamento": 12, "justificativa": "ok"`},
		{"single quotes", `{'valor_sugerido': 123456789, 'taxa_juros': 2.3, 'prazo_pagamento': 12, 'justificativa': 'ok'}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := proposal.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, models.CreditProposal{
				SuggestedAmount:     123456789,
				MonthlyInterestRate: 2.3,
				TermMonths:          12,
				Justification:       "ok",
			}, *p)
		})
	}
}

func TestParse_ErrorDoesNotEchoUserMessage(t *testing.T) {
	_, err := proposal.Parse(`{"valor_sugerido": 1}`)
	require.Error(t, err)
	assert.NotEqual(t, proposal.UserMessage, err.Error())
	assert.Equal(t, "could not produce a credit proposal", proposal.UserMessage)
}
