package ai

import "github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"

// Profile is a named role configuration for the shared generator: the fixed
// instruction the model receives plus output options.
type Profile struct {
	Name              string
	SystemInstruction string
	JSONOutput        bool
	Temperature       float32
}

// Request builds the outbound call for prompt under this profile.
func (p Profile) Request(prompt string) models.GenerationRequest {
	return models.GenerationRequest{
		Profile:           p.Name,
		SystemInstruction: p.SystemInstruction,
		Prompt:            prompt,
		JSON:              p.JSONOutput,
		Temperature:       p.Temperature,
	}
}

// NarrativeProfile produces the qualitative stage-1 report.
var NarrativeProfile = Profile{
	Name: "narrative",
	SystemInstruction: `Você é uma assistente de análise de crédito para pequenas e médias empresas.
Sintetize os dados recebidos e aponte riscos e oportunidades que não sejam óbvios.
Avalie o momento do setor da empresa: oportunidades atuais ou riscos emergentes.
Escreva um relatório curto, claro e baseado nos dados.

Campos recebidos:
Empresa: nome da empresa.
Receita Anual: receita total anual, em reais (inteiro).
Dívida Total: dívida total, em reais (inteiro).
Prazo de Pagamento: dias que a empresa leva para pagar suas dívidas (inteiro).
Setor: setor em que a empresa atua.
Rating: nota de crédito da empresa.
Notícias Recentes: resumo de notícias relevantes (pode ser N/A).

Formate valores monetários como R$ com ponto para milhar e vírgula para decimal.
Termine com uma recomendação preliminar de concessão ou recusa, exatamente neste formato:

**Recomendação Preliminar:** <recomendação>

**Justificativa:** <justificativa breve>`,
	Temperature: 0.4,
}

// ProposalProfile produces the stage-2 structured proposal as bare JSON.
var ProposalProfile = Profile{
	Name: "proposal",
	SystemInstruction: `Você é uma especialista em concessão de crédito para pequenas e médias empresas.
Com base nos dados da empresa e na análise qualitativa recebida, defina uma proposta de crédito inicial
coerente com a recomendação da análise (aprovar, recusar, aprovar com ressalvas).

Responda APENAS com um objeto JSON, sem texto ou formatação adicional, com EXATAMENTE estas chaves:
- "valor_sugerido": inteiro, valor recomendado do empréstimo em reais (0 se o crédito for recusado).
- "taxa_juros": número, taxa de juros mensal em porcentagem (ex.: 1.5 para 1,5% ao mês).
- "prazo_pagamento": inteiro, prazo recomendado em meses.
- "justificativa": texto curto (no máximo 2 frases) explicando os valores sugeridos ou a recusa.

Considere receita, dívida, rating e a análise qualitativa.`,
	JSONOutput:  true,
	Temperature: 0.1,
}
