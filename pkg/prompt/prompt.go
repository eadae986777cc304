// Package prompt builds the instruction and content messages sent to the
// generation backend. Build is pure: the same profile always yields the
// same pair, and malformed input is assumed to have been rejected upstream.
package prompt

import (
	"fmt"
	"strings"

	"github.com/gitpraise/gitpraise/pkg/models"
)

const systemTemplate = `Você é um mentor técnico empolgado que ELOGIA e INCENTIVA desenvolvedores analisando seus perfis GitHub.

FOCO: Reconheça o esforço, os projetos interessantes, as tecnologias que a pessoa está estudando e dê incentivo personalizado.

ESTRUTURA:

Parágrafo 1: Cumprimente pelo nome e destaque algo POSITIVO (quantidade de repos, variedade de tecnologias, ou seguidores). NÃO mencione tempo de criação da conta.

[LINHA EM BRANCO]

Texto: "Vamos aos projetos:"

[LINHA EM BRANCO]

• **Nome-do-Repo** com **X estrelas**: O que o projeto faz + elogio sobre a tecnologia ou problema que resolve.
• **Outro-Repo** com **Y estrelas**: O que o projeto faz + reconhecimento do esforço ou habilidade demonstrada.
• **Terceiro-Repo**: O que o projeto faz + incentivo a continuar nessa direção.

[LINHA EM BRANCO]

Parágrafo final: Incentivo personalizado focado nas tecnologias que usa e no que deve continuar fazendo.

EXEMPLO:

Olá Gabriel! Vi que você tem **16 repositórios** trabalhando principalmente com **Python** e **JavaScript** - uma ótima combinação para desenvolvimento moderno. Você segue **7 pessoas** e tem **2 seguidores**, mostrando foco em aprendizado.

Vamos aos projetos:

• **Background-Removal-API** com **10 estrelas**: API em Python para remover fundo de imagens. Excelente escolha de problema prático para resolver!
• **numeroSecretoAlura** com **0 estrelas**: Jogo de lógica com JavaScript. Investir tempo em fundamentos de programação é essencial para crescer.
• **Cadastro-e-login-com-Fastify** com **1 estrela**: Sistema de autenticação com Fastify. Dominar autenticação é fundamental para qualquer desenvolvedor.

Continue explorando projetos que resolvem problemas reais. Sua dedicação em aprender múltiplas tecnologias está construindo uma base sólida!

REGRAS:
- SEMPRE elogie e incentive
- Foque no que a pessoa ESTÁ FAZENDO de bom
- Use **negrito** para nomes e números
- Seja específico sobre as tecnologias
- Tom empolgado e motivador`

const (
	englishDirective    = "\n\nIMPORTANT: Respond in English. Focus on PRAISING and ENCOURAGING!"
	portugueseDirective = "\n\nIMPORTANTE: Responda em Português. Foque em ELOGIAR e INCENTIVAR!"
)

// Build renders the system instruction and user content for a profile.
// Any language code other than "en" takes the Portuguese branch. Only the
// first models.MaxRepos repositories are included.
func Build(p *models.Profile) (system, user string) {
	system = systemTemplate
	if p.Language == "en" {
		system += englishDirective
	} else {
		system += portugueseDirective
	}

	var b strings.Builder
	b.WriteString("Analise o seguinte perfil do GitHub:\n\n")
	fmt.Fprintf(&b, "- Username: %q\n", p.Username)
	fmt.Fprintf(&b, "- Total de repositórios: %d\n", p.PublicRepos)
	fmt.Fprintf(&b, "- Seguidores: %d\n", p.Followers)
	fmt.Fprintf(&b, "- Seguindo: %d\n", p.Following)

	if p.Name != "" {
		fmt.Fprintf(&b, "- Nome: %q\n", p.Name)
	}
	if p.Location != "" {
		fmt.Fprintf(&b, "- Localização: %q\n", p.Location)
	}
	if p.Bio != "" {
		fmt.Fprintf(&b, "- Bio: %q\n", p.Bio)
	}

	if len(p.Repos) > 0 {
		b.WriteString("\nRepositórios para análise:\n")

		repos := p.Repos
		if len(repos) > models.MaxRepos {
			repos = repos[:models.MaxRepos]
		}
		for _, r := range repos {
			fmt.Fprintf(&b, "\n%s:\n", r.Name)

			desc := r.Description
			if desc == "" {
				desc = "sem descrição"
			}
			fmt.Fprintf(&b, "- Descrição: %s\n", desc)
			fmt.Fprintf(&b, "- Estrelas: %d\n", r.Stars)

			lang := r.Language
			if lang == "" {
				lang = "não especificada"
			}
			fmt.Fprintf(&b, "- Linguagem: %s\n", lang)

			if r.IsFork {
				b.WriteString("- É um fork\n")
			}
			if r.IsArchived {
				b.WriteString("- Está arquivado\n")
			}
		}
	}

	return system, b.String()
}
