package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gitpraise/gitpraise/pkg/models"
)

func testProfile() models.Profile {
	return models.Profile{
		Username:    "octocat",
		CreatedAt:   "2011-01-25T18:44:36Z",
		PublicRepos: 8,
		Followers:   3,
		Following:   9,
		Language:    "pt",
	}
}

func TestLanguageDirective(t *testing.T) {
	p := testProfile()

	p.Language = "en"
	system, _ := Build(&p)
	if !strings.Contains(system, "Respond in English") {
		t.Error("expected English directive for language en")
	}

	p.Language = "pt"
	system, _ = Build(&p)
	if !strings.Contains(system, "Responda em Português") {
		t.Error("expected Portuguese directive for language pt")
	}

	// Unknown codes fall back to Portuguese rather than erroring.
	p.Language = "fr"
	system, _ = Build(&p)
	if !strings.Contains(system, "Responda em Português") {
		t.Error("expected Portuguese directive for unknown language code")
	}
}

func TestContentOrder(t *testing.T) {
	p := testProfile()
	p.Name = "The Octocat"
	p.Location = "São Paulo"
	p.Bio = "mascote"

	_, user := Build(&p)

	want := `Analise o seguinte perfil do GitHub:

- Username: "octocat"
- Total de repositórios: 8
- Seguidores: 3
- Seguindo: 9
- Nome: "The Octocat"
- Localização: "São Paulo"
- Bio: "mascote"
`
	if user != want {
		t.Errorf("unexpected content:\n got: %q\nwant: %q", user, want)
	}
}

func TestOptionalFieldsOmitted(t *testing.T) {
	p := testProfile()
	_, user := Build(&p)

	for _, label := range []string{"- Nome:", "- Localização:", "- Bio:", "Repositórios para análise"} {
		if strings.Contains(user, label) {
			t.Errorf("content should not contain %q for a minimal profile", label)
		}
	}
}

func TestRepoBlock(t *testing.T) {
	p := testProfile()
	p.Repos = []models.Repo{
		{Name: "hello-world", Description: "My first repo", Stars: 4, Language: "Go"},
		{Name: "spoon-knife", IsFork: true, IsArchived: true, Stars: 1},
	}

	_, user := Build(&p)

	if !strings.Contains(user, "Repositórios para análise:") {
		t.Fatal("expected repo block header")
	}
	if !strings.Contains(user, "hello-world:\n- Descrição: My first repo\n- Estrelas: 4\n- Linguagem: Go\n") {
		t.Errorf("unexpected first repo block:\n%s", user)
	}
	if !strings.Contains(user, "spoon-knife:\n- Descrição: sem descrição\n- Estrelas: 1\n- Linguagem: não especificada\n- É um fork\n- Está arquivado\n") {
		t.Errorf("expected placeholders and markers for second repo:\n%s", user)
	}
}

func TestOnlyFirstFiveReposIncluded(t *testing.T) {
	p := testProfile()
	for i := 0; i < 7; i++ {
		p.Repos = append(p.Repos, models.Repo{Name: fmt.Sprintf("repo-%d", i)})
	}

	_, user := Build(&p)

	for i := 0; i < 5; i++ {
		if !strings.Contains(user, fmt.Sprintf("repo-%d:", i)) {
			t.Errorf("expected repo-%d in content", i)
		}
	}
	for i := 5; i < 7; i++ {
		if strings.Contains(user, fmt.Sprintf("repo-%d:", i)) {
			t.Errorf("repo-%d should not appear in content", i)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	p := testProfile()
	s1, u1 := Build(&p)
	s2, u2 := Build(&p)
	if s1 != s2 || u1 != u2 {
		t.Error("expected identical output for identical input")
	}
}
