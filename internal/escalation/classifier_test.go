package escalation

import "testing"

func TestKeywordClassifier_Escalate(t *testing.T) {
	c := NewKeywordClassifier("")

	escalated := []string{
		"humano",
		"HUMANO",
		"Preciso falar com um HUMANO",
		"  preciso falar com um humano  ",
		"\tQuero atendimento Humano por favor\n",
		// Containment, not exact match: queries that merely mention the
		// trigger word are escalated too.
		"O que significa capital humano?",
	}
	for _, body := range escalated {
		if !c.Escalate(body) {
			t.Errorf("Escalate(%q) = false, want true", body)
		}
	}

	notEscalated := []string{
		"",
		"Quais os benefícios de uma holding?",
		"humanidade", // shares a prefix with the keyword but not the full substring
		"Como funciona a sucessão patrimonial?",
	}
	for _, body := range notEscalated {
		if c.Escalate(body) {
			t.Errorf("Escalate(%q) = true, want false", body)
		}
	}
}

func TestKeywordClassifier_CustomKeyword(t *testing.T) {
	c := NewKeywordClassifier("Atendente")

	if !c.Escalate("quero um ATENDENTE agora") {
		t.Error("custom keyword must be case-folded")
	}
	if c.Escalate("quero falar com um humano") {
		t.Error("default keyword must not apply when a custom one is set")
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  Olá MUNDO \n"); got != "olá mundo" {
		t.Errorf("Normalize = %q", got)
	}
}
