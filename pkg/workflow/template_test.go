package workflow

import (
	"strings"
	"testing"

	"ai-reportgen-be/pkg/session"

	"github.com/google/uuid"
)

func TestTemplateByName(t *testing.T) {
	tests := []struct {
		name     string
		lookup   string
		wantName string
		wantOk   bool
	}{
		{"empty resolves default", "", DefaultTemplateName, true},
		{"known template", "business_analysis", "business_analysis", true},
		{"unknown template", "poetry", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TemplateByName(tt.lookup)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && got.Name != tt.wantName {
				t.Errorf("name = %q, want %q", got.Name, tt.wantName)
			}
		})
	}
}

func TestTemplatesSorted(t *testing.T) {
	templates := Templates()
	if len(templates) < 2 {
		t.Fatalf("expected multiple templates, got %d", len(templates))
	}
	for i := 1; i < len(templates); i++ {
		if templates[i-1].Name >= templates[i].Name {
			t.Errorf("templates not sorted: %q before %q", templates[i-1].Name, templates[i].Name)
		}
	}
}

func TestBuildTemplateContainsAllSections(t *testing.T) {
	engine := newTestEngine(&fakeStore{}, &fakeLLM{}, &fakeSearch{}, session.NewMemoryStore())

	state := NewState(uuid.New(), "quarterly revenue outlook", OperationGenerate)
	state.TemplateName = "technical_review"

	out := engine.buildTemplate(state)

	if !strings.Contains(out, "No source material is available") {
		t.Error("skeleton notice missing")
	}
	tpl, _ := TemplateByName("technical_review")
	for _, s := range tpl.Sections {
		if !strings.Contains(out, s.Title) {
			t.Errorf("section %q missing from skeleton", s.Title)
		}
	}
	if strings.Contains(out, "Introduction") {
		t.Error("default template sections leaked into named template output")
	}
}

func TestBuildTemplateUnknownFallsBackToDefault(t *testing.T) {
	engine := newTestEngine(&fakeStore{}, &fakeLLM{}, &fakeSearch{}, session.NewMemoryStore())

	state := NewState(uuid.New(), "anything", OperationGenerate)
	state.TemplateName = "no-such-template"

	out := engine.buildTemplate(state)
	if !strings.Contains(out, "Introduction") {
		t.Error("expected default template sections")
	}
}
