package workflow

import (
	"fmt"
	"sort"
	"strings"
)

// TemplateSection is one heading of a report template with the guidance
// note rendered when no source material exists.
type TemplateSection struct {
	Title string `json:"title"`
	Note  string `json:"note"`
}

// ReportTemplate names a report structure. PlannerHint steers search
// decomposition, ReportHint steers generation; both are optional.
type ReportTemplate struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Sections    []TemplateSection `json:"sections"`
	PlannerHint string            `json:"-"`
	ReportHint  string            `json:"-"`
}

const DefaultTemplateName = "general"

var reportTemplates = map[string]ReportTemplate{
	"general": {
		Name:        "general",
		Description: "General-purpose report",
		Sections: []TemplateSection{
			{"Introduction", "Background and purpose of the report."},
			{"Current Situation", "Facts and figures describing the present state."},
			{"Analysis", "Interpretation of the gathered material."},
			{"Recommendations", "Actions suggested by the analysis."},
			{"Conclusion", "Summary of findings."},
		},
	},
	"business_analysis": {
		Name:        "business_analysis",
		Description: "Business and market analysis",
		Sections: []TemplateSection{
			{"Executive Summary", "Key findings in one paragraph."},
			{"Market Overview", "Market size, segments and trends."},
			{"Competitive Landscape", "Main players and their positioning."},
			{"Opportunities and Risks", "Upside and downside scenarios."},
			{"Strategic Recommendations", "Concrete next moves."},
		},
		PlannerHint: "Favor queries about market size, competitors and recent financial developments.",
		ReportHint:  "Structure the report as a business analysis: executive summary first, quantified claims where the material allows, strategy last.",
	},
	"technical_review": {
		Name:        "technical_review",
		Description: "Technical evaluation of a system or approach",
		Sections: []TemplateSection{
			{"Scope", "What is being evaluated and why."},
			{"Architecture", "How the system is put together."},
			{"Strengths", "What works well."},
			{"Weaknesses", "Limitations and failure modes."},
			{"Verdict", "Overall assessment and alternatives."},
		},
		PlannerHint: "Favor queries about architecture, benchmarks, known issues and comparisons.",
		ReportHint:  "Write as a technical review: precise terminology, cite the reference material for every claim about behavior.",
	},
}

// Templates lists the registered templates sorted by name.
func Templates() []ReportTemplate {
	out := make([]ReportTemplate, 0, len(reportTemplates))
	for _, t := range reportTemplates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// TemplateByName resolves a template, falling back to the default for the
// empty string. The second return is false for unknown names.
func TemplateByName(name string) (ReportTemplate, bool) {
	if name == "" {
		name = DefaultTemplateName
	}
	t, ok := reportTemplates[name]
	return t, ok
}

// template resolves the state's template, defaulting when unset or unknown.
func (e *Engine) template(state *State) ReportTemplate {
	if t, ok := TemplateByName(state.TemplateName); ok {
		return t
	}
	t, _ := TemplateByName(DefaultTemplateName)
	return t
}

// buildTemplate produces the content-free structural skeleton used when
// neither the knowledge store nor a confirmed web search yielded material.
// Deterministic, no LLM involved: the caller is told input is needed
// rather than handed invented content.
func (e *Engine) buildTemplate(state *State) string {
	var b strings.Builder
	tpl := e.template(state)

	fmt.Fprintf(&b, "# %s\n\n", strings.TrimSpace(state.Query))
	b.WriteString("> No source material is available for this request. The outline below is a structural skeleton only; upload relevant documents or allow a web search to fill it in.\n\n")

	for i, s := range tpl.Sections {
		fmt.Fprintf(&b, "## %d. %s\n\n_%s_\n\n", i+1, s.Title, s.Note)
	}

	return b.String()
}
