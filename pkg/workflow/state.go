package workflow

import (
	"time"

	"ai-reportgen-be/pkg/knowledge"

	"github.com/google/uuid"
)

type Stage string

const (
	StageStart                 Stage = "start"
	StageIntentRecognition     Stage = "intent_recognition"
	StageRetrieval             Stage = "retrieval"
	StageSufficiencyCheck      Stage = "sufficiency_check"
	StageConfirmationWait      Stage = "confirmation_wait"
	StagePostConfirmationRoute Stage = "post_confirmation_route"
	StageSearchAugment         Stage = "search_augment"
	StageDirectGenerate        Stage = "direct_generate"
	StageTemplateOnly          Stage = "template_only"
	StageSynthesize            Stage = "synthesize"
	StageEnd                   Stage = "end"
)

type Provenance string

const (
	ProvenanceKnowledgeBase Provenance = "knowledge_base"
	ProvenanceApiSearch     Provenance = "api_search"
)

type GenerationMode string

const (
	ModeHybrid        GenerationMode = "hybrid"
	ModeKnowledgeBase GenerationMode = "knowledge_base"
	ModeApiSearch     GenerationMode = "api_search"
	ModeTemplateOnly  GenerationMode = "template_only"
)

type Operation string

const (
	OperationGenerate   Operation = "generate"
	OperationFollowUp   Operation = "follow_up"
	OperationModify     Operation = "modify"
	OperationSupplement Operation = "supplement"
)

// Intent is the enrichment produced by the classifier. Never blocks the
// decision logic; a default is substituted on classifier failure.
type Intent struct {
	Type       string   `json:"type"`
	Keywords   []string `json:"keywords"`
	Confidence float64  `json:"confidence"`
}

const IntentReportGeneration = "report_generation"

// SearchResult is one piece of accumulated reference material, tagged with
// where it came from. Provenance drives generation-mode selection.
type SearchResult struct {
	Provenance Provenance `json:"provenance"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	URL        string     `json:"url,omitempty"`
	Similarity float64    `json:"similarity,omitempty"`
}

// State is the per-run record the engine mutates as it steps through the
// machine. Owned exclusively by one run, never shared.
type State struct {
	RunId          string
	ConversationId uuid.UUID
	Query          string
	Operation      Operation

	// DocumentId bypasses retrieval scoring when set: the document's
	// chunks are loaded as full-similarity hits.
	DocumentId *uuid.UUID

	// ExistingReport feeds the short-circuit operations.
	ExistingReport string

	// TemplateName selects a report template; empty means the default.
	TemplateName string

	Stage   Stage
	Intent  *Intent
	Results []SearchResult

	Sufficiency        *knowledge.SufficiencyResult
	NeedsConfirmation  bool
	ConfirmationStatus string
	ConfirmedSearch    *bool

	// RetryCount is tracked for observability; nothing loops on it.
	RetryCount     int
	GateReadErrors int

	GenerationMode   GenerationMode
	Report           string
	Valid            *bool
	VerifyConfidence float64

	StartedAt time.Time
}

func NewState(conversationId uuid.UUID, query string, op Operation) *State {
	if op == "" {
		op = OperationGenerate
	}
	return &State{
		RunId:          uuid.NewString(),
		ConversationId: conversationId,
		Query:          query,
		Operation:      op,
		Stage:          StageStart,
		StartedAt:      time.Now(),
	}
}

// KnowledgeResults filters accumulated results by provenance.
func (s *State) ResultsByProvenance(p Provenance) []SearchResult {
	var out []SearchResult
	for _, r := range s.Results {
		if r.Provenance == p {
			out = append(out, r)
		}
	}
	return out
}
