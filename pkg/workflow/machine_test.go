package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"ai-reportgen-be/internal/entity"
	"ai-reportgen-be/pkg/knowledge"
	"ai-reportgen-be/pkg/llm"
	"ai-reportgen-be/pkg/session"
	"ai-reportgen-be/pkg/websearch"

	"github.com/google/uuid"
)

// --- fakes ---

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeStore struct {
	hits      []knowledge.SearchHit
	docChunks map[uuid.UUID][]knowledge.SearchHit
	searchErr error
}

func (f *fakeStore) Add(ctx context.Context, chunks []*entity.Chunk) error { return nil }

func (f *fakeStore) Search(ctx context.Context, query string, k int, minSimilarity float64) ([]knowledge.SearchHit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

func (f *fakeStore) DeleteByDocument(ctx context.Context, documentId uuid.UUID) error { return nil }

func (f *fakeStore) LoadDocument(ctx context.Context, documentId uuid.UUID) ([]knowledge.SearchHit, error) {
	return f.docChunks[documentId], nil
}

type fakeLLM struct {
	mu        sync.Mutex
	response  string
	err       error
	prompts   []string
	chatCalls int
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatCalls++
	for _, m := range history {
		f.prompts = append(f.prompts, m.Content)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

type fakeSearch struct {
	mu      sync.Mutex
	results []websearch.Result
	err     error
	queries []string
}

func (f *fakeSearch) Search(ctx context.Context, query string, limit int) ([]websearch.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

// --- helpers ---

func hit(doc uuid.UUID, content string, similarity float64) knowledge.SearchHit {
	return knowledge.SearchHit{
		Chunk: &entity.Chunk{
			Id:         uuid.New(),
			DocumentId: doc,
			Content:    content,
		},
		Similarity: similarity,
		DocumentId: doc,
	}
}

func newTestEngine(store knowledge.Store, model llm.LLMProvider, search websearch.SearchProvider, confirmations session.Store) *Engine {
	gate := NewGate(confirmations, 10*time.Millisecond, nopLogger{})
	return NewEngine(
		store,
		knowledge.NewEvaluator(0.3, 0.3),
		model,
		search,
		gate,
		nopLogger{},
		Config{TopK: 5, MinSimilarity: 0.3, MaxDirectChars: 50000, SearchSteps: 3},
	)
}

func preDecide(t *testing.T, confirmations session.Store, conversationId uuid.UUID, confirmed bool) {
	t.Helper()
	status := session.ConfirmationDeclined
	if confirmed {
		status = session.ConfirmationConfirmed
	}
	err := confirmations.Set(context.Background(), &session.ConfirmationRecord{
		ConversationId: conversationId,
		Status:         status,
		Confirmed:      &confirmed,
	})
	if err != nil {
		t.Fatalf("failed to seed confirmation: %v", err)
	}
}

// --- tests ---

func TestRunSufficientGoesStraightToGeneration(t *testing.T) {
	doc := uuid.New()
	store := &fakeStore{hits: []knowledge.SearchHit{hit(doc, "strong matching content", 0.8)}}
	model := &fakeLLM{response: "# Generated Report"}
	engine := newTestEngine(store, model, &fakeSearch{}, session.NewMemoryStore())

	state := NewState(uuid.New(), "market analysis report", OperationGenerate)
	if err := engine.Run(context.Background(), state); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if state.Stage != StageEnd {
		t.Errorf("Stage = %s, want end", state.Stage)
	}
	if state.Sufficiency.Level != knowledge.LevelSufficient {
		t.Errorf("Level = %s, want sufficient", state.Sufficiency.Level)
	}
	if state.GenerationMode != ModeKnowledgeBase {
		t.Errorf("GenerationMode = %s, want knowledge_base", state.GenerationMode)
	}
	if state.Report == "" {
		t.Error("no report produced")
	}
}

func TestRunDocumentIdBypass(t *testing.T) {
	doc := uuid.New()
	store := &fakeStore{
		// Similarity search would say irrelevant; the named document wins.
		docChunks: map[uuid.UUID][]knowledge.SearchHit{
			doc: {hit(doc, "full document content", 1.0)},
		},
	}
	model := &fakeLLM{response: "# Report from document"}
	engine := newTestEngine(store, model, &fakeSearch{}, session.NewMemoryStore())

	state := NewState(uuid.New(), "summarize this", OperationGenerate)
	state.DocumentId = &doc

	if err := engine.Run(context.Background(), state); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if state.Sufficiency.Level != knowledge.LevelSufficient {
		t.Errorf("Level = %s, want sufficient", state.Sufficiency.Level)
	}
	if state.Sufficiency.Confidence != 1.0 {
		t.Errorf("Confidence = %f, want 1.0", state.Sufficiency.Confidence)
	}
	if state.GenerationMode != ModeKnowledgeBase {
		t.Errorf("GenerationMode = %s, want knowledge_base", state.GenerationMode)
	}
}

func TestRunConfirmedSearchAugments(t *testing.T) {
	doc := uuid.New()
	store := &fakeStore{hits: []knowledge.SearchHit{hit(doc, "thin partial content", 0.45)}}
	model := &fakeLLM{response: "report text"}
	search := &fakeSearch{results: []websearch.Result{
		{Title: "Industry overview", Link: "https://example.com/a", Snippet: "overview text"},
	}}
	confirmations := session.NewMemoryStore()

	conversationId := uuid.New()
	preDecide(t, confirmations, conversationId, true)

	engine := newTestEngine(store, model, search, confirmations)
	state := NewState(conversationId, "niche industry deep dive", OperationGenerate)

	if err := engine.Run(context.Background(), state); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(search.queries) == 0 {
		t.Fatal("confirmed run never called the web search provider")
	}
	if state.GenerationMode != ModeHybrid {
		t.Errorf("GenerationMode = %s, want hybrid", state.GenerationMode)
	}
	if state.ConfirmedSearch == nil || !*state.ConfirmedSearch {
		t.Error("ConfirmedSearch not recorded")
	}
}

func TestRunDeclinedInsufficientUsesPartialContent(t *testing.T) {
	doc := uuid.New()
	store := &fakeStore{hits: []knowledge.SearchHit{hit(doc, "thin partial content", 0.45)}}
	model := &fakeLLM{response: "partial report"}
	search := &fakeSearch{}
	confirmations := session.NewMemoryStore()

	conversationId := uuid.New()
	preDecide(t, confirmations, conversationId, false)

	engine := newTestEngine(store, model, search, confirmations)
	state := NewState(conversationId, "niche industry deep dive", OperationGenerate)

	if err := engine.Run(context.Background(), state); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(search.queries) != 0 {
		t.Error("declined run must not call the web search provider")
	}
	if state.GenerationMode != ModeKnowledgeBase {
		t.Errorf("GenerationMode = %s, want knowledge_base", state.GenerationMode)
	}
}

func TestRunDeclinedIrrelevantProducesTemplate(t *testing.T) {
	store := &fakeStore{} // empty store: evaluation is irrelevant
	model := &fakeLLM{response: "should never be used for generation"}
	confirmations := session.NewMemoryStore()

	conversationId := uuid.New()
	preDecide(t, confirmations, conversationId, false)

	engine := newTestEngine(store, model, &fakeSearch{}, confirmations)
	state := NewState(conversationId, "topic with no material", OperationGenerate)

	if err := engine.Run(context.Background(), state); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if state.GenerationMode != ModeTemplateOnly {
		t.Errorf("GenerationMode = %s, want template_only", state.GenerationMode)
	}
	if !strings.Contains(state.Report, "No source material is available") {
		t.Error("template report missing the no-material notice")
	}
	if strings.Contains(state.Report, model.response) {
		t.Error("template path must not use LLM output")
	}
}

func TestRunRetrievalErrorDegradesToTemplatePath(t *testing.T) {
	store := &fakeStore{searchErr: errors.New("store unreachable")}
	model := &fakeLLM{response: "x"}
	confirmations := session.NewMemoryStore()

	conversationId := uuid.New()
	preDecide(t, confirmations, conversationId, false)

	engine := newTestEngine(store, model, &fakeSearch{}, confirmations)
	state := NewState(conversationId, "anything", OperationGenerate)

	if err := engine.Run(context.Background(), state); err != nil {
		t.Fatalf("retrieval error must not abort the run: %v", err)
	}

	if state.Sufficiency.Level != knowledge.LevelIrrelevant {
		t.Errorf("Level = %s, want irrelevant", state.Sufficiency.Level)
	}
	if state.Sufficiency.Confidence != 0.0 {
		t.Errorf("Confidence = %f, want 0.0", state.Sufficiency.Confidence)
	}
}

func TestRunGenerationErrorIsFatalButStateInspectable(t *testing.T) {
	doc := uuid.New()
	store := &fakeStore{hits: []knowledge.SearchHit{hit(doc, "strong matching content", 0.8)}}
	model := &fakeLLM{err: errors.New("model down")}
	engine := newTestEngine(store, model, &fakeSearch{}, session.NewMemoryStore())

	state := NewState(uuid.New(), "market analysis", OperationGenerate)
	err := engine.Run(context.Background(), state)
	if err == nil {
		t.Fatal("expected generation error")
	}

	// Partial state stays inspectable for diagnostics.
	if state.Sufficiency == nil {
		t.Error("sufficiency result lost after fatal error")
	}
	if len(state.Results) == 0 {
		t.Error("accumulated results lost after fatal error")
	}
}

func TestRunShortCircuitOperations(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
	}{
		{"follow up", OperationFollowUp},
		{"modify", OperationModify},
		{"supplement", OperationSupplement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeLLM{response: "handler output"}
			engine := newTestEngine(&fakeStore{}, model, &fakeSearch{}, session.NewMemoryStore())

			state := NewState(uuid.New(), "change the second section", tt.op)
			state.ExistingReport = "# Existing Report\n\nBody."

			if err := engine.Run(context.Background(), state); err != nil {
				t.Fatalf("Run returned error: %v", err)
			}

			if state.Report != "handler output" {
				t.Errorf("Report = %q, want handler output", state.Report)
			}
			if state.Sufficiency != nil {
				t.Error("short-circuit operation must not run retrieval scoring")
			}
		})
	}
}

func TestRunShortCircuitRequiresReport(t *testing.T) {
	engine := newTestEngine(&fakeStore{}, &fakeLLM{response: "x"}, &fakeSearch{}, session.NewMemoryStore())

	state := NewState(uuid.New(), "make it shorter", OperationModify)
	if err := engine.Run(context.Background(), state); err == nil {
		t.Fatal("expected error when no existing report supplied")
	}
}

func TestGateWaitsThenResumesOnDecision(t *testing.T) {
	confirmations := session.NewMemoryStore()
	gate := NewGate(confirmations, 10*time.Millisecond, nopLogger{})

	conversationId := uuid.New()
	state := NewState(conversationId, "q", OperationGenerate)

	done := make(chan bool, 1)
	go func() {
		confirmed, err := gate.Wait(context.Background(), state)
		if err != nil {
			t.Errorf("Wait returned error: %v", err)
		}
		done <- confirmed
	}()

	// Give the gate time to write its pending record and start waiting.
	time.Sleep(30 * time.Millisecond)

	rec, _ := confirmations.Get(context.Background(), conversationId)
	if rec == nil || rec.Status != session.ConfirmationPending {
		t.Fatalf("gate did not announce a pending question: %+v", rec)
	}

	confirmed := true
	_ = confirmations.Set(context.Background(), &session.ConfirmationRecord{
		ConversationId: conversationId,
		Status:         session.ConfirmationConfirmed,
		Confirmed:      &confirmed,
	})

	select {
	case got := <-done:
		if !got {
			t.Error("Wait returned false, want true")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("gate did not resume after decision")
	}

	if state.ConfirmedSearch == nil || !*state.ConfirmedSearch {
		t.Error("decision not copied into state.ConfirmedSearch")
	}
}

func TestGateWaitCancellable(t *testing.T) {
	confirmations := session.NewMemoryStore()
	gate := NewGate(confirmations, 10*time.Millisecond, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	state := NewState(uuid.New(), "q", OperationGenerate)

	errCh := make(chan error, 1)
	go func() {
		_, err := gate.Wait(ctx, state)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled gate never returned")
	}
}

type errorOnceStore struct {
	*session.MemoryStore
	mu       sync.Mutex
	failures int
}

func (s *errorOnceStore) Get(ctx context.Context, conversationId uuid.UUID) (*session.ConfirmationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("transient store error")
	}
	return s.MemoryStore.Get(ctx, conversationId)
}

func TestGateReadErrorsTreatedAsWait(t *testing.T) {
	inner := session.NewMemoryStore()
	store := &errorOnceStore{MemoryStore: inner, failures: 2}
	gate := NewGate(store, 5*time.Millisecond, nopLogger{})

	conversationId := uuid.New()
	confirmed := true
	_ = inner.Set(context.Background(), &session.ConfirmationRecord{
		ConversationId: conversationId,
		Status:         session.ConfirmationConfirmed,
		Confirmed:      &confirmed,
	})

	state := NewState(conversationId, "q", OperationGenerate)
	got, err := gate.Wait(context.Background(), state)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if !got {
		t.Error("Wait returned false, want true")
	}
	if state.GateReadErrors == 0 {
		t.Error("transient read errors not counted")
	}
}

func TestGateAnnouncesPendingAfterStoreRecovers(t *testing.T) {
	inner := session.NewMemoryStore()
	store := &errorOnceStore{MemoryStore: inner, failures: 1}
	gate := NewGate(store, 5*time.Millisecond, nopLogger{})

	conversationId := uuid.New()
	state := NewState(conversationId, "q", OperationGenerate)

	done := make(chan bool, 1)
	go func() {
		confirmed, err := gate.Wait(context.Background(), state)
		if err != nil {
			t.Errorf("Wait returned error: %v", err)
		}
		done <- confirmed
	}()

	// The first read fails; the gate must still create the pending record
	// on a later poll so Confirm has something to answer.
	deadline := time.Now().Add(time.Second)
	for {
		rec, _ := inner.Get(context.Background(), conversationId)
		if rec != nil && rec.Status == session.ConfirmationPending {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("pending record never created after store recovered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	confirmed := true
	_ = inner.Set(context.Background(), &session.ConfirmationRecord{
		ConversationId: conversationId,
		Status:         session.ConfirmationConfirmed,
		Confirmed:      &confirmed,
	})

	select {
	case got := <-done:
		if !got {
			t.Error("Wait returned false, want true")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("gate did not resume after decision")
	}
	if state.GateReadErrors == 0 {
		t.Error("transient read error not counted")
	}
}

func TestBuildReferencesCapsOnRuneBoundary(t *testing.T) {
	gate := NewGate(session.NewMemoryStore(), 10*time.Millisecond, nopLogger{})
	engine := NewEngine(
		&fakeStore{},
		knowledge.NewEvaluator(0.3, 0.3),
		&fakeLLM{},
		&fakeSearch{},
		gate,
		nopLogger{},
		Config{TopK: 5, MinSimilarity: 0.3, MaxDirectChars: 4, SearchSteps: 3},
	)

	state := NewState(uuid.New(), "q", OperationGenerate)
	state.GenerationMode = ModeKnowledgeBase
	state.Results = []SearchResult{{Provenance: ProvenanceKnowledgeBase, Content: "日本語テキスト"}}

	refs := engine.buildReferences(state)
	if !utf8.ValidString(refs) {
		t.Errorf("references contain invalid UTF-8: %q", refs)
	}
	if !strings.Contains(refs, "日本語テ") {
		t.Errorf("cap dropped content before the limit: %q", refs)
	}
	if strings.Contains(refs, "キ") {
		t.Errorf("content past the cap leaked through: %q", refs)
	}
}

func TestSelectGenerationMode(t *testing.T) {
	kb := SearchResult{Provenance: ProvenanceKnowledgeBase, Content: "a"}
	api := SearchResult{Provenance: ProvenanceApiSearch, Content: "b"}

	tests := []struct {
		name    string
		results []SearchResult
		want    GenerationMode
	}{
		{"both sources", []SearchResult{kb, api}, ModeHybrid},
		{"knowledge base only", []SearchResult{kb}, ModeKnowledgeBase},
		{"api search only", []SearchResult{api}, ModeApiSearch},
		{"no sources", nil, ModeTemplateOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectGenerationMode(tt.results); got != tt.want {
				t.Errorf("SelectGenerationMode = %s, want %s", got, tt.want)
			}
		})
	}
}
