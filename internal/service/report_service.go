package service

import (
	"context"
	"fmt"
	"time"

	"ai-reportgen-be/internal/dto"
	"ai-reportgen-be/internal/entity"
	"ai-reportgen-be/internal/pkg/logger"
	"ai-reportgen-be/internal/pkg/serverutils"
	"ai-reportgen-be/internal/repository/memory"
	"ai-reportgen-be/internal/repository/specification"
	"ai-reportgen-be/internal/repository/unitofwork"
	"ai-reportgen-be/internal/websocket"
	"ai-reportgen-be/pkg/events"
	pktNats "ai-reportgen-be/pkg/nats"
	"ai-reportgen-be/pkg/session"
	"ai-reportgen-be/pkg/workflow"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// History caps per conversation.
	maxMessages = 20
	maxVersions = 5
)

type IReportService interface {
	Templates() []workflow.ReportTemplate
	Generate(ctx context.Context, req *dto.GenerateReportRequest) (*dto.GenerateReportResponse, error)
	Confirm(ctx context.Context, req *dto.ConfirmSearchRequest) (*dto.ConfirmSearchResponse, error)
	RunStatus(ctx context.Context, runId string) (*dto.RunStatusResponse, error)
	FollowUp(ctx context.Context, req *dto.FollowUpRequest) (*dto.OperationResponse, error)
	Modify(ctx context.Context, req *dto.ModifyReportRequest) (*dto.OperationResponse, error)
	Supplement(ctx context.Context, req *dto.SupplementReportRequest) (*dto.OperationResponse, error)
}

type reportService struct {
	uowFactory     unitofwork.RepositoryFactory
	engine         *workflow.Engine
	runs           *memory.RunRepository
	sessions       session.Store
	hub            *websocket.Hub
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewReportService(
	uowFactory unitofwork.RepositoryFactory,
	engine *workflow.Engine,
	runs *memory.RunRepository,
	sessions session.Store,
	hub *websocket.Hub,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IReportService {
	return &reportService{
		uowFactory:     uowFactory,
		engine:         engine,
		runs:           runs,
		sessions:       sessions,
		hub:            hub,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *reportService) Templates() []workflow.ReportTemplate {
	return workflow.Templates()
}

// Generate starts an asynchronous report run. The response carries the runid
// immediately; progress flows over the websocket and the run status endpoint.
func (s *reportService) Generate(ctx context.Context, req *dto.GenerateReportRequest) (*dto.GenerateReportResponse, error) {
	if _, ok := workflow.TemplateByName(req.Template); !ok {
		return nil, serverutils.NewApiError(fiber.StatusBadRequest, "unknown template: "+req.Template)
	}

	conversation, err := s.resolveConversation(ctx, req.ConversationId, req.Query)
	if err != nil {
		return nil, err
	}

	// Stale decisions from a previous run must not auto-resume this one.
	if err := s.sessions.Clear(ctx, conversation.Id); err != nil {
		s.logger.Warn("ReportService", "Failed to clear stale confirmation", map[string]interface{}{"error": err.Error()})
	}

	state := workflow.NewState(conversation.Id, req.Query, workflow.OperationGenerate)
	state.DocumentId = req.DocumentId
	state.TemplateName = req.Template

	run := &entity.ReportRun{
		Id:             state.RunId,
		ConversationId: conversation.Id,
		Query:          req.Query,
		Stage:          string(state.Stage),
		Status:         entity.RunStatusRunning,
		StartedAt:      state.StartedAt,
	}
	s.runs.Save(run)

	s.saveMessage(ctx, conversation.Id, entity.MessageRoleUser, req.Query, entity.MessageTypeQuery)
	s.publishEvent(ctx, events.TypeRunStarted, map[string]interface{}{
		"run_id":          state.RunId,
		"conversation_id": conversation.Id,
		"query":           req.Query,
	})

	go s.execute(state)

	return &dto.GenerateReportResponse{
		RunId:          state.RunId,
		ConversationId: conversation.Id,
		Status:         entity.RunStatusRunning,
	}, nil
}

// execute owns the run goroutine: drives the engine, mirrors every stage
// into the run registry and websocket, and persists the outcome.
func (s *reportService) execute(state *workflow.State) {
	// Detached from the request context; a run outlives its HTTP call.
	ctx := context.Background()

	engine := s.engine.WithObserver(func(st *workflow.State) {
		status := entity.RunStatusRunning
		if st.Stage == workflow.StageConfirmationWait {
			status = entity.RunStatusWaitingConfirmation
			s.publishEvent(ctx, events.TypeRunWaiting, map[string]interface{}{
				"run_id":          st.RunId,
				"conversation_id": st.ConversationId,
				"reason":          s.sufficiencyReason(st),
			})
		}
		s.updateRun(st, status, "")
		s.hub.Send(st.ConversationId, "run_update", s.toRunStatus(st, status, ""))
	})

	err := engine.Run(ctx, state)
	if err != nil {
		s.logger.Error("ReportService", "Run failed", map[string]interface{}{
			"run_id": state.RunId,
			"error":  err.Error(),
		})
		s.updateRun(state, entity.RunStatusFailed, err.Error())
		s.hub.Send(state.ConversationId, "run_update", s.toRunStatus(state, entity.RunStatusFailed, err.Error()))
		s.publishEvent(ctx, events.TypeRunFailed, map[string]interface{}{
			"run_id":          state.RunId,
			"conversation_id": state.ConversationId,
			"error":           err.Error(),
		})
		return
	}

	if err := s.persistReport(ctx, state); err != nil {
		s.logger.Error("ReportService", "Failed to persist report", map[string]interface{}{
			"run_id": state.RunId,
			"error":  err.Error(),
		})
		s.updateRun(state, entity.RunStatusFailed, err.Error())
		s.hub.Send(state.ConversationId, "run_update", s.toRunStatus(state, entity.RunStatusFailed, err.Error()))
		return
	}

	// Decision consumed; the next run starts from a clean slate.
	if err := s.sessions.Clear(ctx, state.ConversationId); err != nil {
		s.logger.Warn("ReportService", "Failed to clear confirmation", map[string]interface{}{"error": err.Error()})
	}

	s.updateRun(state, entity.RunStatusCompleted, "")
	s.hub.Send(state.ConversationId, "run_update", s.toRunStatus(state, entity.RunStatusCompleted, ""))
	s.publishEvent(ctx, events.TypeRunCompleted, map[string]interface{}{
		"run_id":          state.RunId,
		"conversation_id": state.ConversationId,
		"generation_mode": string(state.GenerationMode),
	})
}

// persistReport stores the finished report as the conversation's current
// report, a new immutable version, and a history message, trimming both
// histories to their caps.
func (s *reportService) persistReport(ctx context.Context, state *workflow.State) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: state.ConversationId})
	if err != nil {
		return err
	}
	if conversation == nil {
		return fmt.Errorf("conversation %s disappeared mid-run", state.ConversationId)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	now := time.Now()
	conversation.CurrentReport = state.Report
	if state.Operation == workflow.OperationGenerate {
		// Short-circuit operations keep the original run's provenance.
		conversation.SearchResults = searchResultMaps(state)
	}
	conversation.UpdatedAt = &now
	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		return err
	}

	latest, err := uow.ReportVersionRepository().LatestVersion(ctx, state.ConversationId)
	if err != nil {
		return err
	}
	version := &entity.ReportVersion{
		Id:             uuid.New(),
		ConversationId: state.ConversationId,
		Version:        latest + 1,
		Content:        state.Report,
		Operation:      string(state.Operation),
		CreatedAt:      now,
	}
	if err := uow.ReportVersionRepository().Create(ctx, version); err != nil {
		return err
	}
	if err := uow.ReportVersionRepository().DeleteOldest(ctx, state.ConversationId, maxVersions); err != nil {
		return err
	}

	message := &entity.ConversationMessage{
		Id:             uuid.New(),
		ConversationId: state.ConversationId,
		Role:           entity.MessageRoleAssistant,
		Content:        state.Report,
		Type:           entity.MessageTypeReport,
		CreatedAt:      now,
	}
	if err := uow.ConversationMessageRepository().Create(ctx, message); err != nil {
		return err
	}
	if err := uow.ConversationMessageRepository().DeleteOldest(ctx, state.ConversationId, maxMessages); err != nil {
		return err
	}

	return uow.Commit()
}

// Confirm records the caller's decision for a suspended run. The gate picks
// it up through the session store watch channel.
func (s *reportService) Confirm(ctx context.Context, req *dto.ConfirmSearchRequest) (*dto.ConfirmSearchResponse, error) {
	record, err := s.sessions.Get(ctx, req.ConversationId)
	if err != nil {
		return nil, err
	}
	if record == nil || record.Status != session.ConfirmationPending {
		return nil, serverutils.NewApiError(fiber.StatusConflict, "no run is waiting for confirmation")
	}

	status := session.ConfirmationDeclined
	if *req.Confirmed {
		status = session.ConfirmationConfirmed
	}

	record.Status = status
	record.Confirmed = req.Confirmed
	if err := s.sessions.Set(ctx, record); err != nil {
		return nil, err
	}

	return &dto.ConfirmSearchResponse{
		ConversationId: req.ConversationId,
		Status:         status,
	}, nil
}

func (s *reportService) RunStatus(ctx context.Context, runId string) (*dto.RunStatusResponse, error) {
	run, ok := s.runs.Get(runId)
	if !ok {
		return nil, serverutils.NewApiError(fiber.StatusNotFound, "run not found")
	}

	resp := &dto.RunStatusResponse{
		RunId:          run.Id,
		ConversationId: run.ConversationId,
		Stage:          run.Stage,
		Status:         run.Status,
		GenerationMode: run.GenerationMode,
		Report:         run.Report,
		Error:          run.Error,
		StartedAt:      run.StartedAt,
		UpdatedAt:      run.UpdatedAt,
	}
	if run.Sufficiency != nil {
		resp.Sufficiency = &dto.SufficiencySummary{
			Level:      run.Sufficiency.Level,
			Confidence: run.Sufficiency.Confidence,
			Coverage:   run.Sufficiency.Coverage,
			Quality:    run.Sufficiency.Quality,
			Reason:     run.Sufficiency.Reason,
		}
	}

	if run.Status == entity.RunStatusWaitingConfirmation {
		record, err := s.sessions.Get(ctx, run.ConversationId)
		if err == nil && record != nil {
			resp.PendingQuestion = record.Question
		}
	}

	return resp, nil
}

// FollowUp answers a question about the current report without regenerating it.
func (s *reportService) FollowUp(ctx context.Context, req *dto.FollowUpRequest) (*dto.OperationResponse, error) {
	return s.runShortCircuit(ctx, req.ConversationId, req.Query, workflow.OperationFollowUp)
}

// Modify rewrites the current report per the instruction and stores it as a
// new version.
func (s *reportService) Modify(ctx context.Context, req *dto.ModifyReportRequest) (*dto.OperationResponse, error) {
	return s.runShortCircuit(ctx, req.ConversationId, req.Query, workflow.OperationModify)
}

// Supplement extends the current report with fresh retrieval on the
// requested topic and stores it as a new version.
func (s *reportService) Supplement(ctx context.Context, req *dto.SupplementReportRequest) (*dto.OperationResponse, error) {
	return s.runShortCircuit(ctx, req.ConversationId, req.Query, workflow.OperationSupplement)
}

func (s *reportService) runShortCircuit(ctx context.Context, conversationId uuid.UUID, query string, op workflow.Operation) (*dto.OperationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, serverutils.NewApiError(fiber.StatusNotFound, "conversation not found")
	}
	if conversation.CurrentReport == "" {
		return nil, serverutils.NewApiError(fiber.StatusConflict, "conversation has no report yet")
	}

	state := workflow.NewState(conversationId, query, op)
	state.ExistingReport = conversation.CurrentReport

	if err := s.engine.Run(ctx, state); err != nil {
		return nil, err
	}

	messageType := entity.MessageTypeFollowUp
	switch op {
	case workflow.OperationModify:
		messageType = entity.MessageTypeModification
	case workflow.OperationSupplement:
		messageType = entity.MessageTypeSupplement
	}
	s.saveMessage(ctx, conversationId, entity.MessageRoleUser, query, messageType)

	resp := &dto.OperationResponse{
		ConversationId: conversationId,
		Operation:      string(op),
	}

	if op == workflow.OperationFollowUp {
		// Answers never touch the stored report.
		s.saveMessage(ctx, conversationId, entity.MessageRoleAssistant, state.Report, entity.MessageTypeAnswer)
		resp.Answer = state.Report
		return resp, nil
	}

	if err := s.persistReport(ctx, state); err != nil {
		return nil, err
	}
	latest, err := uow.ReportVersionRepository().LatestVersion(ctx, conversationId)
	if err != nil {
		return nil, err
	}
	resp.Report = state.Report
	resp.Version = latest
	return resp, nil
}

func (s *reportService) resolveConversation(ctx context.Context, id *uuid.UUID, query string) (*entity.Conversation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if id != nil {
		conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: *id})
		if err != nil {
			return nil, err
		}
		if conversation == nil {
			return nil, serverutils.NewApiError(fiber.StatusNotFound, "conversation not found")
		}
		return conversation, nil
	}

	title := query
	if len([]rune(title)) > 80 {
		title = string([]rune(title)[:80])
	}
	conversation := &entity.Conversation{
		Id:        uuid.New(),
		Title:     title,
		CreatedAt: time.Now(),
	}
	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *reportService) saveMessage(ctx context.Context, conversationId uuid.UUID, role, content, messageType string) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	message := &entity.ConversationMessage{
		Id:             uuid.New(),
		ConversationId: conversationId,
		Role:           role,
		Content:        content,
		Type:           messageType,
		CreatedAt:      time.Now(),
	}
	if err := uow.ConversationMessageRepository().Create(ctx, message); err != nil {
		s.logger.Warn("ReportService", "Failed to save message", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := uow.ConversationMessageRepository().DeleteOldest(ctx, conversationId, maxMessages); err != nil {
		s.logger.Warn("ReportService", "Failed to trim messages", map[string]interface{}{"error": err.Error()})
	}
}

func (s *reportService) updateRun(state *workflow.State, status, errMsg string) {
	run, ok := s.runs.Get(state.RunId)
	if !ok {
		run = &entity.ReportRun{
			Id:             state.RunId,
			ConversationId: state.ConversationId,
			Query:          state.Query,
			StartedAt:      state.StartedAt,
		}
	}
	run.Stage = string(state.Stage)
	run.Status = status
	run.GenerationMode = string(state.GenerationMode)
	run.Report = state.Report
	run.Error = errMsg
	if state.Sufficiency != nil {
		run.Sufficiency = &entity.RunSufficiency{
			Level:      string(state.Sufficiency.Level),
			Confidence: state.Sufficiency.Confidence,
			Coverage:   state.Sufficiency.Coverage,
			Quality:    state.Sufficiency.Quality,
			Reason:     state.Sufficiency.Reason,
		}
	}
	s.runs.Save(run)
}

func (s *reportService) toRunStatus(state *workflow.State, status, errMsg string) *dto.RunStatusResponse {
	resp := &dto.RunStatusResponse{
		RunId:          state.RunId,
		ConversationId: state.ConversationId,
		Stage:          string(state.Stage),
		Status:         status,
		GenerationMode: string(state.GenerationMode),
		Error:          errMsg,
		StartedAt:      state.StartedAt,
		UpdatedAt:      time.Now(),
	}
	if status == entity.RunStatusCompleted {
		resp.Report = state.Report
	}
	if state.Sufficiency != nil {
		resp.Sufficiency = &dto.SufficiencySummary{
			Level:      string(state.Sufficiency.Level),
			Confidence: state.Sufficiency.Confidence,
			Coverage:   state.Sufficiency.Coverage,
			Quality:    state.Sufficiency.Quality,
			Reason:     state.Sufficiency.Reason,
		}
	}
	return resp
}

func (s *reportService) sufficiencyReason(state *workflow.State) string {
	if state.Sufficiency == nil {
		return ""
	}
	return state.Sufficiency.Reason
}

func (s *reportService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("ReportService", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

// searchResultMaps flattens the run's accumulated hits for jsonb storage on
// the conversation, so later supplements can show where content came from.
func searchResultMaps(state *workflow.State) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(state.Results))
	for _, r := range state.Results {
		out = append(out, map[string]interface{}{
			"provenance": string(r.Provenance),
			"title":      r.Title,
			"content":    r.Content,
			"url":        r.URL,
			"similarity": r.Similarity,
		})
	}
	return out
}
