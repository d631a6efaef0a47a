package service

import (
	"context"
	"fmt"
	"strings"

	"etf-advisor/internal/dto"
	"etf-advisor/internal/model"
	"etf-advisor/internal/repository"
	"etf-advisor/pkg/logger"
	"etf-advisor/pkg/utils"

	"github.com/google/uuid"
)

type BatcherService interface {
	// AnalyzeCohort submits one consolidated analysis request per due user as
	// a single batch call. Total batch failure yields an empty map, never an
	// error, so a broken backend cannot abort a tick.
	AnalyzeCohort(ctx context.Context, dueUsers []dto.DueUser) map[uint]dto.AnalysisResult
	// BuildMessages builds the prompt message pair for one due user.
	BuildMessages(ctx context.Context, due *dto.DueUser) []dto.AnalyzeMessage
}

type batcherService struct {
	log          *logger.Logger
	analyzerRepo repository.AnalyzerRepository
	historyRepo  repository.AnalysisHistoryRepository
}

func NewBatcherService(
	log *logger.Logger,
	analyzerRepo repository.AnalyzerRepository,
	historyRepo repository.AnalysisHistoryRepository,
) BatcherService {
	return &batcherService{
		log:          log,
		analyzerRepo: analyzerRepo,
		historyRepo:  historyRepo,
	}
}

func (s *batcherService) AnalyzeCohort(ctx context.Context, dueUsers []dto.DueUser) map[uint]dto.AnalysisResult {
	results := make(map[uint]dto.AnalysisResult)
	if len(dueUsers) == 0 {
		return results
	}

	req := dto.BatchAnalyzeRequest{
		Requests: make([]dto.BatchAnalyzeItem, 0, len(dueUsers)),
	}
	// request_id -> user, so results survive reordering by the backend.
	requestOwner := make(map[string]uint, len(dueUsers))
	requestOrder := make([]uint, 0, len(dueUsers))

	for i := range dueUsers {
		due := &dueUsers[i]
		requestID := uuid.NewString()
		requestOwner[requestID] = due.User.ID
		requestOrder = append(requestOrder, due.User.ID)

		modelType := dto.DefaultModelType
		if due.Settings.ModelType != "" {
			modelType = due.Settings.ModelType
		}

		req.Requests = append(req.Requests, dto.BatchAnalyzeItem{
			RequestID: requestID,
			Messages:  s.BuildMessages(ctx, due),
			APIKey:    due.Settings.APIKey,
			ModelType: modelType,
		})
	}

	resp, err := s.analyzerRepo.AnalyzeBatch(ctx, req)
	if err != nil {
		s.log.WarnContext(ctx, "Batch analysis failed, empty result set for this tick",
			logger.IntField("request_count", len(req.Requests)),
			logger.ErrorField(err),
		)
		return results
	}

	for i, item := range resp.Results.Successful {
		userID, ok := requestOwner[item.RequestID]
		if !ok {
			// Backend echoed no id; fall back to positional alignment.
			if i >= len(requestOrder) {
				s.log.WarnContext(ctx, "Uncorrelatable batch result dropped",
					logger.IntField("position", i),
					logger.StringField("request_id", item.RequestID),
				)
				continue
			}
			userID = requestOrder[i]
		}
		results[userID] = dto.AnalysisResult{
			UserID: userID,
			// Answers travel through Telegram and email later; strip broken
			// UTF-8 and undo HTML entity escaping before anything persists.
			Answer:         utils.SafeText(item.Answer),
			ProcessingTime: item.ProcessingTime,
		}
	}

	for _, item := range resp.Results.Failed {
		s.log.WarnContext(ctx, "Analysis request failed inside batch",
			logger.StringField("request_id", item.RequestID),
			logger.IntField("user_id", int(requestOwner[item.RequestID])),
			logger.StringField("error", item.Error),
		)
	}

	s.storeHistories(ctx, dueUsers, results)

	s.log.InfoContext(ctx, "Batch analysis completed",
		logger.IntField("requested", len(req.Requests)),
		logger.IntField("successful", resp.Summary.SuccessfulCount),
		logger.IntField("failed", resp.Summary.FailedCount),
		logger.Field("total_processing_time", resp.Summary.TotalProcessingTime),
	)
	return results
}

// storeHistories persists each successful answer so the next prompt for the
// same portfolio can reference it.
func (s *batcherService) storeHistories(ctx context.Context, dueUsers []dto.DueUser, results map[uint]dto.AnalysisResult) {
	for i := range dueUsers {
		due := &dueUsers[i]
		result, ok := results[due.User.ID]
		if !ok {
			continue
		}

		history := &model.AnalysisHistory{
			UserID:       due.User.ID,
			PortfolioKey: due.PortfolioKey(),
			Analysis:     result.Answer,
			ModelType:    due.Settings.ModelType,
		}
		if err := s.historyRepo.Create(ctx, history); err != nil {
			s.log.ErrorContext(ctx, "Failed to store analysis history",
				logger.IntField("user_id", int(due.User.ID)),
				logger.StringField("portfolio_key", history.PortfolioKey),
				logger.ErrorField(err),
			)
		}
	}
}

func (s *batcherService) BuildMessages(ctx context.Context, due *dto.DueUser) []dto.AnalyzeMessage {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Investor: %s\n", due.User.DisplayName()))
	sb.WriteString(fmt.Sprintf("Risk tolerance: %d/10\n", due.Settings.RiskLevel))
	if due.Settings.Persona != "" {
		sb.WriteString(fmt.Sprintf("Persona: %s\n", due.Settings.Persona))
	}
	sb.WriteString("\nScheduled purchases due today:\n")
	for _, r := range due.Rules {
		sb.WriteString(fmt.Sprintf("- %s (%s): $%.2f per %s cycle\n",
			r.Instrument.Symbol, r.Instrument.Name, r.Rule.Amount, r.Rule.Cycle))
	}
	sb.WriteString(fmt.Sprintf("\nTotal due today: $%.2f\n", due.TotalAmount()))

	if previous := s.previousAnalysis(ctx, due); previous != "" {
		sb.WriteString("\nPrevious assessment for this portfolio:\n")
		sb.WriteString(previous)
		sb.WriteString("\n")
	}

	sb.WriteString("\nShould this investor deviate from the plan today? Answer with a clear recommendation and reasoning.")

	return []dto.AnalyzeMessage{
		{
			Role: dto.RoleDeveloper,
			Content: "You are an investment advisor reviewing a recurring ETF purchase plan. " +
				"Assess current market conditions against the investor's plan and risk tolerance. " +
				"Recommend deviating only when conditions clearly warrant it.",
		},
		{
			Role:    dto.RoleUser,
			Content: sb.String(),
		},
	}
}

func (s *batcherService) previousAnalysis(ctx context.Context, due *dto.DueUser) string {
	history, err := s.historyRepo.GetLatest(ctx, due.User.ID, due.PortfolioKey())
	if err != nil {
		s.log.WarnContext(ctx, "Failed to load previous analysis",
			logger.IntField("user_id", int(due.User.ID)),
			logger.ErrorField(err),
		)
		return ""
	}
	if history == nil {
		return ""
	}
	return history.Analysis
}
