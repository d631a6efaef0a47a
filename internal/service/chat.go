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
)

// ChatService is the interactive single-request path to the analyzer. Unlike
// the batch pipeline it retries, and its errors surface to the caller.
type ChatService interface {
	Chat(ctx context.Context, userID uint, message string) (*dto.ChatResponse, error)
}

type chatService struct {
	log          *logger.Logger
	userRepo     repository.UserRepository
	cadenceRepo  repository.CadenceRuleRepository
	analyzerRepo repository.AnalyzerRepository
}

func NewChatService(
	log *logger.Logger,
	userRepo repository.UserRepository,
	cadenceRepo repository.CadenceRuleRepository,
	analyzerRepo repository.AnalyzerRepository,
) ChatService {
	return &chatService{
		log:          log,
		userRepo:     userRepo,
		cadenceRepo:  cadenceRepo,
		analyzerRepo: analyzerRepo,
	}
}

func (s *chatService) Chat(ctx context.Context, userID uint, message string) (*dto.ChatResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	settings := user.Settings
	modelType := dto.DefaultModelType
	apiKey := ""
	if settings != nil {
		apiKey = settings.APIKey
		if settings.ModelType != "" {
			modelType = settings.ModelType
		}
	}

	req := dto.AnalyzeRequest{
		Messages:  s.buildMessages(ctx, user, message),
		APIKey:    apiKey,
		ModelType: modelType,
	}

	resp, err := s.analyzerRepo.Analyze(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("analyzer rejected request: %s", resp.Error)
	}

	return &dto.ChatResponse{
		Answer:         utils.SafeText(resp.Answer),
		ProcessingTime: resp.ProcessingTime,
	}, nil
}

// buildMessages frames the user's question with their profile and plan so
// answers stay grounded in the actual portfolio. A rules lookup failure only
// drops the portfolio context.
func (s *chatService) buildMessages(ctx context.Context, user *model.User, message string) []dto.AnalyzeMessage {
	var sb strings.Builder
	sb.WriteString("You are an investment advisor for a recurring ETF purchase plan. ")

	if settings := user.Settings; settings != nil {
		sb.WriteString(fmt.Sprintf("The investor's risk tolerance is %d/10. ", settings.RiskLevel))
		if settings.Persona != "" {
			sb.WriteString(fmt.Sprintf("Persona: %s. ", settings.Persona))
		}
	}

	rules, err := s.cadenceRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to load cadence rules for chat context",
			logger.IntField("user_id", int(user.ID)),
			logger.ErrorField(err),
		)
	}
	if len(rules) > 0 {
		sb.WriteString("Current plan: ")
		for i, r := range rules {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s $%.2f %s", r.Instrument.Symbol, r.Amount, r.Cycle))
		}
		sb.WriteString(".")
	}

	return []dto.AnalyzeMessage{
		{Role: dto.RoleDeveloper, Content: sb.String()},
		{Role: dto.RoleUser, Content: message},
	}
}
