// Package assistant answers free-form hiring questions. Conversations are not stored; the
// caller sends the whole history with every request.
package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/jonathan/applicant-tracker/internal/llm"
	"github.com/jonathan/applicant-tracker/internal/logger"
	"github.com/jonathan/applicant-tracker/internal/prompts"
	"github.com/jonathan/applicant-tracker/internal/store"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// MaxTokens caps the length of an answer.
const MaxTokens = 1000

// Reply texts used when no answer is available
const (
	ErrorReply = "I encountered an error while processing your request. Please try again later."
	EmptyReply = "I'm sorry, I couldn't generate a response."
)

// Service is the chat assistant.
type Service struct {
	store   store.Store
	client  llm.Client
	timeout time.Duration
}

// NewService creates a Service.
func NewService(s store.Store, client llm.Client, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = llm.DefaultCallTimeout
	}
	return &Service{store: s, client: client, timeout: timeout}
}

// Reply answers the last turn of messages. When jobID names a listing, its details are added
// to the instructions. Failures are answered with ErrorReply.
func (s *Service) Reply(ctx context.Context, messages []types.ChatMessage, jobID *int64) string {
	log := logger.FromContext(ctx)
	if s.client == nil {
		log.Warn().Str("operation", "chat").Msg("no text generation backend configured")
		return ErrorReply
	}

	system, err := s.instructions(ctx, jobID)
	if err != nil {
		log.Warn().Err(err).Str("operation", "chat").Msg("failed to build instructions")
		return ErrorReply
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	answer, err := s.client.GenerateContent(callCtx, Conversation(system, messages), llm.TierStandard, llm.WithMaxTokens(MaxTokens))
	if err != nil {
		ev := log.Warn().Err(err).Str("operation", "chat")
		if jobID != nil {
			ev = ev.Int64("job_id", *jobID)
		}
		ev.Msg("upstream failure, returning error reply")
		return ErrorReply
	}

	if answer = strings.TrimSpace(answer); answer == "" {
		return EmptyReply
	}
	return answer
}

// Conversation replaces every system message with system, or prepends it when there is none.
func Conversation(system string, messages []types.ChatMessage) []llm.Message {
	out := make([]llm.Message, 0, len(messages)+1)
	replaced := false
	for _, m := range messages {
		if llm.Role(m.Role) == llm.RoleSystem {
			out = append(out, llm.System(system))
			replaced = true
			continue
		}
		out = append(out, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}
	if !replaced {
		out = append([]llm.Message{llm.System(system)}, out...)
	}
	return out
}

func (s *Service) instructions(ctx context.Context, jobID *int64) (string, error) {
	system, err := prompts.Render("assistant.json", "chat-system", nil)
	if err != nil {
		return "", err
	}
	if jobID == nil {
		return system, nil
	}

	job, err := s.store.GetJobListing(ctx, *jobID)
	if err != nil {
		return "", err
	}
	if job == nil {
		logger.FromContext(ctx).Debug().Int64("job_id", *jobID).Msg("chat job context not found, continuing without it")
		return system, nil
	}

	jobContext, err := prompts.Render("assistant.json", "job-context", map[string]string{
		"JobTitle":        job.Title,
		"JobDescription":  job.Description,
		"JobRequirements": job.Requirements,
	})
	if err != nil {
		return "", err
	}
	return system + "\n\n" + jobContext, nil
}
