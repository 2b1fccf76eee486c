package textmod

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/postalcodeworx/backend/internal/infra/anthropic"
)

const moderationPromptFormat = `You are a content moderator. Analyze this text for inappropriate content:

Text: "%s"

Respond with JSON:
{
    "passed": true/false,
    "reason": "string or null"  // If failed, explain why
}

FAIL if the text contains:
- Hate speech or offensive language
- Spam or advertising
- Personal attacks
- Inappropriate sexual content
- Scam attempts

Respond ONLY with valid JSON.`

// MessageClient is the slice of the Claude client the moderator needs.
type MessageClient interface {
	CompleteText(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	client MessageClient
	logger *zap.Logger
}

func NewService(client MessageClient, logger *zap.Logger) *Service {
	return &Service{client: client, logger: logger}
}

type verdict struct {
	Passed bool    `json:"passed"`
	Reason *string `json:"reason"`
}

// Moderate checks free text from a contact message. Unlike image
// moderation this path is fail-open: a broken or unreachable moderator
// must not block two humans from exchanging a found glove.
func (s *Service) Moderate(ctx context.Context, text string) (bool, string) {
	if s.client == nil {
		return true, ""
	}

	reply, err := s.client.CompleteText(ctx, fmt.Sprintf(moderationPromptFormat, text))
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("text moderation call failed", zap.Error(err))
		}
		return true, ""
	}

	var v verdict
	if err := json.Unmarshal([]byte(anthropic.ExtractJSON(reply)), &v); err != nil {
		if s.logger != nil {
			s.logger.Warn("text moderation reply is not valid json", zap.Error(err))
		}
		return true, ""
	}

	if v.Passed {
		return true, ""
	}
	reason := "Message failed moderation"
	if v.Reason != nil && *v.Reason != "" {
		reason = *v.Reason
	}
	return false, reason
}
