package namer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mgrey/vibe/internal/errors"
	"github.com/mgrey/vibe/internal/logging"
)

// NameService produces a short slug-like name for a task description.
type NameService interface {
	NameFor(ctx context.Context, text string) (string, error)
}

const (
	essencePrompt = "Extract the main topic and intent from this development request in 5-10 words. " +
		"Focus on the key feature, component, or goal being worked on."

	branchPrompt = `Generate a concise git branch name (2-4 words, hyphenated, lowercase). Focus on the main feature/component. Examples:
- "implement multi-user chats" → group-chats
- "event-driven architecture refactor" → event-architecture
- "fix authentication bug" → fix-auth
- "add dark mode toggle" → dark-mode
- "database migration system" → db-migration
- "api rate limiting" → rate-limiting
Return only the branch name, no quotes or explanations.`
)

// FetchAPIKey resolves the OpenAI API key: the VIBE_OPENAI_KEY environment
// variable first, then the 1Password CLI. Returns empty when neither works.
func FetchAPIKey() string {
	if key := os.Getenv("VIBE_OPENAI_KEY"); key != "" {
		return key
	}
	out, err := exec.Command("op", "read", "op://cli/openai/configs").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// OpenAIService names tasks via the OpenAI chat completions API. The name is
// derived in two steps: the task text is first compressed to its essence,
// then the essence is turned into a branch slug.
type OpenAIService struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	logger     *logging.Logger
}

// NewOpenAIService creates a naming service. baseURL may be overridden with
// the VIBE_OPENAI_API_BASE environment variable.
func NewOpenAIService(apiKey, baseURL, model string, timeout time.Duration, logger *logging.Logger) *OpenAIService {
	if env := os.Getenv("VIBE_OPENAI_API_BASE"); env != "" {
		baseURL = env
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &OpenAIService{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		timeout:    timeout,
		logger:     logger.WithState("identity"),
	}
}

// NameFor implements NameService.
func (s *OpenAIService) NameFor(ctx context.Context, text string) (string, error) {
	if s.apiKey == "" {
		return "", errors.NewIdentityError("no API key available", errors.ErrNamingService)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	essence, err := s.chat(ctx, essencePrompt, text, 30)
	if err != nil {
		return "", err
	}
	branch, err := s.chat(ctx, branchPrompt, essence, 10)
	if err != nil {
		return "", err
	}
	s.logger.Debug("naming service result", "essence", essence, "branch", branch)
	return branch, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *OpenAIService) chat(ctx context.Context, systemPrompt, userContent string, maxTokens int) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
		MaxTokens:   maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", errors.NewIdentityError("failed to encode naming request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", errors.NewIdentityError("failed to build naming request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil || os.IsTimeout(err) {
			return "", errors.NewIdentityError("naming request timed out", errors.ErrNamingTimeout)
		}
		return "", errors.NewIdentityError("naming request failed", errors.Wrap(errors.ErrNamingService, err.Error()))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.NewIdentityError("failed to read naming response", errors.ErrNamingService)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.NewIdentityError(
			fmt.Sprintf("naming request returned status %d", resp.StatusCode), errors.ErrNamingService)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Choices) == 0 {
		return "", errors.NewIdentityError("unexpected naming response shape", errors.ErrNamingService)
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
