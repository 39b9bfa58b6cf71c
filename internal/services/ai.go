package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/toondo/internal/config"
	"github.com/yukikurage/toondo/internal/constants"
	"github.com/yukikurage/toondo/internal/store"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAIInvalidResponse      = errors.New("AI returned an unusable response")
)

// AIService asks a chat model for suggestions. Suggestions are never applied
// to the task store directly.
type AIService struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

// DueDateSuggestion is a proposed due date with the model's reasoning.
type DueDateSuggestion struct {
	DueDate   string `json:"due_date"`
	Reasoning string `json:"reasoning"`
}

// BreakdownStep is one proposed checklist step.
type BreakdownStep struct {
	Title   string `json:"title"`
	Details string `json:"details,omitempty"`
	Role    string `json:"role,omitempty"`
}

// TaskBreakdown is a proposed split of a task into steps.
type TaskBreakdown struct {
	Complexity string          `json:"complexity"`
	Steps      []BreakdownStep `json:"steps"`
}

// NewAIService returns nil when no API key is configured.
func NewAIService(cfg config.OpenAIConfig) *AIService {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	return NewAIServiceWithClient(openai.NewClient(cfg.APIKey), cfg.Model)
}

// NewAIServiceWithClient wraps an existing client.
func NewAIServiceWithClient(client *openai.Client, model string) *AIService {
	if model == "" {
		model = openai.GPT4o
	}
	return &AIService{
		client: client,
		model:  model,
		now:    time.Now,
	}
}

// Configured reports whether suggestions can be requested.
func (s *AIService) Configured() bool {
	return s != nil && s.client != nil
}

// SuggestDueDate proposes a due date for a task.
func (s *AIService) SuggestDueDate(ctx context.Context, title, description string) (*DueDateSuggestion, error) {
	if !s.Configured() {
		return nil, ErrAIServiceNotConfigured
	}

	prompt := fmt.Sprintf(`You help people plan their personal tasks.
Suggest a realistic due date for the task below.

Current time: %s

Task title: %s
Task description: %s

Respond with JSON only, in this shape:
{"due_date": "ISO-8601 date or date-time", "reasoning": "one or two sentences"}`,
		s.currentTime(), title, description)

	var suggestion DueDateSuggestion
	if err := s.complete(ctx, prompt, &suggestion); err != nil {
		return nil, err
	}

	due, err := store.NormalizeDate(&suggestion.DueDate)
	if err != nil || due == nil {
		return nil, fmt.Errorf("%w: due date %q", ErrAIInvalidResponse, suggestion.DueDate)
	}
	suggestion.DueDate = *due
	return &suggestion, nil
}

// BreakdownTask proposes checklist steps for a task.
func (s *AIService) BreakdownTask(ctx context.Context, title, description string) (*TaskBreakdown, error) {
	if !s.Configured() {
		return nil, ErrAIServiceNotConfigured
	}

	prompt := fmt.Sprintf(`You help people split tasks into small, concrete steps.

Task title: %s
Task description: %s

Respond with JSON only, in this shape:
{
  "complexity": "low | medium | high",
  "steps": [{"title": "short step title", "details": "optional details", "role": "optional role best suited for the step"}]
}
Return at most %d steps.`, title, description, constants.MaxAIBreakdownSteps)

	var breakdown TaskBreakdown
	if err := s.complete(ctx, prompt, &breakdown); err != nil {
		return nil, err
	}

	steps := make([]BreakdownStep, 0, len(breakdown.Steps))
	for _, step := range breakdown.Steps {
		step.Title = strings.TrimSpace(step.Title)
		if step.Title == "" {
			continue
		}
		steps = append(steps, step)
		if len(steps) == constants.MaxAIBreakdownSteps {
			break
		}
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrAIInvalidResponse)
	}
	breakdown.Steps = steps
	return &breakdown, nil
}

// ParseTasks extracts tasks with sub-tasks from free text.
func (s *AIService) ParseTasks(ctx context.Context, text string) ([]ParsedTask, error) {
	if !s.Configured() {
		return nil, ErrAIServiceNotConfigured
	}

	prompt := fmt.Sprintf(`You extract to-do items from free text.

Current time: %s

Text:
%s

Respond with a JSON array only, in this shape:
[{"title": "short task title", "description": "optional details", "sub_tasks": ["step", "step"]}]
Return an empty array [] when the text contains no tasks.`, s.currentTime(), text)

	var raw []struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		SubTasks    []string `json:"sub_tasks"`
	}
	if err := s.complete(ctx, prompt, &raw); err != nil {
		return nil, err
	}

	tasks := make([]ParsedTask, 0, len(raw))
	for _, r := range raw {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}
		task := ParsedTask{Title: title, Description: strings.TrimSpace(r.Description), SubTasks: []ParsedSubTask{}}
		for _, sub := range r.SubTasks {
			if sub = strings.TrimSpace(sub); sub != "" {
				task.SubTasks = append(task.SubTasks, ParsedSubTask{Title: sub})
			}
		}
		tasks = append(tasks, task)
		if len(tasks) == constants.MaxAIGeneratedTasks {
			break
		}
	}
	return tasks, nil
}

func (s *AIService) complete(ctx context.Context, prompt string, out any) error {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: no choices", ErrAIInvalidResponse)
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("%w: %v (response: %s)", ErrAIInvalidResponse, err, content)
	}
	return nil
}

func (s *AIService) currentTime() string {
	return s.now().Format(time.RFC3339)
}

// stripCodeFence removes a surrounding ```json fence that models like to add.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[i+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
