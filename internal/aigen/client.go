package aigen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/examplatform/examplatform/internal/draft"
)

// GenerationError means the question generation service was unreachable or
// answered with something that is not a question batch. The caller's draft
// and any prior queue must be left untouched.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("question generation: %v", e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }

type Request struct {
	Topic            string
	Count            int
	MarksPerQuestion float64
}

// item is the shape the model is prompted to emit, one per question.
type item struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`
	Marks         float64  `json:"marks"`
}

type Config struct {
	BaseURL string // OpenAI-compatible root, e.g. https://api.groq.com/openai/v1
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client talks to an OpenAI-compatible chat-completions endpoint (Groq in
// the default deployment).
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

func buildPrompt(req Request) string {
	return fmt.Sprintf(`You are an exam question generator.

Generate exactly %d multiple-choice questions on the topic: %q.

Requirements:
- Each question MUST have exactly 4 options.
- Return the correct option as a zero-based index in field "correctOption".
- Set "marks" = %g for every question.
- Respond ONLY with a valid JSON array. No extra text. No explanation.
Example:
[
  {
    "question": "What is polymorphism?",
    "options": ["...","...","...","..."],
    "correctOption": 0,
    "marks": %g
  }
]`, req.Count, req.Topic, req.MarksPerQuestion, req.MarksPerQuestion)
}

// Generate requests a batch and normalizes every returned item into the
// canonical question shape. The batch is truncated to req.Count; the model
// sometimes over-delivers.
func (c *Client) Generate(ctx context.Context, req Request) ([]draft.QuestionDraft, error) {
	body, _ := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": buildPrompt(req)},
		},
		"temperature": 0.3,
	})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return nil, &GenerationError{Err: fmt.Errorf("service returned %s", res.Status)}
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&completion); err != nil {
		return nil, &GenerationError{Err: err}
	}
	if len(completion.Choices) == 0 {
		return nil, &GenerationError{Err: fmt.Errorf("empty completion")}
	}

	items, err := parseItems(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	if req.Count > 0 && len(items) > req.Count {
		items = items[:req.Count]
	}

	out := make([]draft.QuestionDraft, 0, len(items))
	for _, it := range items {
		out = append(out, normalizeItem(it, req.MarksPerQuestion))
	}
	return out, nil
}

// parseItems expects the message content to be a JSON array of question
// items. Anything else is a malformed response.
func parseItems(content string) ([]item, error) {
	content = strings.TrimSpace(content)
	var items []item
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("response is not a question array: %w", err)
	}
	return items, nil
}

// normalizeItem maps a generated item into the canonical draft shape: the
// correct flag is set only at the indicated index, and Normalize forces the
// first option correct when the index is out of range or missing.
func normalizeItem(it item, defaultMarks float64) draft.QuestionDraft {
	opts := make([]draft.OptionDraft, 0, len(it.Options))
	for i, text := range it.Options {
		opts = append(opts, draft.OptionDraft{Text: text, IsCorrect: i == it.CorrectOption})
	}
	marks := it.Marks
	if marks <= 0 {
		marks = defaultMarks
	}
	return draft.Normalize(draft.QuestionDraft{
		Text:    it.Question,
		Type:    draft.TypeMultipleChoice,
		Marks:   marks,
		Options: opts,
	})
}
