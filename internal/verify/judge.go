package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ppiankov/crosscheck/internal/model"
	"github.com/ppiankov/crosscheck/internal/retrieve"
)

// JudgeResponse is the judge capability's structured reply.
type JudgeResponse struct {
	SourceEvaluations []JudgeSourceEval   `json:"source_evaluations"`
	Score             int                 `json:"score"`
	Passed            bool                `json:"passed"`
	Issues            []string            `json:"issues"`
	Corrections       []model.Correction  `json:"corrections"`
	ArticleSays       *model.ArticleFacts `json:"article_says"`
	Reasoning         string              `json:"reasoning"`
}

// JudgeSourceEval is the judge's per-source relevance call.
type JudgeSourceEval struct {
	SourceName string `json:"source_name"`
	Relevant   bool   `json:"relevant"`
	Quality    string `json:"quality"`
	Reason     string `json:"reason"`
}

const maxSourceTextChars = 12_000

// OpenAIJudge implements Judge over the chat-completions API.
type OpenAIJudge struct {
	client *openai.Client
	cfg    model.JudgeConfig
}

// NewOpenAIJudge creates a judge client. Requires an API key.
func NewOpenAIJudge(cfg model.JudgeConfig) (*OpenAIJudge, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("judge API key is required")
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAIJudge{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}, nil
}

// IsAvailable checks the API with a lightweight call.
func (j *OpenAIJudge) IsAvailable(ctx context.Context) bool {
	_, err := j.client.ListModels(ctx)
	return err == nil
}

// judgePayload is what the judge receives: record fields plus named source
// texts. The prompt wrapper is minimal; the contract is the JSON schema.
type judgePayload struct {
	RecordFields map[string]string `json:"record_fields"`
	Sources      []judgeSource     `json:"sources"`
}

type judgeSource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Evaluate asks the judge whether each source topically substantiates the
// record's claimed event and what field corrections it suggests. Any
// transport or parse failure is returned as an error so the engine can
// degrade to mechanical-only scoring.
func (j *OpenAIJudge) Evaluate(ctx context.Context, rec *model.IncidentRecord, sources []retrieve.SourceText) (*JudgeResponse, error) {
	payload := judgePayload{
		RecordFields: map[string]string{
			"date":          rec.Date,
			"state":         rec.State,
			"city":          rec.City,
			"incident_type": string(rec.IncidentType),
			"outcome":       rec.Outcome,
			"victim_name":   rec.VictimName,
			"agency":        rec.Agency,
			"description":   rec.Description,
		},
	}
	for _, src := range sources {
		text := src.Text
		if len(text) > maxSourceTextChars {
			text = text[:maxSourceTextChars]
		}
		payload.Sources = append(payload.Sources, judgeSource{Name: src.Name, URL: src.URL, Text: text})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal judge payload: %w", err)
	}

	timeout := time.Duration(j.cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: j.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You evaluate whether cited source texts substantiate an incident record's claimed facts. " +
					"Reply with a single JSON object: source_evaluations[] {source_name, relevant, quality, reason}, " +
					"score (0-100), passed (bool), issues[], corrections[] {field, current, should_be, reason}, " +
					"article_says {date, location, victim_name, agency, key_facts[]}, reasoning.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: string(data),
			},
		},
		MaxTokens:   j.cfg.MaxTokens,
		Temperature: 0,
	}

	resp, err := j.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("judge API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty judge response")
	}

	return ParseJudgeResponse(resp.Choices[0].Message.Content)
}

// ParseJudgeResponse extracts the first balanced {...} block from a reply
// and unmarshals it. Judges wrap JSON in prose or code fences often enough
// that a strict unmarshal of the whole reply would discard usable answers.
func ParseJudgeResponse(reply string) (*JudgeResponse, error) {
	block, ok := firstJSONBlock(reply)
	if !ok {
		return nil, fmt.Errorf("no JSON object in judge reply")
	}
	var parsed JudgeResponse
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return nil, fmt.Errorf("parse judge reply: %w", err)
	}
	if parsed.Score < 0 || parsed.Score > 100 {
		return nil, fmt.Errorf("judge score %d outside 0-100", parsed.Score)
	}
	return &parsed, nil
}

// firstJSONBlock returns the first balanced top-level {...} in s, honoring
// string literals and escapes.
func firstJSONBlock(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
