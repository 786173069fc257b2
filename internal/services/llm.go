package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// LLMService talks to an OpenAI-compatible chat-completions endpoint.
// Configured via LLM_BASE_URL, LLM_TOKEN and LLM_MODEL.
type LLMService struct {
	baseURL string
	token   string
	model   string
	client  *http.Client
}

func NewLLMService() *LLMService {
	return &LLMService{
		baseURL: os.Getenv("LLM_BASE_URL"),
		token:   os.Getenv("LLM_TOKEN"),
		model:   os.Getenv("LLM_MODEL"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// ChatMessage covers both directions of the wire format. Content is a string
// for plain messages and a part list for vision input.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    interface{} `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Text returns the content when it is a plain string.
func (m *ChatMessage) Text() string {
	s, _ := m.Content.(string)
	return s
}

type ToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type ChatTool struct {
	Type     string           `json:"type"`
	Function ChatToolFunction `json:"function"`
}

type ChatToolFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Tools          []ChatTool      `json:"tools,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ChatResponse struct {
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat sends one completion round and returns the assistant message.
func (s *LLMService) Chat(ctx context.Context, req *ChatRequest) (*ChatMessage, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("LLM_BASE_URL not configured")
	}
	if req.Model == "" {
		req.Model = s.model
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat endpoint returned status %d", resp.StatusCode)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("chat endpoint error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("chat response has no choices")
	}
	return &chatResp.Choices[0].Message, nil
}
