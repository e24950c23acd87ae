package chat

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are the inRooms networking concierge. You help members " +
	"prepare for virtual networking events: positioning lines, outreach messages, " +
	"follow-up timing and room etiquette. Be concise, professional and actionable."

// Service is the conversational surface the handler depends on.
type Service interface {
	Reply(ctx context.Context, threadID, prompt string) (string, error)
	StreamReply(ctx context.Context, threadID, prompt string) (<-chan string, error)
}

// GPTService keeps per-thread history in memory and calls the chat
// completions API. History is bounded so long threads stay affordable.
type GPTService struct {
	client *openai.Client
	model  string

	mu      sync.Mutex
	threads map[string][]openai.ChatCompletionMessage
}

const maxHistory = 20

func NewGPTService(apiKey string) *GPTService {
	return &GPTService{
		client:  openai.NewClient(apiKey),
		model:   openai.GPT4o,
		threads: make(map[string][]openai.ChatCompletionMessage),
	}
}

func (s *GPTService) history(threadID string) []openai.ChatCompletionMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	}}
	return append(msgs, s.threads[threadID]...)
}

func (s *GPTService) remember(threadID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := append(s.threads[threadID], openai.ChatCompletionMessage{Role: role, Content: content})
	if len(msgs) > maxHistory {
		msgs = msgs[len(msgs)-maxHistory:]
	}
	s.threads[threadID] = msgs
}

// Forget drops the in-memory history for a thread.
func (s *GPTService) Forget(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, threadID)
}

func (s *GPTService) Reply(ctx context.Context, threadID, prompt string) (string, error) {
	msgs := append(s.history(threadID), openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    msgs,
		MaxTokens:   400,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	reply := resp.Choices[0].Message.Content
	s.remember(threadID, openai.ChatMessageRoleUser, prompt)
	s.remember(threadID, openai.ChatMessageRoleAssistant, reply)
	return reply, nil
}

// StreamReply emits completion deltas on the returned channel and closes
// it when the model finishes. The full reply is recorded in history.
func (s *GPTService) StreamReply(ctx context.Context, threadID, prompt string) (<-chan string, error) {
	msgs := append(s.history(threadID), openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    msgs,
		MaxTokens:   400,
		Temperature: 0.7,
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}
	ch := make(chan string)
	go func() {
		defer close(ch)
		defer stream.Close()
		var full strings.Builder
		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				log.Printf("[CHAT][stream] recv failed thread=%s: %v", threadID, err)
				break
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			full.WriteString(delta)
			select {
			case ch <- delta:
			case <-ctx.Done():
				return
			}
		}
		if full.Len() > 0 {
			s.remember(threadID, openai.ChatMessageRoleUser, prompt)
			s.remember(threadID, openai.ChatMessageRoleAssistant, full.String())
		}
	}()
	return ch, nil
}
