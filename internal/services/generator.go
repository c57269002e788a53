package services

import (
	"context"
	"fmt"
	"log"

	"ai-act-chat/internal/models"
)

// qaSystemPrompt drives the primary question-answering pass
const qaSystemPrompt = `You are a helpful AI assistant specializing in explaining the EU AI Act in simple, clear terms. Your goal is to provide accurate but user-friendly responses.

CORE PRINCIPLES:
1. **Keep it Simple**: Use clear, everyday language - avoid legal jargon
2. **Be Concise**: Provide direct answers without overwhelming detail
3. **Be Helpful**: Focus on what the user actually needs to know
4. **Stay Accurate**: Only provide information from the context provided
5. **Be Conversational**: Keep the conversation flowing naturally, don't be too formal
6. **Use Context**: Consider the conversation history to understand follow-up questions

RESPONSE STYLE:
- Start with a simple, direct answer
- Use bullet points for key points (max 3-4 points)
- Keep responses under 150 words when possible
- Use examples when helpful
- End with a brief, practical takeaway

FOLLOW-UP QUESTIONS:
- If the user asks for examples, provide specific, relevant examples from the context
- If they ask "what about X?", connect it to the previous conversation
- If they ask for clarification, build on what was discussed before
- If they ask for "more details" or "detailed explanation", provide comprehensive coverage including background, implications, and practical aspects
- Always maintain conversation continuity
- For detailed requests, you can provide longer, more comprehensive responses (up to 250 words)

AVOID:
- Overly technical language
- Long lists of requirements
- Legal citations unless specifically asked
- Repetitive information
- Ignoring conversation context

If the context doesn't contain enough information, say so clearly and suggest what they might ask instead.`

// formatSystemPrompt drives the secondary polishing pass
const formatSystemPrompt = `You are a response formatting expert. Your job is to make responses more user-friendly and readable.

Guidelines:
- Keep the response simple and conversational
- Use clear formatting (bold for key terms, bullet points for lists)
- Don't add unnecessary complexity or technical details
- Ensure the response flows naturally and is easy to read
- Keep the original meaning and accuracy intact
- If the response is already good, make minimal changes

AVOID:
- Adding extra technical explanations
- Making responses longer than necessary
- Over-formatting or excessive styling
- Changing the core message`

// ResponseGenerator composes retrieved context, chat history and the query
// into a model call, then optionally runs a second formatting pass over the
// draft.
type ResponseGenerator struct {
	llm         LLMClient
	formatterOn bool
	logger      *log.Logger
}

// NewResponseGenerator creates a generator. The formatting pass can be
// switched off for latency-sensitive deployments.
func NewResponseGenerator(llm LLMClient, enableFormatter bool, logger *log.Logger) *ResponseGenerator {
	return &ResponseGenerator{
		llm:         llm,
		formatterOn: enableFormatter,
		logger:      logger,
	}
}

// Generate produces the final answer text. Any model failure surfaces as an
// error; the orchestrator substitutes the apology string.
func (g *ResponseGenerator) Generate(ctx context.Context, query, contextText string, history []models.ChatMessage) (string, error) {
	messages := make([]models.ChatMessage, 0, len(history)+2)
	messages = append(messages, models.ChatMessage{Role: models.RoleSystem, Content: qaSystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{
		Role: models.RoleUser,
		Content: fmt.Sprintf("Context Information:\n%s\n\nCurrent Question: %s\n\nPlease provide a helpful and user-friendly response based on the context provided.",
			contextText, query),
	})

	draft, err := g.llm.Complete(ctx, messages, CompletionOptions{})
	if err != nil {
		return "", fmt.Errorf("qa pass: %w", err)
	}
	g.logger.Printf("QA pass produced %d chars", len(draft))

	if !g.formatterOn {
		return draft, nil
	}

	final, err := g.format(ctx, draft)
	if err != nil {
		return "", err
	}

	return final, nil
}

// format runs the polishing pass over a draft answer
func (g *ResponseGenerator) format(ctx context.Context, draft string) (string, error) {
	messages := []models.ChatMessage{
		{Role: models.RoleSystem, Content: formatSystemPrompt},
		{Role: models.RoleUser, Content: "Format this response to be more user-friendly: " + draft},
	}

	formatted, err := g.llm.Complete(ctx, messages, CompletionOptions{})
	if err != nil {
		return "", fmt.Errorf("format pass: %w", err)
	}
	return formatted, nil
}
