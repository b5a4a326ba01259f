package model

// ================ Config ================

// ChatModelConfig parameterizes the single response model.
type ChatModelConfig struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// PromptConfig parameterizes the system prompt rendered for every turn.
type PromptConfig struct {
	AssistantName string
}

// ConversationConfig controls history persistence and the per-turn tool loop.
type ConversationConfig struct {
	TTL          string
	ToolMaxCalls int
}
