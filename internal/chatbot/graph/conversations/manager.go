package conversations

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/graphchat/server/internal/chatbot/model"
)

// MessagesManager mediates between the graph and the conversation repository.
// It owns the shape of the model context: system prompt first, then the full
// persisted history (which already ends with the user's newest message).
type MessagesManager struct {
	conversationRepo model.ConversationRepository
}

func NewMessagesManager(conversationRepo model.ConversationRepository) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
	}
}

// AppendUserMessage persists the user's newest message for the session.
func (cm *MessagesManager) AppendUserMessage(ctx context.Context, sessionID string, message string) error {
	return cm.conversationRepo.AddMessage(ctx, sessionID, schema.UserMessage(message))
}

// BuildModelContext loads the session history and prepends the system prompt.
func (cm *MessagesManager) BuildModelContext(ctx context.Context, sessionID string, systemPrompt string) ([]*schema.Message, error) {
	history, err := cm.conversationRepo.LoadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
	}

	messages = append(messages, history.Messages...)

	return messages, nil
}

// SaveResponse persists the assistant's final content message.
func (cm *MessagesManager) SaveResponse(ctx context.Context, sessionID string, content string) error {
	assistantMsg := schema.AssistantMessage(content, nil)
	return cm.conversationRepo.AddMessage(ctx, sessionID, assistantMsg)
}

// TurnCount reports the number of completed user/assistant exchanges.
func (cm *MessagesManager) TurnCount(ctx context.Context, sessionID string) (int, error) {
	n, err := cm.conversationRepo.GetMessageCount(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return n / 2, nil
}
