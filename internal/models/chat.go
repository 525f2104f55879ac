package models

// ChatTurn represents a single message in a conversation history.
// Clients send the body as either "text" or "content".
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Text    string `json:"text,omitempty"`
	Content string `json:"content,omitempty"`
}

// Body returns Text, falling back to Content.
func (t ChatTurn) Body() string {
	if t.Text != "" {
		return t.Text
	}
	return t.Content
}

func (t ChatTurn) IsUser() bool {
	return t.Role == "user"
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message        string     `json:"message" validate:"required,notblank"`
	ConversationID string     `json:"conversation_id,omitempty"`
	History        []ChatTurn `json:"conversation_history"`
}

// ChatResponse is the reply from the AI chat.
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	Timestamp      string `json:"timestamp"`
}
