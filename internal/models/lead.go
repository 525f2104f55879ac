package models

const (
	DealStatusInterested       = "interested"
	DealStatusConfirmed        = "deal_confirmed"
	DealStatusContactRequested = "contact_requested"
)

// LeadForwardRequest asks for a conversation to be handed to the operator.
type LeadForwardRequest struct {
	History    []ChatTurn `json:"conversation_history"`
	Email      string     `json:"user_email,omitempty"`
	Phone      string     `json:"user_phone,omitempty"`
	Industry   string     `json:"user_industry,omitempty"`
	DealStatus string     `json:"deal_status"` // "interested" | "deal_confirmed" | "contact_requested"
}

type LeadForwardResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
