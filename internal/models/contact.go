package models

// ContactSubmission is a contact form submission.
type ContactSubmission struct {
	Name    string `json:"name" validate:"required,notblank,singleline"`
	Email   string `json:"email" validate:"required,email"`
	Company string `json:"company,omitempty"`
	Budget  string `json:"budget,omitempty"`
	Message string `json:"message" validate:"required,notblank"`
}

type ContactResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	TicketID string `json:"ticket_id"`
}
