package services

import (
	"regexp"
	"strings"

	"salesbot-backend/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
)

var industryKeywords = []struct {
	industry string
	keywords []string
}{
	{"Healthcare", []string{"healthcare", "medical", "hospital", "clinic"}},
	{"E-commerce", []string{"ecommerce", "e-commerce", "retail", "online store"}},
	{"Education", []string{"education", "school", "e-learning", "university"}},
	{"Fintech", []string{"fintech", "finance", "banking", "insurance"}},
	{"Agriculture", []string{"agriculture", "farming"}},
	{"Real Estate", []string{"real estate", "property"}},
	{"Manufacturing", []string{"manufacturing", "factory"}},
}

type leadDetails struct {
	Email    string
	Phone    string
	Industry string
}

// extractLeadDetails scans user turns in order; a later mention replaces an
// earlier one.
func extractLeadDetails(history []models.ChatTurn) leadDetails {
	var d leadDetails
	for _, turn := range history {
		if !turn.IsUser() {
			continue
		}
		text := turn.Body()

		if m := emailPattern.FindString(text); m != "" {
			d.Email = m
		}
		// Drop the address first so its digits are not read as a phone number.
		if m := phonePattern.FindString(emailPattern.ReplaceAllString(text, " ")); m != "" {
			d.Phone = strings.TrimSpace(m)
		}
		if industry := detectIndustry(text); industry != "" {
			d.Industry = industry
		}
	}
	return d
}

func detectIndustry(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range industryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.industry
			}
		}
	}
	return ""
}

// mergeLeadDetails fills only the fields the client left blank.
func mergeLeadDetails(req models.LeadForwardRequest) leadDetails {
	d := leadDetails{
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Industry: strings.TrimSpace(req.Industry),
	}
	if d.Email != "" && d.Phone != "" && d.Industry != "" {
		return d
	}

	found := extractLeadDetails(req.History)
	if d.Email == "" {
		d.Email = found.Email
	}
	if d.Phone == "" {
		d.Phone = found.Phone
	}
	if d.Industry == "" {
		d.Industry = found.Industry
	}
	return d
}
