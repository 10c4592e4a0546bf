package dto

import (
	"strings"
	"time"
)

// CalendlyWebhook is the inbound payload from the scheduling provider.
type CalendlyWebhook struct {
	Event   string          `json:"event"`
	Payload CalendlyInvitee `json:"payload"`
}

// CalendlyInvitee carries the invitee details and the tracking block
// that the booking form forwards from the landing page URL.
type CalendlyInvitee struct {
	Email               string           `json:"email"`
	Name                string           `json:"name"`
	CreatedAt           time.Time        `json:"created_at"`
	Tracking            CalendlyTracking `json:"tracking"`
	QuestionsAndAnswers []QuestionAnswer `json:"questions_and_answers"`
}

// CalendlyTracking mirrors the UTM fields Calendly echoes back from the
// booking page query string.
type CalendlyTracking struct {
	UTMSource   string `json:"utm_source"`
	UTMMedium   string `json:"utm_medium"`
	UTMCampaign string `json:"utm_campaign"`
	UTMContent  string `json:"utm_content"`
	UTMTerm     string `json:"utm_term"`
}

// QuestionAnswer is one entry of the booking form questionnaire.
type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SourceHint scans the questionnaire for a "how did you hear" or
// "referral" question and returns its answer. Used as a fallback
// traffic source when the tracking block carries no utm_source.
func (i CalendlyInvitee) SourceHint() string {
	for _, qa := range i.QuestionsAndAnswers {
		question := strings.ToLower(qa.Question)
		if strings.Contains(question, "how did you hear") || strings.Contains(question, "referral") {
			return qa.Answer
		}
	}
	return ""
}

// StripeWebhook is the inbound payload from the payment provider.
type StripeWebhook struct {
	Type string `json:"type"`
	Data struct {
		Object StripeObject `json:"object"`
	} `json:"data"`
}

// StripeObject is the checkout session or payment intent inside the
// event envelope. Amounts are in minor units (cents).
type StripeObject struct {
	CustomerEmail string            `json:"customer_email"`
	ReceiptEmail  string            `json:"receipt_email"`
	AmountTotal   int64             `json:"amount_total"`
	Amount        int64             `json:"amount"`
	Created       int64             `json:"created"`
	Metadata      map[string]string `json:"metadata"`
}

// Email returns the best available customer email for the object.
func (o StripeObject) Email() string {
	if o.CustomerEmail != "" {
		return o.CustomerEmail
	}
	return o.ReceiptEmail
}

// AmountMajor converts the minor-unit amount to a major-unit decimal.
// Checkout sessions carry amount_total; payment intents carry amount.
func (o StripeObject) AmountMajor() float64 {
	cents := o.AmountTotal
	if cents == 0 {
		cents = o.Amount
	}
	return float64(cents) / 100
}

// WebhookAck is the acknowledgment returned to webhook providers.
// Providers retry on non-2xx, so attribution misses still ack with 200.
type WebhookAck struct {
	Status     string `json:"status"`
	Attributed bool   `json:"attributed"`
	ID         string `json:"id,omitempty"`
}
