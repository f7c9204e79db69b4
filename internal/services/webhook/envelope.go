package webhook

import (
	"encoding/json"
	"strings"
)

// Kind is what a provider event means for the transaction.
type Kind int

const (
	KindUnknown Kind = iota
	KindSuccess
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	default:
		return "unknown"
	}
}

var successStatuses = map[string]struct{}{
	"paid":                       {},
	"payment_succeeded":          {},
	"payment.completed":          {},
	"payment.success":            {},
	"checkout.session.completed": {},

	"checkout.session.async_payment_succeeded": {},
}

var failureStatuses = map[string]struct{}{
	"failed":                   {},
	"payment_failed":           {},
	"payment.failed":           {},
	"payment.cancelled":        {},
	"payment.canceled":         {},
	"checkout.session.expired": {},

	"checkout.session.async_payment_failed": {},
}

// Classify maps a provider status or event name to a Kind.
func Classify(status string) Kind {
	s := strings.ToLower(strings.TrimSpace(status))
	if _, ok := successStatuses[s]; ok {
		return KindSuccess
	}
	if _, ok := failureStatuses[s]; ok {
		return KindFailure
	}
	return KindUnknown
}

// Envelope is the part of a provider event the receiver acts on.
type Envelope struct {
	PaymentID string
	Status    string
	Kind      Kind
}

type rawEnvelope struct {
	PaymentID string   `json:"paymentId"`
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	Event     string   `json:"event"`
	EventType string   `json:"event_type"`
	Type      string   `json:"type"`
	Data      *rawData `json:"data"`
}

type rawData struct {
	PaymentID string     `json:"payment_id"`
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	Object    *rawObject `json:"object"`
}

// rawObject is the Stripe event form: data.object is the checkout session.
type rawObject struct {
	ID            string `json:"id"`
	PaymentStatus string `json:"payment_status"`
}

const stripeSessionCompleted = "checkout.session.completed"

// Parse accepts the flat form {paymentId|id, status|event} and the nested
// form {event|event_type|type, data:{payment_id|id|object.id, status}}.
func Parse(body []byte) (*Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ErrMalformedPayload
	}

	var env Envelope
	if raw.Data != nil {
		env = parseNested(raw)
	} else {
		env = Envelope{
			PaymentID: firstNonEmpty(raw.PaymentID, raw.ID),
			Status:    firstNonEmpty(raw.Status, raw.Event),
		}
		env.Kind = Classify(env.Status)
	}

	if env.PaymentID == "" || env.Status == "" {
		return nil, ErrMalformedPayload
	}
	return &env, nil
}

func parseNested(raw rawEnvelope) Envelope {
	d := raw.Data
	env := Envelope{PaymentID: firstNonEmpty(d.PaymentID, d.ID)}
	if env.PaymentID == "" && d.Object != nil {
		env.PaymentID = d.Object.ID
	}

	event := firstNonEmpty(raw.Event, raw.EventType, raw.Type)
	env.Status = firstNonEmpty(event, d.Status)
	env.Kind = Classify(event)
	// A completed session with a delayed payment method is not paid yet;
	// the async_payment_* event settles it later.
	if strings.EqualFold(event, stripeSessionCompleted) && (d.Object == nil || d.Object.PaymentStatus != "paid") {
		env.Kind = KindUnknown
	}
	if env.Kind == KindUnknown && d.Status != "" {
		if k := Classify(d.Status); k != KindUnknown {
			env.Status, env.Kind = d.Status, k
		}
	}
	return env
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
