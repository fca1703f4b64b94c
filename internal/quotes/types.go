package quotes

import "time"

type ProviderType string

const (
	ProviderAssessor    ProviderType = "assessor"
	ProviderDealer      ProviderType = "dealer"
	ProviderIndependent ProviderType = "independent"
	ProviderNetwork     ProviderType = "network"
)

// ProviderSelection flags which provider types one request is addressed to.
// A request carries the whole selection; it is not fanned out per provider.
type ProviderSelection struct {
	Assessor    bool `json:"assessor"`
	Dealer      bool `json:"dealer"`
	Independent bool `json:"independent"`
	Network     bool `json:"network"`
}

func (s ProviderSelection) Any() bool {
	return s.Assessor || s.Dealer || s.Independent || s.Network
}

func (s ProviderSelection) Includes(p ProviderType) bool {
	switch p {
	case ProviderAssessor:
		return s.Assessor
	case ProviderDealer:
		return s.Dealer
	case ProviderIndependent:
		return s.Independent
	case ProviderNetwork:
		return s.Network
	}
	return false
}

func (s ProviderSelection) Types() []ProviderType {
	var out []ProviderType
	if s.Assessor {
		out = append(out, ProviderAssessor)
	}
	if s.Dealer {
		out = append(out, ProviderDealer)
	}
	if s.Independent {
		out = append(out, ProviderIndependent)
	}
	if s.Network {
		out = append(out, ProviderNetwork)
	}
	return out
}

type RequestStatus string

const (
	RequestDraft    RequestStatus = "draft"
	RequestSent     RequestStatus = "sent"
	RequestReceived RequestStatus = "received"
	RequestExpired  RequestStatus = "expired"
)

type QuoteStatus string

const (
	QuoteSubmitted QuoteStatus = "submitted"
	QuoteValidated QuoteStatus = "validated"
	QuoteAccepted  QuoteStatus = "accepted"
	QuoteRejected  QuoteStatus = "rejected"
)

type PartType string

const (
	PartTypeOEM           PartType = "oem"
	PartTypeOEMEquivalent PartType = "oem_equivalent"
	PartTypeAftermarket   PartType = "aftermarket"
)

// QuoteRequest is an outbound solicitation for repair-cost quotes on one
// damaged part. One request may yield zero to N quotes, at most one per
// selected provider type.
type QuoteRequest struct {
	ID            string            `json:"id"`
	RequestID     string            `json:"request_id"`
	DamagedPartID string            `json:"damaged_part_id"`
	AssessmentID  string            `json:"assessment_id"`
	Providers     ProviderSelection `json:"provider_flags"`
	Status        RequestStatus     `json:"status"`
	DispatchedBy  string            `json:"dispatched_by,omitempty"`
	DispatchedAt  time.Time         `json:"dispatched_at,omitempty"`
	ExpiryDate    time.Time         `json:"expiry_date"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Quote is one provider's repair-cost offer against a QuoteRequest.
// TotalCost is always recomputed from the four cost components; the value a
// caller supplies is never trusted.
type Quote struct {
	ID                      string       `json:"id"`
	QuoteRequestID          string       `json:"quote_request_id"`
	DamagedPartID           string       `json:"damaged_part_id"`
	Provider                ProviderType `json:"provider_type"`
	ProviderName            string       `json:"provider_name"`
	PartCost                float64      `json:"part_cost"`
	LaborCost               float64      `json:"labor_cost"`
	PaintCost               float64      `json:"paint_cost"`
	AdditionalCosts         float64      `json:"additional_costs"`
	TotalCost               float64      `json:"total_cost"`
	PartType                PartType     `json:"part_type"`
	EstimatedDeliveryDays   int          `json:"estimated_delivery_days"`
	EstimatedCompletionDays int          `json:"estimated_completion_days"`
	ValidUntil              time.Time    `json:"valid_until"`
	Status                  QuoteStatus  `json:"status"`
	SubmittedAt             time.Time    `json:"submitted_at"`
}

// QuoteInput carries the provider-supplied fields of a new quote.
type QuoteInput struct {
	Provider                ProviderType `json:"provider_type"`
	ProviderName            string       `json:"provider_name"`
	PartCost                float64      `json:"part_cost"`
	LaborCost               float64      `json:"labor_cost"`
	PaintCost               float64      `json:"paint_cost"`
	AdditionalCosts         float64      `json:"additional_costs"`
	PartType                PartType     `json:"part_type"`
	EstimatedDeliveryDays   int          `json:"estimated_delivery_days"`
	EstimatedCompletionDays int          `json:"estimated_completion_days"`
	ValidUntil              time.Time    `json:"valid_until"`
}
