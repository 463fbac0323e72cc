package services

import (
	"fmt"
	"log"
	"math"
	"time"
)

// DefaultQuoteValidityDays is how long a new quote stays open for the client.
const DefaultQuoteValidityDays = 30

// Messages reported in QuoteResult.Error.
const (
	MsgContractorRequired = "Contractor ID is required"
	MsgLineItemsRequired  = "At least one line item is required"
	MsgSaveFailed         = "Failed to save quote. Please try again."
)

// lineItemTolerance is the largest difference, in currency units, accepted
// between a stored derived value and the one recomputed from its inputs.
const lineItemTolerance = 0.005

// QuoteStatus is the lifecycle state of a quote.
type QuoteStatus string

const (
	QuoteStatusPendingClientReview QuoteStatus = "pending_client_review"
	QuoteStatusAccepted            QuoteStatus = "accepted"
	QuoteStatusDeclined            QuoteStatus = "declined"
	QuoteStatusExpired             QuoteStatus = "expired"
)

// QuoteStatuses lists every status in lifecycle order.
var QuoteStatuses = []QuoteStatus{
	QuoteStatusPendingClientReview,
	QuoteStatusAccepted,
	QuoteStatusDeclined,
	QuoteStatusExpired,
}

// QuoteTotals is the aggregate over the non-deleted line items of a quote.
type QuoteTotals struct {
	Subtotal       float64 `json:"subtotal"`
	TotalLabor     float64 `json:"totalLabor"`
	TotalMaterials float64 `json:"totalMaterials"`
	TotalMarkup    float64 `json:"totalMarkup"`
	Total          float64 `json:"total"`
}

// CalcQuoteTotals sums the cost fields of every line item that is not soft
// deleted. Items are summed in order, so an unchanged slice always produces
// identical totals.
func CalcQuoteTotals(items []EnhancedLineItem) QuoteTotals {
	var totals QuoteTotals
	for _, item := range items {
		if item.Deleted {
			continue
		}
		totals.TotalLabor += item.LaborCost
		totals.TotalMaterials += item.MaterialTotal
		totals.TotalMarkup += item.MarkupAmount
		totals.Subtotal += item.Subtotal
		totals.Total += item.Total
	}
	return totals
}

// QuoteInput is the data submitted to create a quote.
type QuoteInput struct {
	ContractorID string             `json:"contractorId"`
	ClientID     string             `json:"clientId"`
	WorkOrderID  string             `json:"workOrderId"`
	LineItems    []EnhancedLineItem `json:"lineItems"`
	Notes        string             `json:"notes"`
	ValidUntil   *time.Time         `json:"validUntil"`
}

// QuotePayload is the assembled quote handed to persistence.
type QuotePayload struct {
	ContractorID string             `json:"contractorId"`
	ClientID     string             `json:"clientId"`
	WorkOrderID  string             `json:"workOrderId"`
	LineItems    []EnhancedLineItem `json:"lineItems"`
	Totals       QuoteTotals        `json:"totals"`
	Notes        string             `json:"notes"`
	ValidUntil   time.Time          `json:"validUntil"`
	Status       QuoteStatus        `json:"status"`
	Created      time.Time          `json:"created"`
}

// StoredQuote is a persisted quote as read back from storage.
type StoredQuote struct {
	ID           string             `json:"id"`
	QuoteNumber  string             `json:"quoteNumber"`
	ContractorID string             `json:"contractorId"`
	ClientID     string             `json:"clientId"`
	WorkOrderID  string             `json:"workOrderId"`
	LineItems    []EnhancedLineItem `json:"lineItems"`
	Totals       QuoteTotals        `json:"totals"`
	Notes        string             `json:"notes"`
	ValidUntil   time.Time          `json:"validUntil"`
	Status       QuoteStatus        `json:"status"`
	Created      time.Time          `json:"created"`
	Updated      time.Time          `json:"updated"`
}

// FindLineItem returns the index of the line item with id, or -1.
func (q StoredQuote) FindLineItem(id string) int {
	for i, item := range q.LineItems {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// QuoteResult reports the outcome of a quote creation. Validation failures
// are reported through Success and Error, never as a Go error.
type QuoteResult struct {
	Success  bool     `json:"success"`
	QuoteID  string   `json:"quoteId,omitempty"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// QuoteStore persists an assembled quote and returns its id.
type QuoteStore interface {
	SaveQuote(payload QuotePayload) (string, error)
}

// QuoteService validates, totals and stores new quotes.
type QuoteService struct {
	Store        QuoteStore
	ValidityDays int
	Now          func() time.Time
}

// NewQuoteService returns a QuoteService with the default validity window.
func NewQuoteService(store QuoteStore) *QuoteService {
	return &QuoteService{
		Store:        store,
		ValidityDays: DefaultQuoteValidityDays,
		Now:          time.Now,
	}
}

// Create validates in, computes its totals and stores it.
func (s *QuoteService) Create(in QuoteInput) QuoteResult {
	if in.ContractorID == "" {
		return QuoteResult{Success: false, Error: MsgContractorRequired}
	}
	if len(in.LineItems) == 0 {
		return QuoteResult{Success: false, Error: MsgLineItemsRequired}
	}
	if msg := InconsistentLineItem(in.LineItems); msg != "" {
		return QuoteResult{Success: false, Error: msg}
	}

	payload := s.BuildPayload(in)

	id, err := s.Store.SaveQuote(payload)
	if err != nil {
		log.Printf("quote: Create: could not save quote for contractor %s: %v", in.ContractorID, err)
		return QuoteResult{Success: false, Error: MsgSaveFailed}
	}

	return QuoteResult{
		Success:  true,
		QuoteID:  id,
		Warnings: QuoteWarnings(in),
	}
}

// CheckLineItemConsistency reports the first derived field of item that does
// not follow from its inputs. Labor and material totals are only checked when
// their per-unit inputs are present, since imported rows may carry totals alone.
func CheckLineItemConsistency(item EnhancedLineItem) error {
	qty := orDefault(item.Quantity, 1)
	if item.LaborHours != 0 && item.LaborRate != 0 {
		if want := item.LaborHours * item.LaborRate * qty; !withinTolerance(item.LaborCost, want) {
			return fmt.Errorf("laborCost %.2f does not match laborHours x laborRate x quantity (%.2f)", item.LaborCost, want)
		}
	}
	if item.MaterialCost != 0 {
		if want := item.MaterialCost * qty; !withinTolerance(item.MaterialTotal, want) {
			return fmt.Errorf("materialTotal %.2f does not match materialCost x quantity (%.2f)", item.MaterialTotal, want)
		}
	}
	// the remainder of the subtotal is the flat base cost, which a
	// non-negative unit price never makes negative
	if base := item.Subtotal - item.LaborCost - item.MaterialTotal; base < -lineItemTolerance && item.UnitPrice >= 0 {
		return fmt.Errorf("subtotal %.2f is less than laborCost + materialTotal (%.2f)", item.Subtotal, item.LaborCost+item.MaterialTotal)
	}
	if want := item.Subtotal * (item.Markup / 100); !withinTolerance(item.MarkupAmount, want) {
		return fmt.Errorf("markupAmount %.2f does not match subtotal x markup (%.2f)", item.MarkupAmount, want)
	}
	if want := item.Subtotal * (1 + item.Markup/100); !withinTolerance(item.Total, want) {
		return fmt.Errorf("total %.2f does not match subtotal with markup (%.2f)", item.Total, want)
	}
	return nil
}

// InconsistentLineItem returns a message naming the first line item whose
// derived fields disagree with its inputs, or "" when every item is consistent.
func InconsistentLineItem(items []EnhancedLineItem) string {
	for i, item := range items {
		if err := CheckLineItemConsistency(item); err != nil {
			name := item.Description
			if name == "" {
				name = item.ID
			}
			return fmt.Sprintf("Line item %d (%s): %v", i+1, name, err)
		}
	}
	return ""
}

func withinTolerance(got, want float64) bool {
	return math.Abs(got-want) <= lineItemTolerance
}

// BuildPayload assembles the stored form of in. It does not validate.
func (s *QuoteService) BuildPayload(in QuoteInput) QuotePayload {
	now := s.now()

	validUntil := now.AddDate(0, 0, s.validityDays())
	if in.ValidUntil != nil && !in.ValidUntil.IsZero() {
		validUntil = *in.ValidUntil
	}

	return QuotePayload{
		ContractorID: in.ContractorID,
		ClientID:     in.ClientID,
		WorkOrderID:  in.WorkOrderID,
		LineItems:    in.LineItems,
		Totals:       CalcQuoteTotals(in.LineItems),
		Notes:        in.Notes,
		ValidUntil:   validUntil,
		Status:       QuoteStatusPendingClientReview,
		Created:      now,
	}
}

func (s *QuoteService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *QuoteService) validityDays() int {
	if s.ValidityDays <= 0 {
		return DefaultQuoteValidityDays
	}
	return s.ValidityDays
}

// QuoteWarnings returns advisory messages about in. They never block creation.
func QuoteWarnings(in QuoteInput) []string {
	var warnings []string
	if in.ClientID == "" {
		warnings = append(warnings, "No client assigned to this quote")
	}

	var zeroTotal, missingRate int
	for _, item := range in.LineItems {
		if item.Deleted {
			continue
		}
		if item.Total == 0 {
			zeroTotal++
		}
		if item.LaborHours > 0 && item.LaborRate == 0 {
			missingRate++
		}
	}
	if zeroTotal > 0 {
		warnings = append(warnings, fmt.Sprintf("%d line item(s) have a zero total", zeroTotal))
	}
	if missingRate > 0 {
		warnings = append(warnings, fmt.Sprintf("%d line item(s) have labor hours but no labor rate", missingRate))
	}
	return warnings
}
