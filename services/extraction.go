package services

// Extraction confidence bands:
//
//	< 0.5       low, the item is flagged for manual review
//	0.5 - 0.8   medium, the matcher decides
//	>= 0.8      high, a suggested template is used as-is
const (
	ExtractionConfidenceLow  = 0.5
	ExtractionConfidenceHigh = 0.8
)

// ExtractedLineItem is one raw row produced by document extraction.
type ExtractedLineItem struct {
	Description         string  `json:"description"`
	Quantity            float64 `json:"quantity"`
	Confidence          float64 `json:"confidence"`
	SuggestedTemplateID string  `json:"suggestedTemplateId,omitempty"`
}

// MatchSource records how an extracted item was priced.
type MatchSource string

const (
	MatchSourceSuggestion  MatchSource = "suggestion"
	MatchSourceMatcher     MatchSource = "matcher"
	MatchSourcePlaceholder MatchSource = "placeholder"
)

// ExtractionMatch describes the pricing decision for one extracted item.
type ExtractionMatch struct {
	Index        int         `json:"index"`
	Description  string      `json:"description"`
	Source       MatchSource `json:"source"`
	TemplateID   string      `json:"templateId,omitempty"`
	TemplateName string      `json:"templateName,omitempty"`
	Confidence   float64     `json:"confidence"`
	NeedsReview  bool        `json:"needsReview"`
}

// ExtractionResult holds the priced line items built from an extraction, in
// input order, together with the per-item match decisions.
type ExtractionResult struct {
	LineItems []EnhancedLineItem `json:"lineItems"`
	Matches   []ExtractionMatch  `json:"matches"`
	Unmatched []string           `json:"unmatched"`
	Totals    QuoteTotals        `json:"totals"`
}

// ActiveTemplates returns the templates with IsActive set, preserving order.
func ActiveTemplates(templates []LineItemTemplate) []LineItemTemplate {
	active := make([]LineItemTemplate, 0, len(templates))
	for _, t := range templates {
		if t.IsActive {
			active = append(active, t)
		}
	}
	return active
}

// ResolveExtractedItems prices every extracted item. A high-confidence
// suggestion that points at an active template is used directly; otherwise
// the matcher picks a template; otherwise a placeholder item is produced and
// its description is reported as unmatched.
func ResolveExtractedItems(items []ExtractedLineItem, templates []LineItemTemplate, rates LaborRates, matcher Matcher) ExtractionResult {
	active := ActiveTemplates(templates)
	byID := make(map[string]LineItemTemplate, len(active))
	for _, t := range active {
		byID[t.ID] = t
	}

	result := ExtractionResult{
		LineItems: make([]EnhancedLineItem, 0, len(items)),
		Matches:   make([]ExtractionMatch, 0, len(items)),
		Unmatched: []string{},
	}

	for i, ex := range items {
		decision := ExtractionMatch{Index: i, Description: ex.Description}
		var item EnhancedLineItem
		var confidence float64

		tmpl, suggested := byID[ex.SuggestedTemplateID]
		if suggested && ex.SuggestedTemplateID != "" && ex.Confidence >= ExtractionConfidenceHigh {
			item = CreateEnhancedLineItem(tmpl, ex.Quantity, rates)
			confidence = ex.Confidence
			decision.Source = MatchSourceSuggestion
			decision.TemplateID = tmpl.ID
			decision.TemplateName = tmpl.Name
		} else if match := matcher.Match(ex.Description, active); match != nil {
			item = CreateEnhancedLineItem(match.Template, ex.Quantity, rates)
			confidence = match.Confidence
			decision.Source = MatchSourceMatcher
			decision.TemplateID = match.Template.ID
			decision.TemplateName = match.Template.Name
		} else {
			item = NewPlaceholderLineItem(ex.Description, ex.Quantity)
			confidence = ex.Confidence
			decision.Source = MatchSourcePlaceholder
			result.Unmatched = append(result.Unmatched, ex.Description)
		}

		if ex.Description != "" {
			item.Description = ex.Description
		}
		item.ExtractionConfidence = &confidence

		decision.Confidence = confidence
		decision.NeedsReview = decision.Source == MatchSourcePlaceholder || confidence < ExtractionConfidenceHigh

		result.LineItems = append(result.LineItems, item)
		result.Matches = append(result.Matches, decision)
	}

	result.Totals = CalcQuoteTotals(result.LineItems)
	return result
}
