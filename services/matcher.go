package services

import (
	"strings"
	"unicode/utf8"
)

// DefaultMatchThreshold is the confidence a template must exceed to be
// accepted as a match.
const DefaultMatchThreshold = 0.3

// Confidence levels assigned by LexicalScorer.
const (
	confidenceExactName     = 1.0
	confidenceNameContains  = 0.8
	confidenceDescContains  = 0.6
	confidenceKeywordWeight = 0.4
	minKeywordLength        = 4
)

// Scorer rates how well a free-text description matches a catalog template,
// from 0 (unrelated) to 1 (certain).
type Scorer interface {
	Score(text string, tmpl LineItemTemplate) float64
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(text string, tmpl LineItemTemplate) float64

func (f ScorerFunc) Score(text string, tmpl LineItemTemplate) float64 {
	return f(text, tmpl)
}

// LexicalScorer compares descriptions and template text word by word.
// Rules are evaluated in order, first hit wins:
//
//	exact name                        1.0
//	name contains text or vice versa  0.8
//	template description containment  0.6
//	keyword overlap                   matching/total * 0.4
type LexicalScorer struct{}

func (LexicalScorer) Score(text string, tmpl LineItemTemplate) float64 {
	desc := strings.ToLower(strings.TrimSpace(text))
	name := strings.ToLower(strings.TrimSpace(tmpl.Name))
	tmplDesc := strings.ToLower(strings.TrimSpace(tmpl.Description))

	if desc == "" {
		return 0
	}
	if desc == name {
		return confidenceExactName
	}
	// An empty name or description would contain every text.
	if name != "" && (strings.Contains(desc, name) || strings.Contains(name, desc)) {
		return confidenceNameContains
	}
	if tmplDesc != "" && (strings.Contains(desc, tmplDesc) || strings.Contains(tmplDesc, desc)) {
		return confidenceDescContains
	}

	var keywords []string
	for _, w := range strings.Fields(desc) {
		if utf8.RuneCountInString(w) >= minKeywordLength {
			keywords = append(keywords, w)
		}
	}
	if len(keywords) == 0 {
		return 0
	}

	tmplWords := strings.Fields(name + " " + tmplDesc)
	matching := 0
	for _, kw := range keywords {
		for _, tw := range tmplWords {
			if strings.Contains(tw, kw) || strings.Contains(kw, tw) {
				matching++
				break
			}
		}
	}
	return float64(matching) / float64(len(keywords)) * confidenceKeywordWeight
}

// TemplateMatch is the best catalog template found for a description.
type TemplateMatch struct {
	Template   LineItemTemplate `json:"template"`
	Confidence float64          `json:"confidence"`
}

// Matcher selects the best-scoring template above a confidence threshold.
type Matcher struct {
	Scorer    Scorer
	Threshold float64
}

// DefaultMatcher returns a lexical matcher with the default threshold.
func DefaultMatcher() Matcher {
	return Matcher{Scorer: LexicalScorer{}, Threshold: DefaultMatchThreshold}
}

// Match returns the highest-confidence template for description, or nil when
// the catalog is empty, the description is blank, or no template scores above
// the threshold. Ties keep the template seen first.
func (m Matcher) Match(description string, templates []LineItemTemplate) *TemplateMatch {
	if len(templates) == 0 || strings.TrimSpace(description) == "" {
		return nil
	}
	scorer := m.Scorer
	if scorer == nil {
		scorer = LexicalScorer{}
	}

	var best *TemplateMatch
	for _, tmpl := range templates {
		confidence := scorer.Score(description, tmpl)
		if best == nil || confidence > best.Confidence {
			best = &TemplateMatch{Template: tmpl, Confidence: confidence}
		}
	}

	if best.Confidence > m.Threshold {
		return best
	}
	return nil
}

// MatchLineItemWithTemplate matches an extracted item against the catalog with
// the default lexical matcher.
func MatchLineItemWithTemplate(item ExtractedLineItem, templates []LineItemTemplate) *TemplateMatch {
	return DefaultMatcher().Match(item.Description, templates)
}
