// Package domain defines the per-model-type input domains: field bounds,
// cross-field consistency rules, and the mapping from validated fields to
// the feature vector the model expects.
package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Kind distinguishes regression domains from classification domains.
type Kind string

const (
	Regression     Kind = "regression"
	Classification Kind = "classification"
)

// FieldBound is a closed-interval constraint on a single field.
// ExclusiveMin turns the lower bound into a strict inequality.
type FieldBound struct {
	Field        string
	Min, Max     float64
	ExclusiveMin bool
}

// PartWholeRule rejects requests where a part field exceeds its whole field.
type PartWholeRule struct {
	Part, Whole string
	Message     string
}

// RatioBandRule constrains Num/Den to [Lo, Hi]. The violation is reported
// against Field with a message naming Label and the computed ratio. When
// SuggestDivisor is set, the message suggests Den ≈ Num/SuggestDivisor.
type RatioBandRule struct {
	Num, Den       string
	Lo, Hi         float64
	Field          string
	Label          string
	SuggestDivisor float64
}

// ConditionalRule rejects requests where ThenField >= ThenBelow while
// IfField < IfBelow. Used for the iris biological consistency check.
type ConditionalRule struct {
	IfField    string
	IfBelow    float64
	ThenField  string
	ThenBelow  float64
	Constraint string
}

// Domain is the full validation and feature-mapping configuration for one
// model type.
type Domain struct {
	Name         string
	Kind         Kind
	Bounds       []FieldBound
	PartWhole    []PartWholeRule
	RatioBands   []RatioBandRule
	Conditionals []ConditionalRule
	FeatureNames []string
	Features     func(fields map[string]float64) []float64
	ClassNames   []string
	// Plausible output range; predictions outside it are logged as a
	// warning, never failed.
	OutputLo, OutputHi float64
}

// Request is a validated, immutable prediction request.
type Request struct {
	domain *Domain
	fields map[string]float64
}

// Domain returns the domain the request was validated against.
func (r Request) Domain() *Domain { return r.domain }

// Fields returns a copy of the validated field values.
func (r Request) Fields() map[string]float64 {
	out := make(map[string]float64, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

// Features maps the validated fields to the ordered feature vector the
// active model expects.
func (r Request) Features() []float64 { return r.domain.Features(r.fields) }

// Violation names one violated constraint.
type Violation struct {
	Field      string
	Value      float64
	HasValue   bool
	Constraint string
}

// ValidationError aggregates every violation found in a single pass.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Constraint)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidationError reports whether err is a request validation failure.
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// Validate checks raw field values against the domain's rules. All field
// bounds are checked in one pass; cross-field rules run only over fields
// that passed their own bound, so a zero whole is reported as a bound
// violation and never reaches a ratio computation. On success the returned
// Request is immutable and carries a private copy of the fields.
func (d *Domain) Validate(raw map[string]float64) (Request, error) {
	var violations []Violation
	valid := make(map[string]float64, len(d.Bounds))

	for _, b := range d.Bounds {
		v, ok := raw[b.Field]
		if !ok {
			violations = append(violations, Violation{Field: b.Field, Constraint: "field is required"})
			continue
		}
		switch {
		case b.ExclusiveMin && v <= b.Min:
			violations = append(violations, Violation{
				Field: b.Field, Value: v, HasValue: true,
				Constraint: fmt.Sprintf("must be greater than %g", b.Min),
			})
		case !b.ExclusiveMin && v < b.Min:
			violations = append(violations, Violation{
				Field: b.Field, Value: v, HasValue: true,
				Constraint: fmt.Sprintf("must be at least %g", b.Min),
			})
		case v > b.Max:
			violations = append(violations, Violation{
				Field: b.Field, Value: v, HasValue: true,
				Constraint: fmt.Sprintf("must be at most %g", b.Max),
			})
		default:
			valid[b.Field] = v
		}
	}

	for _, r := range d.PartWhole {
		part, okP := valid[r.Part]
		whole, okW := valid[r.Whole]
		if okP && okW && part > whole {
			violations = append(violations, Violation{
				Field: r.Part, Value: part, HasValue: true, Constraint: r.Message,
			})
		}
	}

	for _, r := range d.RatioBands {
		num, okN := valid[r.Num]
		den, okD := valid[r.Den]
		if !okN || !okD || den == 0 {
			continue
		}
		ratio := num / den
		if ratio < r.Lo || ratio > r.Hi {
			msg := fmt.Sprintf("%s (%.2f) is unrealistic; must be between %g and %g",
				r.Label, ratio, r.Lo, r.Hi)
			if r.SuggestDivisor > 0 {
				msg += fmt.Sprintf(". For %s %g, try %s around %d",
					r.Num, num, r.Den, int(num/r.SuggestDivisor))
			}
			violations = append(violations, Violation{
				Field: r.Field, Value: ratio, HasValue: true, Constraint: msg,
			})
		}
	}

	for _, r := range d.Conditionals {
		ifV, okI := valid[r.IfField]
		thenV, okT := valid[r.ThenField]
		if okI && okT && ifV < r.IfBelow && thenV >= r.ThenBelow {
			violations = append(violations, Violation{
				Field: r.ThenField, Value: thenV, HasValue: true, Constraint: r.Constraint,
			})
		}
	}

	if len(violations) > 0 {
		sort.SliceStable(violations, func(i, j int) bool {
			return violations[i].Field < violations[j].Field
		})
		return Request{}, &ValidationError{Violations: violations}
	}
	return Request{domain: d, fields: valid}, nil
}
