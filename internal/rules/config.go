// Package rules implements the hard-rule filter: the stateless, per-trip
// policy checks that run before any schedule inference.
//
// Three checks apply in order, short-circuiting on the first failure:
//  1. Date policy: the receipt date must fall in the configured reporting
//     period (month abbreviation match).
//  2. Amount policy: the parsed amount must lie within an inclusive range.
//  3. Location policy: the destination must match the office or home
//     keyword set.
//
// Trips passing all three become candidates for time-based classification
// and are tagged with the commute zone their destination matched.
package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PolicyConfig holds the reporting-period and destination policy used by
// the hard-rule filter. All values are injected; nothing is hardcoded
// domain knowledge.
type PolicyConfig struct {
	// TargetMonth is the reporting month receipts must fall in
	TargetMonth time.Month `json:"target_month"`

	// TargetYear resolves free-form receipt dates, which carry no year
	TargetYear int `json:"target_year"`

	// MinAmount and MaxAmount bound the inclusive fare range in currency units
	MinAmount decimal.Decimal `json:"min_amount"`
	MaxAmount decimal.Decimal `json:"max_amount"`

	// OfficeKeywords identify office-bound destinations (case-insensitive substring match)
	OfficeKeywords []string `json:"office_keywords"`

	// HomeKeywords identify home-bound destinations
	HomeKeywords []string `json:"home_keywords"`
}

// DefaultPolicyConfig returns a policy with sensible defaults for the
// current reporting period
func DefaultPolicyConfig() *PolicyConfig {
	now := time.Now()
	return &PolicyConfig{
		TargetMonth:    now.Month(),
		TargetYear:     now.Year(),
		MinAmount:      decimal.NewFromInt(150),
		MaxAmount:      decimal.NewFromInt(600),
		OfficeKeywords: []string{"mireka", "havelock"},
		HomeKeywords:   []string{"lauries", "43b", "43d"},
	}
}

// Validate checks if the policy configuration is valid
func (pc *PolicyConfig) Validate() error {
	if pc.TargetMonth < time.January || pc.TargetMonth > time.December {
		return fmt.Errorf("target month out of range: %d", pc.TargetMonth)
	}

	if pc.TargetYear < 2000 || pc.TargetYear > 2200 {
		return fmt.Errorf("target year out of range: %d", pc.TargetYear)
	}

	if pc.MinAmount.IsNegative() {
		return fmt.Errorf("minimum amount cannot be negative: %s", pc.MinAmount)
	}

	if pc.MaxAmount.LessThan(pc.MinAmount) {
		return fmt.Errorf("maximum amount %s is below minimum %s", pc.MaxAmount, pc.MinAmount)
	}

	if len(pc.OfficeKeywords) == 0 {
		return fmt.Errorf("at least one office keyword is required")
	}

	if len(pc.HomeKeywords) == 0 {
		return fmt.Errorf("at least one home keyword is required")
	}

	return nil
}

// Clone creates a deep copy of the policy configuration
func (pc *PolicyConfig) Clone() *PolicyConfig {
	if pc == nil {
		return nil
	}

	clone := *pc
	clone.OfficeKeywords = append([]string(nil), pc.OfficeKeywords...)
	clone.HomeKeywords = append([]string(nil), pc.HomeKeywords...)
	return &clone
}

// MonthAbbrev returns the lowercase three-letter abbreviation of the target month
func (pc *PolicyConfig) MonthAbbrev() string {
	return strings.ToLower(pc.TargetMonth.String()[:3])
}

// String returns a human-readable description of the policy
func (pc *PolicyConfig) String() string {
	return fmt.Sprintf("PolicyConfig{Period: %s %d, Amount: %s-%s, OfficeKeywords: %d, HomeKeywords: %d}",
		pc.TargetMonth, pc.TargetYear, pc.MinAmount, pc.MaxAmount,
		len(pc.OfficeKeywords), len(pc.HomeKeywords))
}
