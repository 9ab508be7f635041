package models

import (
	"strings"

	dErrors "gdprkv/pkg/domain-errors"
)

// Policy is the retention rule for one purpose.
type Policy struct {
	Purpose       string `json:"purpose" yaml:"purpose"`
	RetentionDays int    `json:"retention_days" yaml:"retention_days"`
	Description   string `json:"description" yaml:"description"`
	LastUpdatedAt int64  `json:"last_updated_at" yaml:"-"`
}

// Validate checks the policy shape before it is stored.
func (p *Policy) Validate() error {
	p.Purpose = strings.TrimSpace(p.Purpose)
	if p.Purpose == "" {
		return dErrors.New(dErrors.CodeValidation, "policy purpose is required")
	}
	if p.RetentionDays <= 0 {
		return dErrors.New(dErrors.CodeValidation, "policy retention_days must be positive")
	}
	return nil
}

// Defaults are seeded when no policy file is configured.
func Defaults() []Policy {
	return []Policy{
		{Purpose: "FULFILLMENT", RetentionDays: 30, Description: "Order fulfillment data"},
		{Purpose: "MARKETING", RetentionDays: 365, Description: "Marketing preferences and campaign data"},
		{Purpose: "ANALYTICS", RetentionDays: 90, Description: "Product analytics"},
	}
}
