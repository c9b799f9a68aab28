package domain

import "strings"

// Scope is the (product, partner, branch) tuple configs are published
// under and applications run in. Product is always concrete at request
// time; partner and branch may be nil, meaning "any".
type Scope struct {
	ProductCode string
	PartnerCode *string
	BranchCode  *string
}

// NewScope normalizes raw request strings into a Scope. Blank partner or
// branch strings collapse to nil so that "" and absent behave identically.
func NewScope(product, partner, branch string) Scope {
	return Scope{
		ProductCode: strings.TrimSpace(product),
		PartnerCode: normalizeCode(partner),
		BranchCode:  normalizeCode(branch),
	}
}

func normalizeCode(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// Specificity ranks a published document scope against a request scope.
// Branch dominates partner: an exact branch match always outranks any
// branch wildcard regardless of the partner column.
func (s Scope) Specificity() int {
	rank := 0
	if s.BranchCode != nil {
		rank += 2
	}
	if s.PartnerCode != nil {
		rank++
	}
	return rank
}

func (s Scope) Partner() string {
	if s.PartnerCode == nil {
		return ""
	}
	return *s.PartnerCode
}

func (s Scope) Branch() string {
	if s.BranchCode == nil {
		return ""
	}
	return *s.BranchCode
}
