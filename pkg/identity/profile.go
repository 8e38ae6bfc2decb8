package identity

import (
	"encoding/json"
	"slices"
)

// Profile is the authenticated staff member as reported by /profile/summary.
type Profile struct {
	Type         string          `json:"type"`
	BranchName   string          `json:"branch_name"`
	Name         string          `json:"name"`
	NIP          string          `json:"nip"`
	TotalTarget  float64         `json:"total_target"`
	Achieved     float64         `json:"achieved"`
	Percentage   float64         `json:"percentage"`
	Products     json.RawMessage `json:"products,omitempty"`
	TargetMonth  int             `json:"target_month"`
	TargetYear   int             `json:"target_year"`
	TargetSetted bool            `json:"target_setted"`
}

// Clone returns a deep copy of p. A nil profile clones to nil.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Products = slices.Clone(p.Products)
	return &c
}

// Period returns the target month and year the profile is measured against.
func (p *Profile) Period() (month, year int) {
	if p == nil {
		return 0, 0
	}
	return p.TargetMonth, p.TargetYear
}

// ParseProfile decodes a profile previously produced by json.Marshal.
// A JSON null or an empty object without a NIP is rejected.
func ParseProfile(data []byte) (*Profile, error) {
	var p *Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p == nil || (p.NIP == "" && p.Name == "") {
		return nil, ErrEmptyProfile
	}
	return p, nil
}
