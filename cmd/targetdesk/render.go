package main

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/targetdesk/pkg/session"
	"github.com/dmitrymomot/targetdesk/pkg/targets"
)

type profileView struct {
	NIP          string  `yaml:"nip"`
	Name         string  `yaml:"name"`
	Role         string  `yaml:"role"`
	Branch       string  `yaml:"branch"`
	Period       string  `yaml:"period,omitempty"`
	Target       float64 `yaml:"target"`
	Achieved     float64 `yaml:"achieved"`
	Percentage   float64 `yaml:"percentage"`
	TargetSet    bool    `yaml:"target_set"`
	State        string  `yaml:"state"`
	Verification string  `yaml:"verification"`
}

func (a *App) renderProfile(s session.Session) ([]byte, error) {
	if s.User == nil {
		return nil, session.ErrNoSession
	}
	u := s.User
	v := profileView{
		NIP:          u.NIP,
		Name:         a.title.String(u.Name),
		Role:         a.title.String(u.Type),
		Branch:       a.title.String(u.BranchName),
		Target:       u.TotalTarget,
		Achieved:     u.Achieved,
		Percentage:   u.Percentage,
		TargetSet:    u.TargetSetted,
		State:        string(s.State),
		Verification: string(s.Verification),
	}
	if p, err := targets.PeriodOf(u); err == nil {
		v.Period = fmt.Sprintf("%02d/%d", p.Month, p.Year)
	}
	return yaml.Marshal(v)
}

func (a *App) renderStaff(p targets.Period, staff []targets.Staff) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Period %02d/%d, %d staff\n", p.Month, p.Year, len(staff))

	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NIP\tNAME\tTARGET\tPRODUCTS")
	for _, s := range staff {
		total := "-"
		if s.HasTarget {
			total = a.printer.Sprintf("%.0f", s.TotalTarget)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", s.NIP, a.title.String(s.Name), total, len(s.TargetDetails))
	}
	_ = w.Flush()
	return buf.String()
}

func (a *App) renderBranch(b *targets.Branch) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %02d/%d\n", a.title.String(b.BranchName), b.Month, b.Year)

	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRODUCT\tTOTAL\tASSIGNED\tUNASSIGNED")
	for _, p := range b.Products {
		fmt.Fprintln(w, a.printer.Sprintf("%d\t%s\t%.0f\t%.0f\t%.0f",
			p.ProductID, p.ProductName, p.TotalTarget, p.AssignedAmount, p.UnassignedAmount))
	}
	_ = w.Flush()
	return buf.String()
}
