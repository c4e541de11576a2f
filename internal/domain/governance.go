package domain

import "slices"

// Governance holds the process-wide administrative record
type Governance struct {
	Deployer Identity   `json:"deployer"`
	Admins   []Identity `json:"admins"`
	Treasury Identity   `json:"treasury"`
	FeeRate  uint64     `json:"fee_rate"`
}

// NewGovernance bootstraps a record where the deployer is the only admin
func NewGovernance(deployer, treasury Identity) *Governance {
	return &Governance{
		Deployer: deployer,
		Admins:   []Identity{deployer},
		Treasury: treasury,
		FeeRate:  DefaultFeeRate,
	}
}

// IsAdmin reports whether id is in the admin set
func (g *Governance) IsAdmin(id Identity) bool {
	return slices.Contains(g.Admins, id)
}

// Clone returns a deep copy
func (g *Governance) Clone() *Governance {
	if g == nil {
		return nil
	}
	c := *g
	c.Admins = slices.Clone(g.Admins)
	return &c
}
