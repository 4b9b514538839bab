package sim

import "fmt"

type TerminationReason int

const (
	AssetRuin TerminationReason = iota + 1
	DataExhausted
	ManualSettlement
)

func (r TerminationReason) String() string {
	switch r {
	case AssetRuin:
		return "AssetRuin"
	case DataExhausted:
		return "DataExhausted"
	case ManualSettlement:
		return "ManualSettlement"
	}
	return fmt.Sprintf("TerminationReason(%d)", int(r))
}

// Termination records why and at which bar a run ended.
type Termination struct {
	Reason TerminationReason
	Index  int
}

// Account is the whole mutable state of one run.
type Account struct {
	Cash         float64
	Positions    []Lot // insertion order
	Transactions []Transaction
	Active       bool
	Termination  *Termination
}

func NewAccount(capital float64) Account {
	return Account{Cash: capital, Active: true}
}

// Lot returns a copy of the open lot with the given id.
func (a Account) Lot(id string) (Lot, bool) {
	if i := a.lotIndex(id); i >= 0 {
		return a.Positions[i], true
	}
	return Lot{}, false
}

func (a Account) lotIndex(id string) int {
	for i := range a.Positions {
		if a.Positions[i].ID == id {
			return i
		}
	}
	return -1
}

func (a Account) hasLeveraged(m Mode) bool {
	for _, l := range a.Positions {
		if l.Mode == m {
			return true
		}
	}
	return false
}

// Clone returns a deep copy that shares nothing with a.
func (a Account) Clone() Account {
	c := a
	c.Positions = append([]Lot(nil), a.Positions...)
	c.Transactions = make([]Transaction, len(a.Transactions))
	for i, tx := range a.Transactions {
		if tx.RealizedPL != nil {
			pl := *tx.RealizedPL
			tx.RealizedPL = &pl
		}
		c.Transactions[i] = tx
	}
	if a.Termination != nil {
		t := *a.Termination
		c.Termination = &t
	}
	return c
}
