package dispatch

import (
	"context"
	"strings"
)

// A Handoff is a committed transaction in the form an execution
// engine consumes: package versions to install in order, and package
// versions to remove.
type Handoff struct {
	ID      string
	Arch    string
	Install []string
	Erase   []string
}

// Equal compares two handoffs by identity.
func (h *Handoff) Equal(o *Handoff) bool {
	return h.ID == o.ID && h.Arch == o.Arch
}

// ToMap flattens the handoff into string metadata.
func (h *Handoff) ToMap() map[string]string {
	return map[string]string{
		"txn_id":  h.ID,
		"arch":    h.Arch,
		"install": strings.Join(h.Install, " "),
		"erase":   strings.Join(h.Erase, " "),
	}
}

// HandoffFromMap reverses ToMap.
func HandoffFromMap(m map[string]string) Handoff {
	return Handoff{
		ID:      m["txn_id"],
		Arch:    m["arch"],
		Install: strings.Fields(m["install"]),
		Erase:   strings.Fields(m["erase"]),
	}
}

// A Provider hands transactions off to something that will execute
// them.
type Provider interface {
	Dispatch(context.Context, Handoff) error
	List(context.Context) ([]Handoff, error)
	SetSlots(int)
}
