// Package inventory provides the capacity-bounded resource container
// used by every facility. All mutators maintain the invariant that
// usage equals the sum of item quantities and never exceeds capacity.
package inventory

import (
	"fmt"
	"sort"

	"github.com/tycoonsim/tycoon-go/internal/domain/shared"
)

// Stack is a resource id paired with a quantity. Used for recipe
// requirements, produced outputs, and accepted/discarded reports.
type Stack struct {
	Resource string
	Quantity uint
}

// Shortage describes one unmet requirement from a sufficiency check.
type Shortage struct {
	Resource  string
	Required  uint
	Available uint
}

// Inventory is a capacity-bounded resource container.
type Inventory struct {
	items    map[string]uint
	capacity uint
	usage    uint
}

// New creates an empty inventory with the given capacity.
func New(capacity uint) *Inventory {
	return &Inventory{
		items:    make(map[string]uint),
		capacity: capacity,
	}
}

// Restore rebuilds an inventory from persisted items, recomputing usage
// from the item sum. Returns an error if the items exceed capacity.
func Restore(capacity uint, items map[string]uint) (*Inventory, error) {
	inv := New(capacity)
	for resource, qty := range items {
		if qty == 0 {
			continue
		}
		inv.items[resource] = qty
		inv.usage += qty
	}
	if inv.usage > capacity {
		return nil, shared.NewInventoryInvariantError(
			fmt.Sprintf("restored usage %d exceeds capacity %d", inv.usage, capacity))
	}
	return inv, nil
}

// Capacity returns the total capacity.
func (i *Inventory) Capacity() uint {
	return i.capacity
}

// Usage returns the currently occupied capacity.
func (i *Inventory) Usage() uint {
	return i.usage
}

// Available returns the remaining free capacity.
func (i *Inventory) Available() uint {
	return i.capacity - i.usage
}

// Quantity returns the stored quantity of a resource (0 if absent).
func (i *Inventory) Quantity(resource string) uint {
	return i.items[resource]
}

// Items returns a copy of the item map for persistence and reporting.
func (i *Inventory) Items() map[string]uint {
	out := make(map[string]uint, len(i.items))
	for resource, qty := range i.items {
		out[resource] = qty
	}
	return out
}

// Stacks returns the contents as a slice sorted by resource id.
func (i *Inventory) Stacks() []Stack {
	out := make([]Stack, 0, len(i.items))
	for resource, qty := range i.items {
		out = append(out, Stack{Resource: resource, Quantity: qty})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Resource < out[b].Resource })
	return out
}

// aggregate sums duplicate resource entries so that checks and
// mutations always see one total per resource. A requirement list
// naming the same resource twice must not pass a per-entry check that
// its combined total would fail. First-seen order is preserved.
func aggregate(stacks []Stack) []Stack {
	totals := make(map[string]uint, len(stacks))
	order := make([]string, 0, len(stacks))
	for _, s := range stacks {
		if _, seen := totals[s.Resource]; !seen {
			order = append(order, s.Resource)
		}
		totals[s.Resource] += s.Quantity
	}
	out := make([]Stack, 0, len(order))
	for _, resource := range order {
		out = append(out, Stack{Resource: resource, Quantity: totals[resource]})
	}
	return out
}

// HasSufficient checks whether every requirement is met, returning a
// shortage report for the ones that are not. Used both by the production
// automaton and by availability queries.
func (i *Inventory) HasSufficient(requirements []Stack) (bool, []Shortage) {
	var shortages []Shortage
	for _, req := range aggregate(requirements) {
		available := i.items[req.Resource]
		if available < req.Quantity {
			shortages = append(shortages, Shortage{
				Resource:  req.Resource,
				Required:  req.Quantity,
				Available: available,
			})
		}
	}
	return len(shortages) == 0, shortages
}

// Consume subtracts the given quantities, removing zero-quantity entries.
// Fails fast with InsufficientInputError if any requirement is unmet;
// nothing is mutated on failure. Quantities never go negative.
func (i *Inventory) Consume(requirements []Stack) error {
	requirements = aggregate(requirements)
	for _, req := range requirements {
		if available := i.items[req.Resource]; available < req.Quantity {
			return shared.NewInsufficientInputError(req.Resource, req.Quantity, available)
		}
	}

	for _, req := range requirements {
		remaining := i.items[req.Resource] - req.Quantity
		if remaining == 0 {
			delete(i.items, req.Resource)
		} else {
			i.items[req.Resource] = remaining
		}
		i.usage -= req.Quantity
	}
	return nil
}

// Produce adds outputs up to the remaining capacity. Each output is
// clipped to min(quantity, free capacity); anything beyond that is
// discarded, not queued. Returns what was accepted and what was dropped
// so callers can log the loss.
func (i *Inventory) Produce(outputs []Stack) (accepted []Stack, discarded []Stack) {
	for _, out := range outputs {
		added := out.Quantity
		if free := i.capacity - i.usage; added > free {
			added = free
		}
		if added > 0 {
			i.items[out.Resource] += added
			i.usage += added
			accepted = append(accepted, Stack{Resource: out.Resource, Quantity: added})
		}
		if dropped := out.Quantity - added; dropped > 0 {
			discarded = append(discarded, Stack{Resource: out.Resource, Quantity: dropped})
		}
	}
	return accepted, discarded
}

// CheckInvariant verifies that usage matches the item sum and stays
// within capacity. Production skips a facility whose inventory fails
// this check rather than letting corruption spread.
func (i *Inventory) CheckInvariant() error {
	var sum uint
	for _, qty := range i.items {
		sum += qty
	}
	if sum != i.usage {
		return shared.NewInventoryInvariantError(
			fmt.Sprintf("usage %d does not match item sum %d", i.usage, sum))
	}
	if i.usage > i.capacity {
		return shared.NewInventoryInvariantError(
			fmt.Sprintf("usage %d exceeds capacity %d", i.usage, i.capacity))
	}
	return nil
}

// Clone returns a deep copy.
func (i *Inventory) Clone() *Inventory {
	return &Inventory{
		items:    i.Items(),
		capacity: i.capacity,
		usage:    i.usage,
	}
}

func (i *Inventory) String() string {
	return fmt.Sprintf("Inventory(%d/%d)", i.usage, i.capacity)
}
