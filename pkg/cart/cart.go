// Package cart tracks per-item quantities for one ordering session. Items
// are addressed by their index in the flat menu list.
package cart

import (
	"errors"
	"fmt"
	"sync"

	"github.com/yashrajoria/menu-backend/pkg/menu"
)

var (
	ErrUnknownItem       = errors.New("cart: unknown item")
	ErrInvalidTransition = errors.New("cart: invalid transition")
)

// State of a single item line.
type State int

const (
	Absent State = iota
	Present
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Present:
		return "present"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Line is an item with a non-zero quantity.
type Line struct {
	Item     menu.Item
	Quantity int
	Total    float64
}

// Cart is safe for concurrent use.
type Cart struct {
	mu         sync.RWMutex
	items      []menu.Item
	quantities []int
}

func New(items []menu.Item) *Cart {
	return &Cart{
		items:      items,
		quantities: make([]int, len(items)),
	}
}

func (c *Cart) check(index int) error {
	if index < 0 || index >= len(c.items) {
		return fmt.Errorf("%w: %d", ErrUnknownItem, index)
	}
	return nil
}

// Add moves an absent item to quantity 1.
func (c *Cart) Add(index int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(index); err != nil {
		return 0, err
	}
	if c.quantities[index] != 0 {
		return c.quantities[index], fmt.Errorf("%w: add on present item %d", ErrInvalidTransition, index)
	}
	c.quantities[index] = 1
	return 1, nil
}

// Increment is only valid for present items.
func (c *Cart) Increment(index int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(index); err != nil {
		return 0, err
	}
	if c.quantities[index] == 0 {
		return 0, fmt.Errorf("%w: increment on absent item %d", ErrInvalidTransition, index)
	}
	c.quantities[index]++
	return c.quantities[index], nil
}

// Decrement lowers the quantity; at 1 the item returns to Absent.
func (c *Cart) Decrement(index int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(index); err != nil {
		return 0, err
	}
	if c.quantities[index] == 0 {
		return 0, fmt.Errorf("%w: decrement on absent item %d", ErrInvalidTransition, index)
	}
	c.quantities[index]--
	return c.quantities[index], nil
}

func (c *Cart) Quantity(index int) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.check(index); err != nil {
		return 0, err
	}
	return c.quantities[index], nil
}

func (c *Cart) State(index int) (State, error) {
	q, err := c.Quantity(index)
	if err != nil {
		return Absent, err
	}
	if q == 0 {
		return Absent, nil
	}
	return Present, nil
}

func (c *Cart) LineTotal(index int) (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.check(index); err != nil {
		return 0, err
	}
	return float64(c.quantities[index]) * c.items[index].Price, nil
}

// Total is the sum of quantity × price over every item.
func (c *Cart) Total() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var total float64
	for i, q := range c.quantities {
		total += float64(q) * c.items[i].Price
	}
	return total
}

// Lines lists present items in menu order.
func (c *Cart) Lines() []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var lines []Line
	for i, q := range c.quantities {
		if q == 0 {
			continue
		}
		lines = append(lines, Line{
			Item:     c.items[i],
			Quantity: q,
			Total:    float64(q) * c.items[i].Price,
		})
	}
	return lines
}

func (c *Cart) Len() int { return len(c.items) }
