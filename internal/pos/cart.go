// Package pos holds the cashier-side checkout state: the in-memory cart and
// the pure calculator that derives discount, final total and change from it.
package pos

import (
	"errors"
	"fmt"
	"math"

	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

// MaxQuantity is the most units of one menu item a single line can hold.
const MaxQuantity = 999

// ErrAmountOutOfRange reports a line or cart total that cannot be
// represented, or a negative price.
var ErrAmountOutOfRange = errors.New("amount out of range")

// Line is one menu item in the cart. Quantity is always at least 1 while the
// line exists.
type Line struct {
	Item     models.MenuItem
	Quantity int
}

// Subtotal returns price × quantity for the line. Use CheckedSubtotal when
// the price did not come from a validated menu.
func (l Line) Subtotal() int64 {
	s, _ := l.CheckedSubtotal()
	return s
}

// CheckedSubtotal is Subtotal with overflow and negative-price detection.
func (l Line) CheckedSubtotal() (int64, error) {
	if l.Item.Price < 0 || l.Quantity < 0 {
		return 0, ErrAmountOutOfRange
	}
	q := int64(l.Quantity)
	if q != 0 && l.Item.Price > math.MaxInt64/q {
		return 0, ErrAmountOutOfRange
	}
	return l.Item.Price * q, nil
}

// Cart is an ordered, session-scoped collection of lines. It holds at most
// one line per menu item id and keeps lines in insertion order.
//
// Quantity policy: AdjustQuantity removes a line once its quantity drops to
// zero or below. Remove deletes a line regardless of quantity.
//
// A Cart is not safe for concurrent use; each checkout session owns one.
type Cart struct {
	lines []Line
}

func NewCart() *Cart {
	return &Cart{}
}

// Add increments the quantity of item's line, appending a new line with
// quantity 1 on first add. The item is snapshotted on first add. A line
// already at MaxQuantity is left as is.
func (c *Cart) Add(item models.MenuItem) {
	if i := c.index(item.ID); i >= 0 {
		if c.lines[i].Quantity < MaxQuantity {
			c.lines[i].Quantity++
		}
		return
	}
	c.lines = append(c.lines, Line{Item: item, Quantity: 1})
}

// AdjustQuantity adds delta to the line's quantity, capped at MaxQuantity,
// and drops the line when the result is not positive. Unknown ids are
// ignored.
func (c *Cart) AdjustQuantity(itemID string, delta int) {
	i := c.index(itemID)
	if i < 0 {
		return
	}
	cur := c.lines[i].Quantity
	if delta > MaxQuantity-cur {
		c.lines[i].Quantity = MaxQuantity
		return
	}
	q := cur + delta
	if q <= 0 {
		c.removeAt(i)
		return
	}
	c.lines[i].Quantity = q
}

func (c *Cart) Remove(itemID string) {
	if i := c.index(itemID); i >= 0 {
		c.removeAt(i)
	}
}

// Subtotal is recomputed from the lines on every call. It is 0 when the
// total is out of range; CheckedSubtotal tells the two apart.
func (c *Cart) Subtotal() int64 {
	s, _ := c.CheckedSubtotal()
	return s
}

func (c *Cart) CheckedSubtotal() (int64, error) {
	var sum int64
	for _, l := range c.lines {
		s, err := l.CheckedSubtotal()
		if err != nil {
			return 0, fmt.Errorf("%w: line %s", err, l.Item.ID)
		}
		if s > math.MaxInt64-sum {
			return 0, ErrAmountOutOfRange
		}
		sum += s
	}
	return sum, nil
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int      { return len(c.lines) }
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) index(itemID string) int {
	for i, l := range c.lines {
		if l.Item.ID == itemID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}
