// Package corridor implements the one-dimensional, multi-occupancy grid that
// agents move along.
package corridor

import (
	"fmt"
	"sort"
)

// Corridor is a row of cells, each holding any number of agents. Every placed
// agent occupies exactly one cell. A Corridor is not safe for concurrent use.
type Corridor struct {
	cells []map[int]struct{}
	where map[int]int
}

// New creates an empty corridor with the given number of cells.
func New(width int) *Corridor {
	if width <= 0 {
		panic(fmt.Sprintf("corridor: width must be positive, got %d", width))
	}
	cells := make([]map[int]struct{}, width)
	for i := range cells {
		cells[i] = make(map[int]struct{})
	}
	return &Corridor{
		cells: cells,
		where: make(map[int]int),
	}
}

// Width returns the number of cells.
func (c *Corridor) Width() int {
	return len(c.cells)
}

// Len returns the number of agents placed in the corridor.
func (c *Corridor) Len() int {
	return len(c.where)
}

// Place puts a new agent into a cell. Placing an agent twice is a programming
// error.
func (c *Corridor) Place(id, pos int) {
	c.mustBeInside(pos)
	if _, ok := c.where[id]; ok {
		panic(fmt.Sprintf("corridor: agent %d is already placed", id))
	}
	c.cells[pos][id] = struct{}{}
	c.where[id] = pos
}

// Move relocates a placed agent to another cell.
func (c *Corridor) Move(id, to int) {
	c.mustBeInside(to)
	from, ok := c.where[id]
	if !ok {
		panic(fmt.Sprintf("corridor: agent %d is not placed", id))
	}
	if from == to {
		return
	}
	delete(c.cells[from], id)
	c.cells[to][id] = struct{}{}
	c.where[id] = to
}

// Position returns the cell an agent occupies.
func (c *Corridor) Position(id int) (int, bool) {
	pos, ok := c.where[id]
	return pos, ok
}

// Count returns the number of agents in a cell.
func (c *Corridor) Count(pos int) int {
	c.mustBeInside(pos)
	return len(c.cells[pos])
}

// Contents returns the IDs of the agents in a cell in ascending order.
func (c *Corridor) Contents(pos int) []int {
	c.mustBeInside(pos)
	ids := make([]int, 0, len(c.cells[pos]))
	for id := range c.cells[pos] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Occupancy returns the agent count of every cell.
func (c *Corridor) Occupancy() []int {
	counts := make([]int, len(c.cells))
	for i, cell := range c.cells {
		counts[i] = len(cell)
	}
	return counts
}

func (c *Corridor) mustBeInside(pos int) {
	if pos < 0 || pos >= len(c.cells) {
		panic(fmt.Sprintf("corridor: position %d outside [0, %d)", pos, len(c.cells)))
	}
}
