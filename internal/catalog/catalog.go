package catalog

import (
	"sort"
	"strconv"
)

// MinLevel and MaxLevel bound task difficulty and level unlocks.
const (
	MinLevel = 1
	MaxLevel = 5
)

// Block is a topic grouping of tasks.
type Block struct {
	ID    string `json:"-"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
	Tasks []Task `json:"tasks"`
}

// TasksAt returns the tasks of the given difficulty in catalog order.
func (b *Block) TasksAt(level int) []Task {
	var out []Task
	for _, t := range b.Tasks {
		if t.Difficulty == level {
			out = append(out, t)
		}
	}
	return out
}

// TaskIDsAt returns the ids of the tasks at the given difficulty.
func (b *Block) TaskIDsAt(level int) []TaskID {
	var ids []TaskID
	for _, t := range b.Tasks {
		if t.Difficulty == level {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Task looks up a task by id.
func (b *Block) Task(id TaskID) (Task, bool) {
	for _, t := range b.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// BadgeCondition is the wire form of a badge predicate.
type BadgeCondition struct {
	Kind     string `json:"kind"`
	Block    string `json:"block,omitempty"`
	TaskType Kind   `json:"taskType,omitempty"`
	Count    int    `json:"count"`
}

// BadgeDef is a badge declared by the catalog document.
type BadgeDef struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Condition   BadgeCondition `json:"condition"`
}

// Catalog is the immutable set of blocks and badge declarations loaded at startup.
type Catalog struct {
	blocks map[string]*Block
	order  []string
	badges []BadgeDef
}

// Empty returns a catalog with no blocks.
func Empty() *Catalog {
	return &Catalog{blocks: map[string]*Block{}}
}

// New builds a catalog from blocks keyed by id.
func New(blocks map[string]*Block, badges []BadgeDef) *Catalog {
	c := &Catalog{blocks: make(map[string]*Block, len(blocks)), badges: badges}
	for id, b := range blocks {
		b.ID = id
		c.blocks[id] = b
		c.order = append(c.order, id)
	}
	sortBlockIDs(c.order)
	return c
}

// Blocks returns all blocks in display order.
func (c *Catalog) Blocks() []*Block {
	out := make([]*Block, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.blocks[id])
	}
	return out
}

// BlockIDs returns all block ids in display order.
func (c *Catalog) BlockIDs() []string {
	return append([]string(nil), c.order...)
}

// Block returns the block with the given id.
func (c *Catalog) Block(id string) (*Block, bool) {
	b, ok := c.blocks[id]
	return b, ok
}

// Len returns the number of blocks.
func (c *Catalog) Len() int { return len(c.order) }

// Badges returns badge declarations from the catalog document, if any.
func (c *Catalog) Badges() []BadgeDef { return c.badges }

// TaskKind returns the kind of a task, or "" if the task is unknown.
func (c *Catalog) TaskKind(blockID string, id TaskID) Kind {
	b, ok := c.blocks[blockID]
	if !ok {
		return ""
	}
	t, ok := b.Task(id)
	if !ok {
		return ""
	}
	return t.Kind()
}

// sortBlockIDs orders numeric ids numerically ahead of other ids.
func sortBlockIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, aErr := strconv.Atoi(ids[i])
		b, bErr := strconv.Atoi(ids[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}
