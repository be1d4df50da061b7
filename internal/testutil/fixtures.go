package testutil

import (
	"fmt"

	"github.com/abhisek/mathstudent/internal/catalog"
)

// Task options
type TaskOption func(*catalog.Task)

func WithPayload(p catalog.Payload) TaskOption {
	return func(t *catalog.Task) {
		t.Payload = p
	}
}

func WithHints(hints ...string) TaskOption {
	return func(t *catalog.Task) {
		t.Hints = hints
	}
}

// NewTask returns a solve_expression task whose solution is "ans-<id>".
func NewTask(id string, difficulty int, opts ...TaskOption) catalog.Task {
	t := catalog.Task{
		ID:         catalog.TaskID(id),
		Difficulty: difficulty,
		Payload: catalog.SolveExpression{
			Question: "q-" + id,
			Solution: "ans-" + id,
		},
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// LevelTasks returns n tasks at the given level with ids "<prefix><level>-<i>".
func LevelTasks(prefix string, level, n int) []catalog.Task {
	tasks := make([]catalog.Task, 0, n)
	for i := 1; i <= n; i++ {
		tasks = append(tasks, NewTask(fmt.Sprintf("%s%d-%d", prefix, level, i), level))
	}
	return tasks
}

// NewBlock returns a block with the given tasks.
func NewBlock(id string, tasks ...catalog.Task) *catalog.Block {
	return &catalog.Block{
		ID:    id,
		Title: "Block " + id,
		Icon:  "#",
		Tasks: tasks,
	}
}

// NewCatalog builds a catalog from blocks.
func NewCatalog(blocks ...*catalog.Block) *catalog.Catalog {
	m := make(map[string]*catalog.Block, len(blocks))
	for _, b := range blocks {
		m[b.ID] = b
	}
	return catalog.New(m, nil)
}

// StandardCatalog returns two blocks, "1" and "2", each with five tasks
// on every level.
func StandardCatalog() *catalog.Catalog {
	var blocks []*catalog.Block
	for _, id := range []string{"1", "2"} {
		var tasks []catalog.Task
		for level := catalog.MinLevel; level <= catalog.MaxLevel; level++ {
			tasks = append(tasks, LevelTasks("b"+id+"-", level, 5)...)
		}
		blocks = append(blocks, NewBlock(id, tasks...))
	}
	return NewCatalog(blocks...)
}
