package badges

import "github.com/abhisek/mathstudent/internal/catalog"

// StreakThresholds are the streak lengths that earn a default badge.
var StreakThresholds = []int{5, 10, 25}

// Defaults returns the built-in badge list used when the catalog declares none.
func Defaults() []Badge {
	out := []Badge{
		{ID: "streak-5", Title: "On a Roll", Description: "5 correct answers in a row", Icon: "🔥", Condition: Streak{Length: 5}},
		{ID: "streak-10", Title: "Unstoppable", Description: "10 correct answers in a row", Icon: "⚡", Condition: Streak{Length: 10}},
		{ID: "streak-25", Title: "Math Machine", Description: "25 correct answers in a row", Icon: "🚀", Condition: Streak{Length: 25}},
	}
	for _, k := range catalog.AllKinds() {
		out = append(out, Badge{
			ID:          "type-" + string(k),
			Title:       k.DisplayName() + " Specialist",
			Description: "Solve 10 " + k.DisplayName() + " tasks",
			Icon:        kindIcon(k),
			Condition:   SolveCountByType{Type: k, Count: 10},
		})
	}
	return append(out,
		Badge{ID: "all-rounder", Title: "All-Rounder", Description: "Solve 3 tasks in every block", Icon: "🧭", Condition: MinTasksPerBlock{Count: 3}},
		Badge{ID: "completionist", Title: "Completionist", Description: "Solve 10 tasks in every block", Icon: "🏆", Condition: MinTasksPerBlock{Count: 10}},
	)
}

func kindIcon(k catalog.Kind) string {
	switch k {
	case catalog.KindSolveExpression:
		return "✏️"
	case catalog.KindDragAndDrop:
		return "🧩"
	case catalog.KindAssignmentMemory:
		return "🧠"
	case catalog.KindFindTheError:
		return "🔍"
	case catalog.KindMultipleChoice:
		return "☑️"
	default:
		return "✦"
	}
}
