// Package level derives the gamification status from the completed-task count.
package level

// TasksPerLevel is how many completions advance one level.
const TasksPerLevel = 5

// Status is the level, title and progress shown for a completed count.
type Status struct {
	Completed int    `json:"completed"`
	Level     int    `json:"level"`
	Title     string `json:"title"`
	Progress  int    `json:"progress"` // percent towards the next level, 0..80
}

type tier struct {
	minLevel int
	title    string
}

// Evaluated top-down; the first tier whose minLevel is reached wins.
// Levels 5 and 10 share a title.
var tiers = []tier{
	{10, "タスクマスター"},
	{5, "タスクマスター"},
	{3, "頑張り屋さん"},
}

// DefaultTitle is shown below the first tier.
const DefaultTitle = "見習い"

// Compute returns the status for n completed tasks. Negative n counts as 0.
func Compute(n int) Status {
	if n < 0 {
		n = 0
	}
	lv := n/TasksPerLevel + 1
	return Status{
		Completed: n,
		Level:     lv,
		Title:     Title(lv),
		Progress:  (n % TasksPerLevel) * (100 / TasksPerLevel),
	}
}

// Title returns the title for a level.
func Title(lv int) string {
	for _, t := range tiers {
		if lv >= t.minLevel {
			return t.title
		}
	}
	return DefaultTitle
}

// LeveledUp reports whether going from before to after completions crosses a level boundary.
func LeveledUp(before, after int) bool {
	return Compute(after).Level > Compute(before).Level
}
