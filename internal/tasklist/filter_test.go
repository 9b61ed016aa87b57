package tasklist

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mytodo/internal/service"
)

func TestVisible(t *testing.T) {
	tasks := []service.Task{
		task("a", "one", false, 0),
		task("b", "two", true, 1),
		task("c", "three", false, 2),
	}
	require.Equal(t, []string{"a", "b", "c"}, ids(Visible(tasks, FilterAll)))
	require.Equal(t, []string{"a", "c"}, ids(Visible(tasks, FilterActive)))
	require.Equal(t, []string{"b"}, ids(Visible(tasks, FilterCompleted)))
}

func TestVisible_Idempotent(t *testing.T) {
	tasks := []service.Task{task("a", "one", false, 0), task("b", "two", true, 1)}
	for _, f := range Filters {
		once := Visible(tasks, f)
		require.Equal(t, once, Visible(once, f))
	}
}

func TestVisible_EmptyCompleted(t *testing.T) {
	require.Empty(t, Visible(nil, FilterCompleted))
	require.Equal(t, "no completed tasks", FilterCompleted.EmptyMessage())
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	require.Equal(t, FilterAll, f)

	f, err = ParseFilter(" Active ")
	require.NoError(t, err)
	require.Equal(t, FilterActive, f)

	_, err = ParseFilter("done")
	require.Error(t, err)
}

func TestFilterLabelsAndNext(t *testing.T) {
	require.Equal(t, "すべて", FilterAll.Label())
	require.Equal(t, "未完了", FilterActive.Label())
	require.Equal(t, "完了", FilterCompleted.Label())
	require.Equal(t, FilterActive, FilterAll.Next())
	require.Equal(t, FilterAll, FilterCompleted.Next())
}
