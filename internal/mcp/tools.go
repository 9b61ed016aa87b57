package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"mytodo/internal/app"
	"mytodo/internal/level"
	"mytodo/internal/service"
	"mytodo/internal/tasklist"
)

type taskView struct {
	Number    int    `json:"number" jsonschema:"1-based position in the unfiltered list"`
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"created_at"`
}

type listTasksInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"all or active or completed (default all)"`
}

type listTasksOutput struct {
	Tasks        []taskView   `json:"tasks"`
	EmptyMessage string       `json:"empty_message,omitempty"`
	Level        level.Status `json:"level"`
}

type addTaskInput struct {
	Text string `json:"text" jsonschema:"task text"`
}

type taskIDInput struct {
	ID string `json:"id" jsonschema:"task id from list_tasks"`
}

type editTaskInput struct {
	ID   string `json:"id" jsonschema:"task id from list_tasks"`
	Text string `json:"text" jsonschema:"replacement text"`
}

type taskOutput struct {
	Task taskView `json:"task"`
}

type toggleOutput struct {
	Task      taskView      `json:"task"`
	Level     *level.Status `json:"level,omitempty"`
	LeveledUp bool          `json:"leveled_up,omitempty"`
	Praise    string        `json:"praise,omitempty"`
}

type deleteOutput struct {
	Deleted string `json:"deleted"`
}

// toolset serializes tool calls so each call reads back its own result.
type toolset struct {
	mu     sync.Mutex
	runner *app.Runner
}

func registerTools(server *sdkmcp.Server, runner *app.Runner) {
	ts := &toolset{runner: runner}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks with their ids, optionally filtered, plus the current level.",
	}, ts.listTasks)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_task",
		Description: "Create a task.",
	}, ts.addTask)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "toggle_task",
		Description: "Flip a task between active and completed.",
	}, ts.toggleTask)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "edit_task",
		Description: "Replace a task's text.",
	}, ts.editTask)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task.",
	}, ts.deleteTask)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_level",
		Description: "Show level, title and progress towards the next level.",
	}, ts.getLevel)
}

func (ts *toolset) listTasks(ctx context.Context, _ *sdkmcp.CallToolRequest, in listTasksInput) (*sdkmcp.CallToolResult, listTasksOutput, error) {
	filter, err := tasklist.ParseFilter(in.Filter)
	if err != nil {
		return nil, listTasksOutput{}, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	m := ts.runner.Model()
	out := listTasksOutput{Tasks: []taskView{}, Level: m.Level()}
	for i, t := range m.Tasks {
		if filter.Match(t) {
			out.Tasks = append(out.Tasks, view(i+1, t))
		}
	}
	if len(out.Tasks) == 0 {
		out.EmptyMessage = filter.EmptyMessage()
	}
	return result(out)
}

func (ts *toolset) addTask(ctx context.Context, _ *sdkmcp.CallToolRequest, in addTaskInput) (*sdkmcp.CallToolResult, taskOutput, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, taskOutput{}, errors.New("text must not be empty")
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	add := tasklist.AddText(in.Text)
	if err := ts.runner.Dispatch(ctx, add); err != nil {
		return nil, taskOutput{}, err
	}
	n, t, ok := ts.find(add.ID)
	if !ok {
		return nil, taskOutput{}, errors.New("another add is still in flight")
	}
	return result(taskOutput{Task: view(n, t)})
}

func (ts *toolset) toggleTask(ctx context.Context, _ *sdkmcp.CallToolRequest, in taskIDInput) (*sdkmcp.CallToolResult, toggleOutput, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, _, ok := ts.find(in.ID); !ok {
		return nil, toggleOutput{}, notFound(in.ID)
	}
	ts.runner.Drain()
	if err := ts.runner.Dispatch(ctx, tasklist.Toggle{ID: in.ID}); err != nil {
		return nil, toggleOutput{}, err
	}

	n, t, _ := ts.find(in.ID)
	out := toggleOutput{Task: view(n, t)}
	rep := ts.runner.Drain()
	for _, c := range rep.Celebrations {
		st := c.Status
		out.Level = &st
		out.LeveledUp = c.LeveledUp
	}
	if len(rep.Praise) > 0 {
		out.Praise = rep.Praise[len(rep.Praise)-1]
	}
	return result(out)
}

func (ts *toolset) editTask(ctx context.Context, _ *sdkmcp.CallToolRequest, in editTaskInput) (*sdkmcp.CallToolResult, taskOutput, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, _, ok := ts.find(in.ID); !ok {
		return nil, taskOutput{}, notFound(in.ID)
	}
	if err := ts.runner.Dispatch(ctx, tasklist.Edit{ID: in.ID, Text: in.Text}); err != nil {
		return nil, taskOutput{}, err
	}
	n, t, _ := ts.find(in.ID)
	return result(taskOutput{Task: view(n, t)})
}

func (ts *toolset) deleteTask(ctx context.Context, _ *sdkmcp.CallToolRequest, in taskIDInput) (*sdkmcp.CallToolResult, deleteOutput, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, _, ok := ts.find(in.ID); !ok {
		return nil, deleteOutput{}, notFound(in.ID)
	}
	if err := ts.runner.Dispatch(ctx, tasklist.Remove{ID: in.ID}); err != nil {
		return nil, deleteOutput{}, err
	}
	return result(deleteOutput{Deleted: in.ID})
}

func (ts *toolset) getLevel(ctx context.Context, _ *sdkmcp.CallToolRequest, _ struct{}) (*sdkmcp.CallToolResult, level.Status, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return result(ts.runner.Model().Level())
}

// find returns the task with id and its 1-based position.
func (ts *toolset) find(id string) (int, service.Task, bool) {
	for i, t := range ts.runner.Model().Tasks {
		if t.ID == id {
			return i + 1, t, true
		}
	}
	return 0, service.Task{}, false
}

func notFound(id string) error {
	return fmt.Errorf("task %s: %w", id, service.ErrNotFound)
}

func view(n int, t service.Task) taskView {
	return taskView{
		Number:    n,
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// result returns out as both structured content and JSON text.
func result[T any](out T) (*sdkmcp.CallToolResult, T, error) {
	data, err := json.Marshal(out)
	if err != nil {
		var zero T
		return nil, zero, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, out, nil
}
