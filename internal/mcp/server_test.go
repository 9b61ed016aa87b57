package mcp

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"mytodo/internal/app"
	"mytodo/internal/testutil"
)

func connect(t *testing.T, svc *testutil.FakeService) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	runner := app.NewRunner(svc, nil)
	require.NoError(t, runner.Start(ctx))
	t.Cleanup(runner.Close)

	server := NewServer(Config{Runner: runner, Version: "test"})
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func call(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any, out any) *sdkmcp.CallToolResult {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if out != nil && !res.IsError {
		require.NotEmpty(t, res.Content)
		text, ok := res.Content[0].(*sdkmcp.TextContent)
		require.True(t, ok)
		require.NoError(t, json.Unmarshal([]byte(text.Text), out))
	}
	return res
}

func TestListTools(t *testing.T) {
	session := connect(t, testutil.NewFakeService())

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"list_tasks", "add_task", "toggle_task", "edit_task", "delete_task", "get_level"} {
		require.True(t, names[want], "missing tool %s", want)
	}
}

func TestAddListToggle(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.PraiseText = "最高です！"
	session := connect(t, svc)

	var added taskOutput
	call(t, session, "add_task", map[string]any{"text": "Buy milk"}, &added)
	require.Equal(t, "Buy milk", added.Task.Text)
	require.Equal(t, 1, added.Task.Number)

	var list listTasksOutput
	call(t, session, "list_tasks", map[string]any{"filter": "active"}, &list)
	require.Len(t, list.Tasks, 1)

	var toggled toggleOutput
	call(t, session, "toggle_task", map[string]any{"id": added.Task.ID}, &toggled)
	require.True(t, toggled.Task.Completed)
	require.NotNil(t, toggled.Level)
	require.Equal(t, 1, toggled.Level.Completed)
	require.Equal(t, "最高です！", toggled.Praise)

	call(t, session, "list_tasks", map[string]any{"filter": "active"}, &list)
	require.Empty(t, list.Tasks)
	require.Equal(t, "no active tasks", list.EmptyMessage)
}

func TestEditDeleteAndLevel(t *testing.T) {
	svc := testutil.NewFakeService()
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		svc.AddTask(id, "task "+id, i < 4)
	}
	session := connect(t, svc)

	var lv struct {
		Level    int    `json:"level"`
		Title    string `json:"title"`
		Progress int    `json:"progress"`
	}
	call(t, session, "get_level", nil, &lv)
	require.Equal(t, 1, lv.Level)
	require.Equal(t, 80, lv.Progress)

	var toggled toggleOutput
	call(t, session, "toggle_task", map[string]any{"id": "e"}, &toggled)
	require.True(t, toggled.LeveledUp)
	require.Equal(t, 2, toggled.Level.Level)
	require.Equal(t, 0, toggled.Level.Progress)

	var edited taskOutput
	call(t, session, "edit_task", map[string]any{"id": "a", "text": "renamed"}, &edited)
	require.Equal(t, "renamed", edited.Task.Text)
	require.Equal(t, "renamed", svc.Tasks()[0].Text)

	var deleted deleteOutput
	call(t, session, "delete_task", map[string]any{"id": "b"}, &deleted)
	require.Equal(t, "b", deleted.Deleted)
	require.Len(t, svc.Tasks(), 4)
}

func TestToolErrors(t *testing.T) {
	session := connect(t, testutil.NewFakeService())

	res := call(t, session, "toggle_task", map[string]any{"id": "missing"}, nil)
	require.True(t, res.IsError)

	res = call(t, session, "add_task", map[string]any{"text": "   "}, nil)
	require.True(t, res.IsError)

	res = call(t, session, "list_tasks", map[string]any{"filter": "someday"}, nil)
	require.True(t, res.IsError)
}
