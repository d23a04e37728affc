package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daylog/internal/apierr"
	"daylog/internal/commands"
	"daylog/internal/exitcode"
	"daylog/internal/service"
	"daylog/internal/testutil"
)

func sampleBreakdown() service.TaskBreakdown {
	return service.TaskBreakdown{
		Analysis: "Three steps.",
		Subtasks: []service.Subtask{
			{Title: "Pick venue", EstimatedTime: 30, Priority: service.PriorityHigh},
			{Title: "Send invites", EstimatedTime: 60, Dependencies: []int{0}},
			{Title: "Order cake", EstimatedTime: 30, Priority: service.PriorityLow, Dependencies: []int{0}},
		},
		Suggestions: []string{"Start early"},
	}
}

// Tests for chat command
func TestChatCommand_Streams(t *testing.T) {
	svc := testutil.NewFakeService()
	env := newEnv(t, svc)
	env.Config.AI.Model = "fast"

	stdout, stderr, code := runCommand(t, &commands.ChatCmd{}, env, "hi", "there")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "Hello from the assistant.\n", stdout)
	assert.Equal(t, service.ChatRequest{Message: "hi there", ModelType: "fast"}, svc.LastChat)
}

func TestChatCommand_NoStream(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, _, code := runCommand(t, &commands.ChatCmd{}, newEnv(t, svc), "--no-stream", "--model", "smart", "hi")

	require.Equal(t, exitcode.Success, code)
	assert.Equal(t, "Hello from the assistant.\n", stdout)
	assert.Equal(t, "smart", svc.LastChat.ModelType)
}

func TestChatCommand_CompleteOnlyReply(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.StreamBody = testutil.StreamBody(service.Frame{Kind: service.FrameComplete, Content: "All at once."})

	stdout, _, code := runCommand(t, &commands.ChatCmd{}, newEnv(t, svc), "hi")

	require.Equal(t, exitcode.Success, code)
	assert.Equal(t, "All at once.\n", stdout)
}

func TestChatCommand_ErrorFrame(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.StreamBody = testutil.StreamBody(
		service.Frame{Kind: service.FrameChunk, Content: "Partial"},
		service.Frame{Kind: service.FrameError, Error: "model overloaded"},
	)

	stdout, stderr, code := runCommand(t, &commands.ChatCmd{}, newEnv(t, svc), "hi")

	assert.Equal(t, exitcode.BackendError, code)
	assert.Equal(t, "Partial\n", stdout)
	assert.Contains(t, stderr, "model overloaded")
}

func TestChatCommand_OpenError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.StreamErr = apierr.Authentication("token rejected")

	stdout, stderr, code := runCommand(t, &commands.ChatCmd{}, newEnv(t, svc), "hi")

	assert.Equal(t, exitcode.AuthError, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "error: authentication error: token rejected\n", stderr)
}

func TestChatCommand_EmptyMessage(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.ChatCmd{}, newEnv(t, testutil.NewFakeService()))

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: message required\n", stderr)
}

// Tests for analyze command
func TestAnalyzeCommand_WithTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	seedTasks(svc)

	stdout, stderr, code := runCommand(t, &commands.AnalyzeCmd{}, newEnv(t, svc), "--tasks", "How", "is", "my", "week?")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "Looks manageable.\n", stdout)
	want := "How is my week?\n" +
		"Recurring:\n- Water plants\n" +
		"Overdue:\n- Pay rent\n" +
		"Due today:\n- Standup notes\n" +
		"Upcoming:\n- Plan trip\n" +
		"Unscheduled:\n- Read book"
	assert.Equal(t, want, svc.LastAnalyze.Message)
}

func TestAnalyzeCommand_NoStreamError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AIErr = apierr.FromStatus(503, "Service Unavailable", nil)

	_, stderr, code := runCommand(t, &commands.AnalyzeCmd{}, newEnv(t, svc), "--no-stream", "hello")

	assert.Equal(t, exitcode.BackendError, code)
	assert.Contains(t, stderr, "503")
}

func TestAnalyzeCommand_EmptyMessage(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.AnalyzeCmd{}, newEnv(t, testutil.NewFakeService()), "--tasks")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: message required\n", stderr)
}

// Tests for breakdown command
func TestBreakdownCommand_Streams(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Breakdown = sampleBreakdown()

	stdout, stderr, code := runCommand(t, &commands.BreakdownCmd{}, newEnv(t, svc), "Plan", "a", "party")

	require.Equal(t, exitcode.Success, code, stderr)
	want := "Three steps.\n" +
		"------------\nSubtasks\n------------\n" +
		"   1  Pick venue [high] ~30m\n" +
		"   2  Send invites ~1h (after 1)\n" +
		"   3  Order cake [low] ~30m (after 1)\n" +
		"Total estimate: 2h\n" +
		"------------\nSuggestions\n------------\n" +
		"   -  Start early\n"
	assert.Equal(t, want, stdout)
	assert.Equal(t, "Plan a party", svc.LastBreakdown.TaskDescription)
	assert.Empty(t, svc.Tasks())
}

func TestBreakdownCommand_AddSubtasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Breakdown = sampleBreakdown()

	stdout, _, code := runCommand(t, &commands.BreakdownCmd{}, newEnv(t, svc), "--no-stream", "--add", "Plan a party")

	require.Equal(t, exitcode.Success, code)
	assert.Contains(t, stdout, "added 3 tasks\n")

	tasks := svc.Tasks()
	require.Len(t, tasks, 3)
	assert.Equal(t, "Pick venue", tasks[0].Title)
	assert.Equal(t, service.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, []string{"breakdown"}, tasks[0].Tags)
	require.NotNil(t, tasks[1].EstimatedDuration)
	assert.Equal(t, 60, *tasks[1].EstimatedDuration)
}

func TestBreakdownCommand_StrictDependencies(t *testing.T) {
	svc := testutil.NewFakeService()
	b := sampleBreakdown()
	b.Subtasks[0].Dependencies = []int{2}
	svc.Breakdown = b
	env := newEnv(t, svc)
	env.Config.Breakdown.StrictDependencies = true

	stdout, stderr, code := runCommand(t, &commands.BreakdownCmd{}, env, "--no-stream", "--add", "Plan a party")

	assert.Equal(t, exitcode.BackendError, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "invalid breakdown: subtask 0 depends on invalid position 2")
	assert.Empty(t, svc.Tasks())
}

func TestBreakdownCommand_MissingData(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.StreamBody = testutil.TextStream("No plan today.")

	_, stderr, code := runCommand(t, &commands.BreakdownCmd{}, newEnv(t, svc), "Plan a party")

	assert.Equal(t, exitcode.BackendError, code)
	assert.Equal(t, "error: no breakdown received\n", stderr)
}

func TestBreakdownCommand_EmptyDescription(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.BreakdownCmd{}, newEnv(t, testutil.NewFakeService()))

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: task description required\n", stderr)
}
