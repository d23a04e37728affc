package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"daylog/internal/apierr"
	"daylog/internal/logger"
	"daylog/internal/service"
	"daylog/internal/stream"
)

type request struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

// backend is a scripted test server that records requests.
type backend struct {
	t        *testing.T
	srv      *httptest.Server
	mu       sync.Mutex
	requests []request
	routes   map[string]http.HandlerFunc
}

func newBackend(t *testing.T) *backend {
	b := &backend{t: t, routes: map[string]http.HandlerFunc{}}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.requests = append(b.requests, request{r.Method, r.URL.Path, r.Header.Get("Authorization"), string(body)})
		h, ok := b.routes[r.Method+" "+r.URL.Path]
		b.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"success":false,"message":"no route"}`)
			return
		}
		h(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) handle(route string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[route] = h
}

func (b *backend) ok(route string, data any) {
	b.handle(route, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	})
}

func (b *backend) count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r.Method+" "+r.Path == route {
			n++
		}
	}
	return n
}

func (b *backend) last() request {
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(b.t, b.requests)
	return b.requests[len(b.requests)-1]
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []apierr.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n apierr.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

type recordingSessions struct {
	logouts atomic.Int32
}

func (r *recordingSessions) ForceLogout(context.Context) error {
	r.logouts.Add(1)
	return nil
}

func newClient(t *testing.T, b *backend, token string) (*Client, *recordingNotifier, *recordingSessions) {
	t.Helper()
	n := &recordingNotifier{}
	s := &recordingSessions{}
	var ts oauth2.TokenSource
	if token != "" {
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	} else {
		ts = errSource{}
	}
	c, err := New(Options{
		BaseURL:     b.srv.URL + "/api",
		Timeout:     2 * time.Second,
		TokenSource: ts,
		Stream:      stream.Options{Logger: logger.Discard()},
		Interceptor: apierr.NewInterceptor(n, s, logger.Discard()),
		Logger:      logger.Discard(),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, n, s
}

type errSource struct{}

func (errSource) Token() (*oauth2.Token, error) { return nil, apierr.Authentication("not logged in") }

func TestListTasks(t *testing.T) {
	tests := []struct {
		name string
		data any
	}{
		{"bare array", []map[string]any{{"id": "1", "title": "A", "status": "pending"}}},
		{"wrapped", map[string]any{"tasks": []map[string]any{{"id": "1", "title": "A", "status": "pending"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t)
			b.ok("GET /api/tasks", tt.data)
			c, _, _ := newClient(t, b, "tok")

			tasks, err := c.ListTasks(context.Background())

			require.NoError(t, err)
			require.Len(t, tasks, 1)
			assert.Equal(t, "A", tasks[0].Title)
			assert.Equal(t, "Bearer tok", b.last().Auth)
		})
	}
}

func TestCreateTask_ValidatesBeforeSending(t *testing.T) {
	b := newBackend(t)
	c, _, _ := newClient(t, b, "tok")

	_, err := c.CreateTask(context.Background(), service.CreateTaskInput{Title: "", DueDate: "tomorrow", EndTime: "25:00"})

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindValidation, apiErr.Kind)
	assert.Equal(t, "is required", apiErr.Fields["title"])
	assert.Equal(t, "must be YYYY-MM-DD", apiErr.Fields["dueDate"])
	assert.Equal(t, "must be HH:MM", apiErr.Fields["endTime"])
	assert.Zero(t, b.count("POST /api/tasks"))
}

func TestSetTaskStatus(t *testing.T) {
	b := newBackend(t)
	done := time.Date(2026, 5, 20, 8, 0, 0, 0, time.UTC)
	b.ok("PATCH /api/tasks/t 1/status", map[string]any{"id": "t 1", "title": "A", "status": "completed", "completedAt": done})
	c, _, _ := newClient(t, b, "tok")

	task, err := c.SetTaskStatus(context.Background(), "t 1", service.StatusCompleted)

	require.NoError(t, err)
	assert.Equal(t, service.StatusCompleted, task.Status)
	require.NotNil(t, task.CompletedAt)
	assert.True(t, done.Equal(*task.CompletedAt))
	assert.JSONEq(t, `{"status":"completed"}`, b.last().Body)
}

func TestUnauthorizedForcesLogout(t *testing.T) {
	b := newBackend(t)
	b.handle("GET /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"success":false,"message":"jwt expired"}`)
	})
	c, n, s := newClient(t, b, "tok")

	_, err := c.ListTasks(context.Background())

	assert.ErrorIs(t, err, apierr.ErrAuthentication)
	assert.Contains(t, err.Error(), "jwt expired")
	assert.Equal(t, int32(1), s.logouts.Load())
	require.Len(t, n.notes, 1)
	assert.Equal(t, apierr.LevelWarning, n.notes[0].Level)
}

func TestMissingTokenFailsWithoutRequest(t *testing.T) {
	b := newBackend(t)
	b.ok("GET /api/tasks", []any{})
	c, _, s := newClient(t, b, "")

	_, err := c.ListTasks(context.Background())

	assert.ErrorIs(t, err, apierr.ErrAuthentication)
	assert.Zero(t, b.count("GET /api/tasks"))
	assert.Equal(t, int32(1), s.logouts.Load())
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   apierr.Kind
		notify bool
	}{
		{"validation", http.StatusUnprocessableEntity, `{"success":false,"message":"bad","errors":{"title":"too long"}}`, apierr.KindValidation, false},
		{"not found", http.StatusNotFound, `{"success":false,"message":"task not found"}`, apierr.KindNotFound, false},
		{"server", http.StatusInternalServerError, `oops`, apierr.KindServer, true},
		{"envelope failure", http.StatusOK, `{"success":false,"message":"quota reached"}`, apierr.KindRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t)
			b.handle("GET /api/tasks/x", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			c, n, _ := newClient(t, b, "tok")

			_, err := c.GetTask(context.Background(), "x")

			require.Error(t, err)
			assert.Equal(t, tt.kind, apierr.KindOf(err))
			assert.Equal(t, tt.notify, len(n.notes) == 1)
		})
	}
}

func TestNetworkError(t *testing.T) {
	b := newBackend(t)
	c, n, _ := newClient(t, b, "tok")
	b.srv.Close()

	_, err := c.ListLogs(context.Background())

	assert.Equal(t, apierr.KindNetwork, apierr.KindOf(err))
	require.Len(t, n.notes, 1)
	assert.Equal(t, "Network error", n.notes[0].Title)
}

func TestDashboardCache(t *testing.T) {
	b := newBackend(t)
	b.ok("GET /api/dashboard/summary", map[string]any{"tasks": map[string]int{"total": 3, "completed": 1}, "completionRate": 33.3, "streak": 2})
	b.ok("DELETE /api/tasks/1", nil)
	c, _, _ := newClient(t, b, "tok")
	ctx := context.Background()

	d, err := c.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Tasks.Total)
	assert.Equal(t, 2, d.Streak)

	_, err = c.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, b.count("GET /api/dashboard/summary"))

	require.NoError(t, c.DeleteTask(ctx, "1"))
	_, err = c.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, b.count("GET /api/dashboard/summary"))
}

func TestLoginDoesNotSendToken(t *testing.T) {
	b := newBackend(t)
	b.ok("POST /api/auth/login", map[string]any{"token": "new", "user": map[string]any{"id": "u1", "email": "ada@example.com"}})
	c, _, _ := newClient(t, b, "")

	res, err := c.Login(context.Background(), service.LoginInput{Email: "ada@example.com", Password: "secret1"})

	require.NoError(t, err)
	assert.Equal(t, "new", res.Token)
	assert.Equal(t, "u1", res.User.ID)
	assert.Empty(t, b.last().Auth)
}

func TestLoginBadCredentialsKeepsSession(t *testing.T) {
	b := newBackend(t)
	b.handle("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"success":false,"message":"invalid credentials"}`)
	})
	b.handle("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"success":false,"message":"invalid verification code"}`)
	})
	c, n, s := newClient(t, b, "tok")
	ctx := context.Background()

	_, err := c.Login(ctx, service.LoginInput{Email: "ada@example.com", Password: "wrong11"})
	assert.ErrorIs(t, err, apierr.ErrAuthentication)
	assert.Contains(t, err.Error(), "invalid credentials")

	_, err = c.Register(ctx, service.RegisterInput{Email: "ada@example.com", Password: "pa55word", Name: "Ada", VerificationCode: "123456"})
	assert.ErrorIs(t, err, apierr.ErrAuthentication)

	assert.Zero(t, s.logouts.Load())
	assert.Empty(t, n.notes)
}

func TestLoginServerErrorNotifies(t *testing.T) {
	b := newBackend(t)
	b.handle("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c, n, s := newClient(t, b, "")

	_, err := c.Login(context.Background(), service.LoginInput{Email: "ada@example.com", Password: "secret1"})

	assert.Equal(t, apierr.KindServer, apierr.KindOf(err))
	require.Len(t, n.notes, 1)
	assert.Equal(t, "Server error", n.notes[0].Title)
	assert.Zero(t, s.logouts.Load())
}

func TestSendVerificationCodeValidatesEmail(t *testing.T) {
	b := newBackend(t)
	b.ok("POST /api/auth/send-verification-code", nil)
	c, _, _ := newClient(t, b, "")

	err := c.SendVerificationCode(context.Background(), "not-an-email")
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))

	require.NoError(t, c.SendVerificationCode(context.Background(), "ada@example.com"))
	assert.JSONEq(t, `{"email":"ada@example.com"}`, b.last().Body)
}

func TestAnalyzeAndChatText(t *testing.T) {
	b := newBackend(t)
	b.ok("POST /api/ai/analyze", map[string]string{"analysis": "Busy day."})
	b.ok("POST /api/ai/simple-chat", "Hi there")
	c, _, _ := newClient(t, b, "tok")
	ctx := context.Background()

	text, err := c.Analyze(ctx, service.AnalyzeRequest{Message: "how am I doing", ModelType: "default"})
	require.NoError(t, err)
	assert.Equal(t, "Busy day.", text)

	reply, err := c.Chat(ctx, service.ChatRequest{Message: "hello", ModelType: "default"})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)
	assert.JSONEq(t, `{"message":"hello","modelType":"default"}`, b.last().Body)
}

func TestBreakdownTask(t *testing.T) {
	b := newBackend(t)
	b.ok("POST /api/ai/breakdown-task", map[string]any{
		"analysis":    "Three steps",
		"subtasks":    []map[string]any{{"title": "Outline", "estimatedTime": 15, "priority": "high"}},
		"suggestions": []string{"Start early"},
	})
	c, _, _ := newClient(t, b, "tok")

	bd, err := c.BreakdownTask(context.Background(), service.BreakdownRequest{TaskDescription: "write essay"})

	require.NoError(t, err)
	assert.Equal(t, "Three steps", bd.Analysis)
	require.Len(t, bd.Subtasks, 1)
	assert.Equal(t, 15, bd.Subtasks[0].EstimatedTime)
	assert.JSONEq(t, `{"taskDescription":"write essay","modelType":""}`, b.last().Body)
}

func TestStreamChat(t *testing.T) {
	b := newBackend(t)
	b.handle("POST /api/ai/stream-simple-chat", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"chunk\",\"content\":\"Hi\"}\n\n")
		w.(http.Flusher).Flush()
		fmt.Fprint(w, "data: {\"type\":\"chunk\",\"content\":\" you\"}\n\ndata: [DONE]\n\n")
	})
	c, _, _ := newClient(t, b, "tok")

	var chunks []string
	st, err := c.StreamChat(context.Background(), service.ChatRequest{Message: "hello"}, service.StreamCallbacks{
		OnChunk: func(s string) { chunks = append(chunks, s) },
	})
	require.NoError(t, err)
	res := stream.Collect(st)

	assert.Equal(t, "Hi you", res.Text)
	assert.Equal(t, []string{"Hi", " you"}, chunks)
	assert.Equal(t, service.OutcomeDone, res.Outcome)
	assert.Equal(t, "Bearer tok", b.last().Auth)
}

func TestStreamWithoutTokenForcesLogout(t *testing.T) {
	b := newBackend(t)
	c, _, s := newClient(t, b, "")

	_, err := c.StreamAnalyze(context.Background(), service.AnalyzeRequest{Message: "x"}, service.StreamCallbacks{})

	assert.ErrorIs(t, err, apierr.ErrAuthentication)
	assert.Equal(t, int32(1), s.logouts.Load())
	assert.Zero(t, b.count("POST /api/ai/stream-analyze"))
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
