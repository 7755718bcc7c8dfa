package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"agentic-surfer/internal/domain"
)

type mockService struct {
	reply    domain.Reply
	err      error
	panicVal any
	calls    int
	lastReq  domain.QueryRequest
	deadline bool
}

func (m *mockService) Query(ctx context.Context, req domain.QueryRequest) (domain.Reply, error) {
	m.calls++
	m.lastReq = req
	_, m.deadline = ctx.Deadline()
	if m.panicVal != nil {
		panic(m.panicVal)
	}
	return m.reply, m.err
}

type malformedErr struct{}

func (malformedErr) Error() string        { return "queryservice: decode response: invalid character" }
func (malformedErr) MalformedReply() bool { return true }

func newTestDispatcher(t *testing.T, svc QueryService, opts ...DispatcherOption) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(svc, zap.NewNop(), opts...)
	require.NoError(t, err)
	return d
}

func TestNewDispatcher_ValidatesDependencies(t *testing.T) {
	_, err := NewDispatcher(nil, zap.NewNop())
	require.Error(t, err)

	d, err := NewDispatcher(&mockService{}, nil)
	require.NoError(t, err)
	require.NotNil(t, d.logger)
}

func TestDispatch_ReplyVariants(t *testing.T) {
	cases := []struct {
		reply domain.Reply
		want  string
	}{
		{domain.AnswerReply("Hi"), "Hi"},
		{domain.ResultReply("42"), "42"},
		{domain.ServiceErrorReply("bad input"), "Error: bad input"},
		{domain.UnrecognizedReply(`{"foo":"bar"}`), `{"foo":"bar"}`},
	}
	for _, tc := range cases {
		svc := &mockService{reply: tc.reply}
		got := newTestDispatcher(t, svc).Dispatch(context.Background(), domain.NewQueryRequest("q"))
		require.Equal(t, tc.want, got)
		require.Equal(t, domain.QueryRequest{Query: "q", Mode: 1}, svc.lastReq)
	}
}

func TestDispatch_FailuresCollapseToConnectFailure(t *testing.T) {
	for _, svc := range []*mockService{
		{err: errors.New("dial tcp 127.0.0.1:8007: connect: connection refused")},
		{err: malformedErr{}},
		{panicVal: "boom"},
	} {
		got := newTestDispatcher(t, svc).Dispatch(context.Background(), domain.NewQueryRequest("q"))
		require.Equal(t, "Error: Could not connect to the server.", got)
	}
}

func TestDispatch_LogsFailureClassification(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d, err := NewDispatcher(&mockService{err: malformedErr{}}, zap.New(core))
	require.NoError(t, err)

	d.Dispatch(context.Background(), domain.NewQueryRequest("q"))

	entries := logs.FilterMessage("query exchange failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, string(ErrorMalformedReply), fields["code"])
	require.Equal(t, "undecodable_response", fields["reason"])
	require.NotEmpty(t, fields["request_id"])
}

func TestDispatch_ClassifiesErrors(t *testing.T) {
	d := newTestDispatcher(t, &mockService{err: errors.New("refused")})
	_, err := d.query(context.Background(), domain.NewQueryRequest("q"))
	var uerr *Error
	require.ErrorAs(t, err, &uerr)
	require.Equal(t, ErrorTransport, uerr.Code)

	d = newTestDispatcher(t, &mockService{panicVal: "boom"})
	_, err = d.query(context.Background(), domain.NewQueryRequest("q"))
	require.ErrorAs(t, err, &uerr)
	require.Equal(t, ErrorInternal, uerr.Code)
	require.Equal(t, "query_panic", uerr.Reason)
}

func TestDispatch_NoDeadlineByDefault(t *testing.T) {
	svc := &mockService{reply: domain.AnswerReply("ok")}
	newTestDispatcher(t, svc).Dispatch(context.Background(), domain.NewQueryRequest("q"))
	require.False(t, svc.deadline)

	svc = &mockService{reply: domain.AnswerReply("ok")}
	newTestDispatcher(t, svc, WithRequestTimeout(time.Minute)).Dispatch(context.Background(), domain.NewQueryRequest("q"))
	require.True(t, svc.deadline)
}

func TestError_Format(t *testing.T) {
	require.Equal(t, "usecase: TRANSPORT_ERROR (query_request_failed)", newError(ErrorTransport, "query_request_failed", nil).Error())
	wrapped := errors.New("refused")
	err := newError(ErrorTransport, "query_request_failed", wrapped)
	require.ErrorIs(t, err, wrapped)
	require.Contains(t, err.Error(), "refused")
}
