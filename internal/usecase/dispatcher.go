package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agentic-surfer/internal/domain"
)

// QueryService answers one query per call.
type QueryService interface {
	Query(ctx context.Context, req domain.QueryRequest) (domain.Reply, error)
}

type malformedReplier interface {
	MalformedReply() bool
}

// Dispatcher runs a single exchange with the query service and always
// produces the agent text to append, whether the exchange succeeded or not.
type Dispatcher struct {
	svc     QueryService
	logger  *zap.Logger
	timeout time.Duration
}

type DispatcherOption func(*Dispatcher)

// WithRequestTimeout bounds each exchange. Zero, the default, means an
// exchange waits for as long as the service takes.
func WithRequestTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

func NewDispatcher(svc QueryService, logger *zap.Logger, opts ...DispatcherOption) (*Dispatcher, error) {
	if svc == nil {
		return nil, errors.New("usecase: query service must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{svc: svc, logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch sends req and returns the agent text for the transcript. Every
// failure, including a panic inside the service, collapses to
// domain.ConnectFailureText.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.QueryRequest) string {
	log := d.logger.With(zap.String("request_id", newUUID()))
	started := time.Now()

	reply, err := d.query(ctx, req)
	if err != nil {
		var uerr *Error
		if errors.As(err, &uerr) {
			log = log.With(zap.String("code", string(uerr.Code)), zap.String("reason", uerr.Reason))
		}
		log.Warn("query exchange failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return domain.ConnectFailureText
	}

	log.Debug("query exchange completed",
		zap.Stringer("reply_kind", reply.Kind),
		zap.Duration("elapsed", time.Since(started)),
	)
	return reply.AgentText()
}

func (d *Dispatcher) query(ctx context.Context, req domain.QueryRequest) (reply domain.Reply, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply = domain.Reply{}
			err = newError(ErrorInternal, "query_panic", fmt.Errorf("%v", r))
		}
	}()

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	reply, err = d.svc.Query(ctx, req)
	if err != nil {
		if isMalformedReply(err) {
			return domain.Reply{}, newError(ErrorMalformedReply, "undecodable_response", err)
		}
		return domain.Reply{}, newError(ErrorTransport, "query_request_failed", err)
	}
	return reply, nil
}

func isMalformedReply(err error) bool {
	var m malformedReplier
	if !errors.As(err, &m) {
		return false
	}
	return m.MalformedReply()
}

var newUUID = func() string {
	return uuid.NewString()
}
