package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/amp-labs/dataapi-go/api"
	"github.com/amp-labs/dataapi-go/events"
	"github.com/amp-labs/dataapi-go/retry"
	"github.com/amp-labs/dataapi-go/timeouts"
)

// runParams carries everything one command execution needs through the
// timeout and retry machinery.
type runParams struct {
	path       string
	cmd        *api.Command
	manager    *timeouts.Manager
	idempotent bool
	admin      bool
	policy     retry.Policy
	keyspace   string
	collection string
	ledger     *retry.Ledger

	// requestID is set by callers that correlate further events of their
	// own with the command's lifecycle; empty means run assigns one.
	requestID string
}

// run executes one logical command: it builds the retry orchestrator for the
// command's family, drives attempts through the timeout manager, and emits
// the lifecycle events.
func (c *Client) run(ctx context.Context, p runParams) (*api.Response, error) {
	requestID := p.requestID
	if requestID == "" {
		requestID = newRequestID()
	}

	info := timeouts.RequestInfo{RequestID: requestID, Command: p.cmd.Name}

	base := retry.Base{
		SafelyRetryable: p.idempotent,
		Timeouts:        p.manager.Initial(),
		RequestID:       requestID,
	}

	adapter := &familyAdapter{
		admin:   p.admin,
		slot:    c.policySlot(p.admin),
		sinks:   c.sinks,
		command: p.cmd.Name,
	}

	orch := retry.New(adapter, base, p.policy, p.ledger)
	start := time.Now()

	out, err := retry.Run(ctx, orch, p.manager, info,
		func(ctx context.Context, budget time.Duration, mkErr timeouts.ErrorFactory) (*api.Response, error) {
			c.sinks.CommandStarted(ctx, events.CommandStarted{
				RequestID:  requestID,
				Command:    p.cmd.Name,
				Keyspace:   p.keyspace,
				Collection: p.collection,
				Budget:     budget,
				Attempt:    uint(orch.Attempts()),
			})

			return c.execute(ctx, p, budget, mkErr, requestID)
		})
	if err != nil {
		c.sinks.CommandFailed(ctx, events.CommandFailed{
			RequestID: requestID,
			Command:   p.cmd.Name,
			Duration:  time.Since(start),
			Err:       err,
			TimedOut:  adapter.IsTimeout(err),
		})

		return nil, err
	}

	c.sinks.CommandSucceeded(ctx, events.CommandSucceeded{
		RequestID: requestID,
		Command:   p.cmd.Name,
		Duration:  time.Since(start),
		Attempts:  uint(orch.Attempts()) + 1,
	})

	return out, nil
}

// execute performs a single HTTP attempt of the command within the given
// budget. A deadline that elapses here, and not in the surrounding context,
// surfaces as the family's timeout error built by mkErr.
func (c *Client) execute(
	ctx context.Context,
	p runParams,
	budget time.Duration,
	mkErr timeouts.ErrorFactory,
	requestID string,
) (*api.Response, error) {
	ctx, span := c.tracer.Start(ctx, "dataapi."+p.cmd.Name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.operation", p.cmd.Name),
			attribute.String("db.namespace", p.keyspace),
			attribute.String("db.collection", p.collection),
			attribute.String("request.id", requestID),
		))
	defer span.End()

	attemptCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	body, err := json.Marshal(p.cmd)
	if err != nil {
		return nil, fmt.Errorf("encoding %s command: %w", p.cmd.Name, err)
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost,
		c.endpoint+p.path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	token, err := c.token.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving token: %w", err)
	}

	req.Header.Set("Token", token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	rsp, err := c.httpClient.Do(req)
	if err != nil {
		if timedOut(attemptCtx, ctx) {
			terr := c.timeoutError(p.admin, mkErr)
			recordError(span, terr)

			return nil, terr
		}

		recordError(span, err)

		return nil, err
	}

	defer rsp.Body.Close()

	raw, err := io.ReadAll(rsp.Body)
	if err != nil {
		if timedOut(attemptCtx, ctx) {
			terr := c.timeoutError(p.admin, mkErr)
			recordError(span, terr)

			return nil, terr
		}

		recordError(span, err)

		return nil, err
	}

	var envelope api.Response

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &envelope); err != nil {
			if rsp.StatusCode < http.StatusBadRequest {
				decodeErr := fmt.Errorf("decoding %s response: %w", p.cmd.Name, err)
				recordError(span, decodeErr)

				return nil, decodeErr
			}

			// A failing status with an unparseable body still classifies by
			// status alone.
			envelope = api.Response{}
		}
	}

	if len(envelope.Errors) > 0 || rsp.StatusCode >= http.StatusBadRequest {
		apiErr := &api.Error{
			Command:     p.cmd.Name,
			RequestID:   requestID,
			StatusCode:  rsp.StatusCode,
			Descriptors: envelope.Errors,
		}
		recordError(span, apiErr)

		return nil, apiErr
	}

	span.SetStatus(codes.Ok, "")

	return &envelope, nil
}

// timedOut reports whether the attempt deadline elapsed on its own, as
// opposed to the caller's context being done.
func timedOut(attemptCtx, parent context.Context) bool {
	return errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && parent.Err() == nil
}

func (c *Client) timeoutError(admin bool, mkErr timeouts.ErrorFactory) error {
	if admin {
		return &api.AdminTimeoutError{Timeout: mkErr()}
	}

	return &api.TimeoutError{Timeout: mkErr()}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
