package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/infobase-backend/internal/data/aggregates"
	"github.com/yungbote/infobase-backend/internal/platform/dbctx"
)

// InjectedTxRunner wraps a real runner and injects failures around the body.
// FailAfterBody is returned from inside the inner transaction once the body
// has succeeded, so every write the body made is rolled back. With a nil
// Inner the body runs without a transaction.
type InjectedTxRunner struct {
	Inner aggregates.TxRunner

	FailBegin     error
	FailAfterBody error

	mu            sync.Mutex
	BeginCalls    int
	BodyCalls     int
	RollbackCalls int
	CommitCalls   int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) count(field *int) {
	r.mu.Lock()
	*field++
	r.mu.Unlock()
}

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.count(&r.BeginCalls)
	if r.FailBegin != nil {
		return r.FailBegin
	}
	body := func(dbc dbctx.Context) error {
		if fn != nil {
			r.count(&r.BodyCalls)
			if err := fn(dbc); err != nil {
				return err
			}
		}
		return r.FailAfterBody
	}

	var err error
	if r.Inner != nil {
		err = r.Inner.InTx(ctx, body)
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}
	if err != nil {
		r.count(&r.RollbackCalls)
		return err
	}
	r.count(&r.CommitCalls)
	return nil
}
