package verificationscheduler

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

type requestKind uint8

const (
	requestKindTransaction requestKind = iota
	requestKindBlock
)

var requestKindStrings = map[requestKind]string{
	requestKindTransaction: "transaction",
	requestKindBlock:       "block",
}

func (kind requestKind) String() string {
	return requestKindStrings[kind]
}

// Request is a verification submitted to a Scheduler
type Request struct {
	kind        requestKind
	ctx         context.Context
	transaction *externalapi.DomainTransaction
	block       *externalapi.DomainBlock
	submitTime  time.Time

	// queueElement is guarded by the lock of the queue holding the request
	queueElement *list.Element
	stopWatching func() bool

	done        chan struct{}
	resolveOnce sync.Once
	outcome     *externalapi.VerificationOutcome
	err         error
}

func newRequest(ctx context.Context, kind requestKind) *Request {
	return &Request{
		kind:       kind,
		ctx:        ctx,
		submitTime: time.Now(),
		done:       make(chan struct{}),
	}
}

// Wait blocks until the request is resolved or until ctx is done. Giving up
// on waiting does not cancel the request.
func (r *Request) Wait(ctx context.Context) (*externalapi.VerificationOutcome, error) {
	select {
	case <-r.done:
		return r.outcome, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done returns a channel that is closed once the request is resolved
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// resolve sets the result of the request. It returns false if the request
// was already resolved.
func (r *Request) resolve(outcome *externalapi.VerificationOutcome, err error) bool {
	resolved := false
	r.resolveOnce.Do(func() {
		r.outcome = outcome
		r.err = err
		close(r.done)
		resolved = true
	})
	return resolved
}
