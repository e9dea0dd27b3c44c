package verificationscheduler

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
)

// Scheduler verifies transactions and blocks on a pool of workers. Blocks
// are validated in isolation concurrently and committed one at a time, in
// height order, by a single commit goroutine.
type Scheduler struct {
	consensus externalapi.Consensus
	config    Config
	metrics   *metrics

	queue   *requestQueue
	commits chan *pendingBlock

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stopped   atomic.Bool
	halted    atomic.Bool

	workersWaitGroup sync.WaitGroup
	commitDone       chan struct{}
}

type pendingBlock struct {
	request   *Request
	candidate *externalapi.BlockCandidate
}

// New creates a Scheduler on top of consensus. Metrics are registered on
// registerer unless it is nil.
func New(consensus externalapi.Consensus, config Config, registerer prometheus.Registerer) (*Scheduler, error) {
	err := config.validate()
	if err != nil {
		return nil, err
	}
	config = config.withDefaults()

	s := &Scheduler{
		consensus:  consensus,
		config:     config,
		metrics:    newMetrics(),
		queue:      newRequestQueue(config.QueueCapacity),
		commits:    make(chan *pendingBlock, config.Workers),
		commitDone: make(chan struct{}),
	}
	if registerer != nil {
		err := s.metrics.register(registerer)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Start spawns the workers and the commit goroutine. Requests submitted
// before Start wait in the queue.
func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		if s.stopped.Load() {
			return
		}
		s.started.Store(true)
		log.Infof("Starting verification scheduler with %d workers", s.config.Workers)

		s.workersWaitGroup.Add(s.config.Workers)
		for i := 0; i < s.config.Workers; i++ {
			spawn("verificationscheduler.worker", s.worker)
		}
		spawn("verificationscheduler.commitLoop", s.commitLoop)
	})
}

// Stop stops accepting requests and waits for in-flight work to finish.
// Requests that were still queued resolve with ErrSchedulerStopped and blocks
// that were waiting for their parent resolve as deferred.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		log.Infof("Stopping verification scheduler")
		s.stopped.Store(true)
		s.queue.close()

		if !s.started.Load() {
			for {
				request, ok := s.queue.dequeue()
				if !ok {
					break
				}
				s.resolve(request, nil, errors.WithStack(ErrSchedulerStopped))
			}
			return
		}

		s.workersWaitGroup.Wait()
		close(s.commits)
		<-s.commitDone
		log.Infof("Verification scheduler stopped")
	})
}

// IsHalted returns whether a StateError stopped the scheduler
func (s *Scheduler) IsHalted() bool {
	return s.halted.Load()
}

// SubmitTransaction queues transaction for verification against the chain
// context current when a worker picks it up. Cancelling ctx before a worker
// picks the request up resolves it with the context error and frees its
// queue slot.
func (s *Scheduler) SubmitTransaction(ctx context.Context, transaction *externalapi.DomainTransaction) (*Request, error) {
	if ctx == nil {
		return nil, errors.WithStack(ErrNilContext)
	}
	request := newRequest(ctx, requestKindTransaction)
	request.transaction = transaction
	return request, s.submit(request)
}

// SubmitBlock queues block for verification. An accepted block is committed
// on top of the chain.
func (s *Scheduler) SubmitBlock(ctx context.Context, block *externalapi.DomainBlock) (*Request, error) {
	if ctx == nil {
		return nil, errors.WithStack(ErrNilContext)
	}
	request := newRequest(ctx, requestKindBlock)
	request.block = block
	return request, s.submit(request)
}

func (s *Scheduler) submit(request *Request) error {
	if s.halted.Load() {
		return errors.WithStack(ErrSchedulerHalted)
	}
	if s.stopped.Load() {
		return errors.WithStack(ErrSchedulerStopped)
	}
	request.stopWatching = context.AfterFunc(request.ctx, func() { s.dropCancelled(request) })
	err := s.queue.enqueue(request)
	if err != nil {
		request.stopWatching()
		return err
	}
	s.metrics.submitted.WithLabelValues(request.kind.String()).Inc()
	s.metrics.queueDepth.Set(float64(s.queue.length()))
	return nil
}

// dropCancelled removes request from the queue once its context is done,
// unless a worker already took it
func (s *Scheduler) dropCancelled(request *Request) {
	if !s.queue.remove(request) {
		return
	}
	s.metrics.queueDepth.Set(float64(s.queue.length()))
	s.resolve(request, nil, request.ctx.Err())
}

func (s *Scheduler) resolve(request *Request, outcome *externalapi.VerificationOutcome, err error) {
	if request.resolve(outcome, err) {
		s.metrics.observeResolved(request, outcome, err)
	}
}

// halt stops the scheduler from verifying anything else. Only the first
// error is logged.
func (s *Scheduler) halt(err error) {
	if s.halted.CompareAndSwap(false, true) {
		log.Criticalf("Verification scheduler halted: %+v", err)
	}
}

// preflight resolves request without verifying it if it can no longer be
// served. It returns false in that case.
func (s *Scheduler) preflight(request *Request) bool {
	if request.stopWatching != nil {
		request.stopWatching()
	}
	if s.stopped.Load() {
		s.resolve(request, nil, errors.WithStack(ErrSchedulerStopped))
		return false
	}
	if s.halted.Load() {
		s.resolve(request, nil, errors.WithStack(ErrSchedulerHalted))
		return false
	}
	if err := request.ctx.Err(); err != nil {
		s.resolve(request, nil, err)
		return false
	}
	return true
}

func (s *Scheduler) worker() {
	defer s.workersWaitGroup.Done()

	for {
		request, ok := s.queue.dequeue()
		if !ok {
			return
		}
		s.metrics.queueDepth.Set(float64(s.queue.length()))
		if !s.preflight(request) {
			continue
		}

		if request.kind == requestKindBlock {
			s.verifyBlock(request)
			continue
		}

		batch, heldBlock := s.collectTransactionBatch(request)
		s.verifyTransactions(batch)
		if heldBlock != nil {
			s.verifyBlock(heldBlock)
		}
	}
}

// collectTransactionBatch drains up to BatchSize-1 more transaction requests
// that are immediately available. A block found while draining is returned
// separately so that it is verified after the batch.
func (s *Scheduler) collectTransactionBatch(first *Request) ([]*Request, *Request) {
	batch := []*Request{first}
	for len(batch) < s.config.BatchSize {
		request, ok := s.queue.tryDequeue()
		if !ok {
			break
		}
		if !s.preflight(request) {
			continue
		}
		if request.kind == requestKindBlock {
			return batch, request
		}
		batch = append(batch, request)
	}
	return batch, nil
}

func (s *Scheduler) verifyTransactions(batch []*Request) {
	transactions := make([]*externalapi.DomainTransaction, len(batch))
	for i, request := range batch {
		transactions[i] = request.transaction
	}

	outcomes, err := s.consensus.VerifyTransactions(transactions)
	if err != nil {
		s.fail(err, batch...)
		return
	}
	for i, request := range batch {
		s.resolve(request, outcomes[i], nil)
	}
}

func (s *Scheduler) verifyBlock(request *Request) {
	candidate, err := s.consensus.ValidateBlockInIsolation(request.block, s.consensus.ChainContext())
	switch ruleerrors.Classify(err) {
	case ruleerrors.CategoryNone:
		s.commits <- &pendingBlock{request: request, candidate: candidate}
	case ruleerrors.CategoryRejection, ruleerrors.CategoryDeferred:
		outcome, _ := ruleerrors.NewVerificationOutcome(err, nil)
		s.resolve(request, outcome, nil)
	default:
		s.fail(err, request)
	}
}

// fail resolves requests with err, an error that carries no verdict. Only a
// StateError halts the scheduler.
func (s *Scheduler) fail(err error, requests ...*Request) {
	if ruleerrors.Classify(err) == ruleerrors.CategoryState {
		s.halt(err)
	}
	for _, request := range requests {
		s.resolve(request, nil, err)
	}
}

// commitLoop inserts verified blocks in height order. Blocks above the next
// height wait for their parent, up to MaxPendingBlocks of them.
func (s *Scheduler) commitLoop() {
	defer close(s.commitDone)

	pendingByHeight := make(map[uint64][]*pendingBlock)
	pendingCount := 0
	for block := range s.commits {
		nextHeight := s.consensus.ChainContext().NextHeight()
		if block.candidate.Height > nextHeight && !s.halted.Load() {
			if pendingCount >= s.config.MaxPendingBlocks {
				s.resolveMissingParent(block)
				continue
			}
			pendingByHeight[block.candidate.Height] = append(pendingByHeight[block.candidate.Height], block)
			pendingCount++
			s.metrics.pendingBlocks.Set(float64(pendingCount))
			continue
		}

		s.insert(block)
		for !s.halted.Load() {
			ready := popReady(pendingByHeight, s.consensus.ChainContext().NextHeight())
			if len(ready) == 0 {
				break
			}
			pendingCount -= len(ready)
			for _, readyBlock := range ready {
				s.insert(readyBlock)
			}
		}
		s.metrics.pendingBlocks.Set(float64(pendingCount))
	}

	for _, blocks := range pendingByHeight {
		for _, block := range blocks {
			if s.halted.Load() {
				s.resolve(block.request, nil, errors.WithStack(ErrSchedulerHalted))
				continue
			}
			s.resolveMissingParent(block)
		}
	}
	s.metrics.pendingBlocks.Set(0)
}

// popReady removes and returns every pending block at or below nextHeight.
// Blocks below nextHeight are stale and get rejected when inserted.
func popReady(pendingByHeight map[uint64][]*pendingBlock, nextHeight uint64) []*pendingBlock {
	var ready []*pendingBlock
	for height, blocks := range pendingByHeight {
		if height <= nextHeight {
			ready = append(ready, blocks...)
			delete(pendingByHeight, height)
		}
	}
	return ready
}

func (s *Scheduler) insert(block *pendingBlock) {
	if s.halted.Load() {
		s.resolve(block.request, nil, errors.WithStack(ErrSchedulerHalted))
		return
	}
	outcome, err := s.consensus.InsertBlockCandidate(block.candidate)
	if err != nil {
		s.fail(err, block.request)
		return
	}
	s.resolve(block.request, outcome, nil)
}

func (s *Scheduler) resolveMissingParent(block *pendingBlock) {
	outcome, _ := ruleerrors.NewVerificationOutcome(errors.Wrapf(ruleerrors.ErrMissingParent,
		"block %s at height %d does not extend the committed chain", block.candidate.Hash, block.candidate.Height), nil)
	s.resolve(block.request, outcome, nil)
}
