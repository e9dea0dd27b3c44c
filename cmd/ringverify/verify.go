package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/domain/consensus/utils/consensushashing"
	"github.com/ringnet/ringd/domain/verificationscheduler"
)

type verificationSummary struct {
	accepted int
	rejected int
	deferred int
}

func (summary *verificationSummary) String() string {
	return fmt.Sprintf("%d accepted, %d rejected, %d deferred", summary.accepted, summary.rejected, summary.deferred)
}

type submittedBlock struct {
	block   *externalapi.DomainBlock
	request *verificationscheduler.Request
}

func blockHeight(block *externalapi.DomainBlock) uint64 {
	if block.MinerTransaction == nil || len(block.MinerTransaction.Inputs) == 0 ||
		block.MinerTransaction.Inputs[0] == nil {
		return 0
	}
	return block.MinerTransaction.Inputs[0].Height
}

// blockID returns the hash of block, or a placeholder for blocks too
// malformed to hash
func blockID(block *externalapi.DomainBlock) string {
	if block.Header == nil || block.Header.PrevHash == nil {
		return "<malformed>"
	}
	hash, err := consensushashing.BlockHash(block)
	if err != nil {
		return "<malformed>"
	}
	return hash.String()
}

// verifyBlocks submits blocks to scheduler in order and writes the outcome
// of each one to out. When the scheduler is overloaded it waits for the
// oldest submitted block before submitting more.
func verifyBlocks(ctx context.Context, scheduler *verificationscheduler.Scheduler,
	blocks []*externalapi.DomainBlock, out io.Writer, summary *verificationSummary) error {

	var inFlight []*submittedBlock
	report := func() error {
		submitted := inFlight[0]
		inFlight = inFlight[1:]
		outcome, err := submitted.request.Wait(ctx)
		if err != nil {
			return err
		}
		switch outcome.Status {
		case externalapi.StatusAccepted:
			summary.accepted++
		case externalapi.StatusRejected:
			summary.rejected++
		case externalapi.StatusDeferred:
			summary.deferred++
		}
		_, err = fmt.Fprintf(out, "%d %s %s\n", blockHeight(submitted.block),
			blockID(submitted.block), outcome)
		return err
	}

	for _, block := range blocks {
		for {
			request, err := scheduler.SubmitBlock(ctx, block)
			if err == nil {
				inFlight = append(inFlight, &submittedBlock{block: block, request: request})
				break
			}
			if ruleerrors.Classify(err) != ruleerrors.CategoryOverloaded || len(inFlight) == 0 {
				return err
			}
			log.Debugf("Verification queue is full, waiting for block %s",
				blockID(inFlight[0].block))
			err = report()
			if err != nil {
				return err
			}
		}
	}
	for len(inFlight) > 0 {
		err := report()
		if err != nil {
			return err
		}
	}
	return nil
}
