package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ringnet/ringd/domain/consensus"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/verificationscheduler"
	"github.com/ringnet/ringd/infrastructure/config"
	"github.com/ringnet/ringd/infrastructure/db/chainstatedb"
	"github.com/ringnet/ringd/infrastructure/db/database/ldb"
	"github.com/ringnet/ringd/infrastructure/logger"
	"github.com/ringnet/ringd/infrastructure/os/signal"
	"github.com/ringnet/ringd/util/profiling"
	"github.com/ringnet/ringd/version"
)

const databaseCacheSizeMiB = 64

func main() {
	err := ringverifyMain()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func ringverifyMain() error {
	cfg, blockFiles, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}
	if cfg.ShowVersion {
		fmt.Printf("ringverify version %s\n", version.Version())
		return nil
	}
	if len(blockFiles) == 0 {
		return errors.New("usage: ringverify [options] <block file>...")
	}

	err = logger.InitLog(cfg.LogFile(), cfg.ErrLogFile(), true)
	if err != nil {
		return err
	}
	defer logger.BackendLog.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	interrupt := signal.InterruptListener()
	spawn("ringverifyMain-interrupt", func() {
		select {
		case <-interrupt:
			cancel()
		case <-ctx.Done():
		}
	})

	db, err := ldb.NewLevelDB(cfg.DataDir(), databaseCacheSizeMiB)
	if err != nil {
		return err
	}
	defer db.Close()
	chainState, err := chainstatedb.New(db, chainstatedb.DefaultExpectedKeyImages)
	if err != nil {
		return err
	}

	consensusConfig := cfg.ConsensusConfig()
	consensusConfig.KeyImageIndex = chainState
	consensusConfig.OutputIndex = chainState
	consensusConfig.ChainStateLoader = chainState
	consensusConfig.ChainStateWriters = []model.ChainStateWriter{chainState}
	c, err := consensus.NewFactory().NewConsensus(consensusConfig)
	if err != nil {
		return err
	}
	log.Infof("ringverify version %s", version.Version())
	log.Infof("Verifying on %s from height %d", cfg.ActiveNetParams.Name, c.ChainContext().NextHeight())

	registry := prometheus.NewRegistry()
	if cfg.Profile != "" {
		profiling.Start(cfg.Profile, registry, log)
	}

	scheduler, err := verificationscheduler.New(c, cfg.SchedulerConfig(), registry)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	summary := &verificationSummary{}
	for _, blockFile := range blockFiles {
		blocks, err := readBlockFile(blockFile)
		if err != nil {
			return err
		}
		log.Infof("Read %d blocks from %s", len(blocks), blockFile)

		err = verifyBlocks(ctx, scheduler, blocks, os.Stdout, summary)
		if err != nil {
			return err
		}
	}

	log.Infof("Done: %s. Chain top is at height %d", summary, c.ChainContext().Height)
	if summary.rejected > 0 {
		return errors.Errorf("%d blocks were rejected", summary.rejected)
	}
	return nil
}
