package main

import (
	"fmt"
	"os"

	"github.com/anwesha-dev/campusflow-ai/core"
	"github.com/anwesha-dev/campusflow-ai/core/auth"
	"github.com/anwesha-dev/campusflow-ai/core/fee"
	logsvc "github.com/anwesha-dev/campusflow-ai/services/logger"
	"github.com/anwesha-dev/campusflow-ai/storage/database/inmem"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger(conf), conf)
	logger.Enable(!conf.Debug)

	// set up ledger
	seed, err := inmemdb.LoadSeed(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading seed: %v", err), err)
	}
	db, err := inmemdb.Open(seed)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening ledger: %v", err), err)
	}
	dir, err := auth.NewDirectory(seed.Users...)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading accounts: %v", err), err)
	}

	// start CLI
	cli := commandLine{
		dir: dir,
		svc: fee.NewService(inmemdb.NewFeeRepository(db), conf, logger),
		out: os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
