// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/tinybank/api"
	"github.com/vechain/tinybank/genesis"
	"github.com/vechain/tinybank/health"
	"github.com/vechain/tinybank/log"
	"github.com/vechain/tinybank/metrics"
	"github.com/vechain/tinybank/runtime"
)

var (
	version   string
	gitCommit string
	release   = "dev"

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if release == "dev" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "TinyBank"
	app.Usage = "Solo staking ledger with a token, a bank and a managers quorum"
	app.Copyright = "2025 VeChain Foundation <https://vechain.org/>"
	app.Flags = []cli.Flag{
		dataDirFlag,
		persistFlag,
		cacheFlag,
		genesisFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiTimeoutFlag,
		apiLogsLimitFlag,
		enableAPILogsFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		enableAdminFlag,
		adminAddrFlag,
		onDemandFlag,
		blockIntervalFlag,
		verbosityFlag,
		jsonLogsFlag,
	}
	app.Action = defaultAction
	app.Commands = []cli.Command{
		{
			Name:   "dev-accounts",
			Usage:  "print the dev accounts and their roles in the dev genesis",
			Action: devAccountsAction,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	logLevel := initLogger(ctx)

	metricsEnabled := ctx.Bool(enableMetricsFlag.Name)
	if metricsEnabled {
		metrics.InitializePrometheusMetrics()
	}

	cfg, err := genesis.LoadConfig(ctx.String(genesisFlag.Name))
	if err != nil {
		return err
	}
	gene, err := genesis.New(cfg)
	if err != nil {
		return err
	}

	instanceDir, err := makeInstanceDir(ctx, gene)
	if err != nil {
		return err
	}
	mainDB, err := openMainDB(instanceDir, int(ctx.Uint64(cacheFlag.Name)))
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("closing main database...")
		if err := mainDB.Close(); err != nil {
			logger.Warn("failed to close main database", "err", err)
		}
	}()

	logDB, err := openLogDB(instanceDir)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("closing log database...")
		if err := logDB.Close(); err != nil {
			logger.Warn("failed to close log database", "err", err)
		}
	}()

	repo, events, err := gene.Setup(mainDB)
	if err != nil {
		return err
	}
	exitCtx := handleExitSignal()
	if err := syncLogDB(exitCtx, repo, logDB, events); err != nil {
		return err
	}

	onDemand := ctx.Bool(onDemandFlag.Name)
	interval := time.Duration(ctx.Uint64(blockIntervalFlag.Name)) * time.Second
	if !onDemand && interval <= 0 {
		return errors.New("block interval must be positive")
	}

	rt, err := runtime.New(mainDB, repo, runtime.Options{OnDemand: onDemand, Sink: logDB})
	if err != nil {
		return err
	}

	handler := api.New(rt, logDB, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   metricsEnabled,
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
	})
	// listeners opened before serving starts are released on early return
	var unserved []*server
	defer func() {
		for _, srv := range unserved {
			srv.Close()
		}
	}()

	apiSrv, err := newAPIServer(ctx.String(apiAddrFlag.Name), handler, time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond)
	if err != nil {
		return err
	}
	unserved = append(unserved, apiSrv)

	var metricsSrv *server
	if metricsEnabled {
		if metricsSrv, err = newMetricsServer(ctx.String(metricsAddrFlag.Name)); err != nil {
			return err
		}
		unserved = append(unserved, metricsSrv)
	}

	var adminSrv *server
	if ctx.Bool(enableAdminFlag.Name) {
		var maxBlockAge time.Duration
		if !onDemand {
			maxBlockAge = 3 * interval
		}
		if adminSrv, err = newAdminServer(ctx.String(adminAddrFlag.Name), logLevel, health.New(repo, maxBlockAge)); err != nil {
			return err
		}
		logger.Info("admin server started", "url", adminSrv.URL())
	}
	printStartupMessage(gene, rt, instanceDir, onDemand, interval, apiSrv, metricsSrv)
	unserved = nil

	group, groupCtx := errgroup.WithContext(exitCtx)
	group.Go(func() error {
		return apiSrv.Serve(groupCtx)
	})
	if metricsSrv != nil {
		group.Go(func() error {
			return metricsSrv.Serve(groupCtx)
		})
	}
	if adminSrv != nil {
		group.Go(func() error {
			return adminSrv.Serve(groupCtx)
		})
	}
	if !onDemand {
		group.Go(func() error {
			return packLoop(groupCtx, rt, interval)
		})
	}
	return group.Wait()
}

func devAccountsAction(*cli.Context) error {
	for i, acc := range genesis.DevAccounts() {
		role := "account"
		switch {
		case i == 0:
			role = "deployer"
		case i <= 5:
			role = "manager"
		}
		fmt.Printf("%d\t%v\t%v\t%v\n", i, acc.Address, hexutil.Encode(crypto.FromECDSA(acc.PrivateKey)), role)
	}
	return nil
}
