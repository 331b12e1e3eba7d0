// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/elastic/gosigar"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/tinybank/admin"
	"github.com/vechain/tinybank/chain"
	"github.com/vechain/tinybank/genesis"
	"github.com/vechain/tinybank/health"
	"github.com/vechain/tinybank/log"
	"github.com/vechain/tinybank/logdb"
	"github.com/vechain/tinybank/lvldb"
	"github.com/vechain/tinybank/metrics"
	"github.com/vechain/tinybank/runtime"
	"github.com/vechain/tinybank/tx"
)

const (
	requestBodyLimit = 200 * 1024
	minCacheSizeMB   = 128
)

// initLogger installs the default logger. The returned level can be changed at runtime by the admin server.
func initLogger(ctx *cli.Context) *slog.LevelVar {
	level := new(slog.LevelVar)
	level.Set(log.FromLegacyLevel(int(ctx.Uint64(verbosityFlag.Name))))
	log.SetDefault(log.NewLogger(newLogHandler(os.Stderr, ctx.Bool(jsonLogsFlag.Name), level)))
	return level
}

// newLogHandler writes logfmt, unless JSON is asked for or the output is not a terminal.
func newLogHandler(w io.Writer, jsonLogs bool, level *slog.LevelVar) slog.Handler {
	if jsonLogs {
		return log.JSONHandlerWithLevel(w, level)
	}
	if f, ok := w.(*os.File); ok && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return log.JSONHandlerWithLevel(w, level)
	}
	return log.LogfmtHandlerWithLevel(w, level)
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".tinybank")
	}
	return ""
}

// makeInstanceDir returns the per-genesis directory, or an empty path when nothing is persisted.
func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	if !ctx.Bool(persistFlag.Name) {
		return "", nil
	}
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	return instanceDir(dataDir, gene)
}

func instanceDir(dataDir string, gene *genesis.Genesis) (string, error) {
	dir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", dir)
	}
	return dir, nil
}

// normalizeCacheSize bounds the cache to [minCacheSizeMB, half of the physical ram].
func normalizeCacheSize(sizeMB int) int {
	if sizeMB < minCacheSizeMB {
		sizeMB = minCacheSizeMB
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem", "err", err)
	} else {
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func openMainDB(dir string, cacheMB int) (*lvldb.LevelDB, error) {
	if dir == "" {
		return lvldb.NewMem()
	}
	db, err := lvldb.New(filepath.Join(dir, "main.db"), lvldb.Options{
		CacheSize:              normalizeCacheSize(cacheMB),
		OpenFilesCacheCapacity: 64,
		SyncBulk:               true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open main database")
	}
	return db, nil
}

func openLogDB(dir string) (*logdb.LogDB, error) {
	if dir == "" {
		return logdb.NewMem()
	}
	db, err := logdb.New(filepath.Join(dir, "logs.db"))
	if err != nil {
		return nil, errors.Wrap(err, "open log database")
	}
	return db, nil
}

// syncLogDB indexes the genesis events, then replays the events of sealed blocks the
// log db missed, for example when the process stopped between sealing a block and
// indexing it. Writes are idempotent.
func syncLogDB(ctx context.Context, repo *chain.Repository, logDB *logdb.LogDB, genesisEvents tx.Events) error {
	if len(genesisEvents) > 0 {
		if err := logDB.Write(repo.GenesisBlock(), tx.Receipts{{Events: genesisEvents}}); err != nil {
			return errors.Wrap(err, "write genesis events")
		}
	}

	newest, ok, err := logDB.NewestBlockNumber(ctx)
	if err != nil {
		return errors.Wrap(err, "get newest indexed block")
	}
	start := uint32(1) // block 0 is covered by the genesis events
	if ok && newest >= start {
		// blocks without events leave no rows
		start = newest
	}
	best := repo.BestBlock().Number
	if start > best {
		return nil
	}
	logger.Debug("syncing log db", "from", start, "to", best)

	bar := pb.New64(int64(best)).
		Set64(int64(start - 1)).
		SetMaxWidth(90).
		Start()
	defer func() { bar.NotPrint = true }()

	for num := start; num <= best; num++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		b, err := repo.GetBlock(num)
		if err != nil {
			return errors.Wrapf(err, "get block #%d", num)
		}
		receipts, err := repo.GetReceipts(b)
		if err != nil {
			return err
		}
		if err := logDB.Write(b, receipts); err != nil {
			return errors.Wrapf(err, "write events of block #%d", num)
		}
		bar.Add64(1)
	}
	bar.Finish()
	return nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

type server struct {
	srv      *http.Server
	listener net.Listener
}

// URL returns the root url of the server.
func (s *server) URL() string {
	return "http://" + s.listener.Addr().String() + "/"
}

// Close releases the listener of a server that never served.
func (s *server) Close() error {
	return s.listener.Close()
}

// Serve serves until ctx is done, then shuts the server down gracefully.
func (s *server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

func newAPIServer(addr string, handler http.Handler, timeout time.Duration) (*server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	if timeout > 0 {
		handler = http.TimeoutHandler(handler, timeout, "request timeout")
	}
	handler = limitRequestBody(handler)
	return &server{
		srv:      &http.Server{Handler: handler, ReadHeaderTimeout: time.Second},
		listener: listener,
	}, nil
}

func limitRequestBody(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, requestBodyLimit)
		h.ServeHTTP(w, r)
	})
}

func newMetricsServer(addr string) (*server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen metrics API addr [%v]", addr)
	}
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	return &server{
		srv:      &http.Server{Handler: handlers.CompressHandler(router), ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second},
		listener: listener,
	}, nil
}

func newAdminServer(addr string, logLevel *slog.LevelVar, h *health.Health) (*server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen admin API addr [%v]", addr)
	}
	return &server{
		srv:      &http.Server{Handler: admin.HTTPHandler(logLevel, h), ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second},
		listener: listener,
	}, nil
}

func printStartupMessage(
	gene *genesis.Genesis,
	rt *runtime.Runtime,
	dataDir string,
	onDemand bool,
	interval time.Duration,
	apiSrv *server,
	metricsSrv *server,
) {
	best := rt.Repo().BestBlock()
	mode := "on-demand"
	if !onDemand {
		mode = fmt.Sprintf("interval %v", interval)
	}
	if dataDir == "" {
		dataDir = "Memory"
	}
	metricsURL := "Disabled"
	if metricsSrv != nil {
		metricsURL = metricsSrv.URL() + "metrics"
	}

	fmt.Printf(`Starting %v
    Network      [ %v %v ]
    Best block   [ %v #%v @%v ]
    Mode         [ %v ]
    Data dir     [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
`,
		fullVersion(),
		gene.Name(), gene.ID(),
		best.ID(), best.Number, time.Unix(int64(best.Timestamp), 0),
		mode,
		dataDir,
		apiSrv.URL(),
		metricsURL,
	)
}
