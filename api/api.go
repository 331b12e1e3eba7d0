// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/tinybank/api/bank"
	"github.com/vechain/tinybank/api/blocks"
	"github.com/vechain/tinybank/api/events"
	"github.com/vechain/tinybank/api/token"
	"github.com/vechain/tinybank/api/transactions"
	"github.com/vechain/tinybank/log"
	"github.com/vechain/tinybank/logdb"
	"github.com/vechain/tinybank/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	EnableReqLogger bool
	EnableMetrics   bool
	LogsLimit       uint64
}

// New return api router
func New(rt *runtime.Runtime, logDB *logdb.LogDB, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	token.New(rt).
		Mount(router, "/token")
	bank.New(rt).
		Mount(router, "/bank")
	transactions.New(rt).
		Mount(router, "/transactions")
	blocks.New(rt).
		Mount(router, "/blocks")
	events.New(logDB, opts.LogsLimit).
		Mount(router, "/logs/event")

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", "x-genesis-id"}),
		handlers.ExposedHeaders([]string{"x-genesis-id", requestIDHeader}),
	)(handler)

	genesisID := rt.Repo().GenesisBlock().ID().String()
	handler = withGenesisID(handler, genesisID)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}
	return handler.ServeHTTP
}

// withGenesisID tags every response with the genesis id, and rejects requests
// addressed to another ledger.
func withGenesisID(h http.Handler, genesisID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actual := r.Header.Get("x-genesis-id"); actual != "" && !strings.EqualFold(actual, genesisID) {
			w.Header().Set("x-genesis-id", genesisID)
			http.Error(w, "genesis id mismatch", http.StatusForbidden)
			return
		}
		w.Header().Set("x-genesis-id", genesisID)
		h.ServeHTTP(w, r)
	})
}
