// Package main: wallet service.
//
// The service keeps no keys: secret seeds travel in each request and are used to sign that request's transaction
// only. Plain payments are recorded in the configured database so that history and analytics can be served.
package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tarancss/dwallet/lib/block"
	"github.com/tarancss/dwallet/lib/config"
	"github.com/tarancss/dwallet/lib/logging"
	"github.com/tarancss/dwallet/lib/msg/broker"
	"github.com/tarancss/dwallet/lib/store/db"
	"github.com/tarancss/dwallet/lib/util"
	"github.com/tarancss/dwallet/wallet"
)

func main() {
	// get command line flags
	confPath := flag.String("c", "", "flag to get configuration from json file")
	monitor := flag.Bool("m", false, "flag to expose Prometheus metrics at http://localhost:9100/metrics")
	flag.Parse()

	logging.Setup("")

	// extract configuration
	conf, err := config.ExtractConfiguration(*confPath)
	if err != nil {
		fatal("cannot read configuration", err)
	}

	if err = conf.Validate(); err != nil {
		fatal("invalid configuration", err)
	}

	logging.Setup(conf.LogLevel)
	slog.Info("configuration loaded", "conf", conf.String())

	// connect to database
	dbConn, err := db.New(conf.DBType, conf.DBConn, conf.DBName)
	if err != nil {
		fatal("cannot connect to database", err)
	}

	slog.Info("connected to database", "type", conf.DBType)

	// load all ledger networks
	blocks, err := block.Init(conf.Nets)
	if err != nil {
		fatal("cannot load ledger clients", err)
	}

	// check the operator credential, if any, without ever logging it
	if conf.Secret != "" {
		addr, errS := blocks[conf.DefaultNet].Address(conf.Secret)
		if errS != nil {
			fatal("invalid STELLAR_SECRET_KEY", errS)
		}

		slog.Info("operator account", "publicKey", util.Short(addr))
	}

	// load Prometheus monitor
	if *monitor {
		go func() {
			slog.Info("serving metrics API", "addr", ":9100")

			h := http.NewServeMux()
			h.Handle("/metrics", promhttp.Handler())

			s := &http.Server{Addr: ":9100", Handler: h, ReadHeaderTimeout: 15 * time.Second}
			if errM := s.ListenAndServe(); errM != nil {
				slog.Error("metrics API stopped", "error", errM)
			}
		}()
	}

	// load message broker
	mb, err := broker.New(conf.MbType, conf.MbConn)
	if err != nil {
		fatal("cannot connect to message broker", err)
	}

	// create wallet service
	w := wallet.New(dbConn, mb, blocks, conf.DefaultNet, conf.Origin)

	// capture CTRL+C or docker's SIGTERM for gracious exit
	finish := make(chan struct{})

	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigchan
		slog.Info("shutting down", "signal", sig.String())
		// do last actions and wait for all write operations to end
		w.Stop()
		close(finish)
	}()

	// init RESTful API and wait for its return
	if err = w.Init(conf.RestfulEndpoint, conf.Port, conf.SSLPort, conf.SSLCert, conf.SSLKey); err != nil {
		fatal("API server failed", err)
	}

	<-finish
	slog.Info("wallet stopped")
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
