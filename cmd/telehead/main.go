package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/hashicorp/go-hclog"
	"github.com/juju/errors"

	"github.com/panelware/telehead/internal/head"
	"github.com/panelware/telehead/internal/store"
	"github.com/panelware/telehead/internal/ws"
	tele_config "github.com/panelware/telehead/tele/config"
	"github.com/panelware/telehead/tele/mqtt"
)

func main() {
	flagConfig := flag.String("config", "telehead.hcl", "")
	flag.Parse()

	log := hclog.New(&hclog.LoggerOptions{Name: "telehead", Level: hclog.Info})

	cfg, err := tele_config.ReadFile(*flagConfig)
	if err != nil {
		log.Error("config", "err", errors.ErrorStack(err))
		os.Exit(1)
	}
	if cfg.LogDebug {
		log.SetLevel(hclog.Debug)
	}

	tlsconf, err := mqtt.TLSFromCaFile(cfg.TLSCaFile)
	if err != nil {
		log.Error("tls", "err", errors.ErrorStack(err))
		os.Exit(1)
	}

	db, err := store.Open(cfg.StorePath, log.Named("store"))
	if err != nil {
		log.Error("store", "err", errors.ErrorStack(err))
		os.Exit(1)
	}
	defer db.Close()

	var audit head.Auditor
	if cfg.AuditPath != "" {
		alog, err := store.OpenAudit(cfg.AuditPath, log.Named("audit"))
		if err != nil {
			log.Error("audit", "err", errors.ErrorStack(err))
			os.Exit(1)
		}
		defer alog.Close()
		audit = alog
	}

	hub := ws.NewHub(log.Named("ws"))
	defer hub.Close()

	var h *head.Head
	conn, err := mqtt.NewConn(mqtt.Options{
		BrokerURL:         cfg.BrokerURL,
		ClientPrefix:      cfg.ClientPrefix,
		Username:          cfg.Username,
		Password:          cfg.Password,
		TLS:               tlsconf,
		KeepaliveSec:      uint16(cfg.KeepaliveSec),
		NetworkTimeout:    cfg.NetworkTimeout(),
		ReconnectMin:      time.Duration(cfg.ReconnectMinSec) * time.Second,
		ReconnectMax:      time.Duration(cfg.ReconnectMaxSec) * time.Second,
		ReconnectAttempts: cfg.ReconnectAttempts,
		OnMessage:         func(topic string, payload []byte) { h.OnMessage(topic, payload) },
		Log:               log.Named("mqtt"),
	})
	if err != nil {
		log.Error("mqtt", "err", errors.ErrorStack(err))
		os.Exit(1)
	}
	h = head.New(cfg, log.Named("head"), conn, head.NewMapDirectory(cfg.Devices), db, audit, hub)

	ctx := context.Background()
	if err = conn.Connect(ctx); err != nil {
		log.Error("connect", "err", errors.ErrorStack(err))
		os.Exit(1)
	}
	if err = h.Subscribe(); err != nil {
		log.Error("subscribe", "err", errors.ErrorStack(err))
		os.Exit(1)
	}

	if cfg.NotifyListen != "" {
		go func() {
			log.Info("notify listening", "addr", cfg.NotifyListen)
			if err := http.ListenAndServe(cfg.NotifyListen, hub); err != nil {
				log.Error("notify listen", "err", err)
			}
		}()
	}

	fatalch := make(chan struct{})
	go func() {
		for tr := range conn.Events() {
			log.Info("transport", "transition", tr.String())
			if tr.To == mqtt.StateGaveUp {
				// manual intervention required, let the supervisor restart us
				close(fatalch)
				return
			}
		}
	}()

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	log.Info("running", "client_id", conn.ClientID(), "devices", len(cfg.Devices))

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigch:
		log.Info("shutdown", "signal", sig.String())
	case <-fatalch:
		log.Error("reconnect attempts exhausted")
		_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
		_ = conn.Close()
		os.Exit(1)
	}
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	_ = conn.Close()
}
