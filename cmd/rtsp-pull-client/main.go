package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/jawher/mow.cli"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/bilbercode/rtsp-pull-client/internal/config"
	"github.com/bilbercode/rtsp-pull-client/internal/rtsp"
)

const (
	appName = "rtsp-pull-client"
	appDesc = "pulls RTSP/RTP media from one or more cameras"
)

func main() {
	app := cli.App(appName, appDesc)

	configPath := app.String(cli.StringOpt{
		Name:   "c config",
		Desc:   "path to the yaml configuration file",
		EnvVar: "RTSP_PULL_CLIENT_CONFIG",
		Value:  "configs/default.yaml",
	})

	app.Action = func() {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.WithError(err).Panic("failed to load configuration")
		}

		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = log.InfoLevel
		}
		log.SetLevel(level)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			log.WithField("signal", sig).Info("received signal, shutting down")
			cancel()
		}()

		group, ctx := errgroup.WithContext(ctx)
		for _, candidateURL := range cfg.URLList {
			candidateURL := candidateURL
			group.Go(func() error {
				return pull(ctx, cfg, candidateURL)
			})
		}

		if err := group.Wait(); err != nil && ctx.Err() == nil {
			log.WithError(err).Panic("stopped")
		}
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Panic("failed to execute application")
	}
}

// pull drives a single Session's full lifecycle against one candidate
// URL: Start, Play, then the non-blocking media loop until the context
// is cancelled or the session fails.
func pull(ctx context.Context, cfg config.Config, url string) error {
	sessionCfg := rtsp.Config{
		URLList:        []string{url},
		ConnectTimeout: cfg.ConnectTimeout(),
		RequestTimeout: cfg.RequestTimeout(),
		RecvBufferSize: cfg.RecvBufferSize,
	}

	sink := rtsp.NewCountingSink()
	session := rtsp.NewSession(sessionCfg, nil, sink)
	entry := log.WithField("url", url).WithField("session", session.ID())

	if err := session.Start(ctx); err != nil {
		entry.WithError(err).Error("failed to start session")
		return err
	}
	if err := session.Play(ctx); err != nil {
		entry.WithError(err).Error("failed to start playback")
		return err
	}

	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := session.Stop(stopCtx); err != nil {
			entry.WithError(err).Warn("teardown failed")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch session.ProcessMediaPacket() {
		case rtsp.ProcessFailure:
			return rtsp.ErrSessionClosed
		case rtsp.ProcessTryAgain:
			time.Sleep(10 * time.Millisecond)
		case rtsp.ProcessSuccess:
			// loop immediately, more may be queued
		}
	}
}
