/*
Package main
File: serve.go
Description: The "serve" command. Runs the HTTP API and the real-time hub,
the optional auto-tick heartbeat that advances the calendar on its own, and
SIGHUP hot-reload of the content tables.
*/

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/everforgeworks/reel-empire/internal/api"
	"github.com/everforgeworks/reel-empire/internal/config"
	"github.com/everforgeworks/reel-empire/internal/game"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the studio HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, settings)
			if err != nil {
				return err
			}
			defer sess.Close()
			return serve(cmd.Context(), sess)
		},
	}
	cmd.Flags().String(config.KeyAddr, ":8080", "listen address")
	cmd.Flags().Duration(config.KeyTickInterval, 0, "advance one month every interval (0 disables)")
	return cmd
}

func serve(parent context.Context, sess *session) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := sess.log

	// 1. Real-time hub
	hub := api.NewHub(log.Named("hub"))
	go hub.Run(ctx)

	// 2. API server
	var journal api.Journal
	if sess.journal != nil {
		journal = sess.journal
	}
	srv := api.NewServer(sess.game, hub, journal, log.Named("api"))

	// 3. Heartbeat
	if every := sess.settings.TickInterval; every > 0 {
		go heartbeat(ctx, srv, every, sess)
	}

	// 4. Hot reload of content tables
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGHUP)
		defer signal.Stop(sigChan)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigChan:
				path := sess.settings.Content
				if path == "" {
					log.Info("SIGHUP ignored: running on built-in content")
					continue
				}
				content, err := game.LoadContent(path)
				if err != nil {
					log.Error("content reload failed", "path", path, "error", err)
					continue
				}
				if err := srv.ReloadContent(content); err != nil {
					log.Error("content reload refused", "path", path, "error", err)
				}
			}
		}
	}()

	// 5. Listen
	httpServer := &http.Server{
		Addr:              sess.settings.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server live", "addr", httpServer.Addr, "studio", sess.settings.StudioName)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// heartbeat advances the game every interval until the studio goes bankrupt or ctx ends.
func heartbeat(ctx context.Context, srv *api.Server, every time.Duration, sess *session) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := srv.AdvanceTurn(ctx); err != nil {
				if errors.Is(err, game.ErrBankrupt) {
					sess.log.Warn("heartbeat stopped", "reason", err)
					return
				}
				sess.log.Error("heartbeat turn failed", "error", err)
			}
		}
	}
}
