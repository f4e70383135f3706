/*
Package main
File: main.go
Description: CLI entry point. "serve" runs the HTTP/WebSocket studio server,
"simulate" plays a headless autopilot session and prints the monthly books.
*/

package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/everforgeworks/reel-empire/internal/config"
	"github.com/everforgeworks/reel-empire/internal/game"
	"github.com/everforgeworks/reel-empire/internal/ledger"
)

var settings = config.New()

var rootCmd = &cobra.Command{
	Use:   "reelempire",
	Short: "Reel Empire film studio simulation",
	Long: `Reel Empire is a turn-based film studio simulation.
Each turn is one month: the market refreshes scripts and talent, rivals compete
for them, productions wrap, releases earn at the box office and salaries are paid.`,
	SilenceUsage: true,
}

func main() {
	addPersistentFlags()
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(simulateCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags() {
	pf := rootCmd.PersistentFlags()
	pf.String(config.KeyConfig, "", "settings file (yaml)")
	pf.String(config.KeyContent, "", "content tables file (defaults to the built-in tables)")
	pf.String(config.KeyDB, "", "sqlite journal path (empty disables the journal)")
	pf.String(config.KeyLogLevel, "info", "log level (trace, debug, info, warn, error)")
	pf.Int64(config.KeySeed, 0, "random seed (0 seeds from the clock)")
	pf.String(config.KeyStudioName, "Reel Empire Pictures", "name of the player's studio")
	pf.String(config.KeyExpiryPolicy, string(game.ExpiryRetire), "what happens to talent when a contract ends (retire, return_to_market)")
}

// session is everything a command needs to play.
type session struct {
	settings *config.Settings
	log      hclog.Logger
	game     *game.Game
	journal  *ledger.Store // nil when disabled
}

// openSession resolves settings, builds the root logger and starts a new game.
func openSession(cmd *cobra.Command, v *viper.Viper) (*session, error) {
	// 1. Settings
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	s, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	// 2. Logger
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "reelempire",
		Level:  s.LogLevel,
		Output: os.Stderr,
	})

	// 3. Content and game
	content, err := loadContent(s.Content)
	if err != nil {
		return nil, err
	}
	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Debug("session seed", "seed", seed)
	g := game.NewGame(content, rand.New(rand.NewSource(seed)), logger.Named("game"), s.GameOptions())

	// 4. Optional journal
	sess := &session{settings: s, log: logger, game: g}
	if s.DB != "" {
		store, err := ledger.Open(s.DB, logger.Named("ledger"))
		if err != nil {
			return nil, err
		}
		sess.journal = store
	}
	return sess, nil
}

func (s *session) Close() {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.log.Warn("close journal", "error", err)
		}
	}
}

func loadContent(path string) (*game.Content, error) {
	if path == "" {
		return game.DefaultContent()
	}
	return game.LoadContent(path)
}
