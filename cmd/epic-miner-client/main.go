// Command epic-miner-client runs the stratum client controller against
// a single configured pool endpoint. The actual mining worker is out
// of scope for this repository (§1); this entrypoint wires a minimal
// stand-in that logs job lifecycle events instead of computing
// proof-of-work.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/epicminer/stratctl/internal/buildinfo"
	"github.com/epicminer/stratctl/internal/config"
	"github.com/epicminer/stratctl/internal/controller"
	"github.com/epicminer/stratctl/internal/logger"
	"github.com/epicminer/stratctl/internal/mailbox"
	"github.com/epicminer/stratctl/internal/protocol"
	"github.com/epicminer/stratctl/internal/stats"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var logLevel string

	cmd := &cobra.Command{
		Use:     "epic-miner-client",
		Short:   "Stratum client controller for an Epic-family mining pool",
		Version: buildinfo.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, logLevel)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to epic-miner.toml (default: search standard locations)")
	cmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "override the configured log level (debug, info, warn, error)")

	return cmd
}

func run(configPath, logLevelOverride string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level := cfg.Logging.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	log := logger.New(level)

	algo, err := protocol.ParseAlgorithm(cfg.Server.Algorithm)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	st := stats.New(algo.Token())

	fromMiner := mailbox.New[controller.ClientMessage]()
	toMiner := mailbox.New[controller.MinerMessage]()

	ctl := controller.New(controller.Config{
		Endpoint:  cfg.Server.URL,
		TLS:       cfg.Server.TLS,
		Login:     cfg.Server.Login,
		Password:  cfg.Server.Password,
		Algorithm: algo,
		Agent:     buildinfo.Agent(),
	}, st, log, fromMiner, toMiner)

	go runStandInMiner(toMiner, fromMiner, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("main", "shutdown signal received")
		fromMiner.Send(controller.Shutdown())
	}()

	log.Infof("main", "connecting to %s (tls=%v algorithm=%s)", cfg.Server.URL, cfg.Server.TLS, algo.Token())
	ctl.Run()
	log.Info("main", "controller stopped")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// runStandInMiner logs the job lifecycle messages the controller
// delivers. A real worker would instead search for a solution and post
// it back via controller.FoundSolution.
func runStandInMiner(fromController *mailbox.Mailbox[controller.MinerMessage], toController *mailbox.Mailbox[controller.ClientMessage], log *logger.Logger) {
	for {
		msg, ok := fromController.Recv()
		if !ok {
			return
		}
		switch {
		case msg.IsReceivedJob():
			height, jobID, diff, _ := msg.Job()
			log.Infof("miner", "received job: height=%d job_id=%d difficulty=%d", height, jobID, diff)
		case msg.IsReceivedSeed():
			log.Debugf("miner", "received seed data")
		case msg.IsStopJob():
			log.Infof("miner", "stopping current job")
		}
	}
}
