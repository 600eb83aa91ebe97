// internal/app/runner.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/spl-transfer/internal/blockchain"
	"github.com/rovshanmuradov/spl-transfer/internal/blockchain/solbc"
	"github.com/rovshanmuradov/spl-transfer/internal/config"
	"github.com/rovshanmuradov/spl-transfer/internal/export"
	"github.com/rovshanmuradov/spl-transfer/internal/logger"
	"github.com/rovshanmuradov/spl-transfer/internal/transfer"
	"github.com/rovshanmuradov/spl-transfer/internal/types"
	"github.com/rovshanmuradov/spl-transfer/internal/ui"
)

// Options are the command line settings of one run.
type Options struct {
	ConfigPath string
	AssumeYes  bool
	DryRun     bool
	Debug      bool
	ExitDelay  time.Duration

	Stdin  io.Reader
	Stdout io.Writer
}

// ConfirmFunc asks the user to approve rows; ui.ErrAborted means no.
type ConfirmFunc func(ctx context.Context, rows []ui.SummaryRow) error

// ClientFactory opens the RPC collaborator for cfg.
type ClientFactory func(cfg *config.Config, logger *zap.Logger) blockchain.Client

type Runner struct {
	opts       Options
	logger     *zap.Logger
	runID      string
	confirm    ConfirmFunc
	newClient  ClientFactory
	shutdownCh chan os.Signal
}

// NewRunner NewRunner: принимает параметры запуска, логгер создаётся по ним же
func NewRunner(opts Options) *Runner {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	r := &Runner{
		opts:       opts,
		shutdownCh: make(chan os.Signal, 1),
		newClient: func(cfg *config.Config, l *zap.Logger) blockchain.Client {
			return solbc.NewClient(cfg.RPCHTTP, cfg.CommitmentType(), l)
		},
	}
	r.confirm = func(ctx context.Context, rows []ui.SummaryRow) error {
		return ui.Confirm(ctx, rows, r.opts.Stdin, r.opts.Stdout)
	}

	// Консольный логгер до загрузки конфига
	r.logger = r.buildLogger(logger.Options{})
	return r
}

// WithConfirm replaces the interactive prompt.
func (r *Runner) WithConfirm(fn ConfirmFunc) *Runner {
	r.confirm = fn
	return r
}

// WithClientFactory replaces the RPC client constructor.
func (r *Runner) WithClientFactory(fn ClientFactory) *Runner {
	r.newClient = fn
	return r
}

// Logger returns the current logger; it is rebuilt once the config is loaded.
func (r *Runner) Logger() *zap.Logger {
	return r.logger
}

func (r *Runner) buildLogger(extra logger.Options) *zap.Logger {
	opts := logger.DefaultOptions()
	opts.Console = r.opts.Stdout
	opts.Color = os.Getenv("NO_COLOR") == ""
	opts.Debug = r.opts.Debug || extra.Debug
	opts.LogFile = extra.LogFile

	l, err := logger.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return zap.NewNop()
	}
	return l
}

// Run loads the config, asks for confirmation and performs the transfer.
// A declined prompt is not an error.
func (r *Runner) Run(ctx context.Context) error {
	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(r.shutdownCh)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case sig := <-r.shutdownCh:
			r.logger.Info("signal received: " + sig.String())
			cancel()
		case <-runCtx.Done():
		}
	}()

	cfg, err := config.LoadConfig(r.opts.ConfigPath)
	if err != nil {
		return err
	}

	r.logger, r.runID = logger.WithRun(r.buildLogger(logger.Options{
		Debug:   cfg.DebugLogging,
		LogFile: cfg.LogFile,
	}))
	r.logger.Debug("config loaded",
		zap.String("path", r.opts.ConfigPath),
		zap.String("rpc", cfg.MaskRPCForLogging()),
		zap.String("commitment", cfg.Commitment))

	r.logger.Info(fmt.Sprintf("transfer %s tokens of %s to %s from %s",
		cfg.TransferAmount, cfg.Mint, cfg.Receiver, cfg.Sender.PublicKey))

	if !r.opts.AssumeYes {
		if err := r.confirm(runCtx, ui.TransferSummary(cfg, r.opts.DryRun)); err != nil {
			if errors.Is(err, ui.ErrAborted) {
				r.logger.Info("transfer aborted, nothing sent")
				return nil
			}
			return types.ConfigError("confirm", err)
		}
	}

	service := transfer.NewService(r.newClient(cfg, r.logger), r.logger)
	result, err := service.Execute(runCtx, transfer.RequestFromConfig(cfg), transfer.ExecuteOptions{
		DryRun: r.opts.DryRun,
	})
	if err != nil {
		return err
	}

	link := cfg.ExplorerURL + result.Signature.String()
	if result.Sent {
		r.logger.Info("tx sent: " + link)
	}

	if cfg.ReceiptFile != "" {
		receipt := r.receipt(cfg, result)
		if result.Sent {
			receipt.ExplorerLink = link
		}
		// Транзакция уже отправлена, ошибка записи квитанции не фатальна
		if err := export.NewReceiptWriter(r.logger).Append(cfg.ReceiptFile, receipt); err != nil {
			r.logger.Warn("failed to write receipt", zap.String("file", cfg.ReceiptFile), zap.Error(err))
		}
	}
	return nil
}

func (r *Runner) receipt(cfg *config.Config, result *transfer.Result) export.Receipt {
	return export.Receipt{
		Timestamp:    time.Now(),
		RunID:        r.runID,
		Signature:    result.Signature.String(),
		Sent:         result.Sent,
		Sender:       cfg.Sender.PublicKey.String(),
		Receiver:     cfg.Receiver.String(),
		Mint:         cfg.Mint.String(),
		Amount:       cfg.TransferAmount.String(),
		BaseUnits:    result.Plan.Amount,
		Decimals:     result.Plan.Decimals,
		CreatedATA:   result.Plan.CreatesReceiverATA,
		ComputeUnits: result.Plan.Budget.Units,
		UnitPrice:    result.Plan.Budget.UnitPrice,
	}
}

// Fail logs err with its kind and waits ExitDelay so the message stays visible.
func (r *Runner) Fail(err error) {
	kind := types.KindOf(err)
	if kind == "" {
		kind = "unknown"
	}
	r.logger.Error("transfer failed", zap.String("kind", string(kind)), zap.Error(err))
	r.Shutdown()

	if r.opts.ExitDelay > 0 {
		time.Sleep(r.opts.ExitDelay)
	}
}

// Shutdown flushes the logger.
func (r *Runner) Shutdown() {
	if err := logger.Sync(r.logger); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to sync logger during shutdown: %v\n", err)
	}
}
