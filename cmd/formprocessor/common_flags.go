package main

import (
	"context"
	"fmt"
	"time"

	"github.com/marqusG/FormProcessor/db"
	"github.com/marqusG/FormProcessor/form"
	"github.com/marqusG/FormProcessor/upload"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/streamingfast/cli"
	"github.com/streamingfast/cli/sflags"
	"github.com/streamingfast/dstore"
	"github.com/streamingfast/shutter"
	"go.uber.org/zap"
)

// AddStorageFlags adds the flags of the commands writing uploaded files.
func AddStorageFlags(flags *pflag.FlagSet) {
	flags.Int("upload-concurrency", 4, "How many files of one upload batch are validated and written in parallel")
}

func loadFormConfig(cmd *cobra.Command) (*form.Config, error) {
	path := sflags.MustGetString(cmd, "config")
	if path == "" {
		zlog.Info("no form config provided, every table uses the default form settings")
		return form.DefaultConfig(), nil
	}

	config, err := form.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load form config: %w", err)
	}
	return config, nil
}

func newDBClient(dsn string) (*db.Client, error) {
	client, err := db.NewClient(dsn, zlog, tracer)
	if err != nil {
		return nil, fmt.Errorf("new db client: %w", err)
	}

	if err := client.PingContext(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return client, nil
}

func newStorer(cmd *cobra.Command, config *form.Config) (*upload.Storer, error) {
	storageURL := sflags.MustGetString(cmd, "storage-url")
	concurrency := sflags.MustGetInt(cmd, "upload-concurrency")
	cli.Ensure(concurrency > 0, "Flag --upload-concurrency must be greater than 0, got %d", concurrency)

	store, err := dstore.NewStore(storageURL, "", "", true)
	if err != nil {
		return nil, fmt.Errorf("new store %q: %w", storageURL, err)
	}

	return upload.NewStorer(store, config.RootTargetDir, concurrency, zlog), nil
}

type cliApplication struct {
	appCtx  context.Context
	shutter *shutter.Shutter
}

func newCLIApplication(ctx context.Context) *cliApplication {
	return &cliApplication{appCtx: ctx, shutter: shutter.New()}
}

func (a *cliApplication) WaitForTermination(logger *zap.Logger, unreadyPeriodAfterSignal, gracefulShutdownDelay time.Duration) error {
	// On any exit path, we synchronize the logger one last time
	defer func() {
		logger.Sync()
	}()

	signalHandler, isSignaled, _ := cli.SetupSignalHandler(unreadyPeriodAfterSignal, logger)
	select {
	case <-signalHandler:
		go a.shutter.Shutdown(nil)
	case <-a.shutter.Terminating():
		logger.Info("run terminating", zap.Bool("from_signal", isSignaled.Load()), zap.Bool("with_error", a.shutter.Err() != nil))
	}

	logger.Info("waiting for run termination")
	select {
	case <-a.shutter.Terminated():
	case <-time.After(gracefulShutdownDelay):
		logger.Warn("application did not terminate within graceful period of " + gracefulShutdownDelay.String() + ", forcing termination")
	}

	if err := a.shutter.Err(); err != nil {
		return err
	}

	logger.Info("run terminated gracefully")
	return nil
}
