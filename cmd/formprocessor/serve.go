package main

import (
	"fmt"
	"time"

	"github.com/marqusG/FormProcessor/processor"
	"github.com/marqusG/FormProcessor/server"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	. "github.com/streamingfast/cli"
	"github.com/streamingfast/cli/sflags"
	"go.uber.org/zap"
)

var serveCmd = Command(serveE,
	"serve <dsn>",
	"Serves the forms and listings of the configured tables",
	Description(`
		Serves over HTTP the listing, add, edit and delete pages of every table found in the
		form config. Without --config, every table of the database schema is served with the
		default form settings. Uploaded files are written to --storage-url and served back under '/files/'.

		The DSN accepts the 'psql', 'postgres', 'pgx', 'mysql', 'clickhouse' and 'sqlite' schemes,
		environment variables in it are expanded.
	`),
	ExactArgs(1),
	Flags(func(flags *pflag.FlagSet) {
		AddStorageFlags(flags)

		flags.String("listen-addr", ":8080", "Address the HTTP server listens on")
		flags.Duration("stats-log-each", 30*time.Second, "How often save statistics are logged, 0 disables them")
	}),
	OnCommandErrorLogAndExit(zlog),
)

func serveE(cmd *cobra.Command, args []string) error {
	app := newCLIApplication(cmd.Context())

	processor.RegisterMetrics()

	config, err := loadFormConfig(cmd)
	if err != nil {
		return err
	}

	client, err := newDBClient(args[0])
	if err != nil {
		return err
	}

	if len(config.Tables) == 0 {
		names, err := client.ListTables(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			return fmt.Errorf("no table found in %s, nothing to serve", client.GetIdentifier())
		}
		config.AddTables(names...)
	}

	for _, table := range config.TableNames() {
		if _, err := client.LoadTable(cmd.Context(), table); err != nil {
			return fmt.Errorf("configured table %q: %w", table, err)
		}
	}
	zlog.Info("loaded configured tables", zap.Object("db", client), zap.String("tables", client.GetAvailableTables()))

	storer, err := newStorer(cmd, config)
	if err != nil {
		return err
	}

	stats := processor.NewStats(zlog)
	if each := sflags.MustGetDuration(cmd, "stats-log-each"); each > 0 {
		stats.Start(each)
	}

	proc := processor.New(client, storer, config, stats, zlog, tracer)
	srv := server.New(sflags.MustGetString(cmd, "listen-addr"), client, proc, storer, config, zlog, tracer)

	app.shutter.OnTerminating(func(err error) {
		srv.Shutdown(err)
		stats.Close()
	})
	srv.OnTerminated(func(err error) {
		if err := client.Close(); err != nil {
			zlog.Warn("unable to close database client", zap.Error(err))
		}
		app.shutter.Shutdown(err)
	})

	go srv.Run()

	return app.WaitForTermination(zlog, 0*time.Second, 30*time.Second)
}
