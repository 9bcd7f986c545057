package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	. "github.com/streamingfast/cli"
)

var describeCmd = Command(describeE,
	"describe <dsn> <table>",
	"Prints the columns of a table along with the form control each one is rendered with",
	ExactArgs(2),
)

func describeE(cmd *cobra.Command, args []string) error {
	client, err := newDBClient(args[0])
	if err != nil {
		return err
	}
	defer client.Close()

	table, err := client.LoadTable(cmd.Context(), args[1])
	if err != nil {
		return fmt.Errorf("load table: %w", err)
	}

	config, err := loadFormConfig(cmd)
	if err != nil {
		return err
	}
	tableConfig := config.Table(table.Name())

	fmt.Printf("Table %s.%s (primary key %s)\n\n", table.Schema(), table.Name(), table.PrimaryColumn().Name())

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "COLUMN\tTYPE\tNULLABLE\tCONTROL")
	for _, column := range table.Columns() {
		control := column.Kind().String()
		switch {
		case tableConfig.IsIgnored(column.Name()):
			control = "ignored"
		case tableConfig.IsHidden(column.Name()):
			control = "hidden"
		case len(tableConfig.Lists[column.Name()]) > 0:
			control = "list"
		case tableConfig.IsSelect(column.Name()):
			control = "select"
		case tableConfig.IsRadio(column.Name()):
			control = "radios"
		case tableConfig.IsUpload(column.Name()):
			control = "upload"
		}

		fmt.Fprintf(writer, "%s\t%s\t%t\t%s\n", column.Name(), column.DatabaseTypeName(), column.Nullable(), control)
	}

	return writer.Flush()
}
