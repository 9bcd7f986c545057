package main

import (
	"fmt"

	"github.com/marqusG/FormProcessor/db"
	"github.com/marqusG/FormProcessor/form"
	"github.com/spf13/cobra"
	. "github.com/streamingfast/cli"
)

var renderCmd = Command(renderE,
	"render <dsn> <table> [<id>]",
	"Prints the add form of a table, or the edit form of a row when an id is given",
	RangeArgs(2, 3),
)

func renderE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := newDBClient(args[0])
	if err != nil {
		return err
	}
	defer client.Close()

	config, err := loadFormConfig(cmd)
	if err != nil {
		return err
	}

	req := &form.Request{}
	if len(args) > 2 {
		var row db.Row
		req.Table, row, err = client.SelectRow(ctx, args[1], args[2])
		if err != nil {
			return fmt.Errorf("select row %q: %w", args[2], err)
		}
		req.ItemID = args[2]
		req.Item = row
	} else {
		req.Table, err = client.LoadTable(ctx, args[1])
		if err != nil {
			return fmt.Errorf("load table: %w", err)
		}
	}

	out, err := form.NewBuilder(config, client, "", zlog).Build(ctx, req)
	if err != nil {
		return err
	}

	fmt.Println(out)
	return nil
}
