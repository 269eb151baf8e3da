// Package main implements the flockwave-validate CLI tool.
package main

import (
	"context"

	"github.com/scott-cotton/cli"
)

const description = `flockwave-validate checks Flockwave messages against the schemas of the
protocol.

Without file arguments, every *.json file of the examples directory is
validated and a single verdict is printed. With file arguments, one line is
printed per file. Use "-" to read a message from standard input. A file
holding a JSON array is treated as a batch of messages unless -single is
given.

Examples:
  flockwave-validate
  flockwave-validate request.json response.json
  flockwave-validate -schema definitions.json -pointer /uavStatusInfo status.json
  flockwave-validate -backend gojsonschema -output json messages/*.json
  flockwave-validate -stream recorded-log.json
  cat message.json | flockwave-validate -
  flockwave-validate schema response_body.json
  flockwave-validate codes -severity critical`

func main() {
	cli.MainContext(context.Background(), MainCommand())
}

// MainCommand returns the root command of the tool.
func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}

	return cli.NewCommandAt(&cfg.Main, "flockwave-validate").
		WithSynopsis("flockwave-validate [opts] [file...] | [opts] command [opts]").
		WithDescription(description).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return validateMain(cfg, cc, args)
		}).
		WithSubs(
			SchemaCommand(cfg),
			CodesCommand(cfg))
}

// SchemaCommand prints resolved schemas.
func SchemaCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &SchemaConfig{main: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("schema").
		WithAliases("s").
		WithSynopsis("schema [opts] [resource [pointer]]").
		WithDescription("print a resolved schema as JSON").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return printSchema(cfg, cc, args)
		})
	cfg.Cmd = cmd
	return cmd
}

// CodesCommand lists the error codes of the protocol.
func CodesCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CodesConfig{main: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("codes").
		WithAliases("c").
		WithSynopsis("codes [opts]").
		WithDescription("list the Flockwave error codes").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return listCodes(cfg, cc, args)
		})
	cfg.Cmd = cmd
	return cmd
}
