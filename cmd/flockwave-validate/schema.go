package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/scott-cotton/cli"

	"github.com/collmot/flockwave-spec/pkg/validator"
	"github.com/collmot/flockwave-spec/schema"
)

func printSchema(cfg *SchemaConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Cmd.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) > 2 {
		return fmt.Errorf("%w: expected at most a resource and a pointer", cli.ErrUsage)
	}

	s, err := cfg.main.settings()
	if err != nil {
		return err
	}
	configureLogging(s)

	path, pointer := s.Schema, s.Pointer
	if len(args) > 0 {
		path, pointer = args[0], ""
	}
	if len(args) > 1 {
		pointer = args[1]
	}

	opts, err := s.Options()
	if err != nil {
		return err
	}
	v, err := validator.New(opts...)
	if err != nil {
		return err
	}
	resolved, err := v.Schema(path, pointer)
	if err != nil {
		return err
	}
	return writeSchema(cc.Out, resolved, cfg.Compact)
}

func writeSchema(w io.Writer, s schema.Schema, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(s)
}
