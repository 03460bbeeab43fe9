// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"reflect"
	"strconv"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/lessonctl/internal/api"
	"github.com/staranto/lessonctl/internal/attrs"
	"github.com/staranto/lessonctl/internal/meta"
	"github.com/staranto/lessonctl/internal/output"
	"github.com/staranto/lessonctl/internal/session"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr lessonctl-<subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "lessonctl-"+subcmd)
			c.Stdout = stdout(cmd)
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// DumpSchemaIfRequested prints the attribute paths of t when --schema is
// set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema(stdout(cmd), t)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs. The global transform spec is applied at output.
func BuildAttrs(cmd *cli.Command, defaults ...string) (attrs.AttrList, error) {
	var al attrs.AttrList
	for _, d := range defaults {
		if err := al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err := al.Set(extras); err != nil {
			return nil, fmt.Errorf("--attrs: %w", err)
		}
	}
	return al, nil
}

// GetMeta returns the meta.Meta stored in the command's Metadata. Lookup
// walks up to the root so nested subcommands see it too. If missing it
// returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil {
		return meta.Meta{}
	}
	for _, c := range cmd.Lineage() {
		if c.Metadata == nil {
			continue
		}
		if m, ok := c.Metadata["meta"].(meta.Meta); ok {
			return m
		}
	}
	return meta.Meta{}
}

// NewClient builds an API client for the command's --api flag with the
// stored credentials for that server.
func NewClient(cmd *cli.Command) (*api.Client, error) {
	base := cmd.String("api")

	store := GetMeta(cmd).Store
	if store == nil {
		fs, err := session.NewFileStore(base)
		if err != nil {
			return nil, err
		}
		store = fs
	}

	return api.New(base, session.New(store),
		api.WithLoginRequired(func(err error) {
			log.WithError(err).Warn("stored credentials cleared")
		}),
	)
}

// ClassFilter reads --level and --letter.
func ClassFilter(cmd *cli.Command) api.ClassFilter {
	var f api.ClassFilter
	if cmd.IsSet("level") && cmd.Int("level") != 0 {
		level := cmd.Int("level")
		f.Level = &level
	}
	f.Letter = cmd.String("letter")
	return f
}

// Emit marshals v and passes it to the common output routine.
func Emit(cmd *cli.Command, v any, al attrs.AttrList, parent string) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return output.SliceDiceSpit(raw, al, cmd, parent, stdout(cmd))
}

// ArgID parses the numeric ID given as the first positional argument.
func ArgID(cmd *cli.Command, what string) (int64, error) {
	arg := cmd.Args().First()
	if arg == "" {
		return 0, fmt.Errorf("%s ID is required", what)
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s ID %q", what, arg)
	}
	return id, nil
}

func stdout(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

func stdin(cmd *cli.Command) io.Reader {
	if in := GetMeta(cmd).Stdin; in != nil {
		return in
	}
	return os.Stdin
}

// QueryCommandBuilder is a helper that constructs a cli.Command for query
// subcommands using a consistent pattern. The builder automatically wires
// metadata, adds the api/tldr/schema flags, applies global flags, and sets
// up validators.
type QueryCommandBuilder struct {
	Name string
	// Namespace keys the command's config file section. It defaults to Name.
	Namespace string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Commands  []*cli.Command
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	ns := qcb.Namespace
	if ns == "" {
		ns = qcb.Name
	}
	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata: map[string]any{
			"meta": qcb.Meta,
		},
		Flags: append(qcb.Flags, append([]cli.Flag{
			NewAPIFlag(ns),
			tldrFlag,
			schemaFlag,
		}, NewGlobalFlags(ns)...)...),
		Commands: qcb.Commands,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: qcb.Action,
	}
}

// QueryActionRunner[T] encapsulates the common query action pattern for all
// query subcommands. It handles the short-circuit checks, attrs and output,
// with the data fetching provided by FetchFn.
type QueryActionRunner[T any] struct {
	CommandName  string
	DefaultAttrs []string
	// Parent is the gjson path of the rows inside the payload.
	Parent string
	// SchemaType is what --schema describes. It defaults to T and must be
	// set when Parent is, so the paths are relative to the rows.
	SchemaType reflect.Type
	FetchFn    func(context.Context, *cli.Command, *api.Client) (T, error)
}

// Run executes the query action with the provided context and command.
func (qar *QueryActionRunner[T]) Run(
	ctx context.Context,
	cmd *cli.Command,
) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, qar.CommandName) {
		return nil
	}
	schema := qar.SchemaType
	if schema == nil {
		schema = reflect.TypeFor[T]()
	}
	if DumpSchemaIfRequested(cmd, schema) {
		return nil
	}

	al, err := BuildAttrs(cmd, qar.DefaultAttrs...)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al.String())

	client, err := NewClient(cmd)
	if err != nil {
		return err
	}

	results, err := qar.FetchFn(ctx, cmd, client)
	if err != nil {
		return err
	}

	return Emit(cmd, results, al, qar.Parent)
}
