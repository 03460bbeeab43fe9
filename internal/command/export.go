// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/lessonctl/internal/api"
	"github.com/staranto/lessonctl/internal/aws"
	"github.com/staranto/lessonctl/internal/meta"
)

// ExportCommandAction downloads the student statistics file, writes it
// locally and optionally uploads it to S3. With --out - the file is written
// to stdout and nothing is kept on disk.
func ExportCommandAction(ctx context.Context, cmd *cli.Command) error {
	if ShortCircuitTLDR(ctx, cmd, "export") {
		return nil
	}

	var loc aws.Location
	if raw := cmd.String("s3"); raw != "" {
		var err error
		if loc, err = aws.ParseS3URL(raw); err != nil {
			return err
		}
	}

	client, err := NewClient(cmd)
	if err != nil {
		return err
	}

	exp, err := client.ExportStats(ctx, cmd.String("format"), ClassFilter(cmd))
	if err != nil {
		return err
	}
	log.Debugf("export: %d bytes of %s", len(exp.Data), exp.ContentType)

	out := cmd.String("out")
	if out == "-" {
		if _, err := stdout(cmd).Write(exp.Data); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
	} else {
		path := ExportPath(out, exp.Filename)
		if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintf(stdout(cmd), "Wrote %s (%d bytes)\n", path, len(exp.Data))
	}

	if loc.Bucket == "" {
		return nil
	}

	var opts []aws.Option
	if v := cmd.String("profile"); v != "" {
		opts = append(opts, aws.WithProfile(v))
	}
	if v := cmd.String("region"); v != "" {
		opts = append(opts, aws.WithRegion(v))
	}
	if v := cmd.String("s3-endpoint"); v != "" {
		opts = append(opts, aws.WithEndpoint(v))
	}

	s3, err := aws.NewS3(ctx, opts...)
	if err != nil {
		return err
	}
	uri, err := aws.Upload(ctx, s3, loc, exp.Filename, exp.ContentType, exp.Data)
	if err != nil {
		return err
	}
	// Keep stdout clean when it carries the file itself.
	if out == "-" {
		log.Infof("uploaded %s", uri)
	} else {
		fmt.Fprintf(stdout(cmd), "Uploaded %s\n", uri)
	}
	return nil
}

// ExportPath resolves --out against the export's own filename. An empty out
// means the current directory; an existing directory receives the file.
func ExportPath(out, filename string) string {
	if out == "" {
		return filename
	}
	if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		return filepath.Join(out, filename)
	}
	return out
}

func ExportCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "download student statistics (teachers)",
		UsageText: "lessonctl export [--format csv|excel] [--level N] [--letter L] [--out FILE] [--s3 s3://bucket/prefix]",
		Metadata:  map[string]any{"meta": meta},
		Flags: append([]cli.Flag{
			NewAPIFlag("export"),
			tldrFlag,
			&cli.StringFlag{
				Name:  "format",
				Usage: "csv or excel",
				Value: api.FormatCSV,
				Sources: cli.NewValueSourceChain(
					yaml.YAML("export.format", altsrc.StringSourcer(cfg.Source)),
				),
				Validator: func(value string) error {
					return FlagValidators(value, ExportFormatValidator)
				},
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "file or directory to write, - for stdout",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
			&cli.StringFlag{
				Name:    "s3",
				Usage:   "also upload to s3://bucket/prefix",
				Sources: cli.NewValueSourceChain(yaml.YAML("export.s3", altsrc.StringSourcer(cfg.Source))),
			},
			&cli.StringFlag{
				Name:    "s3-endpoint",
				Usage:   "S3 compatible endpoint URL",
				Sources: cli.NewValueSourceChain(yaml.YAML("export.s3-endpoint", altsrc.StringSourcer(cfg.Source))),
			},
			&cli.StringFlag{
				Name:    "profile",
				Usage:   "AWS shared config profile",
				Sources: cli.NewValueSourceChain(cli.EnvVar("AWS_PROFILE")),
			},
			&cli.StringFlag{
				Name:  "region",
				Usage: "AWS region",
			},
		}, NewClassFlags("export")...),
		Action: ExportCommandAction,
	}
}
