// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/lessonctl/internal/api"
	"github.com/staranto/lessonctl/internal/config"
	"github.com/staranto/lessonctl/internal/output"
)

func init() {
	cfg, _ = config.Load("")
}

var (
	cfg config.Type

	schemaFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the attributes available to --attrs",
		HideDefault: true,
	}

	tldrFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
)

// NewGlobalFlags returns the output flags shared by every query command.
// params[0] is the command name, used as the config namespace.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"color", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("color", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:    "local",
			Aliases: []string{"l"},
			Usage:   "show timestamps in the configured timezone",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"local", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("local", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, raw)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"output", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("output", altsrc.StringSourcer(cfg.Source)),
			),
			Value: output.FormatText,
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"sort", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"titles", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("titles", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
	}

	return
}

// NewAPIFlag constructs the --api flag. The env variable wins over the
// namespaced and global config file keys.
func NewAPIFlag(ns string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:  "api",
		Usage: "base URL of the lessons API",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("LESSONCTL_API"),
		),
		Value: api.DefaultBaseURL,
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator, URLValidator)
		},
	}
	return NameSpacedValueChainFlagFromConfigFile(ns, cfg.Source, flag)
}

// NewClassFlags returns --level and --letter, which select a class. Values
// may be defaulted per command in the config file.
func NewClassFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "level",
			Usage: "class level (1-11)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+".level", altsrc.StringSourcer(cfg.Source)),
			),
			Validator: func(value int) error {
				return FlagValidators(value, LevelValidator)
			},
		},
		&cli.StringFlag{
			Name:  "letter",
			Usage: "class letter (А, Б, В...)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+".letter", altsrc.StringSourcer(cfg.Source)),
			),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, LetterValidator)
			},
		},
	}
}

// NewLimitFlag constructs --limit with the given default.
func NewLimitFlag(ns string, value int) *cli.IntFlag {
	return &cli.IntFlag{
		Name:  "limit",
		Usage: "maximum number of results",
		Value: value,
		Sources: cli.NewValueSourceChain(
			yaml.YAML(ns+".limit", altsrc.StringSourcer(cfg.Source)),
		),
		Validator: func(value int) error {
			return FlagValidators(value, PositiveValidator)
		},
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas reports whether target is an executable on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
