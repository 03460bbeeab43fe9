// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"slices"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/lessonctl/internal/config"
)

// groupCommands have subcommands; their sets are keyed by the full path,
// e.g. games.results.defaults.
var groupCommands = []string{"games", "lessons", "students"}

// ExpandArgSets splices a named argument set from the config file into args.
// "@name" on the command line selects <command>.name and marks where it is
// inserted; without one, <command>.defaults goes right after the command.
// Each set entry may hold several whitespace separated arguments.
//
//	leaderboard:
//	  defaults:
//	    - --sort -points
//	  top:
//	    - --filter rank<4
func ExpandArgSets(args []string) []string {
	if len(args) < 2 || strings.HasPrefix(args[1], "-") {
		return args
	}
	if slices.Contains(args, "--help") || slices.Contains(args, "-h") {
		return args
	}

	path := []string{args[1]}
	idx := 2
	if slices.Contains(groupCommands, args[1]) && len(args) > 2 && !strings.HasPrefix(args[2], "-") {
		path = append(path, args[2])
		idx = 3
	}

	out := make([]string, 0, len(args))
	out = append(out, args...)

	set := "defaults"
	for i := idx; i < len(out); i++ {
		if strings.HasPrefix(out[i], "@") && len(out[i]) > 1 {
			set = out[i][1:]
			idx = i
			out = append(out[:i], out[i+1:]...)
			break
		}
	}

	setArgs, _ := config.GetStringSlice(strings.Join(path, ".") + "." + set)
	var parts []string
	for _, arg := range setArgs {
		parts = append(parts, strings.Fields(arg)...)
	}
	out = slices.Insert(out, idx, parts...)

	log.Debugf("idx=%d, set=%s, args=%v", idx, set, out)
	return out
}
