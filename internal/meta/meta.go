// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"
	"io"

	"github.com/staranto/lessonctl/internal/config"
	"github.com/staranto/lessonctl/internal/session"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context

	// Store overrides the on-disk credential store. Nil means a FileStore
	// keyed by the --api origin.
	Store session.Store

	// Stdin is where interactive prompts read from. Nil means os.Stdin.
	Stdin io.Reader
}
