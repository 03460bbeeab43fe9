// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides the short-lived, in-memory response cache owned by
// a single view. Entries expire strictly by wall-clock age and are only ever
// discarded wholesale.
package cache
