// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output filters, sorts and renders JSON payloads from the lessons
// API as text tables, JSON, YAML or the raw document.
package output
