// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// lessonctl is the main package for the lessonctl command line tool, a
// terminal client for the English lessons platform. It wires the CLI,
// delegates to internal packages, and serves as the entry point.
package main
