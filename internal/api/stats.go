// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Export formats accepted by ExportStats.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (c *Client) MyAchievements(ctx context.Context) ([]Achievement, error) {
	var out []Achievement
	err := c.get(ctx, "/achievements/me", nil, &out)
	return out, err
}

// Leaderboard returns ranked entries, optionally narrowed to a class.
func (c *Client) Leaderboard(ctx context.Context, f ClassFilter) ([]LeaderboardEntry, error) {
	var out []LeaderboardEntry
	err := c.get(ctx, "/leaderboard", f.Values(), &out)
	return out, err
}

// ClassAnalytics requires a level; the letter is optional.
func (c *Client) ClassAnalytics(ctx context.Context, f ClassFilter) (ClassAnalytics, error) {
	if f.Level == nil {
		return ClassAnalytics{}, errors.New("class analytics: level is required")
	}
	var out ClassAnalytics
	err := c.get(ctx, "/analytics/class", f.Values(), &out)
	return out, err
}

// ClassActivity returns per-class test activity for the last days days. Zero
// leaves the period to the server.
func (c *Client) ClassActivity(ctx context.Context, days int) (ClassActivity, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	var out ClassActivity
	err := c.get(ctx, "/analytics/activity", q, &out)
	return out, err
}

// ExportStats downloads the student statistics file. The file is named
// after today's date, as the browser client does.
func (c *Client) ExportStats(ctx context.Context, format string, f ClassFilter) (Export, error) {
	switch format {
	case FormatCSV, FormatExcel:
	default:
		return Export{}, fmt.Errorf("export: unknown format %q (want csv or excel)", format)
	}

	q := f.Values()
	q.Set("format", format)

	resp, err := c.exchange(ctx, c.doer, http.MethodGet, "/export/stats", q, nil)
	if err != nil {
		return Export{}, fmt.Errorf("export: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Export{}, fmt.Errorf("export: failed to read body: %w", err)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "text/csv"
		if format == FormatExcel {
			ct = xlsxContentType
		}
	}

	return Export{
		Filename:    ExportFilename(c.now(), format),
		Suggested:   ServerFilename(resp.Header),
		ContentType: ct,
		Data:        data,
	}, nil
}

// ExportFilename is students_stats_<YYYY-MM-DD>.<csv|xlsx>, dated in UTC.
func ExportFilename(t time.Time, format string) string {
	ext := "csv"
	if format == FormatExcel {
		ext = "xlsx"
	}
	return "students_stats_" + t.UTC().Format("2006-01-02") + "." + ext
}

// ServerFilename returns the filename an export response suggests, or "".
func ServerFilename(header http.Header) string {
	_, params, err := mime.ParseMediaType(header.Get("Content-Disposition"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["filename"])
}
