// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
)

// Students lists the students a teacher can see, optionally one class.
func (c *Client) Students(ctx context.Context, f ClassFilter) ([]Student, error) {
	var out []Student
	err := c.get(ctx, "/users/students", f.Values(), &out)
	return out, err
}

func (c *Client) StudentStats(ctx context.Context, id int64) (UserStats, error) {
	var out UserStats
	err := c.get(ctx, fmt.Sprintf("/users/stats/%d", id), nil, &out)
	return out, err
}

// ResetStudentPassword asks the server to generate a new password for a
// student. The new password is only ever returned here.
func (c *Client) ResetStudentPassword(ctx context.Context, username string) (PasswordReset, error) {
	var out PasswordReset
	err := c.post(ctx, "/users/reset-password", map[string]string{"username": username}, &out)
	return out, err
}

func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.put(ctx, "/users/profile", upd, &out)
	return out.Message, err
}

func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	in := map[string]string{"old_password": oldPassword, "new_password": newPassword}
	err := c.put(ctx, "/users/password", in, &out)
	return out.Message, err
}
