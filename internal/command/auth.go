// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/staranto/lessonctl/internal/api"
	"github.com/staranto/lessonctl/internal/meta"
	"github.com/staranto/lessonctl/internal/session"
	"github.com/staranto/lessonctl/internal/validation"
)

// LoginCommandAction exchanges credentials for a token pair and stores it
// for the --api server. Missing credentials are prompted for.
func LoginCommandAction(ctx context.Context, cmd *cli.Command) error {
	p := newPrompter(cmd)

	username, err := p.valueOrPrompt(cmd, "username", "Username: ", false)
	if err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if err := validation.ValidateUsername(username).Err(); err != nil {
		return err
	}

	password, err := p.valueOrPrompt(cmd, "password", "Password: ", true)
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password: is required: %w", validation.ErrInvalid)
	}

	client, err := NewClient(cmd)
	if err != nil {
		return err
	}
	if _, err := client.Login(ctx, username, password); err != nil {
		return err
	}

	me, err := client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout(cmd), "Logged in as %s (%s)\n", me.FullName(), me.Role)
	return nil
}

// LogoutCommandAction forgets the stored credentials. It never calls the
// server.
func LogoutCommandAction(ctx context.Context, cmd *cli.Command) error {
	client, err := NewClient(cmd)
	if err != nil {
		return err
	}
	if err := client.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(stdout(cmd), "Logged out")
	return nil
}

// RegisterCommandAction validates the registration form locally and only
// then submits it.
func RegisterCommandAction(ctx context.Context, cmd *cli.Command) error {
	p := newPrompter(cmd)

	username, err := p.valueOrPrompt(cmd, "username", "Username: ", false)
	if err != nil {
		return err
	}
	password, err := p.valueOrPrompt(cmd, "password", "Password: ", true)
	if err != nil {
		return err
	}
	confirm := cmd.String("password-confirm")
	if confirm == "" {
		// A password given on the command line needs no retyping.
		if cmd.String("password") != "" {
			confirm = password
		} else if confirm, err = p.password("Confirm password: "); err != nil {
			return err
		}
	}

	form := validation.Registration{
		Username:        strings.TrimSpace(username),
		Password:        password,
		PasswordConfirm: confirm,
		FirstName:       cmd.String("first-name"),
		LastName:        cmd.String("last-name"),
		Email:           cmd.String("email"),
		Level:           cmd.Int("level"),
		LevelLetter:     cmd.String("letter"),
	}
	if err := validation.NewValidator().Struct(form); err != nil {
		return err
	}

	client, err := NewClient(cmd)
	if err != nil {
		return err
	}
	resp, err := client.Register(ctx, api.RegisterRequest{
		Username:        form.Username,
		Password:        form.Password,
		PasswordConfirm: form.PasswordConfirm,
		FirstName:       form.FirstName,
		LastName:        form.LastName,
		Email:           form.Email,
		Level:           form.Level,
		LevelLetter:     form.LevelLetter,
	})
	if err != nil {
		return err
	}

	msg := resp.Message
	if msg == "" {
		msg = "Registered"
	}
	fmt.Fprintf(stdout(cmd), "%s: %s\n", msg, resp.Username)
	return nil
}

// PasswdCommandAction changes the current user's password.
func PasswdCommandAction(ctx context.Context, cmd *cli.Command) error {
	p := newPrompter(cmd)

	current, err := p.password("Current password: ")
	if err != nil {
		return err
	}
	next, err := p.password("New password: ")
	if err != nil {
		return err
	}
	if err := validation.ValidatePassword(next).Err(); err != nil {
		return err
	}
	confirm, err := p.password("Confirm new password: ")
	if err != nil {
		return err
	}
	if confirm != next {
		return fmt.Errorf("password_confirm: must match password: %w", validation.ErrInvalid)
	}

	client, err := NewClient(cmd)
	if err != nil {
		return err
	}
	msg, err := client.ChangePassword(ctx, current, next)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Password changed"
	}
	fmt.Fprintln(stdout(cmd), msg)
	return nil
}

// Status is the local view of the stored credentials.
type Status struct {
	API              string     `json:"api"`
	LoggedIn         bool       `json:"logged_in"`
	Subject          string     `json:"subject,omitempty"`
	UserID           int64      `json:"user_id,omitempty"`
	Role             string     `json:"role,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	Expired          bool       `json:"expired"`
	RefreshExpiresAt *time.Time `json:"refresh_expires_at,omitempty"`
}

// CurrentStatus describes pair without contacting the server.
func CurrentStatus(base string, pair session.Pair, now time.Time) Status {
	st := Status{API: base, LoggedIn: pair.Access != ""}

	if pair.Access != "" {
		info := session.Inspect(pair.Access)
		st.Subject = info.Subject
		st.UserID = info.UserID
		st.Role = info.Role
		if !info.ExpiresAt.IsZero() {
			st.ExpiresAt = &info.ExpiresAt
		}
		st.Expired = info.Expired(now)
	}
	if pair.Refresh != "" {
		if info := session.Inspect(pair.Refresh); !info.ExpiresAt.IsZero() {
			st.RefreshExpiresAt = &info.ExpiresAt
		}
	}
	return st
}

func StatusCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[Status]{
		CommandName:  "status",
		DefaultAttrs: []string{"api", "logged_in", "subject:user", "role", "expires_at:expires:h"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, client *api.Client) (Status, error) {
			return CurrentStatus(client.BaseURL, client.Session.Tokens(), time.Now()), nil
		},
	}
	return runner.Run(ctx, cmd)
}

func authFlags(ns string) []cli.Flag {
	return []cli.Flag{
		NewAPIFlag(ns),
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "username; prompted for when missing",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LESSONCTL_USERNAME")),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "password; prompted for without echo when missing",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LESSONCTL_PASSWORD")),
		},
	}
}

func LoginCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "log in and store credentials",
		UsageText: "lessonctl login [--username NAME] [--password PASSWORD]",
		Metadata:  map[string]any{"meta": meta},
		Flags:     authFlags("login"),
		Action:    LoginCommandAction,
	}
}

func LogoutCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "logout",
		Usage:     "forget stored credentials",
		UsageText: "lessonctl logout",
		Metadata:  map[string]any{"meta": meta},
		Flags:     []cli.Flag{NewAPIFlag("logout")},
		Action:    LogoutCommandAction,
	}
}

func RegisterCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "register",
		Usage:     "create a student account",
		UsageText: "lessonctl register --username NAME --level N --letter L [options]",
		Metadata:  map[string]any{"meta": meta},
		Flags: append(authFlags("register"),
			&cli.StringFlag{Name: "password-confirm", Usage: "password confirmation"},
			&cli.StringFlag{Name: "first-name", Usage: "first name"},
			&cli.StringFlag{Name: "last-name", Usage: "last name"},
			&cli.StringFlag{Name: "email", Usage: "email address (optional)"},
			&cli.IntFlag{Name: "level", Usage: "class level (1-11)"},
			&cli.StringFlag{Name: "letter", Usage: "class letter (А, Б, В...)"},
		),
		Action: RegisterCommandAction,
	}
}

func PasswdCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "passwd",
		Usage:     "change your password",
		UsageText: "lessonctl passwd",
		Metadata:  map[string]any{"meta": meta},
		Flags:     []cli.Flag{NewAPIFlag("passwd")},
		Action:    PasswdCommandAction,
	}
}

func StatusCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "status",
		Usage:     "show the stored session",
		UsageText: "lessonctl status [options]",
		Action:    StatusCommandAction,
		Meta:      meta,
	}).Build()
}
