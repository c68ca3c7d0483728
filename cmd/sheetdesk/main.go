// @title                       Sheetdesk API
// @version                     1.0
// @description                 Attendance, checklist and task assignment over a spreadsheet backend.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"sheetdesk/internal/app"
	"sheetdesk/internal/authz"
	"sheetdesk/internal/config"
	"sheetdesk/internal/dates"
	"sheetdesk/internal/logging"
	"sheetdesk/internal/models"
	"sheetdesk/internal/recurrence"
	"sheetdesk/internal/services"
)

var version = "dev"

type flags struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		f         flags
		logCloser func()
		a         *app.App
	)

	// loadApp reads the config and wires the service on first use.
	loadApp := func() (*app.App, error) {
		if a != nil {
			return a, nil
		}
		cfg, err := config.Load(f.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if f.LogLevel == "" {
			f.LogLevel = cfg.Log.Level
		}
		logger, closer, err := logging.Setup(f.LogLevel, nonEmpty(f.LogFormat, cfg.Log.Format), cfg.Log.File)
		if err != nil {
			return nil, fmt.Errorf("setup logger: %w", err)
		}
		if logCloser != nil {
			logCloser()
		}
		logCloser = closer
		logger.Debug().Str("config", f.ConfigPath).Msg("[cli][config][loaded]")

		if a, err = app.New(cfg); err != nil {
			return nil, err
		}
		return a, nil
	}

	cmd := &cli.Command{
		Name:    "sheetdesk",
		Usage:   "Attendance, checklists and task assignment on top of a spreadsheet",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("SHEETDESK_CONFIG"),
				Value:       config.DefaultPath,
				Destination: &f.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error); overrides the config",
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "json or console; overrides the config",
				Destination: &f.LogFormat,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			_, closer, err := logging.Setup(nonEmpty(f.LogLevel, "info"), nonEmpty(f.LogFormat, "console"), "")
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			logCloser = closer
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if a != nil {
				a.Close()
			}
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP API",
				Action: func(ctx context.Context, c *cli.Command) error {
					a, err := loadApp()
					if err != nil {
						return err
					}
					return a.Serve(ctx)
				},
			},
			{
				Name:      "schedule",
				Usage:     "Print the due dates an assignment would generate",
				UsageText: "sheetdesk schedule --start 03/06/2024 --frequency weekly --doer Asha --doer Ravi",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "start date (dd/mm/yyyy)", Required: true},
					&cli.StringFlag{Name: "frequency", Usage: "recurrence policy", Value: string(recurrence.OneTime)},
					&cli.StringSliceFlag{Name: "doer", Usage: "assignee, repeatable", Required: true},
					&cli.StringFlag{Name: "description", Value: "preview"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					start, ok := dates.Parse(c.String("start"))
					if !ok {
						return fmt.Errorf("invalid start date %q", c.String("start"))
					}
					a, err := loadApp()
					if err != nil {
						return err
					}
					preview, err := a.Assign.Preview(ctx, models.AssignRequest{
						Doers:       c.StringSlice("doer"),
						Description: c.String("description"),
						StartDate:   start,
						Frequency:   recurrence.Frequency(c.String("frequency")),
					})
					if err != nil {
						return err
					}
					if preview.Notice != "" {
						fmt.Println(preview.Notice)
					}
					tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "DOER\tDUE\tFREQUENCY")
					for _, t := range preview.Tasks {
						fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Doer, t.DueDate, t.Frequency)
					}
					return tw.Flush()
				},
			},
			{
				Name:      "hash-password",
				Usage:     "Print a bcrypt hash for a password",
				ArgsUsage: "<password>",
				Action: func(ctx context.Context, c *cli.Command) error {
					pw := c.Args().First()
					if pw == "" {
						return fmt.Errorf("password is required")
					}
					hash, err := services.HashPassword(pw)
					if err != nil {
						return err
					}
					fmt.Println(hash)
					return nil
				},
			},
			{
				Name:  "user",
				Usage: "Manage accounts",
				Commands: []*cli.Command{
					{
						Name:  "add",
						Usage: "Create an account",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "username", Required: true},
							&cli.StringFlag{Name: "password", Required: true, Sources: cli.EnvVars("SHEETDESK_NEW_PASSWORD")},
							&cli.StringFlag{Name: "role", Value: authz.RoleUser, Usage: "admin, user or viewer"},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							a, err := loadApp()
							if err != nil {
								return err
							}
							if err := a.Migrate(ctx); err != nil {
								return err
							}
							u, err := a.Users.CreateUser(ctx, c.String("username"), c.String("password"), c.String("role"))
							if err != nil {
								return err
							}
							fmt.Printf("created %s (%s)\n", u.Username, u.Role)
							return nil
						},
					},
					{
						Name:  "list",
						Usage: "List accounts",
						Action: func(ctx context.Context, c *cli.Command) error {
							a, err := loadApp()
							if err != nil {
								return err
							}
							users, err := a.Users.ListUsers(ctx)
							if err != nil {
								return err
							}
							tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
							fmt.Fprintln(tw, "USERNAME\tROLE\tCREATED")
							for _, u := range users {
								fmt.Fprintf(tw, "%s\t%s\t%s\n", u.Username, u.Role, u.CreatedAt.Format("2006-01-02"))
							}
							return tw.Flush()
						},
					},
					{
						Name:  "passwd",
						Usage: "Change an account password",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "username", Required: true},
							&cli.StringFlag{Name: "password", Required: true, Sources: cli.EnvVars("SHEETDESK_NEW_PASSWORD")},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							a, err := loadApp()
							if err != nil {
								return err
							}
							return a.Users.ChangePassword(ctx, c.String("username"), c.String("password"))
						},
					},
				},
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimSpace(err.Error()))
		os.Exit(1)
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
