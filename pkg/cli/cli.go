package cli

import (
	"context"
	"flag"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/peterbourgon/ff/ffyaml"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/sandlovubiz-ctrl/mureza/pkg/cmd/billing"
	"github.com/sandlovubiz-ctrl/mureza/pkg/cmd/generate"
	"github.com/sandlovubiz-ctrl/mureza/pkg/cmd/history"
	"github.com/sandlovubiz-ctrl/mureza/pkg/cmd/migrate"
	"github.com/sandlovubiz-ctrl/mureza/pkg/cmd/setting"
	"github.com/sandlovubiz-ctrl/mureza/pkg/cmd/signup"
	"github.com/sandlovubiz-ctrl/mureza/pkg/cmd/stats"
	"github.com/sandlovubiz-ctrl/mureza/pkg/cmd/synth"
	"github.com/sandlovubiz-ctrl/mureza/pkg/cmd/topup"
)

func New(version, commit, date string) *ffcli.Command {
	fs := flag.NewFlagSet("mureza", flag.ExitOnError)

	return &ffcli.Command{
		ShortUsage: "mureza [flags] <subcommand>",
		FlagSet:    fs,
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
		Subcommands: []*ffcli.Command{
			newVersionCommand(version, commit, date),
			newMigrateCommand(),
			newSignupCommand(),
			newSettingCommand(),
			newTopupCommand(),
			newBillingCommand(),
			newGenerateCommand(),
			newHistoryCommand(),
			newStatsCommand(),
			newSynthCommand(),
		},
	}
}

func newVersionCommand(version, commit, date string) *ffcli.Command {
	return &ffcli.Command{
		Name:       "version",
		ShortUsage: "mureza version",
		ShortHelp:  "print version",
		Exec: func(ctx context.Context, args []string) error {
			v := version
			if v == "" {
				if buildInfo, ok := debug.ReadBuildInfo(); ok {
					v = buildInfo.Main.Version
				}
			}
			if v == "" {
				v = "dev"
			}
			versionFields := []string{v}
			if commit != "" {
				versionFields = append(versionFields, commit)
			}
			if date != "" {
				versionFields = append(versionFields, date)
			}
			fmt.Println(strings.Join(versionFields, " "))
			return nil
		},
	}
}

func newMigrateCommand() *ffcli.Command {
	cmd := "migrate"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &migrate.Config{}

	fs.StringVar(&cfg.DBType, "db-type", "", "db type (local, sqlite, mysql, postgres)")
	fs.StringVar(&cfg.DBConn, "db-conn", "", "path for sqlite, dsn for mysql or postgres")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("mureza %s [flags]", cmd),
		Options: []ff.Option{
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ffyaml.Parser),
			ff.WithEnvVarPrefix("MUREZA"),
		},
		ShortHelp: "create or update the database schema",
		FlagSet:   fs,
		Exec: func(ctx context.Context, args []string) error {
			return migrate.Run(ctx, cfg)
		},
	}
}

func newSignupCommand() *ffcli.Command {
	cmd := "signup"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &signup.Config{}

	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	fs.StringVar(&cfg.DBType, "db-type", "", "db type (local, sqlite, mysql, postgres)")
	fs.StringVar(&cfg.DBConn, "db-conn", "", "path for sqlite, dsn for mysql or postgres")
	fs.StringVar(&cfg.Email, "email", "", "email of the new profile")
	fs.StringVar(&cfg.FullName, "name", "", "full name (optional)")
	fs.StringVar(&cfg.DefaultModel, "model", "", "default model (tier1, tier2, tier3)")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("mureza %s [flags]", cmd),
		Options: []ff.Option{
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ffyaml.Parser),
			ff.WithEnvVarPrefix("MUREZA"),
		},
		ShortHelp: "create a profile",
		FlagSet:   fs,
		Exec: func(ctx context.Context, args []string) error {
			return signup.Run(ctx, cfg)
		},
	}
}

func newSettingCommand() *ffcli.Command {
	cmd := "setting"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &setting.Config{}

	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	fs.StringVar(&cfg.DBType, "db-type", "", "db type (local, sqlite, mysql, postgres)")
	fs.StringVar(&cfg.DBConn, "db-conn", "", "path for sqlite, dsn for mysql or postgres")
	fs.StringVar(&cfg.Service, "service", "", "service to store a key for (synth)")
	fs.StringVar(&cfg.Account, "account", "", "account name")
	fs.StringVar(&cfg.Value, "value", "", "value to set")
	fs.StringVar(&cfg.User, "user", "", "profile email for profile settings")
	fs.StringVar(&cfg.DefaultModel, "model", "", "default model (tier1, tier2, tier3)")
	fs.StringVar(&cfg.AutoDownload, "auto-download", "", "auto download tracks (true, false)")
	fs.StringVar(&cfg.EmailNotifications, "email-notifications", "", "email notifications (true, false)")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("mureza %s [flags]", cmd),
		Options: []ff.Option{
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ffyaml.Parser),
			ff.WithEnvVarPrefix("MUREZA"),
		},
		ShortHelp: "store service keys or change profile settings",
		FlagSet:   fs,
		Exec: func(ctx context.Context, args []string) error {
			return setting.Run(ctx, cfg)
		},
	}
}

func newTopupCommand() *ffcli.Command {
	cmd := "topup"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &topup.Config{}

	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	fs.StringVar(&cfg.DBType, "db-type", "", "db type (local, sqlite, mysql, postgres)")
	fs.StringVar(&cfg.DBConn, "db-conn", "", "path for sqlite, dsn for mysql or postgres")
	fs.StringVar(&cfg.User, "user", "", "profile email")
	fs.StringVar(&cfg.Package, "package", "", "token package id (starter, creator, studio, pro)")
	fs.StringVar(&cfg.PaymentID, "payment-id", "", "payment reference (simulated if empty)")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("mureza %s [flags]", cmd),
		Options: []ff.Option{
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ffyaml.Parser),
			ff.WithEnvVarPrefix("MUREZA"),
		},
		ShortHelp: "purchase a token package",
		FlagSet:   fs,
		Exec: func(ctx context.Context, args []string) error {
			return topup.Run(ctx, cfg)
		},
	}
}

func newBillingCommand() *ffcli.Command {
	cmd := "billing"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &billing.Config{}

	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	fs.StringVar(&cfg.DBType, "db-type", "", "db type (local, sqlite, mysql, postgres)")
	fs.StringVar(&cfg.DBConn, "db-conn", "", "path for sqlite, dsn for mysql or postgres")
	fs.StringVar(&cfg.User, "user", "", "profile email (optional, lists transactions)")
	fs.IntVar(&cfg.Limit, "limit", 20, "number of transactions to list")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("mureza %s [flags]", cmd),
		Options: []ff.Option{
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ffyaml.Parser),
			ff.WithEnvVarPrefix("MUREZA"),
		},
		ShortHelp: "list token packages and transactions",
		FlagSet:   fs,
		Exec: func(ctx context.Context, args []string) error {
			return billing.Run(ctx, cfg)
		},
	}
}

func newGenerateCommand() *ffcli.Command {
	cmd := "generate"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &generate.Config{}

	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	fs.StringVar(&cfg.DBType, "db-type", "", "db type (local, sqlite, mysql, postgres)")
	fs.StringVar(&cfg.DBConn, "db-conn", "", "path for sqlite, dsn for mysql or postgres")
	fs.StringVar(&cfg.Proxy, "proxy", "", "proxy address (optional)")
	fs.DurationVar(&cfg.Timeout, "timeout", 5*time.Minute, "synthesis timeout")
	fs.StringVar(&cfg.Account, "account", "", "synth account name")
	fs.StringVar(&cfg.Host, "host", "", "synthesis service host (optional)")
	fs.DurationVar(&cfg.Wait, "wait", 2*time.Second, "wait between requests")
	fs.StringVar(&cfg.User, "user", "", "profile email")
	fs.StringVar(&cfg.Prompt, "prompt", "", "generation prompt")
	fs.StringVar(&cfg.Model, "model", "", "model (tier1, tier2, tier3), profile default if empty")
	fs.IntVar(&cfg.Duration, "duration", 60, "duration in seconds")
	fs.IntVar(&cfg.Count, "count", 1, "number of generations to submit")
	fs.StringVar(&cfg.Output, "output", "", "download folder (optional)")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("mureza %s [flags]", cmd),
		Options: []ff.Option{
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ffyaml.Parser),
			ff.WithEnvVarPrefix("MUREZA"),
		},
		ShortHelp: "generate tracks spending tokens",
		FlagSet:   fs,
		Exec: func(ctx context.Context, args []string) error {
			return generate.Run(ctx, cfg)
		},
	}
}

func newHistoryCommand() *ffcli.Command {
	cmd := "history"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &history.Config{}

	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	fs.StringVar(&cfg.DBType, "db-type", "", "db type (local, sqlite, mysql, postgres)")
	fs.StringVar(&cfg.DBConn, "db-conn", "", "path for sqlite, dsn for mysql or postgres")
	fs.StringVar(&cfg.User, "user", "", "profile email")
	fs.StringVar(&cfg.Status, "status", "", "filter by status (pending, processing, completed, failed)")
	fs.IntVar(&cfg.Page, "page", 1, "page number")
	fs.IntVar(&cfg.Size, "size", 20, "page size")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("mureza %s [flags]", cmd),
		Options: []ff.Option{
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ffyaml.Parser),
			ff.WithEnvVarPrefix("MUREZA"),
		},
		ShortHelp: "list past generations",
		FlagSet:   fs,
		Exec: func(ctx context.Context, args []string) error {
			return history.Run(ctx, cfg)
		},
	}
}

func newStatsCommand() *ffcli.Command {
	cmd := "stats"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &stats.Config{}

	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	fs.StringVar(&cfg.DBType, "db-type", "", "db type (local, sqlite, mysql, postgres)")
	fs.StringVar(&cfg.DBConn, "db-conn", "", "path for sqlite, dsn for mysql or postgres")
	fs.StringVar(&cfg.User, "user", "", "profile email")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("mureza %s [flags]", cmd),
		Options: []ff.Option{
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ffyaml.Parser),
			ff.WithEnvVarPrefix("MUREZA"),
		},
		ShortHelp: "print this month's usage summary",
		FlagSet:   fs,
		Exec: func(ctx context.Context, args []string) error {
			return stats.Run(ctx, cfg)
		},
	}
}

func newSynthCommand() *ffcli.Command {
	cmd := "synth"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &synth.Config{}

	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	fs.StringVar(&cfg.Proxy, "proxy", "", "proxy address (optional)")
	fs.DurationVar(&cfg.Wait, "wait", 2*time.Second, "wait between requests")
	fs.StringVar(&cfg.Host, "host", "", "synthesis service host (optional)")
	fs.StringVar(&cfg.Key, "key", "", "path to the API key file")
	fs.StringVar(&cfg.Prompt, "prompt", "", "generation prompt")
	fs.StringVar(&cfg.Model, "model", "", "model (tier1, tier2, tier3)")
	fs.IntVar(&cfg.Duration, "duration", 60, "duration in seconds")
	fs.StringVar(&cfg.Output, "output", "", "output file (optional)")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("mureza %s [flags]", cmd),
		Options: []ff.Option{
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ffyaml.Parser),
			ff.WithEnvVarPrefix("MUREZA"),
		},
		ShortHelp: "synthesize a track directly, without token accounting",
		FlagSet:   fs,
		Exec: func(ctx context.Context, args []string) error {
			return synth.Run(ctx, cfg)
		},
	}
}
