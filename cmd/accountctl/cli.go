package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	account "github.com/goliatone/go-account"
	"github.com/goliatone/go-account/config"
	"github.com/goliatone/go-account/internal/bootstrap"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"golang.org/x/term"
)

// readPassword is swapped in tests to avoid touching the terminal
var readPassword = term.ReadPassword

type command struct {
	usage string
	run   func(ctx context.Context, svc *bootstrap.Service, args []string) error
}

type cli struct {
	out      io.Writer
	errOut   io.Writer
	opts     []bootstrap.Option
	commands map[string]command
}

func newCLI(out, errOut io.Writer, opts ...bootstrap.Option) *cli {
	c := &cli{out: out, errOut: errOut, opts: opts}
	c.commands = map[string]command{
		"migrate":       {usage: "apply pending migrations", run: c.migrate},
		"register":      {usage: "-email -name [-password]", run: c.register},
		"verify":        {usage: "-token", run: c.verify},
		"resend":        {usage: "-email", run: c.resend},
		"gate":          {usage: "-email", run: c.gate},
		"suspend":       {usage: "-email [-reason]", run: c.status(account.AccountStatusSuspended)},
		"reinstate":     {usage: "-email [-reason]", run: c.status(account.AccountStatusActive)},
		"withdraw":      {usage: "-email [-reason]", run: c.status(account.AccountStatusWithdrawn)},
		"reset-request": {usage: "-email [-name]", run: c.resetRequest},
		"reset-check":   {usage: "-token", run: c.resetCheck},
		"reset":         {usage: "-token [-password]", run: c.reset},
		"show":          {usage: "-email", run: c.show},
	}
	return c
}

func (c *cli) run(ctx context.Context, args []string) error {
	global := flag.NewFlagSet("accountctl", flag.ContinueOnError)
	global.SetOutput(c.errOut)
	configPath := global.String("config", os.Getenv("ACCOUNT_CONFIG"), "Path to a YAML config file")
	envFile := global.String("env", ".env", "Optional dotenv file")
	global.Usage = func() { c.usage(global) }

	if err := global.Parse(args); err != nil {
		return err
	}

	if global.NArg() == 0 {
		c.usage(global)
		return goerrors.New("missing command", goerrors.CategoryBadInput)
	}

	name := global.Arg(0)
	cmd, ok := c.commands[name]
	if !ok {
		c.usage(global)
		return goerrors.New(fmt.Sprintf("unknown command %q", name), goerrors.CategoryBadInput)
	}

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		return err
	}

	opts := append([]bootstrap.Option{bootstrap.WithMigrations(name == "migrate")}, c.opts...)
	svc, err := bootstrap.Open(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer svc.Close()

	return cmd.run(ctx, svc, global.Args()[1:])
}

func (c *cli) usage(fs *flag.FlagSet) {
	fmt.Fprintln(c.errOut, "usage: accountctl [-config file] [-env file] <command> [flags]")
	fs.PrintDefaults()
	fmt.Fprintln(c.errOut, "commands:")

	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(c.errOut, "  %-14s %s\n", name, c.commands[name].usage)
	}
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

func (c *cli) migrate(ctx context.Context, svc *bootstrap.Service, _ []string) error {
	version, err := account.MigrationVersion(ctx, svc.DB.DB, svc.Dialect)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "schema version %d\n", version)
	return nil
}

func (c *cli) register(ctx context.Context, svc *bootstrap.Service, args []string) error {
	fs := c.flags("register")
	email := fs.String("email", "", "Account email")
	name := fs.String("name", "", "Account holder name")
	password := fs.String("password", "", "Password, prompted when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret, err := c.password(*password)
	if err != nil {
		return err
	}

	ok, err := svc.Lifecycle.Register(ctx, account.RegisterAccountMessage{
		Email:    *email,
		Name:     *name,
		Password: secret,
	})
	return c.result("register", ok, err)
}

func (c *cli) verify(ctx context.Context, svc *bootstrap.Service, args []string) error {
	fs := c.flags("verify")
	token := fs.String("token", "", "Verification token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ok, err := svc.Lifecycle.VerifyEmail(ctx, *token)
	return c.result("verify", ok, err)
}

func (c *cli) resend(ctx context.Context, svc *bootstrap.Service, args []string) error {
	fs := c.flags("resend")
	email := fs.String("email", "", "Account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ok, err := svc.Lifecycle.ResendVerification(ctx, *email)
	return c.result("resend", ok, err)
}

func (c *cli) gate(ctx context.Context, svc *bootstrap.Service, args []string) error {
	fs := c.flags("gate")
	email := fs.String("email", "", "Account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	acc, err := svc.Lifecycle.CheckAuthenticatable(ctx, *email)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s may authenticate (%s)\n", acc.Email, acc.Status)
	return nil
}

func (c *cli) status(target account.AccountStatus) func(context.Context, *bootstrap.Service, []string) error {
	return func(ctx context.Context, svc *bootstrap.Service, args []string) error {
		fs := c.flags(string(target))
		email := fs.String("email", "", "Account email")
		reason := fs.String("reason", "", "Reason recorded with the transition")
		if err := fs.Parse(args); err != nil {
			return err
		}

		actor := account.ActorRef{ID: operatorName(), Type: "operator"}

		var (
			acc *account.Account
			err error
		)
		switch target {
		case account.AccountStatusSuspended:
			acc, err = svc.Lifecycle.Suspend(ctx, actor, *email, *reason)
		case account.AccountStatusActive:
			acc, err = svc.Lifecycle.Reinstate(ctx, actor, *email, *reason)
		default:
			acc, err = svc.Lifecycle.Withdraw(ctx, actor, *email, *reason)
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(c.out, print.MaybePrettyJSON(acc))
		return nil
	}
}

func (c *cli) resetRequest(ctx context.Context, svc *bootstrap.Service, args []string) error {
	fs := c.flags("reset-request")
	email := fs.String("email", "", "Account email")
	name := fs.String("name", "", "Account holder name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ok, err := svc.Lifecycle.RequestPasswordReset(ctx, account.PasswordResetRequestMessage{
		Email: *email,
		Name:  *name,
	})
	return c.result("reset-request", ok, err)
}

func (c *cli) resetCheck(ctx context.Context, svc *bootstrap.Service, args []string) error {
	fs := c.flags("reset-check")
	token := fs.String("token", "", "Reset token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ok, err := svc.Lifecycle.CheckResetToken(ctx, *token)
	return c.result("reset-check", ok, err)
}

func (c *cli) reset(ctx context.Context, svc *bootstrap.Service, args []string) error {
	fs := c.flags("reset")
	token := fs.String("token", "", "Reset token")
	password := fs.String("password", "", "New password, prompted when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret, err := c.password(*password)
	if err != nil {
		return err
	}

	ok, err := svc.Lifecycle.ResetPassword(ctx, account.FinalizePasswordResetMessage{
		Token:    *token,
		Password: secret,
	})
	return c.result("reset", ok, err)
}

func (c *cli) show(ctx context.Context, svc *bootstrap.Service, args []string) error {
	fs := c.flags("show")
	email := fs.String("email", "", "Account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	acc, err := svc.Repo.Accounts().FindByEmail(ctx, *email)
	if err != nil {
		if account.IsRecordNotFound(err) {
			return account.ErrAccountNotFound
		}
		return err
	}

	fmt.Fprintln(c.out, print.MaybePrettyJSON(acc))
	return nil
}

func (c *cli) result(op string, ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return goerrors.New(op+" was not completed", goerrors.CategoryOperation)
	}
	fmt.Fprintf(c.out, "%s: ok\n", op)
	return nil
}

func (c *cli) password(given string) (string, error) {
	if given != "" {
		return given, nil
	}

	fmt.Fprint(c.errOut, "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(c.errOut)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to read password")
	}
	return strings.TrimSpace(string(pw)), nil
}

func operatorName() string {
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "accountctl"
}
