package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dmitrymomot/targetdesk/pkg/session"
	"github.com/dmitrymomot/targetdesk/pkg/targets"
)

var (
	errUsageAssign = errors.New("usage: assign <nip> <product_id>=<amount> [<product_id>=<amount>...]")
	errEmptyInput  = errors.New("nip and password are required")
)

// App implements the REPL commands on top of the session consumer.
type App struct {
	session session.Consumer
	targets *targets.Client
	term    *terminal
	in      *bufio.Reader

	title   cases.Caser
	printer *message.Printer
}

func newApp(c session.Consumer, tc *targets.Client, t *terminal, in *bufio.Reader, tag language.Tag) *App {
	return &App{
		session: c,
		targets: tc,
		term:    t,
		in:      in,
		title:   cases.Title(tag),
		printer: message.NewPrinter(tag),
	}
}

func (a *App) loggedIn() bool {
	return a.session.Snapshot().Authenticated()
}

func (a *App) status() string {
	snap := a.session.Snapshot()
	if !snap.Authenticated() {
		return "guest"
	}
	if snap.Verification != session.Verified {
		return snap.User.NIP + "?"
	}
	return snap.User.NIP
}

func (a *App) Login(ctx context.Context) error {
	nip, err := a.term.readLine(a.in, "NIP")
	if err != nil {
		return err
	}
	password, err := a.term.readSecret(a.in, "Password")
	if err != nil {
		return err
	}
	if nip == "" || password == "" {
		return errEmptyInput
	}

	if err := a.session.Login(ctx, nip, password); err != nil {
		return err
	}

	// A forced logout may land between Login and this read.
	snap := a.session.Snapshot()
	if snap.User == nil {
		return session.ErrNoSession
	}
	a.term.Printf("Welcome, %s (%s).\n", a.title.String(snap.User.Name), a.title.String(snap.User.BranchName))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	return nil
}

func (a *App) Whoami(context.Context) error {
	out, err := a.renderProfile(a.session.Snapshot())
	if err != nil {
		return err
	}
	a.term.Printf("%s", out)
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.session.RefreshProfile(ctx, a.session.Snapshot().Token); err != nil {
		return err
	}
	a.term.Println("Profile refreshed.")
	return nil
}

func (a *App) Staff(ctx context.Context, args []string) error {
	period, err := targets.PeriodOf(a.session.User())
	if err != nil {
		return err
	}
	staff, err := a.targets.Assignments(ctx, period, strings.Join(args, " "))
	if err != nil {
		return err
	}
	a.term.Printf("%s", a.renderStaff(period, staff))
	return nil
}

func (a *App) Branch(ctx context.Context) error {
	branch, err := a.targets.BranchTargets(ctx)
	if err != nil {
		return err
	}
	a.term.Printf("%s", a.renderBranch(branch))
	return nil
}

func (a *App) Assign(ctx context.Context, args []string) error {
	nip, amounts, err := parseAssign(args)
	if err != nil {
		return err
	}
	period, err := targets.PeriodOf(a.session.User())
	if err != nil {
		return err
	}

	if err := a.targets.Assign(ctx, nip, targets.Assignment{Month: period.Month, Targets: amounts}); err != nil {
		return err
	}

	var total float64
	for _, t := range amounts {
		total += t.Amount
	}
	a.term.Println(a.printer.Sprintf("Targets saved for %s: %.0f", nip, total))
	return nil
}

// parseAssign reads "<nip> <product>=<amount>...". Amounts are validated by
// targets.Client, not here.
func parseAssign(args []string) (string, []targets.Amount, error) {
	if len(args) < 2 {
		return "", nil, errUsageAssign
	}

	amounts := make([]targets.Amount, 0, len(args)-1)
	for _, arg := range args[1:] {
		id, value, ok := strings.Cut(arg, "=")
		if !ok {
			return "", nil, errUsageAssign
		}
		productID, err := strconv.Atoi(id)
		if err != nil {
			return "", nil, fmt.Errorf("invalid product id %q: %w", id, err)
		}
		amount, err := strconv.ParseFloat(strings.ReplaceAll(value, "_", ""), 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid amount %q: %w", value, err)
		}
		amounts = append(amounts, targets.Amount{ProductID: productID, Amount: amount})
	}
	return args[0], amounts, nil
}
