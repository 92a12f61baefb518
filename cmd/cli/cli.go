package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/amirasaad/fxwidget/pkg/domain"
	"github.com/amirasaad/fxwidget/pkg/prefs"
	"github.com/amirasaad/fxwidget/pkg/service/widget"
	"github.com/fatih/color"
)

const usage = `Usage: fxw <command> [arguments]

Commands:
  rates                          show the rate status and available currencies
  convert <amount> [from] [to]   convert an amount (currencies default to the last used)
  swap                           swap the selected currencies
  clear                          clear the saved amount
  prefs                          show the saved selection
  refresh                        fetch fresh rates

Without a command, an interactive prompt starts when stdin is a terminal.`

var errUsage = errors.New("usage")

var (
	okColor     = color.New(color.FgGreen, color.Bold)
	errColor    = color.New(color.FgRed)
	statusColor = color.New(color.FgCyan)
	warnColor   = color.New(color.FgYellow)
	dimColor    = color.New(color.Faint)
)

type cli struct {
	svc *widget.Service
	out io.Writer
}

func newCLI(svc *widget.Service, out io.Writer) *cli {
	return &cli{svc: svc, out: out}
}

// run executes one command. Conversion errors are printed and returned so
// the process can exit non-zero.
func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(c.out, usage)
		return errUsage
	}

	switch cmd, rest := strings.ToLower(args[0]), args[1:]; cmd {
	case "rates":
		c.printRates(c.svc.Resolution(ctx))
		return nil
	case "refresh":
		c.printStatus(c.svc.Refresh(ctx))
		return nil
	case "convert":
		if len(rest) == 0 {
			fmt.Fprintln(c.out, "Usage: fxw convert <amount> [from] [to]")
			return errUsage
		}
		return c.convert(ctx, rest)
	case "swap":
		res, err := c.svc.Swap(ctx, prefs.LocalClient)
		return c.printResult(res, err)
	case "clear":
		p := c.svc.Clear(ctx, prefs.LocalClient)
		fmt.Fprintf(c.out, "Amount cleared (%s → %s)\n", p.From, p.To)
		return nil
	case "prefs":
		c.printPrefs(c.svc.Prefs(ctx, prefs.LocalClient))
		return nil
	case "help", "-h", "--help":
		fmt.Fprintln(c.out, usage)
		return nil
	default:
		errColor.Fprintf(c.out, "Unknown command: %s\n", args[0]) //nolint: errcheck
		fmt.Fprintln(c.out, usage)
		return errUsage
	}
}

// convert handles "<amount> [from] [to]"; a blank side keeps the saved one.
func (c *cli) convert(ctx context.Context, fields []string) error {
	saved := c.svc.Prefs(ctx, prefs.LocalClient)
	from, to := saved.From, saved.To
	if len(fields) > 1 {
		from = fields[1]
	}
	if len(fields) > 2 {
		to = fields[2]
	}
	res, err := c.svc.Convert(ctx, prefs.LocalClient, fields[0], from, to)
	return c.printResult(res, err)
}

// interactive reads commands from in until EOF or quit.
func (c *cli) interactive(ctx context.Context, in io.Reader) error {
	res := c.svc.Resolution(ctx)
	c.printStatus(res)
	p := c.svc.Prefs(ctx, prefs.LocalClient)
	c.printPrefs(p)
	if p.Amount != "" {
		if r, err := c.svc.SetAmount(ctx, prefs.LocalClient, p.Amount); err == nil {
			_ = c.printResult(r, nil)
		}
	}
	dimColor.Fprintln(c.out, `Type "10 usd inr", "swap", "clear", "rates" or "quit".`) //nolint: errcheck

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "quit", "exit", "q":
			return nil
		case "rates", "refresh", "swap", "clear", "prefs", "help":
			_ = c.run(ctx, fields)
		case "convert":
			if len(fields) > 1 {
				_ = c.convert(ctx, fields[1:])
			}
		default:
			_ = c.convert(ctx, fields)
		}
	}
}

func (c *cli) printResult(res *widget.Result, err error) error {
	if err != nil {
		errColor.Fprintln(c.out, err) //nolint: errcheck
		return err
	}
	if res.Display == nil {
		c.printPrefs(res.Prefs)
		return nil
	}
	okColor.Fprintln(c.out, res.Display.Summary)  //nolint: errcheck
	dimColor.Fprintln(c.out, res.Display.Caption) //nolint: errcheck
	return nil
}

func (c *cli) printStatus(res domain.Resolution) {
	switch res.Source {
	case domain.SourceDegraded, domain.SourcePrevious:
		warnColor.Fprintln(c.out, res.Status) //nolint: errcheck
	default:
		statusColor.Fprintln(c.out, res.Status) //nolint: errcheck
	}
}

func (c *cli) printRates(res domain.Resolution) {
	c.printStatus(res)
	codes := res.Rates.Codes()
	fmt.Fprintf(c.out, "%d currencies: %s\n", len(codes), strings.Join(codes, " "))
}

func (c *cli) printPrefs(p domain.UserPrefs) {
	amount := p.Amount
	if amount == "" {
		amount = "-"
	}
	fmt.Fprintf(c.out, "%s → %s  amount: %s\n", p.From, p.To, amount)
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		return 1
	}
}
