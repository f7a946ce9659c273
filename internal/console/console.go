// Package console is the interactive menu: it owns all terminal I/O, runs the
// retry-until-valid prompt loops and turns service errors into the messages a
// customer sees. Nothing here touches storage directly.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/tinoosan/bank/internal/help"
	"github.com/tinoosan/bank/internal/journal"
	"github.com/tinoosan/bank/internal/metrics"
	"github.com/tinoosan/bank/internal/service/account"
	"github.com/tinoosan/bank/internal/service/remit"
)

// BankName is printed in the banner and on exit.
const BankName = "Krish Enterprise Bank"

// Command is a main menu entry.
type Command int

const (
	CmdUnknown Command = iota
	CmdCreate
	CmdDelete
	CmdDeposit
	CmdWithdraw
	CmdRemit
	CmdHelp
	CmdExit
)

func (c Command) String() string {
	switch c {
	case CmdCreate:
		return "create"
	case CmdDelete:
		return "delete"
	case CmdDeposit:
		return "deposit"
	case CmdWithdraw:
		return "withdraw"
	case CmdRemit:
		return "remit"
	case CmdHelp:
		return "help"
	case CmdExit:
		return "exit"
	default:
		return "unknown"
	}
}

// ParseCommand accepts a menu number or a keyword, ignoring case.
func ParseCommand(s string) Command {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "create":
		return CmdCreate
	case "2", "delete":
		return CmdDelete
	case "3", "deposit":
		return CmdDeposit
	case "4", "withdraw":
		return CmdWithdraw
	case "5", "remit", "remittance":
		return CmdRemit
	case "6", "help":
		return CmdHelp
	case "7", "exit", "quit":
		return CmdExit
	default:
		return CmdUnknown
	}
}

// Deps are the services a console drives.
type Deps struct {
	Accounts account.Service
	Remit    remit.Service
	Help     *help.Desk
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Console runs one interactive session.
type Console struct {
	in  *bufio.Reader
	out io.Writer
	// fd is the terminal PINs are read from without echo; -1 when input is not a terminal.
	fd int

	accounts account.Service
	remit    remit.Service
	desk     *help.Desk
	metrics  *metrics.Metrics
	log      *slog.Logger
	now      func() time.Time
}

// New builds a console reading from in and writing to out. PIN entry is
// hidden when in is a terminal.
func New(in io.Reader, out io.Writer, d Deps) *Console {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	return &Console{
		in:       bufio.NewReader(in),
		out:      out,
		fd:       fd,
		accounts: d.Accounts,
		remit:    d.Remit,
		desk:     d.Help,
		metrics:  d.Metrics,
		log:      d.Logger,
		now:      time.Now,
	}
}

// Run prints the banner and serves the menu until exit, end of input or ctx
// cancellation. End of input is a normal exit.
func (c *Console) Run(ctx context.Context) error {
	c.banner(ctx)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.printf("\nMENU: (type number or keyword)\n")
		c.printf("1) Create        (create)\n")
		c.printf("2) Delete        (delete)\n")
		c.printf("3) Deposit       (deposit)\n")
		c.printf("4) Withdraw      (withdraw)\n")
		c.printf("5) Remittance    (remit / remittance)\n")
		c.printf("6) Help          (help)\n")
		c.printf("7) Exit          (exit)\n")
		line, err := c.ask("Select option: ")
		if errors.Is(err, io.EOF) {
			c.goodbye()
			return nil
		}
		if err != nil {
			return err
		}

		cmd := ParseCommand(line)
		switch cmd {
		case CmdCreate:
			err = c.create(ctx)
		case CmdDelete:
			err = c.delete(ctx)
		case CmdDeposit:
			err = c.deposit(ctx)
		case CmdWithdraw:
			err = c.withdraw(ctx)
		case CmdRemit:
			err = c.remittance(ctx)
		case CmdHelp:
			err = c.help(ctx)
		case CmdExit:
			c.goodbye()
			return nil
		default:
			c.printf("Invalid option. Please enter a menu number or keyword (e.g., 'create', 'deposit', 'remit', 'help', 'exit').\n")
			continue
		}
		if errors.Is(err, io.EOF) {
			c.goodbye()
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) banner(ctx context.Context) {
	c.printf("=============================================\n")
	c.printf("   Welcome to %s\n", BankName)
	c.printf("   How may I help you today?\n")
	c.printf("=============================================\n")
	c.printf("Session started: %s\n", c.now().Format(journal.TimeLayout))
	n, err := c.accounts.Count(ctx)
	if err != nil {
		c.log.Warn("count accounts", "err", err)
	}
	c.printf("Loaded accounts: %d\n", n)
	warnings, err := c.accounts.Audit(ctx)
	if err != nil {
		c.log.Warn("audit index", "err", err)
	}
	for _, w := range warnings {
		c.log.Warn("index and records disagree", "err", w)
		c.printf("Warning: %s\n", w)
	}
	c.metrics.Warned("audit", len(warnings))
	c.printf("---------------------------------------------\n")
}

func (c *Console) goodbye() {
	c.printf("Thank you for using %s. Goodbye!\n", BankName)
	c.summary()
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// readLine returns one line without its line ending. A final line without a
// newline is returned as is; io.EOF is reported only when nothing was read.
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) ask(prompt string) (string, error) {
	c.printf("%s", prompt)
	return c.readLine()
}

// askSecret reads a line without echo when attached to a terminal.
func (c *Console) askSecret(prompt string) (string, error) {
	if c.fd < 0 {
		return c.ask(prompt)
	}
	c.printf("%s", prompt)
	b, err := term.ReadPassword(c.fd)
	c.printf("\n")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
