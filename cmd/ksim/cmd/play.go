package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/ksim/market"
	"github.com/rustyeddy/ksim/sim"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a run interactively",
	Long: `Start a run and read commands from stdin, one per line.

Commands:
  buy Q|P%          spot buy Q units (or P% of what cash covers)
  long Q|P% LEV     open a margin long
  short Q|P% LEV    open a margin short
  close LOT Q|P%    close part or all of a lot (LOT is #N or an id suffix)
  sl LOT PRICE      set stop-loss (0 clears)
  tp LOT PRICE      set take-profit (0 clears)
  next [N]          advance N bars (default 1)
  flatten           close every lot at the open, keep running
  settle            close every lot at the close and end the run
  status | lots | history | help | quit

Example:
  ksim play -f examples/stock.yaml`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	src := market.NewCachedSource(market.CSVSource{Dir: cfg.Data.Dir})
	s, err := newSession(cmd.Context(), cfg, src, log, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if err := s.play(cmd.Context(), cmd.InOrStdin()); err != nil {
		return err
	}
	sum, err := s.finish()
	printSummary(s.out, sum)
	return err
}

var errQuit = errors.New("quit")

// play reads commands until quit or end of input.
func (s *session) play(ctx context.Context, in io.Reader) error {
	printStatus(s.out, s.engine.Snapshot())

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.exec(strings.Fields(sc.Text()))
		s.flushNotices()
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(s.out, "error:", err)
		}
	}
}

func (s *session) exec(f []string) error {
	if len(f) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(f[0]), f[1:]

	switch cmd {
	case "buy", "long", "short":
		mode, _ := sim.ParseMode(cmd)
		need := 1
		if mode.Leveraged() {
			need = 2
		}
		if len(args) != need {
			return fmt.Errorf("usage: %s", usage[cmd])
		}
		qty, pct, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		lev := 1.0
		if mode.Leveraged() {
			if lev, err = parseNumber(args[1]); err != nil {
				return fmt.Errorf("bad leverage %q", args[1])
			}
		}
		return s.open(mode, qty, pct, lev)

	case "close":
		if len(args) != 2 {
			return fmt.Errorf("usage: %s", usage[cmd])
		}
		qty, pct, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		return s.close(args[0], qty, pct)

	case "sl", "tp":
		if len(args) != 2 {
			return fmt.Errorf("usage: %s", usage[cmd])
		}
		price, err := parseNumber(args[1])
		if err != nil {
			return fmt.Errorf("bad price %q", args[1])
		}
		if cmd == "sl" {
			return s.setStops(args[0], &price, nil)
		}
		return s.setStops(args[0], nil, &price)

	case "next":
		n := 1
		if len(args) > 0 {
			var err error
			if n, err = strconv.Atoi(args[0]); err != nil || n < 1 {
				return fmt.Errorf("bad bar count %q", args[0])
			}
		}
		s.engine.AdvanceN(n)
		printStatus(s.out, s.engine.Snapshot())
		return nil

	case "flatten":
		return s.engine.SettleAll(false)
	case "settle":
		return s.engine.SettleAll(true)

	case "status":
		printStatus(s.out, s.engine.Snapshot())
	case "lots":
		printLots(s.out, s.engine.Snapshot())
	case "history":
		printHistory(s.out, s.engine.Snapshot().Account.Transactions)
	case "help":
		for _, k := range usageOrder {
			fmt.Fprintln(s.out, " ", usage[k])
		}
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

var usage = map[string]string{
	"buy":     "buy Q|P%",
	"long":    "long Q|P% LEV",
	"short":   "short Q|P% LEV",
	"close":   "close LOT Q|P%",
	"sl":      "sl LOT PRICE",
	"tp":      "tp LOT PRICE",
	"next":    "next [N]",
	"flatten": "flatten",
	"settle":  "settle",
	"status":  "status",
	"lots":    "lots",
	"history": "history",
	"quit":    "quit",
}

var usageOrder = []string{"buy", "long", "short", "close", "sl", "tp", "next",
	"flatten", "settle", "status", "lots", "history", "quit"}
