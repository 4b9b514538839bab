package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/ksim/config"
	"github.com/rustyeddy/ksim/market"
	"github.com/rustyeddy/ksim/sim"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scripted steps from a config file",
	Long: `Start a run and execute the config's steps in order, then print a
summary. A rejected step is reported and the script carries on.

Example:
  ksim run -f examples/stock.yaml`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
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

	if err := s.runSteps(cmd.Context(), cfg.Steps); err != nil {
		return err
	}
	sum, err := s.finish()
	printSummary(s.out, sum)
	return err
}

func (s *session) runSteps(ctx context.Context, steps []config.Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.step(step)
		s.flushNotices()
		if err != nil {
			fmt.Fprintf(s.out, "step %d (%s): %v\n", i+1, step.Action, err)
			s.log.Warn("step rejected", zap.Int("step", i+1), zap.String("action", step.Action), zap.Error(err))
		}
	}
	return nil
}

func (s *session) step(st config.Step) error {
	ref := fmt.Sprintf("#%d", st.Lot)
	switch st.Action {
	case config.StepBuy:
		return s.open(sim.Spot, st.Qty, st.Percent, 1)
	case config.StepLong:
		return s.open(sim.MarginLong, st.Qty, st.Percent, st.Leverage)
	case config.StepShort:
		return s.open(sim.MarginShort, st.Qty, st.Percent, st.Leverage)
	case config.StepClose:
		return s.close(ref, st.Qty, st.Percent)
	case config.StepStops:
		return s.setStops(ref, &st.StopLoss, &st.TakeProfit)
	case config.StepNext:
		n := st.Bars
		if n == 0 {
			n = 1
		}
		s.engine.AdvanceN(n)
		return nil
	case config.StepFlatten:
		return s.engine.SettleAll(false)
	case config.StepSettle:
		return s.engine.SettleAll(true)
	}
	return fmt.Errorf("unknown action %q", st.Action)
}
