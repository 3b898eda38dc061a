package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xela07ax/ics-breach-sim/internal/console/handler"
	"github.com/xela07ax/ics-breach-sim/internal/domain"
	"github.com/xela07ax/ics-breach-sim/internal/infra"
	"github.com/xela07ax/ics-breach-sim/internal/notify"
	breach "github.com/xela07ax/ics-breach-sim/internal/signal"
)

var viaAPI bool

var triggerCmd = &cobra.Command{
	Use:   "trigger <target>",
	Short: "Write the breach flag for a dashboard",
	Long:  "trigger writes the breach flag straight into Redis (or through the simd remote control with --api); the dashboard picks it up on its next poll.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := targetArg(args)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if viaAPI {
			resp, err := apiClient().Signal(ctx, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", resp.Target, resp.Status)
			return nil
		}

		cfg, err := infra.LoadConfig(configPath)
		if err != nil {
			return err
		}
		logger := cliLogger(cfg.Logger)
		defer logger.Sync()

		rdb, err := breach.Connect(ctx, cfg.Redis, cfg.Signal.ConnectAttempts, logger)
		defer rdb.Close()
		if err != nil {
			return fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		// Без GuardedChannel: оператору нужна ошибка, а не тихий no-op
		if err := breach.NewRedisChannel(rdb, logger).Signal(ctx, target); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: flag %s written\n", target, infra.BreachFlagKey(target))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [target]",
	Short: "Show dashboard phases",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := apiClient()
		if len(args) == 0 {
			states, err := c.Dashboards(cmd.Context())
			if err != nil {
				return err
			}
			printStates(cmd.OutOrStdout(), states)
			return nil
		}

		target, err := targetArg(args)
		if err != nil {
			return err
		}
		st, err := c.Dashboard(cmd.Context(), target)
		if err != nil {
			return err
		}
		printStates(cmd.OutOrStdout(), []domain.DashboardState{st})
		printUnits(cmd.OutOrStdout(), st.Units)
		return nil
	},
}

var breachCmd = &cobra.Command{
	Use:   "breach <target>",
	Short: "Start a local breach (countdown) on a dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := targetArg(args)
		if err != nil {
			return err
		}
		resp, err := apiClient().Breach(cmd.Context(), target)
		if err != nil {
			return err
		}
		printAction(cmd.OutOrStdout(), "breach", resp)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <target>",
	Short: "Restore a dashboard to its baseline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := targetArg(args)
		if err != nil {
			return err
		}
		resp, err := apiClient().Restore(cmd.Context(), target)
		if err != nil {
			return err
		}
		printAction(cmd.OutOrStdout(), "restore", resp)
		return nil
	},
}

var notifyLimit int

var notificationsCmd = &cobra.Command{
	Use:   "notifications [target]",
	Short: "List recent operator notifications",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var target domain.Target
		if len(args) == 1 {
			t, err := targetArg(args)
			if err != nil {
				return err
			}
			target = t
		}
		list, err := apiClient().Notifications(cmd.Context(), target, notifyLimit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tTARGET\tKIND\tTITLE")
		for _, n := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.Timestamp.Format(time.TimeOnly), n.Target, n.Kind, n.Title)
		}
		return w.Flush()
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [target]",
	Short: "Stream state changes and notifications",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var target domain.Target
		if len(args) == 1 {
			t, err := targetArg(args)
			if err != nil {
				return err
			}
			target = t
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		return apiClient().Watch(ctx, target, func(eventType string, data json.RawMessage) {
			switch eventType {
			case notify.EventState:
				var st domain.DashboardState
				if json.Unmarshal(data, &st) == nil {
					fmt.Fprintf(out, "[state] %s %s countdown=%d\n", st.Target, st.Phase, st.Countdown)
				}
			case notify.EventNotification:
				var n domain.Notification
				if json.Unmarshal(data, &n) == nil {
					fmt.Fprintf(out, "[toast] %s %s: %s\n", n.Target, n.Title, n.Description)
				}
			}
		})
	},
}

func init() {
	triggerCmd.Flags().BoolVar(&viaAPI, "api", false, "Signal through simd /breach-control instead of Redis")
	notificationsCmd.Flags().IntVarP(&notifyLimit, "limit", "n", 20, "Maximum number of notifications")
}

func printStates(w io.Writer, states []domain.DashboardState) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "TARGET\tPHASE\tCOUNTDOWN\tUNITS\tSINCE")
	for _, s := range states {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", s.Target, s.Phase, s.Countdown, len(s.Units), s.LastTransition.Format(time.TimeOnly))
	}
	tw.Flush()
}

func printUnits(w io.Writer, units domain.Snapshot) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "\nID\tKIND\tNAME\tSTATUS\tHEALTH")
	for _, u := range units {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Kind, u.Name, u.Status, u.Health)
	}
	tw.Flush()
}

func printAction(w io.Writer, action string, resp handler.ActionResponse) {
	if !resp.Accepted {
		fmt.Fprintf(w, "%s %s: ignored, dashboard is %s\n", action, resp.State.Target, resp.State.Phase)
		return
	}
	fmt.Fprintf(w, "%s %s: now %s", action, resp.State.Target, resp.State.Phase)
	if resp.State.Phase == domain.PhaseBreaching {
		fmt.Fprintf(w, " (%ds)", resp.State.Countdown)
	}
	fmt.Fprintln(w)
}
