package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rorical/tunneldesk/internal/config"
	"github.com/Rorical/tunneldesk/internal/metrics"
	"github.com/Rorical/tunneldesk/ui/styles"
)

var dashboardSite string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print traffic metrics and events",
	Long:  `Fetch metrics and events from the metrics API of the active profile and print a summary.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), metrics.DefaultTimeout)
		defer cancel()

		d := metrics.NewDashboard(metrics.NewClient(cfg.MetricsURL()), dashboardSite)
		if err := d.Refresh(ctx); err != nil {
			log.Fatalf("Failed to load metrics from %s: %v", cfg.MetricsURL(), err)
		}
		printDashboard(cmd.OutOrStdout(), d, time.Now())
	},
}

func printDashboard(out io.Writer, d *metrics.Dashboard, now time.Time) {
	scope := "all sites"
	if d.SiteID != "" {
		scope = "site " + d.SiteID
	}
	fmt.Fprintln(out, styles.TitleStyle().Render("Dashboard ("+scope+")"))

	if d.Current.URL != "" {
		upSince := "unknown"
		if !d.Current.StartedAt.IsZero() {
			upSince = metrics.Ago(d.Current.StartedAt, now)
		}
		fmt.Fprintf(out, "Current site: %s (up since %s)\n", d.Current.URL, upSince)
	} else {
		fmt.Fprintln(out, "Current site: none")
	}
	fmt.Fprintln(out)

	printSeries(out, "Bytes in", d.BytesIn)
	printSeries(out, "Bytes out", d.BytesOut)

	fmt.Fprintln(out, styles.TitleStyle().Render("Events"))
	if len(d.Events) == 0 {
		fmt.Fprintln(out, "  no events")
		return
	}
	for _, e := range d.Events {
		fmt.Fprintf(out, "  %s  %s  %s\n", e.Timestamp.Format(metrics.LabelLayout), e.SiteID, e.Message)
	}
}

func printSeries(out io.Writer, title string, s metrics.Series) {
	fmt.Fprintf(out, "%s: %.0f total\n", title, s.Total())
	for i, label := range s.Labels {
		fmt.Fprintf(out, "  %s  %.0f\n", label, s.Values[i])
	}
	fmt.Fprintln(out)
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardSite, "site", "", "only show metrics and events for this site id")
	rootCmd.AddCommand(dashboardCmd)
}
