package metrics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Rorical/tunneldesk/internal/models"
)

const (
	BytesIn  = "bytesIn"
	BytesOut = "bytesOut"

	// LabelLayout formats the per-second buckets
	LabelLayout = "02/01/06 15:04:05"
)

// Series is a labelled list of values in bucket order
type Series struct {
	Labels []string
	Values []float64
}

func (s Series) Total() float64 {
	var total float64
	for _, v := range s.Values {
		total += v
	}
	return total
}

// GroupBySecond sums metric values per name and per second. Buckets keep
// the order in which they first appear.
func GroupBySecond(metrics []models.Metric) map[string]Series {
	grouped := make(map[string]Series)
	index := make(map[string]map[string]int)

	for _, m := range metrics {
		label := m.Timestamp.Truncate(time.Second).Format(LabelLayout)
		if index[m.Name] == nil {
			index[m.Name] = make(map[string]int)
		}
		s := grouped[m.Name]
		if i, ok := index[m.Name][label]; ok {
			s.Values[i] += m.Value
		} else {
			index[m.Name][label] = len(s.Labels)
			s.Labels = append(s.Labels, label)
			s.Values = append(s.Values, m.Value)
		}
		grouped[m.Name] = s
	}
	return grouped
}

// Dashboard is the data behind the metrics view. Error is set when the last
// refresh failed.
type Dashboard struct {
	client *Client
	now    func() time.Time

	SiteID   string
	Current  models.CurrentSite
	BytesIn  Series
	BytesOut Series
	Events   []models.Event
	Error    bool
}

// NewDashboard shows every site, or only siteID when it is non-empty
func NewDashboard(client *Client, siteID string) *Dashboard {
	return &Dashboard{client: client, SiteID: siteID, now: time.Now}
}

// Refresh fetches the current site, the metrics and the events. The first
// failure flips Error and is returned; there is no retry.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.Error = false
	if err := d.refresh(ctx); err != nil {
		d.Error = true
		return fmt.Errorf("failed to refresh dashboard: %w", err)
	}
	return nil
}

func (d *Dashboard) refresh(ctx context.Context) error {
	current, err := d.client.Current(ctx)
	if err != nil {
		return err
	}

	var (
		metrics []models.Metric
		events  []models.Event
	)
	if d.SiteID == "" {
		if metrics, err = d.client.Metrics(ctx); err != nil {
			return err
		}
		if events, err = d.client.Events(ctx); err != nil {
			return err
		}
	} else {
		if metrics, err = d.client.SiteMetrics(ctx, d.SiteID); err != nil {
			return err
		}
		if events, err = d.client.SiteEvents(ctx, d.SiteID); err != nil {
			return err
		}
	}

	grouped := GroupBySecond(metrics)
	d.Current = current
	d.BytesIn = grouped[BytesIn]
	d.BytesOut = grouped[BytesOut]
	d.Events = events
	return nil
}

// UpSince describes how long ago the current site started
func (d *Dashboard) UpSince() string {
	if d.Current.StartedAt.IsZero() {
		return "unknown"
	}
	return Ago(d.Current.StartedAt, d.now())
}

// Ago renders the distance between t and now in words ("5 minutes ago")
func Ago(t, now time.Time) string {
	d := now.Sub(t)
	suffix := "ago"
	if d < 0 {
		d = -d
		suffix = "from now"
	}

	var phrase string
	switch {
	case d < 45*time.Second:
		phrase = "a few seconds"
	case d < 90*time.Second:
		phrase = "a minute"
	case d < 45*time.Minute:
		phrase = fmt.Sprintf("%d minutes", int(math.Round(d.Minutes())))
	case d < 90*time.Minute:
		phrase = "an hour"
	case d < 22*time.Hour:
		phrase = fmt.Sprintf("%d hours", int(math.Round(d.Hours())))
	case d < 36*time.Hour:
		phrase = "a day"
	default:
		phrase = fmt.Sprintf("%d days", int(math.Round(d.Hours()/24)))
	}
	return phrase + " " + suffix
}
