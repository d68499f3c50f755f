// Package render prints plants, timelines and growth analyses to a
// terminal.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/02loveslollipop/plant-growth-tracker/services/viewer/internal/client"
	"github.com/02loveslollipop/plant-growth-tracker/services/viewer/internal/view"
)

const (
	// TimelineLayout prints a long date and time, e.g. "Jan 2, 2024, 9:30:00 AM".
	TimelineLayout = "Jan 2, 2006, 3:04:05 PM"

	NoImagesMessage      = "No images uploaded."
	NoPlantsMessage      = "No plants yet."
	ChartTooShortMessage = "Not enough data points to display the growth trend."

	barWidth = 40
)

// Plants prints one row per plant.
func Plants(w io.Writer, plants []client.Plant) error {
	if len(plants) == 0 {
		_, err := fmt.Fprintln(w, NoPlantsMessage)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION\tCREATED")
	for _, p := range plants {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Description, p.CreatedAt.Format(TimelineLayout))
	}
	return tw.Flush()
}

// Timeline prints a plant's images in order.
func Timeline(w io.Writer, images []client.Image) error {
	if len(images) == 0 {
		_, err := fmt.Fprintln(w, NoImagesMessage)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TAKEN\tGREEN DENSITY\tIMAGE")
	for _, img := range images {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", img.Timestamp.Format(TimelineLayout), percent(img.GreenDensity), img.ImageURL)
	}
	return tw.Flush()
}

// Growth prints the view state.
func Growth(w io.Writer, snap view.Snapshot) error {
	var b strings.Builder
	b.WriteString("Growth Rate Analysis\n\n")

	switch snap.State {
	case view.Loading:
		b.WriteString("Loading...\n")
	case view.Empty:
		b.WriteString(snap.Message + "\n")
	case view.Failed:
		b.WriteString(snap.Message)
		if snap.Err != nil {
			b.WriteString(" " + snap.Err.Error())
		}
		b.WriteString("\n")
	case view.Loaded:
		writeAnalysis(&b, snap.Analysis)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeAnalysis(b *strings.Builder, a *view.Analysis) {
	r := a.Result

	b.WriteString("Overall Growth Rate\n")
	fmt.Fprintf(b, "  Growth Rate: %s per day\n", percent(r.Rate))
	b.WriteString("  Calculation Details:\n")
	fmt.Fprintf(b, "    Green Density at Time T1: %s\n", percent(r.DensityT1))
	fmt.Fprintf(b, "    Green Density at Time T2: %s\n", percent(r.DensityT2))
	fmt.Fprintf(b, "    Time Difference: %s day(s)\n", days(r.TimeDifferenceDays))

	b.WriteString("\nGreen Density Over Time\n")
	if !a.ChartReady {
		b.WriteString("  " + ChartTooShortMessage + "\n")
	} else {
		for _, p := range a.Chart {
			fmt.Fprintf(b, "  %s  %6.2f%%  %s\n", p.Label, p.DensityPct, bar(p.DensityPct))
		}
	}

	b.WriteString("\nStatistical Insights\n")
	fmt.Fprintf(b, "  Initial Green Density (T1): %s\n", percent(r.DensityT1))
	fmt.Fprintf(b, "  Final Green Density (T2): %s\n", percent(r.DensityT2))
	fmt.Fprintf(b, "  Total Time: %s day(s)\n", days(r.TimeDifferenceDays))
	if a.PercentageChange != nil {
		fmt.Fprintf(b, "  Percentage Change: %.2f%%\n", *a.PercentageChange)
	} else {
		b.WriteString("  Percentage Change: N/A\n")
	}
	fmt.Fprintf(b, "  Average Daily Change: %.2f%% per day\n", a.AverageDailyChangePct)
	fmt.Fprintf(b, "  Projected Green Density (%s days): %s\n", days(a.Projection.HorizonDays), percent(a.Projection.ProjectedDensity))
}

func percent(fraction float64) string {
	return fmt.Sprintf("%.2f%%", fraction*100)
}

func days(d float64) string {
	return strconv.FormatFloat(math.Round(d*100)/100, 'f', -1, 64)
}

func bar(pct float64) string {
	n := int(math.Round(pct / 100 * barWidth))
	if n < 0 {
		n = 0
	}
	if n > barWidth {
		n = barWidth
	}
	return strings.Repeat("#", n)
}
