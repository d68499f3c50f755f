package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/02loveslollipop/plant-growth-tracker/internal/logging"
	"github.com/02loveslollipop/plant-growth-tracker/internal/timefmt"
	"github.com/02loveslollipop/plant-growth-tracker/services/viewer/internal/client"
	"github.com/02loveslollipop/plant-growth-tracker/services/viewer/internal/config"
	"github.com/02loveslollipop/plant-growth-tracker/services/viewer/internal/render"
	"github.com/02loveslollipop/plant-growth-tracker/services/viewer/internal/view"
)

var errUsage = errors.New("usage")

const usage = `Usage: viewer <command> [flags]

Commands:
  plants                                     list plants
  create-plant -name NAME [-description D]   create a plant
  upload -plant ID -file PATH -timestamp TS [-density D]
                                             upload a photograph
  timeline -plant ID                         list a plant's images
  growth -plant ID [-horizon DAYS]           show the growth analysis
`

func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errUsage
	}

	api := client.New(&http.Client{Timeout: cfg.RequestTimeout}, cfg.APIBaseURL, cfg.BearerToken)

	switch args[0] {
	case "plants":
		return runPlants(ctx, api, args[1:], out)
	case "create-plant":
		return runCreatePlant(ctx, api, args[1:], out)
	case "upload":
		return runUpload(ctx, api, args[1:], out)
	case "timeline":
		return runTimeline(ctx, api, args[1:], out)
	case "growth":
		return runGrowth(ctx, api, cfg, args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprintf(out, "unknown command %q\n\n%s", args[0], usage)
		return errUsage
	}
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func runPlants(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := newFlagSet("plants", out)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	plants, err := api.ListPlants(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch plants: %w", err)
	}
	return render.Plants(out, plants)
}

func runCreatePlant(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := newFlagSet("create-plant", out)
	name := fs.String("name", "", "Plant name (required)")
	description := fs.String("description", "", "Plant description")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *name == "" {
		return errors.New("plant name is required")
	}

	plant, err := api.CreatePlant(ctx, *name, *description)
	if err != nil {
		return fmt.Errorf("failed to create plant: %w", err)
	}
	fmt.Fprintf(out, "Created plant %d (%s)\n", plant.ID, plant.Name)
	return nil
}

func runUpload(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := newFlagSet("upload", out)
	plantID := fs.Int64("plant", 0, "Plant ID (required)")
	path := fs.String("file", "", "Image file (png, jpg, jpeg, gif)")
	rawTS := fs.String("timestamp", "", "When the photograph was taken (ISO-8601)")
	density := fs.Float64("density", -1, "Green density in [0,1]; omitted lets the server analyze the image")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *plantID <= 0 {
		return errors.New("-plant is required")
	}
	if *path == "" {
		return errors.New("please select an image to upload")
	}
	if *rawTS == "" {
		return errors.New("please select a timestamp")
	}
	ts, err := timefmt.Parse(*rawTS)
	if err != nil {
		return err
	}

	var densityPtr *float64
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "density" {
			densityPtr = density
		}
	})

	f, err := os.Open(*path)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, err := api.UploadImage(ctx, *plantID, filepath.Base(*path), f, ts, densityPtr)
	if err != nil {
		return fmt.Errorf("failed to upload image: %w", err)
	}
	fmt.Fprintf(out, "Uploaded image %d taken %s (green density %.2f%%)\n",
		img.ID, img.Timestamp.Format(render.TimelineLayout), img.GreenDensity*100)
	return nil
}

func runTimeline(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := newFlagSet("timeline", out)
	plantID := fs.Int64("plant", 0, "Plant ID (required)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *plantID <= 0 {
		return errors.New("-plant is required")
	}

	images, err := api.ListImages(ctx, *plantID)
	if err != nil {
		return fmt.Errorf("failed to fetch images: %w", err)
	}
	return render.Timeline(out, images)
}

func runGrowth(ctx context.Context, api *client.Client, cfg config.Config, args []string, out io.Writer) error {
	fs := newFlagSet("growth", out)
	plantID := fs.Int64("plant", 0, "Plant ID (required)")
	horizon := fs.Float64("horizon", cfg.ProjectionDays, "Projection horizon in days")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *plantID <= 0 {
		return errors.New("-plant is required")
	}
	if !config.ValidHorizon(*horizon) {
		return fmt.Errorf("invalid -horizon %v: must be a finite number of days >= 0", *horizon)
	}

	v := view.New(api, *plantID, view.WithHorizon(*horizon), view.WithLogger(logging.Global()))
	v.OnChange(func(s view.Snapshot) {
		logging.Global().Debug("growth view transition", "plant_id", s.PlantID, "request_id", s.RequestID, "state", s.State.String())
	})

	start := time.Now()
	snap, _ := v.Refresh(ctx)
	logging.Global().Debug("growth analysis fetched", "plant_id", *plantID, "duration", time.Since(start).String())

	return render.Growth(out, snap)
}
