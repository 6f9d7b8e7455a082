package main

import (
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/perbu/visdump/pkg/loader"
	"github.com/perbu/visdump/pkg/observation"
)

type options struct {
	Output         string `short:"o" long:"output" required:"true" description:"Directory to write the observation to"`
	ObsID          uint32 `long:"obs-id" default:"1065880128" description:"Observation id"`
	Antennas       int    `long:"antennas" default:"8" description:"Number of antennas"`
	CoarseChannels int    `long:"coarse-chans" default:"2" description:"Number of coarse channels"`
	Timesteps      int    `long:"timesteps" default:"2" description:"Number of timesteps"`
	FineChannels   int    `long:"fine-chans" default:"32" description:"Fine channels per coarse channel"`
	Pols           int    `long:"pols" default:"4" description:"Visibility polarisation products"`
	Seed           uint64 `long:"seed" default:"1" description:"Random seed"`
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	fmt.Println("Synthetic Observation Generator")
	fmt.Println("===============================")
	fmt.Println()

	// Step 1: Generate samples in memory
	fmt.Println("Step 1: Generating samples...")
	mem, err := observation.Synthesize(observation.SyntheticConfig{
		ObsID:          opts.ObsID,
		Antennas:       opts.Antennas,
		CoarseChannels: opts.CoarseChannels,
		Timesteps:      opts.Timesteps,
		FineChannels:   opts.FineChannels,
		Pols:           opts.Pols,
		Seed:           opts.Seed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating observation: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  ✓ %d slices of %d floats (%d baselines)\n\n", len(mem.Slices), mem.Meta.FloatsPerSlice(), mem.Meta.NumBaselines())

	// Step 2: Write metadata and slice files
	fmt.Printf("Step 2: Writing to %s...\n", opts.Output)
	if err := loader.Save(opts.Output, mem); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving observation: %v\n", err)
		os.Exit(1)
	}
	sizeMB := float64(len(mem.Slices)*mem.Meta.FloatsPerSlice()*4) / (1024 * 1024)
	fmt.Printf("  ✓ Saved (%.2f MB of samples)\n\n", sizeMB)

	fmt.Println("Done! Dump it with:")
	fmt.Printf("  visdump dump-all-data -m %s -d dump.csv\n", opts.Output)
}
