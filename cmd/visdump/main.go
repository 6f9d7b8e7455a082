package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/perbu/visdump/pkg/loader"
	"github.com/perbu/visdump/pkg/observation"
	"github.com/perbu/visdump/pkg/visdump"
)

type options struct {
	LogLevel string `long:"log-level" env:"VISDUMP_LOG_LEVEL" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Log level"`
	LogJSON  bool   `long:"log-json" env:"VISDUMP_LOG_JSON" description:"Log as JSON instead of text"`

	DumpAllData dumpAllDataCommand `command:"dump-all-data" description:"Dump every visibility of an observation to a CSV file"`
	DumpData    dumpDataCommand    `command:"dump-data" description:"Dump one baseline of one timestep and coarse channel to a CSV file"`
	DumpContext dumpContextCommand `command:"dump-context" description:"Print an overview of an observation"`
}

type encodingOptions struct {
	VisRadix int  `short:"r" long:"vis-radix" env:"VISDUMP_RADIX" default:"0" description:"Radix (base) of visibility values, 0 for decimal, else 2-36"`
	Absolute bool `short:"a" long:"absolute" env:"VISDUMP_ABSOLUTE" description:"Dump the absolute value of each sample"`
}

type dumpAllDataCommand struct {
	Observation  string `short:"m" long:"observation" env:"VISDUMP_OBSERVATION" description:"Path to the observation directory"`
	DumpFilename string `short:"d" long:"dump-filename" env:"VISDUMP_DUMP_FILENAME" description:"Output CSV file"`
	MetricsFile  string `long:"metrics-file" env:"VISDUMP_METRICS_FILE" description:"Write run statistics in Prometheus text format to this file"`

	Encoding encodingOptions `group:"Encoding"`
}

type dumpDataCommand struct {
	Observation  string `short:"m" long:"observation" env:"VISDUMP_OBSERVATION" description:"Path to the observation directory"`
	DumpFilename string `short:"d" long:"dump-filename" env:"VISDUMP_DUMP_FILENAME" description:"Output CSV file"`
	Timestep     int    `short:"t" long:"timestep" description:"Timestep index"`
	CoarseChan   int    `short:"c" long:"coarse-channel" description:"Coarse channel index"`
	Baseline     int    `short:"b" long:"baseline" description:"Baseline index"`
	FineChan1    int    `long:"fine-chan1" default:"0" description:"First fine channel (inclusive)"`
	FineChan2    int    `long:"fine-chan2" description:"Last fine channel (exclusive), 0 for all remaining"`

	Encoding encodingOptions `group:"Encoding"`
}

type dumpContextCommand struct {
	Observation string `short:"m" long:"observation" env:"VISDUMP_OBSERVATION" description:"Path to the observation directory"`
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "visdump"

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, err)
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger := newLogger(opts.LogLevel, opts.LogJSON, stderr)

	var err error
	switch parser.Active.Name {
	case "dump-all-data":
		err = opts.DumpAllData.run(logger, stdout)
	case "dump-data":
		err = opts.DumpData.run(logger, stdout)
	case "dump-context":
		err = opts.DumpContext.run(stdout)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newLogger(level string, json bool, out io.Writer) logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(out)
	if lvl, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(lvl)
	}
	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return l.WithField("run_id", uuid.New().String())
}

func (e encodingOptions) encoding() visdump.Encoding {
	return visdump.Encoding{Radix: e.VisRadix, Absolute: e.Absolute}
}

func requireFlag(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return errors.Wrapf(visdump.ErrConfig, "--%s is required", name)
	}
	return nil
}

func (c *dumpAllDataCommand) run(logger logrus.FieldLogger, stdout io.Writer) error {
	// Step 1: validate everything that needs no I/O
	if err := requireFlag(c.Observation, "observation"); err != nil {
		return err
	}
	if err := requireFlag(c.DumpFilename, "dump-filename"); err != nil {
		return err
	}
	enc := c.Encoding.encoding()
	if err := enc.Validate(); err != nil {
		return err
	}

	// Step 2: open the observation
	fmt.Fprintln(stdout, "Dumping data via visdump...")
	obs, err := loader.Load(c.Observation)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Correlator version: %s\n", obs.Meta.CorrVersion)

	// Step 3: dump
	d, err := visdump.NewDumper(obs, enc, logger)
	if err != nil {
		return err
	}
	stats, err := d.DumpToFile(c.DumpFilename)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, stats.String())

	// Step 4: optional metrics
	if c.MetricsFile != "" {
		labels := prometheus.Labels{"obs_id": strconv.FormatUint(uint64(obs.Meta.ObsID), 10)}
		if err := visdump.WriteMetricsFile(c.MetricsFile, stats, labels); err != nil {
			return errors.Wrap(err, "writing metrics")
		}
	}

	return nil
}

func (c *dumpDataCommand) run(logger logrus.FieldLogger, stdout io.Writer) error {
	if err := requireFlag(c.Observation, "observation"); err != nil {
		return err
	}
	if err := requireFlag(c.DumpFilename, "dump-filename"); err != nil {
		return err
	}
	enc := c.Encoding.encoding()
	if err := enc.Validate(); err != nil {
		return err
	}

	obs, err := loader.Load(c.Observation)
	if err != nil {
		return err
	}

	sel := visdump.Selection{
		Timestep:     c.Timestep,
		CoarseChan:   c.CoarseChan,
		Baseline:     c.Baseline,
		FineChanFrom: c.FineChan1,
		FineChanTo:   c.FineChan2,
	}
	if sel.FineChanTo == 0 {
		sel.FineChanTo = obs.NumFineChannelsPerCoarse()
	}

	d, err := visdump.NewDumper(obs, enc, logger)
	if err != nil {
		return err
	}
	stats, err := d.DumpSelectionToFile(c.DumpFilename, sel)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, stats.Stats.String())
	fmt.Fprintf(stdout, "Mean %v, standard deviation %v\n", stats.Mean, stats.StdDev)
	return nil
}

func (c *dumpContextCommand) run(stdout io.Writer) error {
	if err := requireFlag(c.Observation, "observation"); err != nil {
		return err
	}

	obs, err := loader.Load(c.Observation)
	if err != nil {
		return err
	}

	out, err := observation.Summarize(obs.Meta, obs.NumSliceFiles()).YAML()
	if err != nil {
		return err
	}
	_, err = stdout.Write(out)
	return err
}
