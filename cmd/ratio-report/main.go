package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"occratios/internal/app"
	"occratios/internal/config"
	"occratios/internal/operations"
	"occratios/pkg/contracts"
)

var errShowVersion = errors.New("version requested")

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, errShowVersion) {
		fmt.Println(contracts.GetFullVersionString("ratio-report"))
		return
	}
	if err != nil {
		os.Exit(2)
	}
	os.Exit(app.Main(operations.PipelineRatios, opts))
}

// parseFlags maps command-line flags onto config overrides. Only flags
// given explicitly override file and environment values.
func parseFlags(args []string) (app.Options, error) {
	fs := flag.NewFlagSet("ratio-report", flag.ContinueOnError)
	showVersion := fs.Bool("version", false, "print version information and exit")
	configFile := fs.String("config", "", "path to occratios.yaml (defaults to ./occratios.yaml or ./configs/occratios.yaml)")
	input := fs.String("in", "", "balance-sheet table (.csv or .xlsx)")
	output := fs.String("out", "", "output directory for the summary and run manifest")
	clean := fs.Bool("clean", false, "drop incomplete rows and winsorize essential fields before calculating")
	cutoff := fs.Float64("cutoff", config.DefaultDepositCutoff, "smallest deposit base for which loan_to_deposit is reported")
	noCutoff := fs.Bool("no-cutoff", false, "suppress loan_to_deposit only for a zero deposit base")
	noClip := fs.Bool("no-clip", false, "report ratios without clamping them to their bounds")
	if err := fs.Parse(args); err != nil {
		return app.Options{}, err
	}
	if *showVersion {
		return app.Options{}, errShowVersion
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return app.Options{}, fmt.Errorf("unexpected arguments")
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	apply := func(cfg *config.Config) {
		if set["in"] {
			cfg.Paths.InputFile = *input
		}
		if set["out"] {
			cfg.Paths.OutputDir = *output
		}
		if set["clean"] {
			cfg.Analysis.CleanInput = *clean
		}
		if set["cutoff"] {
			cfg.Analysis.DepositCutoff = *cutoff
			cfg.Analysis.ApplyDepositCutoff = true
		}
		if set["no-cutoff"] {
			cfg.Analysis.ApplyDepositCutoff = !*noCutoff
		}
		if set["no-clip"] {
			cfg.Analysis.ClipRatios = !*noClip
		}
	}

	return app.Options{ConfigFile: *configFile, Apply: apply}, nil
}
