// Package config defines the clustering run's configuration surface
// (§6) and its flag.FlagSet-based parsing, in the style of the
// teacher's seq.Options + seq_compat.go: a plain struct of tunables
// filled in by one parse function, no external CLI framework.
package config

import (
	"flag"
	"fmt"
	"runtime"
)

// Split selects how a single input file is broken into chains, the
// reduced form of the original's -split/-ter handling (SUPPLEMENTED
// FEATURES #1): full TER/ENDMDL token scanning is itself file-format
// parsing and stays an external-collaborator concern.
type Split int

const (
	SplitNone  Split = iota // no extra split: one chain per parsed chain entry
	SplitModel              // one chain per model (multi-model files)
	SplitChain              // one chain per chain tag
)

func (s Split) String() string {
	switch s {
	case SplitModel:
		return "model"
	case SplitChain:
		return "chain"
	default:
		return "none"
	}
}

// Options is the full configuration surface of §6 plus the
// supplemented loader knobs of SPEC_FULL.md.
type Options struct {
	TMcut float64 // T, default 0.5, must be in [0.45, 1)
	S     int     // composite rule 1..6, default 2
	T     int     // worker count, default hardware concurrency
	Fast  bool    // force tier-1 fast mode
	Init  string  // preassignment hint file path, "" disables
	Out   string  // output path, "" means stdout

	HwRMSD     bool // enable the HwRMSD pre-filter of §4.4
	HwRMSDIter int  // HwRMSD iteration count, default 10

	Atom  string // representative-atom name override, "" auto-detects
	Mol   int    // molecule-type override: 0 auto-detect, else chain.MolProtein/MolRNA
	Dir   string // folder-of-chains mode root, "" disables
	Split Split  // split mode for single-file input

	Verbose bool // -v: emit progress lines via log

	Args []string // remaining positional arguments (input paths)
}

// Parse fills an Options from argv (excluding the program name),
// applying defaults and validating §6's constraints.
func Parse(argv []string) (*Options, error) {
	fs := flag.NewFlagSet("qtmclust", flag.ContinueOnError)

	o := &Options{}
	fs.Float64Var(&o.TMcut, "TMcut", 0.5, "TM-score cutoff T, in [0.45, 1)")
	fs.IntVar(&o.S, "s", 2, "TM-score composite rule, 1..6")
	fs.IntVar(&o.T, "t", runtime.GOMAXPROCS(0), "worker count")
	fs.BoolVar(&o.Fast, "fast", false, "force tier-1 fast mode for every pair")
	fs.StringVar(&o.Init, "init", "", "initial-cluster hint file")
	fs.StringVar(&o.Out, "o", "", "cluster output path (default stdout)")
	fs.BoolVar(&o.HwRMSD, "hwrmsd", true, "enable the HwRMSD pre-filter")
	fs.IntVar(&o.HwRMSDIter, "iter", 10, "HwRMSD iteration count")
	fs.StringVar(&o.Atom, "atom", "", "representative-atom name override (default: auto)")
	var molFlag string
	fs.StringVar(&molFlag, "mol", "", "molecule-type override: protein, RNA, or empty for auto")
	fs.StringVar(&o.Dir, "dir", "", "folder-of-chains mode: directory of single-chain files")
	var splitFlag string
	fs.StringVar(&splitFlag, "split", "none", "split mode for a single multi-chain input: none, model, chain")
	fs.BoolVar(&o.Verbose, "v", false, "emit progress to stderr")

	if err := fs.Parse(argv); err != nil {
		return nil, err
	}

	if err := o.applyMol(molFlag); err != nil {
		return nil, err
	}
	if err := o.applySplit(splitFlag); err != nil {
		return nil, err
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	o.Args = fs.Args()
	return o, nil
}

func (o *Options) applyMol(s string) error {
	switch s {
	case "":
		o.Mol = 0
	case "protein":
		o.Mol = -1
	case "RNA", "rna":
		o.Mol = 1
	default:
		return fmt.Errorf("config: -mol must be protein, RNA, or empty, got %q", s)
	}
	return nil
}

func (o *Options) applySplit(s string) error {
	switch s {
	case "none", "":
		o.Split = SplitNone
	case "model":
		o.Split = SplitModel
	case "chain":
		o.Split = SplitChain
	default:
		return fmt.Errorf("config: -split must be none, model, or chain, got %q", s)
	}
	return nil
}

// Validate checks the constraints §6 states explicitly.
func (o *Options) Validate() error {
	if o.TMcut < 0.45 || o.TMcut >= 1 {
		return fmt.Errorf("config: TMcut must be in [0.45, 1), got %v", o.TMcut)
	}
	if o.S < 1 || o.S > 6 {
		return fmt.Errorf("config: s must be in 1..6, got %d", o.S)
	}
	if o.T <= 0 {
		return fmt.Errorf("config: t (worker count) must be a positive integer, got %d", o.T)
	}
	return nil
}
