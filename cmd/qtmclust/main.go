// qtmclust clusters a set of protein/RNA chains by structural
// similarity (TM-score), following the mymain()/os.Exit(mymain())
// entry-point shape of the teacher's seq_compat.go.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path"

	"github.com/GRAPH-0/USalign-parallel/align"
	"github.com/GRAPH-0/USalign-parallel/chain"
	"github.com/GRAPH-0/USalign-parallel/cluster"
	"github.com/GRAPH-0/USalign-parallel/config"
	"github.com/GRAPH-0/USalign-parallel/hint"
	"github.com/GRAPH-0/USalign-parallel/loader"
	"github.com/GRAPH-0/USalign-parallel/report"
)

const (
	exitSuccess          = 0
	exitConfigError      = 1
	exitEmptyInput       = 2
	exitAlignmentFailure = 3
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage:", path.Base(os.Args[0]), "[options] input.pdb[.gz|.cif]")
}

func mymain() int {
	opt, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Fatal:", err)
		usage()
		return exitConfigError
	}
	if opt.Dir == "" && len(opt.Args) != 1 {
		fmt.Fprintln(os.Stderr, "Fatal: expected exactly one input file, got", len(opt.Args))
		usage()
		return exitConfigError
	}

	var recs []*chain.Record
	if opt.Dir != "" {
		recs, err = loader.LoadDir(opt.Dir, opt.Args[0], opt)
	} else {
		recs, err = loader.LoadFile(opt.Args[0], opt)
	}
	if err != nil {
		if errors.Is(err, loader.ErrEmptyInput) {
			fmt.Fprintln(os.Stderr, "Fatal:", err)
			return exitEmptyInput
		}
		fmt.Fprintln(os.Stderr, "Fatal:", err)
		return exitConfigError
	}

	var hints *hint.Set
	if opt.Init != "" {
		hints, err = hint.Load(opt.Init)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Fatal:", err)
			return exitConfigError
		}
	}

	store := chain.NewStore(recs)
	kernel := align.NewDefaultKernel()
	cfg := cluster.Config{
		S:             opt.S,
		T:             opt.TMcut,
		FastOpt:       opt.Fast,
		HwRMSDEnabled: opt.HwRMSD,
		HwRMSDIter:    opt.HwRMSDIter,
		Threads:       opt.T,
		Hints:         hints,
	}

	var progress func(cluster.ProgressEvent)
	if opt.Verbose {
		progress = func(e cluster.ProgressEvent) {
			log.Printf("%d/%d %s #repr=%d", e.Index+1, e.Total, e.ChainID, e.ReprCount)
		}
	}

	state, err := cluster.Scan(context.Background(), store, kernel, cfg, progress)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Fatal:", err)
		return exitAlignmentFailure
	}

	out := os.Stdout
	if opt.Out != "" {
		f, err := os.Create(opt.Out)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Fatal:", err)
			return exitConfigError
		}
		defer f.Close()
		out = f
	}
	if err := report.Write(out, state); err != nil {
		fmt.Fprintln(os.Stderr, "Fatal:", err)
		return exitAlignmentFailure
	}
	return exitSuccess
}

func main() {
	os.Exit(mymain())
}
