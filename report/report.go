// Package report writes the final clustering: one line per cluster,
// representative identifier first, then tab-separated members in
// assignment order (§6's persisted state layout), grounded on the
// original qTMclust+.cpp output loop's shape and the teacher's
// plain io.Writer-based writers elsewhere in the module.
package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/GRAPH-0/USalign-parallel/cluster"
)

// Write emits state's clustering to w, one cluster per line.
func Write(w io.Writer, state *cluster.State) error {
	bw := bufio.NewWriter(w)
	for _, group := range state.GroupedMembers() {
		if len(group) == 0 {
			continue
		}
		if _, err := bw.WriteString(group[0].ID); err != nil {
			return fmt.Errorf("report: %w", err)
		}
		for _, member := range group[1:] {
			if _, err := bw.WriteString("\t" + member.ID); err != nil {
				return fmt.Errorf("report: %w", err)
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	return bw.Flush()
}
