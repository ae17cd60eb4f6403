// Package chain holds the in-memory, read-only-after-load structure
// store: one Record per parsed biomolecular chain, plus the Store that
// groups them for a clustering run.
package chain

import "github.com/GRAPH-0/USalign-parallel/geom"

// Mol signs. A cross pair has MolRNA*MolProtein < 0.
const (
	MolProtein = -1
	MolRNA     = +1
)

// Record is one chain: an identifier, a molecule-type sign, and its
// per-residue sequence, secondary structure and representative-atom
// coordinates. Len is fixed at load time; Seq/Sec/XYZ are released
// (set to nil) once a chain is assigned to an existing cluster, since
// nothing after that needs its per-residue data.
type Record struct {
	ID  string
	Mol int
	Len int
	Seq []byte
	Sec []byte
	XYZ []geom.Vec
}

// Release drops the per-residue data. Safe to call more than once.
// Representative records are never released; Len and ID survive so a
// released record can still be reported and length-compared.
func (r *Record) Release() {
	r.Seq = nil
	r.Sec = nil
	r.XYZ = nil
}

// Released reports whether a record's per-residue data has been
// dropped.
func (r *Record) Released() bool { return r.XYZ == nil }

// Store is the fixed set of chains loaded for one clustering run.
// Order is load order; callers that need scan order use
// cluster.LengthIndex over a Store.
type Store struct {
	recs []*Record
}

// NewStore wraps a slice of records. The slice is not copied; callers
// should not mutate it after handing it to NewStore.
func NewStore(recs []*Record) *Store { return &Store{recs: recs} }

// Len returns the number of chains in the store.
func (s *Store) Len() int { return len(s.recs) }

// At returns the i'th chain in load order.
func (s *Store) At(i int) *Record { return s.recs[i] }

// All returns every chain in load order. The returned slice shares
// storage with the Store and must not be mutated.
func (s *Store) All() []*Record { return s.recs }
