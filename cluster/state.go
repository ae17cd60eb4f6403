package cluster

import "github.com/GRAPH-0/USalign-parallel/chain"

// State is the mutable bookkeeping of §3: the ordered list of cluster
// representatives, and the chain->cluster mapping. Cluster id is the
// representative's position in ReprList.
type State struct {
	ReprList  []*chain.Record
	memberOf  map[*chain.Record]int
	reprToIdx map[*chain.Record]int
	// log records every NewCluster/Assign call in the order it
	// happened, so GroupedMembers can report "members in the order
	// they were assigned" (§6) without re-deriving order from an
	// unrelated slice.
	log []logEntry
}

type logEntry struct {
	id  int
	rec *chain.Record
}

// NewState returns an empty clustering state.
func NewState() *State {
	return &State{
		memberOf:  make(map[*chain.Record]int),
		reprToIdx: make(map[*chain.Record]int),
	}
}

// NewCluster seeds a new cluster with rep as its representative,
// returning the new cluster id.
func (s *State) NewCluster(rep *chain.Record) int {
	id := len(s.ReprList)
	s.ReprList = append(s.ReprList, rep)
	s.reprToIdx[rep] = id
	s.memberOf[rep] = id
	s.log = append(s.log, logEntry{id, rep})
	return id
}

// Assign records member as belonging to the cluster represented by
// rep. State does not release member's per-residue data itself (Scan
// releases it right after Assign returns), since a query's
// lifetime (when to release) is the scan loop's concern, not the
// state's.
func (s *State) Assign(member *chain.Record, rep *chain.Record) {
	id, ok := s.reprToIdx[rep]
	if !ok {
		panic("cluster: Assign called with a non-representative rep")
	}
	s.memberOf[member] = id
	s.log = append(s.log, logEntry{id, member})
}

// ClusterOf returns the cluster id a chain has been assigned to, or
// -1 if it has not been assigned (including representatives that
// have not yet been recorded via NewCluster).
func (s *State) ClusterOf(c *chain.Record) int {
	if id, ok := s.memberOf[c]; ok {
		return id
	}
	return -1
}

// IsRepresentative reports whether c is itself a cluster's
// representative.
func (s *State) IsRepresentative(c *chain.Record) bool {
	_, ok := s.reprToIdx[c]
	return ok
}

// GroupedMembers returns, for every cluster, the representative
// followed by its members, both in true assignment order (§6's
// "tab-separated members in the order they were assigned").
func (s *State) GroupedMembers() [][]*chain.Record {
	groups := make([][]*chain.Record, len(s.ReprList))
	for _, e := range s.log {
		groups[e.id] = append(groups[e.id], e.rec)
	}
	return groups
}

// Members returns cluster id's representative-first, assignment-order
// member list.
func (s *State) Members(id int) []*chain.Record {
	var out []*chain.Record
	for _, e := range s.log {
		if e.id == id {
			out = append(out, e.rec)
		}
	}
	return out
}
