package cluster_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	. "github.com/GRAPH-0/USalign-parallel/cluster"
	"github.com/GRAPH-0/USalign-parallel/chain"
)

func TestNewClusterAssignsSequentialIDs(t *testing.T) {
	s := NewState()
	a := &chain.Record{ID: "a"}
	b := &chain.Record{ID: "b"}
	if id := s.NewCluster(a); id != 0 {
		t.Errorf("first cluster id = %d, want 0", id)
	}
	if id := s.NewCluster(b); id != 1 {
		t.Errorf("second cluster id = %d, want 1", id)
	}
	if !s.IsRepresentative(a) || !s.IsRepresentative(b) {
		t.Errorf("both a and b should be representatives")
	}
}

func TestAssignRecordsMembership(t *testing.T) {
	s := NewState()
	rep := &chain.Record{ID: "rep"}
	member := &chain.Record{ID: "member"}
	id := s.NewCluster(rep)
	s.Assign(member, rep)
	if got := s.ClusterOf(member); got != id {
		t.Errorf("ClusterOf(member) = %d, want %d", got, id)
	}
	if s.IsRepresentative(member) {
		t.Errorf("an assigned member should not be reported as a representative")
	}
}

func TestClusterOfUnassignedIsNegativeOne(t *testing.T) {
	s := NewState()
	stray := &chain.Record{ID: "stray"}
	if got := s.ClusterOf(stray); got != -1 {
		t.Errorf("ClusterOf(unassigned) = %d, want -1", got)
	}
}

func TestAssignToNonRepresentativePanics(t *testing.T) {
	s := NewState()
	notRep := &chain.Record{ID: "x"}
	member := &chain.Record{ID: "m"}
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic assigning to a non-representative")
		}
	}()
	s.Assign(member, notRep)
}

func TestMembersListsRepresentativeFirst(t *testing.T) {
	s := NewState()
	rep := &chain.Record{ID: "rep"}
	m1 := &chain.Record{ID: "m1"}
	m2 := &chain.Record{ID: "m2"}
	id := s.NewCluster(rep)
	s.Assign(m1, rep)
	s.Assign(m2, rep)
	got := s.Members(id)
	if len(got) != 3 || got[0] != rep || got[1] != m1 || got[2] != m2 {
		t.Errorf("Members = %v, want representative first followed by m1, m2 in assignment order", got)
	}
}

func TestGroupedMembersCoversEveryCluster(t *testing.T) {
	s := NewState()
	repA := &chain.Record{ID: "repA"}
	repB := &chain.Record{ID: "repB"}
	m := &chain.Record{ID: "m"}
	s.NewCluster(repA)
	s.NewCluster(repB)
	s.Assign(m, repA)
	groups := s.GroupedMembers()
	want := [][]*chain.Record{{repA, m}, {repB}}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Errorf("GroupedMembers() mismatch (-want +got):\n%s", diff)
	}
}
