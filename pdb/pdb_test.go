package pdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/GRAPH-0/USalign-parallel/pdb/cmmn"
)

// TestBrokenFile checks if we get sensible error messages when we open
// something that is not an mmcif file.
func TestBrokenFile(t *testing.T) {
	testfiles := []string{
		"/does/not/exist",
		os.Args[0], // a real file, but not PDB/mmcif formatted
	}
	for _, s := range testfiles {
		chains, err := ReadCoord(s, cmmn.FileSrc, "")
		if chains != nil {
			t.Error("chains should be nil")
		}
		if err == nil {
			t.Error("Did not get expected error on", s)
		}
	}
}

var fnameTypes = []struct {
	fname string
	ftype byte
}{
	{"boo.mmcif", mmcif_fmt},
	{"boo.mmcif.gz", mmcif_fmt},
	{"a/b/c.ent", old_fmt},
	{"a\\b.ent.gz", old_fmt},
	{"a.pdb", old_fmt},
	{"a.pdb.gz", old_fmt},
}

// TestOldOrMmcif exercises the extension-based branch of oldOrMmcif,
// which never opens the file, so these names need not exist on disk.
func TestOldOrMmcif(t *testing.T) {
	for _, f := range fnameTypes {
		r, err := oldOrMmcif(f.fname)
		if err != nil {
			t.Error("unexpected problem in", t.Name(), "on", f.fname, err)
		}
		if r != f.ftype {
			t.Error("in", t.Name(), "working on", f.fname)
		}
	}
}

// TestOldOrMmcifFallsBackToContentSniffing covers the branch where the
// extension gives no hint and oldOrMmcif has to peek inside the file.
func TestOldOrMmcifFallsBackToContentSniffing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "structure.txt")
	body := "data_TEST\nloop_\n_atom_site.group_PDB\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := oldOrMmcif(path)
	if err != nil {
		t.Fatalf("oldOrMmcif: %v", err)
	}
	if got != mmcif_fmt {
		t.Errorf("oldOrMmcif(%q) = %d, want mmcif_fmt", path, got)
	}
}

// TestOldOrMmcifUnrecognisable checks the terminal error path: no
// extension hint and no recognisable keyword inside the file.
func TestOldOrMmcifUnrecognisable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mystery.txt")
	if err := os.WriteFile(path, []byte("nothing of interest here\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := oldOrMmcif(path); err == nil {
		t.Error("expected an error recognising an unrecognisable file")
	}
}

// minimalAtomSite is a self-contained single-chain, single-model
// _atom_site loop used to exercise ReadCoord end to end without an
// external fixture file.
const minimalAtomSite = `data_TEST
loop_
_atom_site.group_PDB
_atom_site.id
_atom_site.type_symbol
_atom_site.label_atom_id
_atom_site.label_alt_id
_atom_site.label_comp_id
_atom_site.label_asym_id
_atom_site.label_entity_id
_atom_site.label_seq_id
_atom_site.pdbx_PDB_ins_code
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
_atom_site.occupancy
_atom_site.B_iso_or_equiv
_atom_site.pdbx_formal_charge
_atom_site.auth_seq_id
_atom_site.auth_comp_id
_atom_site.auth_asym_id
_atom_site.auth_atom_id
_atom_site.pdbx_PDB_model_num
ATOM 1 C CA . ALA A 1 1 ? 1.0 2.0 3.0 1.00 0.00 ? 1 ALA A CA 1
ATOM 2 C CA . ALA A 1 2 ? 4.0 5.0 6.0 1.00 0.00 ? 2 ALA A CA 1
ATOM 3 C CA . ALA A 1 3 ? 7.0 8.0 9.0 1.00 0.00 ? 3 ALA A CA 1
`

func TestReadCoordParsesAMinimalMmcifFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minimal.cif")
	if err := os.WriteFile(path, []byte(minimalAtomSite), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	chains, err := ReadCoord(path, cmmn.FileSrc, "")
	if err != nil {
		t.Fatalf("ReadCoord: %v", err)
	}
	if len(chains) != 1 {
		t.Fatalf("expected 1 chain, got %d", len(chains))
	}
	ch := chains[0]
	if ch.ChainID != "A" {
		t.Errorf("ChainID = %q, want %q", ch.ChainID, "A")
	}
	xyz, ok := ch.CoordSet["CA"]
	if !ok || len(xyz) != 3 {
		t.Fatalf("expected 3 CA coordinates, got %v (ok=%v)", xyz, ok)
	}
	// ReadCoord never narrows the reader's default interesting-atom
	// list ({"CA","C","CB","N","O"}), so every residue also carries
	// four placeholder (BrokenXyz) entries for the atom types that
	// were never actually present in this fixture.
	jValid, jInvalid := NatomsTot(chains)
	if jValid != 3 {
		t.Errorf("NatomsTot valid = %d, want 3", jValid)
	}
	if jInvalid != 12 {
		t.Errorf("NatomsTot invalid = %d, want 12", jInvalid)
	}
}
