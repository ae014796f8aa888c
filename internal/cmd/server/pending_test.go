package serverrun

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/rzbill/docstream/internal/docregistry"
	"github.com/rzbill/docstream/internal/pending"
	pebblestore "github.com/rzbill/docstream/internal/storage/pebble"
)

func seedPendingBlob(t *testing.T, dataDir, docID string) {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dataDir + "/store", Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer db.Close()

	state := &pending.SerializedPendingState{
		Version:  1,
		ClientID: "prior-client",
		Entries: []pending.Entry{
			{Kind: pending.EntryMessage, MessageType: "insert", ClientSequenceNumber: 1, ReferenceSequenceNumber: 0, Content: []byte("a")},
			{Kind: pending.EntryMessage, MessageType: "delete", ClientSequenceNumber: 2, ReferenceSequenceNumber: 0, Content: []byte("bb")},
		},
	}
	blob, err := pending.EncodeState(state)
	if err != nil {
		t.Fatalf("EncodeState: %v", err)
	}
	if err := docregistry.SavePendingBlob(db, docID, blob); err != nil {
		t.Fatalf("SavePendingBlob: %v", err)
	}
}

func TestPendingLsListsSavedEntries(t *testing.T) {
	dataDir := t.TempDir()
	seedPendingBlob(t, dataDir, "doc-1")

	cmd := NewPendingCommand()
	cmd.SetArgs([]string{"ls", "--data-dir", dataDir, "--doc", "doc-1"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	err := cmd.Execute()
	w.Close()
	os.Stdout = old
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var buf bytes.Buffer
	buf.ReadFrom(r)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if first["messageType"] != "insert" {
		t.Fatalf("first entry messageType = %v, want insert", first["messageType"])
	}
}

func TestPendingLsFiltersByExpression(t *testing.T) {
	dataDir := t.TempDir()
	seedPendingBlob(t, dataDir, "doc-1")

	cmd := NewPendingCommand()
	cmd.SetArgs([]string{"ls", "--data-dir", dataDir, "--doc", "doc-1", "--filter", `messageType == "delete"`})
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	err := cmd.Execute()
	w.Close()
	os.Stdout = old
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var buf bytes.Buffer
	buf.ReadFrom(r)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"delete"`) {
		t.Fatalf("filtered output = %q, want the delete entry only", lines[0])
	}
}

func TestPendingLsMissingDocProducesNoOutput(t *testing.T) {
	dataDir := t.TempDir()

	cmd := NewPendingCommand()
	cmd.SetArgs([]string{"ls", "--data-dir", dataDir, "--doc", "never-seen"})
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	err := cmd.Execute()
	w.Close()
	os.Stdout = old
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var buf bytes.Buffer
	buf.ReadFrom(r)
	if strings.TrimSpace(buf.String()) != "" {
		t.Fatalf("expected no output for a document with no saved pending state, got %q", buf.String())
	}
}
