package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
)

func backupsFor(t *testing.T, dir, base string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(dir, backupDirName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("ReadDir(backups) = %v", err)
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, base+".") && strings.HasSuffix(name, ".bak") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func TestWriter_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writer := NewWriter(nil)
	path := filepath.Join(dir, "a.json")
	want := []byte(`{"x":1}`)

	if err := writer.Write(path, want, 5); err != nil {
		t.Fatalf("Write() = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("content = %q, want %q", got, want)
	}

	// A first write has nothing to back up.
	if got := backupsFor(t, dir, "a.json"); len(got) != 0 {
		t.Errorf("backups = %v, want none", got)
	}
}

func TestWriter_IdempotentRewrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writer := NewWriter(nil)
	path := filepath.Join(dir, "a.json")

	if err := writer.Write(path, []byte("seed"), 5); err != nil {
		t.Fatalf("Write(seed) = %v", err)
	}

	payload := []byte("payload")
	for i := 0; i < 2; i++ {
		if err := writer.Write(path, payload, 5); err != nil {
			t.Fatalf("Write(payload) #%d = %v", i+1, err)
		}
	}

	// The first payload write backs up the seed; the identical rewrite is a
	// no-op and must not rotate a second backup.
	backups := backupsFor(t, dir, "a.json")
	if len(backups) != 1 {
		t.Fatalf("backups = %v, want exactly one", backups)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("content = %q, want %q", got, payload)
	}
}

func TestWriter_BackupRotation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		writes      int
		maxBackups  int
		wantBackups int
		// wantNewest are the write indices whose content must survive as
		// backups, oldest first.
		wantNewest []int
	}{
		{"six writes keep five", 6, 5, 5, []int{0, 1, 2, 3, 4}},
		{"six writes keep two", 6, 2, 2, []int{3, 4}},
		{"two writes keep five", 2, 5, 1, []int{0}},
		{"backups disabled", 4, 0, 0, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writer := NewWriter(nil)
			path := filepath.Join(dir, "report.json")

			for i := 0; i < tt.writes; i++ {
				content := []byte(fmt.Sprintf(`{"rev":%d}`, i))
				if err := writer.Write(path, content, tt.maxBackups); err != nil {
					t.Fatalf("Write #%d = %v", i, err)
				}
			}

			backups := backupsFor(t, dir, "report.json")
			if len(backups) != tt.wantBackups {
				t.Fatalf("backups = %v, want %d entries", backups, tt.wantBackups)
			}

			// Names sort by timestamp, so backups[i] holds the content of
			// write wantNewest[i].
			for i, idx := range tt.wantNewest {
				data, err := os.ReadFile(filepath.Join(dir, backupDirName, backups[i]))
				if err != nil {
					t.Fatalf("ReadFile(backup %s) = %v", backups[i], err)
				}
				want := fmt.Sprintf(`{"rev":%d}`, idx)
				if string(data) != want {
					t.Errorf("backup %s = %q, want %q", backups[i], data, want)
				}
			}

			// The live file always holds the last write.
			live, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile(live) = %v", err)
			}
			want := fmt.Sprintf(`{"rev":%d}`, tt.writes-1)
			if string(live) != want {
				t.Errorf("live content = %q, want %q", live, want)
			}
		})
	}
}

func TestWriter_PruneIgnoresSiblingBackups(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writer := NewWriter(nil)
	sibling := filepath.Join(dir, "a.json.old")
	path := filepath.Join(dir, "a.json")

	// Rotate the sibling once so backups/a.json.old.<ts>.bak exists. Its
	// name starts with "a.json." too, but it belongs to the sibling.
	for i := 0; i < 2; i++ {
		if err := writer.Write(sibling, []byte(fmt.Sprintf(`{"old":%d}`, i)), 2); err != nil {
			t.Fatalf("Write(sibling) #%d = %v", i, err)
		}
	}
	siblingBackups := backupsFor(t, dir, "a.json.old")
	if len(siblingBackups) != 1 {
		t.Fatalf("sibling backups = %v, want 1 entry", siblingBackups)
	}

	// Rotate a.json past its retention limit; pruning must only consider
	// its own snapshots, not the sibling's.
	for i := 0; i < 4; i++ {
		if err := writer.Write(path, []byte(fmt.Sprintf(`{"rev":%d}`, i)), 2); err != nil {
			t.Fatalf("Write #%d = %v", i, err)
		}
	}

	for _, name := range siblingBackups {
		if _, err := os.Stat(filepath.Join(dir, backupDirName, name)); err != nil {
			t.Errorf("sibling backup %s no longer exists: %v", name, err)
		}
	}

	var own []string
	for _, name := range backupsFor(t, dir, "a.json") {
		if !strings.HasPrefix(name, "a.json.old.") {
			own = append(own, name)
		}
	}
	if len(own) != 2 {
		t.Errorf("backups = %v, want 2 entries", own)
	}
}

func TestWriter_ConcurrentSamePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writer := NewWriter(nil)
	path := filepath.Join(dir, "hot.json")

	const writers = 8
	contents := make([][]byte, writers)
	for i := range contents {
		contents[i] = []byte(fmt.Sprintf(`{"writer":%d}`, i))
	}

	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = writer.Write(path, contents[i], 3)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("writer %d: %v", i, err)
		}
	}

	// The live file must hold exactly one writer's complete content.
	live, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() = %v", err)
	}
	found := false
	for _, content := range contents {
		if bytes.Equal(live, content) {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("live content %q is not any writer's payload", live)
	}

	if backups := backupsFor(t, dir, "hot.json"); len(backups) > 3 {
		t.Errorf("rotation kept %d backups, want at most 3", len(backups))
	}
}

func TestWriter_NoTempFileAfterFailure(t *testing.T) {
	t.Parallel()

	writer := NewWriter(nil)
	missing := filepath.Join(t.TempDir(), "nope", "a.json")

	if err := writer.Write(missing, []byte("x"), 0); err == nil {
		t.Fatal("Write() into a missing directory should fail")
	}
}

func TestListFilesAndReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writer := NewWriter(nil)

	for _, name := range []string{"b.json", "a.json"} {
		if err := writer.Write(filepath.Join(dir, name), []byte(name), 2); err != nil {
			t.Fatalf("Write(%s) = %v", name, err)
		}
	}
	// Rotate a backup so the backups dir exists and must be excluded.
	if err := writer.Write(filepath.Join(dir, "a.json"), []byte("v2"), 2); err != nil {
		t.Fatalf("Write() = %v", err)
	}

	names, err := ListFiles(dir)
	if err != nil {
		t.Fatalf("ListFiles() = %v", err)
	}
	want := []string{"a.json", "b.json"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("ListFiles() = %v, want %v", names, want)
	}

	data, err := ReadFile(dir, "a.json")
	if err != nil {
		t.Fatalf("ReadFile() = %v", err)
	}
	if string(data) != "v2" {
		t.Errorf("ReadFile() = %q, want v2", data)
	}

	if _, err := ReadFile(dir, "missing.json"); err == nil {
		t.Error("ReadFile(missing) should fail")
	}
	if _, err := ReadFile(dir, "../escape"); err == nil {
		t.Error("ReadFile with traversal should fail")
	}
}
