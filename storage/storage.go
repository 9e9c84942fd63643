package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"liquidvars/model"
)

// Store persists scan snapshots so variable changes can be diffed over
// time. Snapshots are date-organized JSON files under the data directory.
type Store struct {
	baseDir string
	mu      sync.Mutex
}

// New creates a new Store instance with the given base directory.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// EnsureDirs creates the directory structure for storing snapshots.
func (s *Store) EnsureDirs() error {
	return os.MkdirAll(filepath.Join(s.baseDir, "snapshots"), 0o755)
}

// SaveSnapshot writes one scan snapshot to disk, organized by date.
func (s *Store) SaveSnapshot(snap *model.ScanSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	t := snap.Timestamp.UTC()
	dir := filepath.Join(
		s.baseDir,
		"snapshots",
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", t.Month()),
		fmt.Sprintf("%02d", t.Day()),
	)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	filename := fmt.Sprintf("%s.json", t.Format("2006-01-02T15-04-05Z07-00"))
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ListSnapshots retrieves all snapshots within the time range, sorted by
// timestamp in ascending order.
func (s *Store) ListSnapshots(from, to time.Time) ([]model.ScanSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from = from.UTC()
	to = to.UTC()

	base := filepath.Join(s.baseDir, "snapshots")
	var snaps []model.ScanSnapshot

	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".json" {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		var snap model.ScanSnapshot
		if err := json.NewDecoder(f).Decode(&snap); err != nil {
			return nil // unreadable snapshot, skip
		}
		if snap.Timestamp.IsZero() {
			return nil
		}

		t := snap.Timestamp.UTC()
		if t.Before(from) || t.After(to) {
			return nil
		}

		snaps = append(snaps, snap)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.Before(snaps[j].Timestamp)
	})

	return snaps, nil
}
