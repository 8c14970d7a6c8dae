// Package history stores a JSON record of every bridge call on disk.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/positivepasswordbook/ppbbridge/internal/bridge"
	"github.com/spf13/viper"
)

// AmbiguousIDError is returned when multiple records match a prefix
type AmbiguousIDError struct {
	Prefix  string
	Matches []Record
}

func (e *AmbiguousIDError) Error() string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Ambiguous record ID %q. Multiple matches found:", e.Prefix))
	for _, match := range e.Matches {
		lines = append(lines, fmt.Sprintf("- %s (%s, %s)",
			match.GetShortID(),
			strings.Join(match.Actions, " "),
			match.CreatedAt.Format("2006-01-02 15:04:05")))
	}
	lines = append(lines, "")
	lines = append(lines, "Please use a longer prefix or run 'ppbbridge history list'.")
	return strings.Join(lines, "\n")
}

// ErrNoRecords is returned by GetLatest when the store is empty
var ErrNoRecords = errors.New("no call records found")

// DefaultDir returns the directory where call records are stored.
// If a config file is used, records live next to it in "history".
// Otherwise, defaults to $HOME/.config/ppbbridge/history
func DefaultDir() (string, error) {
	configFile := viper.ConfigFileUsed()

	if configFile != "" {
		configDir := filepath.Dir(configFile)
		if !filepath.IsAbs(configDir) {
			cwd, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("failed to get current working directory: %w", err)
			}
			configDir = filepath.Join(cwd, configDir)
		}
		return filepath.Join(configDir, "history"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "ppbbridge", "history"), nil
}

// Store keeps one JSON file per record in Dir
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Record implements bridge.Recorder
func (s *Store) Record(call bridge.Call) error {
	return s.Save(NewRecord(call))
}

// Save writes a record to disk
func (s *Store) Save(rec *Record) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}

	// Full UUID as filename
	recordFile := filepath.Join(s.Dir, rec.ID+".json")
	if err := os.WriteFile(recordFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write record file: %w", err)
	}

	return nil
}

// Load loads a record from disk by full ID
func (s *Store) Load(id string) (*Record, error) {
	recordFile := filepath.Join(s.Dir, id+".json")
	data, err := os.ReadFile(recordFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("record not found: %s\n\nRun 'ppbbridge history list' to see available records.", id)
		}
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record file: %w\n\nThe record file may be corrupted.", err)
	}

	return &rec, nil
}

// Delete deletes a record from disk by full ID
func (s *Store) Delete(id string) error {
	recordFile := filepath.Join(s.Dir, id+".json")
	if err := os.Remove(recordFile); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("record not found: %s", id)
		}
		return fmt.Errorf("failed to delete record file: %w", err)
	}

	return nil
}

// List returns all records sorted by CreatedAt (newest first)
func (s *Store) List() ([]Record, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		rec, err := s.Load(id)
		if err != nil {
			// Skip corrupted record files
			continue
		}
		records = append(records, *rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

// FindByPrefix finds a record by short ID prefix (minimum 4 characters)
// Returns error if multiple matches are found (AmbiguousIDError)
// Special case: "latest" returns the most recent record
func (s *Store) FindByPrefix(prefix string) (*Record, error) {
	if prefix == "latest" {
		return s.GetLatest()
	}

	if len(prefix) < 4 {
		return nil, fmt.Errorf("record ID prefix must be at least 4 characters (got %d)", len(prefix))
	}

	// Full UUID (36 characters with 4 dashes)
	if len(prefix) == 36 && strings.Count(prefix, "-") == 4 {
		return s.Load(prefix)
	}

	records, err := s.List()
	if err != nil {
		return nil, err
	}

	var matches []Record
	for _, rec := range records {
		if strings.HasPrefix(rec.ID, prefix) {
			matches = append(matches, rec)
		}
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("record not found: %s\n\nRun 'ppbbridge history list' to see available records.", prefix)
	}

	if len(matches) > 1 {
		return nil, &AmbiguousIDError{
			Prefix:  prefix,
			Matches: matches,
		}
	}

	return &matches[0], nil
}

// GetLatest returns the most recent record
func (s *Store) GetLatest() (*Record, error) {
	records, err := s.List()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	// Records are already sorted newest first
	return &records[0], nil
}

// Prune deletes records created before the given time and returns how many
// were removed. Deletion stops at the first failure.
func (s *Store) Prune(before time.Time) (int, error) {
	records, err := s.List()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, rec := range records {
		if !rec.CreatedAt.Before(before) {
			continue
		}
		if err := s.Delete(rec.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
