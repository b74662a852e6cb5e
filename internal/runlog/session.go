package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Session writes the phase artifacts of one analysis run into a directory.
// Every artifact is a numbered text file plus an entry in manifest.json, both
// written via a temp file and an atomic rename so a crash mid-run leaves the
// directory parseable.
type Session struct {
	mu           sync.Mutex
	dir          string
	manifestPath string
	sequence     int
	runMeta      map[string]any
}

// Entry is one manifest record describing a logged phase.
type Entry struct {
	Seq         int            `json:"seq"`
	Step        string         `json:"step"`
	Phase       string         `json:"phase"`
	Filename    string         `json:"filename"`
	Timestamp   string         `json:"timestamp"`
	MonotonicNS int64          `json:"monotonicNs"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// Manifest is the full manifest.json document.
type Manifest struct {
	RunMeta         map[string]any `json:"runMeta"`
	Steps           []Entry        `json:"steps"`
	CreatedAt       string         `json:"createdAt"`
	UpdatedAt       string         `json:"updatedAt,omitempty"`
	SequenceCounter int            `json:"sequenceCounter"`
}

var startMonotonic = time.Now()

// NewSession creates the run directory and an initial manifest.
func NewSession(dir string, runMeta map[string]any) (*Session, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run log dir: %w", err)
	}
	s := &Session{
		dir:          dir,
		manifestPath: filepath.Join(dir, "manifest.json"),
		runMeta:      runMeta,
	}
	initial := Manifest{
		RunMeta:         runMeta,
		Steps:           []Entry{},
		CreatedAt:       time.Now().UTC().Format(time.RFC3339Nano),
		SequenceCounter: 0,
	}
	if err := s.writeManifest(initial); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the run directory.
func (s *Session) Dir() string { return s.dir }

// LogPhase records one phase artifact and returns the path of the written file.
// Sequence numbers are assigned under the session lock, so the files on disk
// are strictly ordered and gapless even with concurrent callers.
func (s *Session) LogPhase(step, phase, content string, meta map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequence++
	filename := fmt.Sprintf("%02d_%s_%s.txt", s.sequence, step, phase)
	if err := s.writeAtomic(filename, []byte(content)); err != nil {
		s.sequence--
		return "", err
	}

	entry := Entry{
		Seq:         s.sequence,
		Step:        step,
		Phase:       phase,
		Filename:    filename,
		Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
		MonotonicNS: time.Since(startMonotonic).Nanoseconds(),
		Meta:        meta,
	}
	if err := s.appendManifest(entry); err != nil {
		// Roll back so the next phase reuses the number: the sequence stays
		// gapless and the orphaned artifact does not outlive the manifest.
		s.sequence--
		_ = os.Remove(filepath.Join(s.dir, filename))
		return "", err
	}
	return filepath.Join(s.dir, filename), nil
}

// Sequence returns the number of phases logged so far.
func (s *Session) Sequence() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sequence
}

// Manifest reads the manifest back from disk.
func (s *Session) Manifest() (Manifest, error) {
	data, err := os.ReadFile(s.manifestPath)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func (s *Session) writeAtomic(filename string, content []byte) error {
	tempPath := filepath.Join(s.dir, "."+filename+".tmp")
	finalPath := filepath.Join(s.dir, filename)
	if err := os.WriteFile(tempPath, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("rename %s: %w", filename, err)
	}
	return nil
}

func (s *Session) appendManifest(entry Entry) error {
	manifest, err := s.Manifest()
	if err != nil {
		manifest = Manifest{
			RunMeta:   s.runMeta,
			Steps:     []Entry{},
			CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		}
	}
	manifest.Steps = append(manifest.Steps, entry)
	manifest.SequenceCounter = s.sequence
	manifest.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	return s.writeManifest(manifest)
}

func (s *Session) writeManifest(manifest Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	tempPath := s.manifestPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tempPath, s.manifestPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}
