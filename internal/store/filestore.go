package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/orrn/printsim/internal/core"
	"github.com/orrn/printsim/internal/record"
)

const (
	DefaultWaitingFile = "waiting.csv"
	DefaultRunningFile = "running.csv"
	DefaultDoneFile    = "done.csv"
)

type Config struct {
	Dir         string
	WaitingFile string
	RunningFile string
	DoneFile    string
}

// FileStore keeps the waiting, running and done projections as three CSV
// files in one directory. Every save truncates and rewrites its file.
type FileStore struct {
	waitingPath string
	runningPath string
	donePath    string
}

func NewFileStore(cfg Config) (*FileStore, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	name := func(v, def string) string {
		if v = strings.TrimSpace(v); v == "" {
			return filepath.Join(dir, def)
		}
		return filepath.Join(dir, filepath.Base(v))
	}

	return &FileStore{
		waitingPath: name(cfg.WaitingFile, DefaultWaitingFile),
		runningPath: name(cfg.RunningFile, DefaultRunningFile),
		donePath:    name(cfg.DoneFile, DefaultDoneFile),
	}, nil
}

func (s *FileStore) Paths() (waiting, running, done string) {
	return s.waitingPath, s.runningPath, s.donePath
}

func (s *FileStore) SaveWaiting(jobs []core.Job) error {
	var buf bytes.Buffer
	if err := record.WriteJobs(&buf, jobs); err != nil {
		return fmt.Errorf("failed to encode waiting jobs: %w", err)
	}
	return writeFile(s.waitingPath, buf.Bytes())
}

func (s *FileStore) SaveRunning(job *core.Job, remaining int) error {
	var buf bytes.Buffer
	if err := record.WriteRunning(&buf, job, remaining); err != nil {
		return fmt.Errorf("failed to encode running job: %w", err)
	}
	return writeFile(s.runningPath, buf.Bytes())
}

func (s *FileStore) SaveDone(jobs []core.Job) error {
	var buf bytes.Buffer
	if err := record.WriteJobs(&buf, jobs); err != nil {
		return fmt.Errorf("failed to encode done jobs: %w", err)
	}
	return writeFile(s.donePath, buf.Bytes())
}

// Load reads all three projections. A missing file is an empty projection.
func (s *FileStore) Load() (core.Snapshot, error) {
	var snap core.Snapshot

	waiting, err := readJobs(s.waitingPath)
	if err != nil {
		return core.Snapshot{}, err
	}
	snap.Waiting = waiting

	done, err := readJobs(s.donePath)
	if err != nil {
		return core.Snapshot{}, err
	}
	snap.Done = done

	f, err := openIfExists(s.runningPath)
	if err != nil {
		return core.Snapshot{}, err
	}
	if f != nil {
		defer f.Close()
		row, err := record.ReadRunning(f)
		if err != nil {
			return core.Snapshot{}, fmt.Errorf("failed to read %s: %w", s.runningPath, err)
		}
		if row != nil {
			job := row.Job
			snap.Running = &job
			snap.Remaining = row.Remaining
		}
	}

	return snap, nil
}

func readJobs(path string) ([]core.Job, error) {
	f, err := openIfExists(path)
	if err != nil || f == nil {
		return nil, err
	}
	defer f.Close()

	jobs, err := record.ReadJobs(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return jobs, nil
}

func openIfExists(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
