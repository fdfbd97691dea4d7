// Package record encodes print jobs as comma-separated lines with a header.
// Fields holding a comma, a quote or a line break are quoted, with inner
// quotes doubled.
package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/orrn/printsim/internal/core"
)

var ErrMalformed = errors.New("malformed record")

var (
	JobHeader     = []string{"id", "user", "doc", "pages", "submitTime", "startTime", "finishTime"}
	RunningHeader = append(slices.Clone(JobHeader), "remainSec")
)

// Row is one job plus the extra remaining-seconds column used by the
// running projection.
type Row struct {
	Job       core.Job
	Remaining int
}

func JobFields(j core.Job) []string {
	return []string{
		strconv.FormatInt(j.ID, 10),
		j.User,
		j.Doc,
		strconv.Itoa(j.Pages),
		strconv.Itoa(j.SubmitTime),
		strconv.Itoa(j.StartTime),
		strconv.Itoa(j.FinishTime),
	}
}

// WriteJobs writes the job header followed by one line per job.
func WriteJobs(w io.Writer, jobs []core.Job) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(JobHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, j := range jobs {
		if err := cw.Write(JobFields(j)); err != nil {
			return fmt.Errorf("failed to write job %d: %w", j.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRunning writes the running header and, when job is not nil, a single
// line with its remaining seconds.
func WriteRunning(w io.Writer, job *core.Job, remaining int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RunningHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if job != nil {
		fields := append(JobFields(*job), strconv.Itoa(remaining))
		if err := cw.Write(fields); err != nil {
			return fmt.Errorf("failed to write job %d: %w", job.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func ReadJobs(r io.Reader) ([]core.Job, error) {
	rows, err := read(r, JobHeader)
	if err != nil {
		return nil, err
	}
	jobs := make([]core.Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, row.Job)
	}
	return jobs, nil
}

// ReadRunning returns nil when the projection holds no job.
func ReadRunning(r io.Reader) (*Row, error) {
	rows, err := read(r, RunningHeader)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return &rows[0], nil
	default:
		return nil, fmt.Errorf("%w: running projection has %d jobs", ErrMalformed, len(rows))
	}
}

func read(r io.Reader, header []string) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	cr.ReuseRecord = true

	got, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !slices.Equal(got, header) {
		return nil, fmt.Errorf("%w: unexpected header %q", ErrMalformed, got)
	}

	var rows []Row
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		line, _ := cr.FieldPos(0)
		row, err := parseRow(fields, header)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		rows = append(rows, row)
	}
}

func parseRow(fields, header []string) (Row, error) {
	var row Row
	ints := make([]int64, len(header))
	for i, f := range fields {
		if i == 1 || i == 2 {
			continue
		}
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return Row{}, fmt.Errorf("column %s: %q is not an integer", header[i], f)
		}
		ints[i] = v
	}

	row.Job = core.Job{
		ID:         ints[0],
		User:       fields[1],
		Doc:        fields[2],
		Pages:      int(ints[3]),
		SubmitTime: int(ints[4]),
		StartTime:  int(ints[5]),
		FinishTime: int(ints[6]),
	}
	if len(header) == len(RunningHeader) {
		row.Remaining = int(ints[7])
	}
	return row, nil
}
