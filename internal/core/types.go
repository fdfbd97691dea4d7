package core

// Unset marks a start or finish time that has not happened yet.
const Unset = -1

type JobStatus string

const (
	JobStatusWaiting   JobStatus = "waiting"
	JobStatusRunning   JobStatus = "running"
	JobStatusDone      JobStatus = "done"
	JobStatusCancelled JobStatus = "cancelled"
)

// Job is one print request. Times are simulated seconds.
type Job struct {
	ID         int64
	User       string
	Doc        string
	Pages      int
	SubmitTime int
	StartTime  int
	FinishTime int
}

// WaitTime returns start - submit, or -1 if the job has not started.
func (j Job) WaitTime() int {
	if j.StartTime < 0 {
		return Unset
	}
	return j.StartTime - j.SubmitTime
}

// Duration returns finish - start, or -1 if the job has not finished.
func (j Job) Duration() int {
	if j.StartTime < 0 || j.FinishTime < 0 {
		return Unset
	}
	return j.FinishTime - j.StartTime
}

type QueueStats struct {
	Done         int
	MeanWait     float64
	MeanDuration float64
}

// Store receives a full copy of one projection after every change to it.
type Store interface {
	SaveWaiting(jobs []Job) error
	// SaveRunning writes the current job and its remaining seconds, or an
	// empty projection when job is nil.
	SaveRunning(job *Job, remaining int) error
	SaveDone(jobs []Job) error
}

// Snapshot is the persisted state read back from a Store.
type Snapshot struct {
	Waiting   []Job
	Running   *Job
	Remaining int
	Done      []Job
}
