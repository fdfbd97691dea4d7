package core

import "slices"

// Restore loads persisted state into a fresh simulator. The clock resumes at
// the latest persisted time; for a running job the elapsed printing time is
// derived from the current speed, so it is approximate if the speed changed
// while that job was printing.
func (s *Simulator) Restore(snap Snapshot) error {
	if s.nextID != 1 || s.busy || len(s.waiting) > 0 || len(s.done) > 0 {
		return invalidArgument("restore requires a fresh simulator")
	}

	seen := make(map[int64]bool)
	maxID := int64(0)
	clock := 0

	check := func(j Job) error {
		if j.ID <= 0 {
			return invalidArgument("job id must be positive, got %d", j.ID)
		}
		if seen[j.ID] {
			return invalidArgument("duplicate job id %d", j.ID)
		}
		if j.Pages <= 0 {
			return invalidArgument("job %d: page count must be positive, got %d", j.ID, j.Pages)
		}
		if j.SubmitTime < 0 {
			return invalidArgument("job %d: negative submit time %d", j.ID, j.SubmitTime)
		}
		seen[j.ID] = true
		maxID = max(maxID, j.ID)
		clock = max(clock, j.SubmitTime, j.StartTime, j.FinishTime)
		return nil
	}

	waiting := make([]Job, 0, len(snap.Waiting))
	for _, j := range snap.Waiting {
		if err := check(j); err != nil {
			return err
		}
		j.StartTime, j.FinishTime = Unset, Unset
		waiting = append(waiting, j)
	}

	for _, j := range snap.Done {
		if err := check(j); err != nil {
			return err
		}
		if j.StartTime < j.SubmitTime || j.FinishTime < j.StartTime {
			return invalidArgument("job %d: inconsistent times %d/%d/%d", j.ID, j.SubmitTime, j.StartTime, j.FinishTime)
		}
	}

	var current Job
	if snap.Running != nil {
		current = *snap.Running
		if err := check(current); err != nil {
			return err
		}
		if current.StartTime < current.SubmitTime {
			return invalidArgument("job %d: start time %d before submit time %d", current.ID, current.StartTime, current.SubmitTime)
		}
		if snap.Remaining <= 0 {
			return invalidArgument("job %d: remaining seconds must be positive, got %d", current.ID, snap.Remaining)
		}
		current.FinishTime = Unset
		elapsed := max(s.printSeconds(current.Pages)-snap.Remaining, 0)
		clock = max(clock, current.StartTime+elapsed)
	}

	s.waiting = waiting
	s.done = slices.Clone(snap.Done)
	s.clock = clock
	s.nextID = maxID + 1
	if snap.Running != nil {
		s.current = current
		s.remaining = snap.Remaining
		s.busy = true
	}

	s.logger.Info().
		Int("waiting", len(s.waiting)).
		Bool("busy", s.busy).
		Int("done", len(s.done)).
		Int("clock", s.clock).
		Int64("next_id", s.nextID).
		Msg("state restored")

	return nil
}
