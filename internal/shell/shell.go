// Package shell is the interactive menu in front of a core.Simulator. It
// validates input, prints reports and generates random test jobs.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orrn/printsim/internal/core"
	"github.com/orrn/printsim/internal/metrics"
)

var errEOF = errors.New("end of input")

type Options struct {
	Logger          zerolog.Logger
	Metrics         *metrics.Collector
	MetricsTextfile string
	// Seed for random jobs; 0 seeds from the wall clock.
	Seed int64
}

type Shell struct {
	sim     *core.Simulator
	in      *bufio.Scanner
	out     io.Writer
	logger  zerolog.Logger
	rng     *rand.Rand
	session uuid.UUID

	metrics         *metrics.Collector
	metricsTextfile string
}

func New(sim *core.Simulator, in io.Reader, out io.Writer, opts Options) *Shell {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	session := uuid.New()

	return &Shell{
		sim:             sim,
		in:              bufio.NewScanner(in),
		out:             out,
		logger:          opts.Logger.With().Str("session", session.String()).Logger(),
		rng:             rand.New(rand.NewSource(seed)),
		session:         session,
		metrics:         opts.Metrics,
		metricsTextfile: opts.MetricsTextfile,
	}
}

func (s *Shell) Session() uuid.UUID {
	return s.session
}

// Run reads commands until "0", end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	s.logger.Info().Msg("session started")
	defer func() {
		s.logger.Info().Int("clock", s.sim.Clock()).Msg("session ended")
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.menu()
		line, err := s.readLine("")
		if errors.Is(err, errEOF) {
			s.printf("\n")
			return nil
		}
		if err != nil {
			return err
		}

		op, err := parseInt(line)
		if err != nil {
			s.printf("Invalid choice.\n")
			continue
		}
		if op == 0 {
			s.printf("Bye!\n")
			return nil
		}

		if err := s.handle(ctx, op); err != nil {
			if errors.Is(err, errEOF) {
				s.printf("\n")
				return nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.printf("Interrupted at t=%s.\n", formatClock(s.sim.Clock()))
				s.refreshMetrics()
				return err
			}
			s.report(err)
		}
		s.refreshMetrics()
	}
}

func (s *Shell) menu() {
	s.printf("\n===== Printer manager (queue + simulation) =====\n" +
		"1. Set printing speed (seconds/page)\n" +
		"2. Submit a job\n" +
		"3. Cancel a waiting job (by id)\n" +
		"4. Show the wait queue\n" +
		"5. Show completed jobs and statistics\n" +
		"6. Simulate: advance by seconds\n" +
		"7. Simulate: run until the queue is empty\n" +
		"8. Submit random jobs (testing)\n" +
		"9. Show printer status\n" +
		"10. Look up a job by id\n" +
		"0. Quit\n" +
		"Choice: ")
}

func (s *Shell) handle(ctx context.Context, op int) error {
	switch op {
	case 1:
		return s.setSpeed()
	case 2:
		return s.submit()
	case 3:
		return s.cancel()
	case 4:
		s.listWaiting()
	case 5:
		s.listDone()
	case 6:
		return s.advance(ctx)
	case 7:
		return s.runToCompletion(ctx)
	case 8:
		return s.randomJobs()
	case 9:
		s.status()
	case 10:
		return s.lookup()
	default:
		s.printf("Invalid choice.\n")
	}
	return nil
}

func (s *Shell) setSpeed() error {
	speed, err := s.readPositiveFloat("Speed (seconds/page, > 0, decimals allowed): ",
		"Enter a number greater than 0 (decimals allowed).")
	if err != nil {
		return err
	}
	s.sim.SetSpeed(speed)
	s.printf("Speed set to %.3f seconds/page.\n", s.sim.Speed())
	s.logger.Info().Float64("speed", s.sim.Speed()).Msg("speed changed")
	return nil
}

func (s *Shell) submit() error {
	user, err := s.readLine("User: ")
	if err != nil {
		return err
	}
	doc, err := s.readLine("Document: ")
	if err != nil {
		return err
	}
	pages, err := s.readPositiveInt("Pages (positive integer): ",
		"Pages must be a positive integer (no decimals).")
	if err != nil {
		return err
	}

	id, err := s.sim.Submit(user, doc, pages)
	if id > 0 {
		s.printf("Job submitted, id=%d, t=%s.\n", id, formatClock(s.sim.Clock()))
	}
	return err
}

func (s *Shell) cancel() error {
	id, err := s.readInt("Job id to cancel: ")
	if err != nil {
		return err
	}

	found, err := s.sim.Cancel(int64(id))
	if found {
		s.printf("Job cancelled.\n")
	} else {
		s.printf("Job not found in the wait queue.\n")
	}
	return err
}

func (s *Shell) listWaiting() {
	jobs := s.sim.Waiting()
	if len(jobs) == 0 {
		s.printf("[wait queue] empty\n")
		return
	}
	s.printf("[wait queue]\n")
	for _, j := range jobs {
		s.printf("  #%d  user:%s  doc:%s  pages:%d  submitted t=%s\n",
			j.ID, j.User, j.Doc, j.Pages, formatClock(j.SubmitTime))
	}
}

func (s *Shell) listDone() {
	jobs := s.sim.Done()
	if len(jobs) == 0 {
		s.printf("[completed] none yet\n")
		return
	}
	s.printf("[completed]\n")
	for _, j := range jobs {
		s.printf("  #%d  user:%s  doc:%s  pages:%d  submitted:%s  started:%s  finished:%s  wait:%ds  took:%ds\n",
			j.ID, j.User, j.Doc, j.Pages,
			formatClock(j.SubmitTime), formatClock(j.StartTime), formatClock(j.FinishTime),
			j.WaitTime(), j.Duration())
	}
	stats := s.sim.Stats()
	s.printf("== stats: completed=%d  mean wait=%.2fs  mean duration=%.2fs\n",
		stats.Done, stats.MeanWait, stats.MeanDuration)
}

func (s *Shell) advance(ctx context.Context) error {
	dt, err := s.readInt("Seconds to advance (dt): ")
	if err != nil {
		return err
	}
	if dt <= 0 {
		s.printf("dt must be a positive integer.\n")
		return nil
	}

	return s.track(func() error {
		return s.sim.Advance(ctx, dt)
	})
}

func (s *Shell) runToCompletion(ctx context.Context) error {
	return s.track(func() error {
		return s.sim.RunToCompletion(ctx)
	})
}

// track runs a clock-advancing call and prints the starts and completions
// it caused, worked out from the accessors before and after the call.
func (s *Shell) track(run func() error) error {
	prevDone := len(s.sim.Done())
	var prevID int64
	if cur, _, ok := s.sim.Current(); ok {
		prevID = cur.ID
	}

	err := run()

	for _, j := range s.sim.Done()[prevDone:] {
		if j.ID != prevID {
			s.printStarted(j)
		}
		s.printf("[done]  job #%d  wait:%ds  took:%ds  finished t=%s\n",
			j.ID, j.WaitTime(), j.Duration(), formatClock(j.FinishTime))
	}
	if cur, _, ok := s.sim.Current(); ok && cur.ID != prevID {
		s.printStarted(cur)
	}
	return err
}

func (s *Shell) printStarted(j core.Job) {
	s.printf("[start] job #%d  user:%s  doc:%s  pages:%d  t=%s\n",
		j.ID, j.User, j.Doc, j.Pages, formatClock(j.StartTime))
}

func (s *Shell) randomJobs() error {
	n, err := s.readInt("Number of random jobs: ")
	if err != nil {
		return err
	}
	minPages, err := s.readInt("Minimum pages: ")
	if err != nil {
		return err
	}
	maxPages, err := s.readInt("Maximum pages: ")
	if err != nil {
		return err
	}
	if n <= 0 || minPages <= 0 || maxPages < minPages {
		s.printf("Invalid parameters.\n")
		return nil
	}

	var errs []error
	for i := 1; i <= n; i++ {
		pages := minPages + s.rng.Intn(maxPages-minPages+1)
		if _, err := s.sim.Submit("User"+strconv.Itoa(i), "Doc"+strconv.Itoa(i), pages); err != nil {
			errs = append(errs, err)
		}
	}
	s.printf("Submitted %d random jobs.\n", n)
	return errors.Join(errs...)
}

func (s *Shell) status() {
	state := "idle"
	if s.sim.Busy() {
		state = "printing"
	}
	s.printf("[clock] t=%s  [speed] %.3f seconds/page  [state] %s\n",
		formatClock(s.sim.Clock()), s.sim.Speed(), state)
	if cur, remaining, ok := s.sim.Current(); ok {
		s.printf("  printing job #%d (%s/%s), about %d s left\n", cur.ID, cur.User, cur.Doc, remaining)
	}
	s.printf("  waiting: %d  completed: %d  session: %s\n", s.sim.QueueLen(), len(s.sim.Done()), s.session)
}

func (s *Shell) lookup() error {
	id, err := s.readInt("Job id: ")
	if err != nil {
		return err
	}

	j, status, ok := s.sim.Lookup(int64(id))
	if !ok {
		s.printf("No job with id %d.\n", id)
		return nil
	}
	if status == core.JobStatusCancelled {
		s.printf("Job #%d was cancelled.\n", id)
		return nil
	}
	s.printf("Job #%d [%s]  user:%s  doc:%s  pages:%d  submitted:%s  started:%s  finished:%s\n",
		j.ID, status, j.User, j.Doc, j.Pages,
		formatClock(j.SubmitTime), formatClock(j.StartTime), formatClock(j.FinishTime))
	return nil
}

func (s *Shell) report(err error) {
	switch {
	case errors.Is(err, core.ErrPersistence):
		s.printf("Warning: the change was applied but could not be saved: %v\n", err)
		s.logger.Error().Err(err).Msg("persistence failure")
	case errors.Is(err, core.ErrInvalidArgument):
		s.printf("Rejected: %v\n", err)
	default:
		s.printf("Error: %v\n", err)
		s.logger.Error().Err(err).Msg("command failed")
	}
}

func (s *Shell) refreshMetrics() {
	if s.metrics == nil {
		return
	}
	s.metrics.Update(s.sim)
	if s.metricsTextfile == "" {
		return
	}
	if err := s.metrics.WriteTextfile(s.metricsTextfile); err != nil {
		s.logger.Warn().Err(err).Str("path", s.metricsTextfile).Msg("failed to refresh metrics")
	}
}

func (s *Shell) readLine(prompt string) (string, error) {
	if prompt != "" {
		s.printf("%s", prompt)
	}
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", errEOF
	}
	return s.in.Text(), nil
}

func (s *Shell) readInt(prompt string) (int, error) {
	for {
		line, err := s.readLine(prompt)
		if err != nil {
			return 0, err
		}
		v, err := parseInt(line)
		if err == nil {
			return v, nil
		}
		s.printf("Please enter an integer.\n")
	}
}

func (s *Shell) readPositiveInt(prompt, retry string) (int, error) {
	for {
		line, err := s.readLine(prompt)
		if err != nil {
			return 0, err
		}
		v, err := parsePositiveInt(line)
		if err == nil {
			return v, nil
		}
		s.printf("%s\n", retry)
	}
}

func (s *Shell) readPositiveFloat(prompt, retry string) (float64, error) {
	for {
		line, err := s.readLine(prompt)
		if err != nil {
			return 0, err
		}
		v, err := parsePositiveFloat(line)
		if err == nil {
			return v, nil
		}
		s.printf("%s\n", retry)
	}
}

func (s *Shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
