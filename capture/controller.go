// Package capture coordinates the recorder, the preview player and the
// player that follows a recording in progress.
//
// All transitions are driven by polling on a scheduler: a process is
// never waited on, it is looked at once per interval and moved to
// Exited when it is found gone. Kill moves it to Killed immediately.
package capture

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/achernya/tvcapture/db"
	"github.com/achernya/tvcapture/filename"
	"github.com/achernya/tvcapture/mencoder"
	"github.com/achernya/tvcapture/params"
	"github.com/achernya/tvcapture/scheduler"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const DefaultInterval = time.Second

type Config struct {
	// Mencoder and Mplayer are the tool binaries.
	Mencoder string
	Mplayer  string
	// DB keeps the session history. It may be nil.
	DB        *gorm.DB
	Launcher  Launcher
	Scheduler *scheduler.Scheduler
	Now       func() time.Time
	Exists    filename.Exists
	// Interval is the polling period, DefaultInterval if zero.
	Interval time.Duration
	// OnEvent receives the event types declared in this package. It is
	// called from the scheduler loop and from output readers, never
	// with the controller locked.
	OnEvent func(event any)
}

type proc struct {
	role   string
	handle Handle
	state  State
	log    *db.CommandLog
}

func (p *proc) running() bool {
	return p != nil && p.state == Running
}

func (p *proc) stateOf() State {
	if p == nil {
		return NotStarted
	}
	return p.state
}

type Controller struct {
	cfg     Config
	journal journal

	mu      sync.Mutex
	pending []any
	pumps   sync.WaitGroup

	recorder *proc
	preview  *proc
	player   *proc

	// Recording in progress.
	ctx       context.Context
	params    *params.Parameters
	file      string
	elapsed   time.Duration
	recording *db.Session
	status    *scheduler.Handle
	watch     *scheduler.Handle

	previewSession *db.Session
	previewPoll    *scheduler.Handle

	// Pending scheduled start.
	at        time.Time
	scheduled *db.Session
	schedule  *scheduler.Handle
}

func New(cfg Config) *Controller {
	if cfg.Launcher == nil {
		cfg.Launcher = ExecLauncher{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = scheduler.NewWithClock(cfg.Now)
	}
	if cfg.Exists == nil {
		cfg.Exists = filename.FileExists
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.OnEvent == nil {
		cfg.OnEvent = func(any) {}
	}
	return &Controller{
		cfg:     cfg,
		journal: journal{db: cfg.DB},
	}
}

// Scheduler is the loop the controller polls on. The caller runs it.
func (c *Controller) Scheduler() *scheduler.Scheduler {
	return c.cfg.Scheduler
}

func (c *Controller) lock() {
	c.mu.Lock()
}

// unlock releases the controller and then delivers the events queued
// while it was held.
func (c *Controller) unlock() {
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, e := range pending {
		c.cfg.OnEvent(e)
	}
}

func (c *Controller) emit(event any) {
	c.pending = append(c.pending, event)
}

func envFor(p *params.Parameters) map[string]string {
	if !p.SetEnvVars {
		return nil
	}
	return p.Env()
}

func (c *Controller) launch(ctx context.Context, session *db.Session, role string, cmd *mencoder.Command, opts mencoder.Options) (*proc, error) {
	log.Info().Str("role", role).Str("command", cmd.String()).Msg("Launching")
	entry := c.journal.command(session, role, cmd.Argv())
	h, err := c.cfg.Launcher.Launch(ctx, cmd, opts)
	if err != nil {
		log.Error().Err(err).Str("role", role).Msg("launch failed")
		c.journal.finish(entry, err.Error())
		return nil, err
	}
	c.journal.started(entry, h.Pid())
	p := &proc{role: role, handle: h, state: Running, log: entry}
	c.emit(StateChanged{Role: role, State: Running, Pid: h.Pid()})
	if lines := h.Lines(); lines != nil {
		c.pumps.Add(1)
		go c.pump(role, entry.ID, lines)
	}
	return p, nil
}

func (c *Controller) pump(role string, logID uint, lines <-chan string) {
	defer c.pumps.Done()
	for line := range lines {
		c.journal.line(logID, line)
		c.cfg.OnEvent(Output{Role: role, Line: line})
	}
}

// Wait blocks until the output of every launched process has been
// read to the end.
func (c *Controller) Wait() {
	c.pumps.Wait()
}

func (c *Controller) setState(p *proc, s State) {
	p.state = s
	c.journal.finish(p.log, s.String())
	c.emit(StateChanged{Role: p.role, State: s, Pid: p.handle.Pid()})
}

// kill terminates p if it is still running. A process that is already
// gone is left alone.
func (c *Controller) kill(p *proc) {
	if !p.running() {
		return
	}
	p.handle.Kill()
	c.setState(p, Killed)
}

// runHook runs a pre or post command to completion. A failing hook is
// reported and otherwise ignored.
func (c *Controller) runHook(ctx context.Context, session *db.Session, role, command string, env map[string]string) {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return
	}
	log.Info().Str("role", role).Str("command", command).Msg("Running hook")
	entry := c.journal.command(session, role, argv)
	if err := c.cfg.Launcher.Run(context.WithoutCancel(ctx), argv, env); err != nil {
		log.Error().Err(err).Str("role", role).Msg("hook failed")
		c.journal.finish(entry, err.Error())
		c.emit(Problem{Role: role, Err: err})
		return
	}
	c.journal.finish(entry, Exited.String())
}

// Record starts recording with p. The output file is resolved from
// the template now; if it exists and accepted is false, ErrFileExists
// is returned along with the path so the caller can ask. A running
// preview is stopped first and a pending schedule is cancelled.
func (c *Controller) Record(ctx context.Context, p *params.Parameters, accepted bool) (string, error) {
	c.lock()
	defer c.unlock()
	return c.record(ctx, p, accepted, nil)
}

func (c *Controller) record(ctx context.Context, p *params.Parameters, accepted bool, session *db.Session) (string, error) {
	if c.recorder.running() {
		return "", ErrAlreadyRunning
	}
	now := c.cfg.Now()
	file := filename.MakeWith(p.OutputFile, p.ChannelText(), now, p.AppendSuffix, c.cfg.Exists)
	if !accepted && c.cfg.Exists(file) {
		return file, ErrFileExists
	}
	if c.schedule.Active() {
		c.cancelSchedule()
	}
	c.stopPreview()

	env := envFor(p)
	if session == nil {
		session = c.journal.open(db.KindRecord, p)
	}
	session.OutputFile = file
	session.StartedAt = &now
	session.State = Running.String()
	c.journal.save(session)

	c.runHook(ctx, session, db.RolePre, p.PreCommand, env)
	rec, err := c.launch(ctx, session, db.RoleRecorder, mencoder.RecordCommand(c.cfg.Mencoder, p, file), mencoder.Options{
		Env:     env,
		Capture: true,
	})
	if err != nil {
		c.journal.end(session, "failed", now)
		return file, err
	}
	c.recorder = rec
	c.ctx = ctx
	c.params = p
	c.file = file
	c.elapsed = 0
	c.recording = session
	c.status = c.cfg.Scheduler.Every(c.cfg.Interval, c.pollRecorder)
	if p.PlayWhileRecording {
		c.watch = c.cfg.Scheduler.Every(c.cfg.Interval, c.watchFile)
	}
	return file, nil
}

func (c *Controller) pollRecorder(time.Time) {
	c.lock()
	defer c.unlock()
	if !c.recorder.running() {
		return
	}
	if c.recorder.handle.Exited() {
		c.setState(c.recorder, Exited)
		c.cleanup()
		return
	}
	c.elapsed += c.cfg.Interval
	c.emit(Progress{File: c.file, Elapsed: c.elapsed})
}

// watchFile starts a player on the output file as soon as the recorder
// has created it.
func (c *Controller) watchFile(time.Time) {
	c.lock()
	defer c.unlock()
	if !c.recorder.running() || !c.cfg.Exists(c.file) {
		return
	}
	c.watch.Cancel()
	c.watch = nil
	player, err := c.launch(c.ctx, c.recording, db.RolePlayer, mencoder.PlayCommand(c.cfg.Mplayer, c.file), mencoder.Options{
		Env: envFor(c.params),
	})
	if err != nil {
		c.emit(Problem{Role: db.RolePlayer, Err: err})
		return
	}
	c.player = player
}

// cleanup runs once the recorder is gone, whether it exited or was
// killed.
func (c *Controller) cleanup() {
	c.status.Cancel()
	c.watch.Cancel()
	c.status = nil
	c.watch = nil
	c.kill(c.player)
	c.runHook(c.ctx, c.recording, db.RolePost, c.params.PostCommand, envFor(c.params))
	state := c.recorder.state
	c.journal.end(c.recording, state.String(), c.cfg.Now())
	c.emit(RecordingEnded{File: c.file, State: state, Elapsed: c.elapsed})
	log.Info().Str("file", c.file).Str("elapsed", FormatElapsed(c.elapsed)).Str("state", state.String()).Msg("Recording ended")
	c.elapsed = 0
	c.recording = nil
	c.params = nil
	c.ctx = nil
}

// Stop ends the recording. The player and the preview go before the
// recorder.
func (c *Controller) Stop() error {
	c.lock()
	defer c.unlock()
	if !c.recorder.running() {
		return ErrNotRunning
	}
	c.kill(c.player)
	c.stopPreview()
	c.kill(c.recorder)
	c.cleanup()
	return nil
}

// Preview starts mplayer on the device with a control pipe open.
func (c *Controller) Preview(ctx context.Context, p *params.Parameters) error {
	c.lock()
	defer c.unlock()
	if c.preview.running() {
		return ErrAlreadyRunning
	}
	session := c.journal.open(db.KindPreview, p)
	now := c.cfg.Now()
	session.StartedAt = &now
	session.State = Running.String()
	c.journal.save(session)
	preview, err := c.launch(ctx, session, db.RolePreview, mencoder.PreviewCommand(c.cfg.Mplayer, p), mencoder.Options{
		Env:     envFor(p),
		Control: true,
		Capture: true,
	})
	if err != nil {
		c.journal.end(session, "failed", now)
		return err
	}
	c.preview = preview
	c.previewSession = session
	c.previewPoll = c.cfg.Scheduler.Every(c.cfg.Interval, c.pollPreview)
	return nil
}

func (c *Controller) pollPreview(time.Time) {
	c.lock()
	defer c.unlock()
	if !c.preview.running() || !c.preview.handle.Exited() {
		return
	}
	c.setState(c.preview, Exited)
	c.endPreview()
}

func (c *Controller) endPreview() {
	c.previewPoll.Cancel()
	c.previewPoll = nil
	c.journal.end(c.previewSession, c.preview.state.String(), c.cfg.Now())
	c.previewSession = nil
}

func (c *Controller) stopPreview() {
	if !c.preview.running() {
		return
	}
	c.kill(c.preview)
	c.endPreview()
}

// StopPreview kills the preview player.
func (c *Controller) StopPreview() error {
	c.lock()
	defer c.unlock()
	if !c.preview.running() {
		return ErrNotRunning
	}
	c.stopPreview()
	return nil
}

// Tune sends one live-control command to the preview. A failed write
// is returned and leaves the preview as it was.
func (c *Controller) Tune(verb, arg string) error {
	c.lock()
	defer c.unlock()
	if !c.preview.running() {
		return ErrNotRunning
	}
	if err := mencoder.Tune(c.preview.handle, verb, arg); err != nil {
		log.Error().Err(err).Str("verb", verb).Msg("live control failed")
		return err
	}
	log.Debug().Str("verb", verb).Str("arg", arg).Msg("sent")
	return nil
}

// Schedule starts recording with p once at has been reached. The time
// left is checked on every poll.
func (c *Controller) Schedule(ctx context.Context, p *params.Parameters, at time.Time) error {
	c.lock()
	defer c.unlock()
	if c.schedule.Active() {
		return ErrScheduled
	}
	if c.recorder.running() {
		return ErrAlreadyRunning
	}
	session := c.journal.open(db.KindRecord, p)
	session.ScheduledAt = &at
	session.State = "scheduled"
	c.journal.save(session)
	c.at = at
	c.scheduled = session
	c.schedule = c.cfg.Scheduler.Every(c.cfg.Interval, func(now time.Time) {
		c.pollSchedule(ctx, p, now)
	})
	log.Info().Time("at", at).Msg("Recording scheduled")
	c.emit(Countdown{At: at, Remaining: at.Sub(c.cfg.Now())})
	return nil
}

func (c *Controller) pollSchedule(ctx context.Context, p *params.Parameters, now time.Time) {
	c.lock()
	defer c.unlock()
	if !c.schedule.Active() {
		return
	}
	remaining := c.at.Sub(now)
	if remaining > 0 {
		c.emit(Countdown{At: c.at, Remaining: remaining})
		return
	}
	session := c.scheduled
	c.schedule.Cancel()
	c.schedule = nil
	c.scheduled = nil
	c.at = time.Time{}
	// Nobody is there to accept an overwrite, so never reuse a name.
	unattended := *p
	unattended.AppendSuffix = true
	if _, err := c.record(ctx, &unattended, true, session); err != nil {
		log.Error().Err(err).Msg("scheduled recording did not start")
		c.journal.end(session, "failed", now)
		c.emit(Problem{Role: db.RoleRecorder, Err: err})
	}
}

func (c *Controller) cancelSchedule() {
	at := c.at
	c.schedule.Cancel()
	c.schedule = nil
	c.journal.end(c.scheduled, "cancelled", c.cfg.Now())
	c.scheduled = nil
	c.at = time.Time{}
	c.emit(ScheduleCancelled{At: at})
}

// CancelSchedule calls off a pending scheduled start. Nothing has been
// launched yet, so there is nothing to undo.
func (c *Controller) CancelSchedule() error {
	c.lock()
	defer c.unlock()
	if !c.schedule.Active() {
		return ErrNotRunning
	}
	c.cancelSchedule()
	return nil
}

// Shutdown cancels any schedule and kills everything still running.
func (c *Controller) Shutdown() {
	c.lock()
	defer c.unlock()
	if c.schedule.Active() {
		c.cancelSchedule()
	}
	c.kill(c.player)
	c.stopPreview()
	if c.recorder.running() {
		c.kill(c.recorder)
		c.cleanup()
	}
}

// Status is a snapshot of the controller.
type Status struct {
	Recorder State
	Preview  State
	Player   State
	File     string
	Elapsed  time.Duration
	// ScheduledAt is zero when no start is pending.
	ScheduledAt time.Time
	// Session is the token of the recording or scheduled session.
	Session string
}

func (c *Controller) Status() Status {
	c.lock()
	defer c.unlock()
	s := Status{
		Recorder:    c.recorder.stateOf(),
		Preview:     c.preview.stateOf(),
		Player:      c.player.stateOf(),
		Elapsed:     c.elapsed,
		ScheduledAt: c.at,
	}
	if c.recorder.running() {
		s.File = c.file
	}
	switch {
	case c.recording != nil:
		s.Session = c.recording.Token
	case c.scheduled != nil:
		s.Session = c.scheduled.Token
	}
	return s
}

type statter interface {
	Stats() (*mencoder.Stats, error)
}

// RecorderStats samples the resource use of the running recorder.
func (c *Controller) RecorderStats() (*mencoder.Stats, error) {
	c.lock()
	defer c.unlock()
	if !c.recorder.running() {
		return nil, ErrNotRunning
	}
	s, ok := c.recorder.handle.(statter)
	if !ok {
		return nil, ErrNotRunning
	}
	return s.Stats()
}
