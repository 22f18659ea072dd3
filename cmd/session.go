package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/achernya/tvcapture/capture"
	"github.com/achernya/tvcapture/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	eventBuffer    = 1024
	tickResolution = 100 * time.Millisecond
)

// session connects a controller to either a terminal UI or the log.
type session struct {
	ctl    *capture.Controller
	events chan any
	// done is closed once nobody reads events any more.
	done chan struct{}
}

func newSession(d *gorm.DB) *session {
	s := &session{
		events: make(chan any, eventBuffer),
		done:   make(chan struct{}),
	}
	s.ctl = capture.New(capture.Config{
		Mencoder: viper.GetString(mencoderBin),
		Mplayer:  viper.GetString(mplayerBin),
		DB:       d,
		OnEvent:  s.deliver,
	})
	return s
}

// deliver queues an event for watch. Process output is dropped when
// the queue is full; every other event waits for room.
func (s *session) deliver(e any) {
	if _, ok := e.(capture.Output); ok {
		select {
		case s.events <- e:
		default:
		}
		return
	}
	select {
	case s.events <- e:
	case <-s.done:
	}
}

func logEvent(e any) {
	switch e := e.(type) {
	case capture.Output:
		log.Debug().Str("role", e.Role).Msg(e.Line)
	case capture.StateChanged:
		log.Info().Str("role", e.Role).Int("pid", e.Pid).Msg(e.State.String())
	case capture.Countdown:
		log.Debug().Str("remaining", capture.FormatElapsed(e.Remaining)).Msg("waiting")
	case capture.RecordingEnded:
		log.Info().Str("file", e.File).Str("elapsed", capture.FormatElapsed(e.Elapsed)).Msg("done")
	}
}

// watch polls the controller until ended reports true for an event,
// the user quits the UI, or the process is interrupted. Whatever is
// still running is then shut down. With a nil model events go to the
// log instead.
func (s *session) watch(ctx context.Context, model tea.Model, ended func(any) bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go s.ctl.Scheduler().Run(ctx, tickResolution)
	defer func() {
		close(s.done)
		s.ctl.Shutdown()
		s.ctl.Wait()
	}()

	if model == nil {
		for {
			select {
			case <-ctx.Done():
				return nil
			case e := <-s.events:
				logEvent(e)
				if ended(e) {
					return nil
				}
			}
		}
	}

	defer logging.Quiet()()
	prog := tea.NewProgram(model, tea.WithContext(ctx))
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-s.events:
				prog.Send(e)
			}
		}
	}()
	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
