package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/paarijaat/stickyapp/internal/adapter/metrics"
	"github.com/paarijaat/stickyapp/internal/domain"
)

// actor is the goroutine that owns one session's backend.
type actor struct {
	id      domain.SessionID
	backend domain.Backend
	mailbox *Mailbox
	clock   clockwork.Clock
	metrics *metrics.SessionMetrics
	logger  *slog.Logger
	onExit  func()
}

// run performs the initialization handshake and then serves the mailbox
// until a command terminates the session or the mailbox is closed.
func (a *actor) run(initMessage string, initReply chan<- domain.Reply) {
	defer a.onExit()
	defer close(a.mailbox.done)

	info, err := a.initialize(initMessage)
	if err != nil {
		a.logger.Warn("Session initialization failed", "error", err)
		initReply <- domain.Reply{
			Status:  domain.StatusTerminated,
			Payload: domain.ActionResponse{StatusMessage: fmt.Sprintf("session initialization failed: %v", err)}.Encode(),
		}
		return
	}

	a.logger.Info("Session ready", "info", info)
	initReply <- domain.Reply{
		Status:  domain.StatusOk,
		Payload: domain.ActionResponse{Status: true, StatusMessage: info}.Encode(),
	}

	for {
		// A close request wins over queued commands.
		select {
		case <-a.mailbox.closing:
			a.logger.Info("Session mailbox closed, exiting", "dropped", len(a.mailbox.queue))
			return
		default:
		}

		select {
		case <-a.mailbox.closing:
			a.logger.Info("Session mailbox closed, exiting", "dropped", len(a.mailbox.queue))
			return
		case env := <-a.mailbox.queue:
			reply := a.handle(env.cmd)
			env.reply <- reply
			if reply.Terminated() {
				a.logger.Info("Session terminated", "command", env.cmd.Type)
				return
			}
		}
	}
}

func (a *actor) initialize(initMessage string) (info string, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.metrics.Panics.Inc()
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()
	return a.backend.Initialize(initMessage)
}

func (a *actor) handle(cmd domain.Command) domain.Reply {
	if cmd.Type == domain.CommandStop {
		a.metrics.Commands.WithLabelValues("stop", "ok").Inc()
		return domain.Reply{
			Status:  domain.StatusTerminated,
			Payload: domain.ActionResponse{Status: true, StatusMessage: "session stopped"}.Encode(),
		}
	}

	req, err := domain.ParseActionRequest(cmd.Message)
	if err != nil {
		a.logger.Warn("Rejected malformed action", "error", err)
		a.metrics.Commands.WithLabelValues("invalid", "malformed").Inc()
		return okReply(domain.ActionResponse{StatusMessage: err.Error()})
	}

	start := a.clock.Now()
	res, err := a.execute(req)
	label := actionLabel(req.Action)
	a.metrics.CommandDuration.WithLabelValues(label).Observe(a.clock.Since(start).Seconds())

	switch {
	case errors.Is(err, domain.ErrUnknownAction):
		a.logger.Warn("Rejected unknown action", "action", req.Action)
		a.metrics.Commands.WithLabelValues(label, "unknown").Inc()
		return okReply(domain.ActionResponse{StatusMessage: err.Error()})
	case err != nil:
		a.logger.Error("Action failed", "action", req.Action, "error", err)
		a.metrics.Commands.WithLabelValues(label, "error").Inc()
		return okReply(domain.ActionResponse{StatusMessage: err.Error()})
	}

	result := "ok"
	if !res.Response.Status {
		result = "failed"
	}
	a.metrics.Commands.WithLabelValues(label, result).Inc()
	a.logger.Debug("Action handled", "action", req.Action, "status", res.Response.Status)

	reply := okReply(res.Response)
	if res.Terminates {
		reply.Status = domain.StatusTerminated
	}
	return reply
}

// execute runs one backend action. A panic is confined to the command
// that caused it; the session keeps running.
func (a *actor) execute(req domain.ActionRequest) (res domain.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Backend panic recovered", "action", req.Action, "panic", r)
			a.metrics.Panics.Inc()
			res, err = domain.Result{}, fmt.Errorf("internal error handling %q", req.Action)
		}
	}()
	return a.backend.Handle(req)
}

func okReply(resp domain.ActionResponse) domain.Reply {
	return domain.Reply{Status: domain.StatusOk, Payload: resp.Encode()}
}

// actionLabel bounds metric label cardinality to the known actions.
func actionLabel(action string) string {
	switch action {
	case domain.ActionEncrypt, domain.ActionObserve, domain.ActionMean, domain.ActionShutdown:
		return action
	default:
		return "unknown"
	}
}
