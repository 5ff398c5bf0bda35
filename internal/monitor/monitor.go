// Package monitor polls the inbox for replies to in-flight
// negotiations and converts them into workflow signals. It is the
// only bridge between free-text email and the state machine.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"go.temporal.io/api/serviceerror"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/interviewd/internal/config"
	"github.com/fyrsmithlabs/interviewd/internal/email"
	"github.com/fyrsmithlabs/interviewd/internal/extraction"
	"github.com/fyrsmithlabs/interviewd/internal/logging"
	"github.com/fyrsmithlabs/interviewd/internal/store"
)

// SignalClient is the slice of the Temporal client the monitor needs.
type SignalClient interface {
	SignalWorkflow(ctx context.Context, workflowID, runID, signalName string, arg interface{}) error
}

// Monitor periodically scans for replies addressed to active
// interviews and routes them to the owning workflows.
type Monitor struct {
	client    SignalClient
	reader    email.Reader
	store     *store.Store
	extractor *extraction.Extractor
	cfg       config.MonitorConfig
	log       *logging.Logger

	cron *cron.Cron
	seen *seenCache
}

// New assembles a monitor. Call Start to begin polling.
func New(client SignalClient, reader email.Reader, st *store.Store, ex *extraction.Extractor, cfg config.MonitorConfig, log *logging.Logger) *Monitor {
	return &Monitor{
		client:    client,
		reader:    reader,
		store:     st,
		extractor: ex,
		cfg:       cfg,
		log:       log.Named("monitor"),
		seen:      newSeenCache(cfg.DedupLimit),
	}
}

// Start schedules the poll loop on the configured cron spec.
func (m *Monitor) Start(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(m.cfg.PollSpec, func() {
		m.Poll(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule poll %q: %w", m.cfg.PollSpec, err)
	}
	c.Start()
	m.cron = c
	m.log.Info(ctx, "reply monitor started", zap.String("spec", m.cfg.PollSpec))
	return nil
}

// Stop halts polling and waits for an in-flight poll to finish.
func (m *Monitor) Stop() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
}

// Poll runs one scan over all active interviews.
func (m *Monitor) Poll(ctx context.Context) {
	for _, rec := range m.store.ListActive() {
		if err := m.checkInterview(ctx, rec); err != nil {
			m.log.Warn(logging.WithInterviewID(ctx, rec.InterviewID),
				"reply check failed", zap.Error(err))
		}
	}
}

// checkInterview looks for unread replies carrying the interview's
// correlation marker, falling back to recent mail when nothing is
// unread (some clients mark threads read on preview).
func (m *Monitor) checkInterview(ctx context.Context, rec store.Record) error {
	ctx = logging.WithInterviewID(ctx, rec.InterviewID)

	ids, err := m.reader.Search(ctx, fmt.Sprintf("%q is:unread", "InterviewID:"+rec.InterviewID))
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		ids, err = m.reader.Search(ctx, fmt.Sprintf("%q newer_than:2d", "InterviewID:"+rec.InterviewID))
		if err != nil {
			return err
		}
	}

	for _, id := range ids {
		if m.seen.contains(id) {
			continue
		}
		msg, err := m.reader.Get(ctx, id)
		if err != nil {
			m.log.Warn(ctx, "failed to fetch message", zap.String("message_id", id), zap.Error(err))
			continue
		}
		m.seen.add(id)

		if m.cfg.SelfAddress != "" && strings.Contains(msg.From, m.cfg.SelfAddress) {
			continue
		}
		if !m.relevant(rec, msg) {
			continue
		}

		m.log.Info(ctx, "processing reply",
			zap.String("message_id", id),
			zap.String("from", msg.From),
			zap.String("subject", msg.Subject))
		m.route(ctx, rec, msg)
	}
	return nil
}

// relevant filters out mail that merely matched the search window.
func (m *Monitor) relevant(rec store.Record, msg email.InboundMessage) bool {
	marker := "InterviewID:" + rec.InterviewID
	altMarker := "[ID:" + rec.InterviewID + "]"
	if strings.Contains(msg.Subject, marker) || strings.Contains(msg.Body, marker) {
		return true
	}
	if strings.Contains(msg.Subject, altMarker) || strings.Contains(msg.Body, altMarker) {
		return true
	}
	return strings.Contains(strings.ToLower(msg.Subject), "interview")
}

// signal delivers one workflow signal, pruning the record when the
// workflow already finished without deregistering itself.
func (m *Monitor) signal(ctx context.Context, interviewID, name string, arg interface{}) {
	err := m.client.SignalWorkflow(ctx, interviewID, "", name, arg)
	if err == nil {
		m.log.Info(ctx, "signal delivered", zap.String("signal", name))
		return
	}

	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) || strings.Contains(err.Error(), "already completed") {
		m.log.Info(ctx, "workflow gone, removing stale record", zap.String("signal", name))
		if rmErr := m.store.Remove(interviewID); rmErr != nil {
			m.log.Warn(ctx, "failed to remove stale record", zap.Error(rmErr))
		}
		return
	}
	m.log.Error(ctx, "signal failed", zap.String("signal", name), zap.Error(err))
}

// seenCache is a bounded FIFO set of processed message IDs. When the
// bound is hit the oldest entry is evicted, which at worst reprocesses
// a very old message; signals past terminal states are discarded by
// the workflow anyway.
type seenCache struct {
	limit int
	order []string
	set   map[string]struct{}
}

func newSeenCache(limit int) *seenCache {
	if limit <= 0 {
		limit = 1024
	}
	return &seenCache{limit: limit, set: make(map[string]struct{})}
}

func (c *seenCache) contains(id string) bool {
	_, ok := c.set[id]
	return ok
}

func (c *seenCache) add(id string) {
	if c.contains(id) {
		return
	}
	if len(c.order) >= c.limit {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.set, oldest)
	}
	c.order = append(c.order, id)
	c.set[id] = struct{}{}
}
