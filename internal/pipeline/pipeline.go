// Package pipeline orchestrates a full timetable sync: fetch every
// configured sheet tab, parse each into entries, publish the aggregate
// document to the object store, then feed the configured storage sinks and
// fire the update notification.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"timetable_parser/internal/scanner"
	"timetable_parser/internal/timetable"
)

// DefaultObjectKey is the object-store key the aggregate document is
// published under when none is configured.
const DefaultObjectKey = "master_timetable.json"

const userAgent = "timetable-sync/1.0"

// Tab is one spreadsheet tab to fetch: a weekday label and the sheet gid.
type Tab struct {
	Day string
	GID string
}

// ParseTabs decodes the tab list from its JSON form:
// [{"day":"Monday","gid":"0"}, ...]. Order is preserved; the published
// document follows it.
func ParseTabs(raw string) ([]Tab, error) {
	v := gjson.Parse(raw)
	if !v.IsArray() {
		return nil, fmt.Errorf("tabs config is not a JSON array")
	}
	var tabs []Tab
	v.ForEach(func(_, t gjson.Result) bool {
		tabs = append(tabs, Tab{
			Day: t.Get("day").String(),
			GID: t.Get("gid").String(),
		})
		return true
	})
	if len(tabs) == 0 {
		return nil, fmt.Errorf("tabs config is empty")
	}
	return tabs, nil
}

// Config holds the per-run settings of a sync.
type Config struct {
	SheetID   string
	Tabs      []Tab
	ObjectKey string
}

// Fetcher retrieves one tab's raw grid text.
type Fetcher interface {
	FetchTab(ctx context.Context, sheetID, gid string) (string, error)
}

// Publisher uploads the aggregate document. storage.Publisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key string, body []byte) error
}

// Sink receives the aggregated document after a successful publish. The
// storage archive, Postgres and ClickHouse stores all satisfy it.
type Sink interface {
	Store(ctx context.Context, runID string, syncedAt time.Time, groups []timetable.DayGroup) error
}

// Notifier announces a completed sync to downstream consumers.
type Notifier interface {
	Notify(runID, objectKey string, days, entries int) error
}

// SheetFetcher downloads the delimiter-separated export of a sheet tab over
// HTTP with transport-level retries.
type SheetFetcher struct {
	client  *retryablehttp.Client
	baseURL string
}

// NewSheetFetcher returns a fetcher against the public sheet export
// endpoint.
func NewSheetFetcher() *SheetFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	client.HTTPClient.Timeout = 60 * time.Second
	return &SheetFetcher{
		client:  client,
		baseURL: "https://docs.google.com",
	}
}

// FetchTab downloads one tab's export.
func (f *SheetFetcher) FetchTab(ctx context.Context, sheetID, gid string) (string, error) {
	url := fmt.Sprintf("%s/spreadsheets/d/%s/export?format=csv&gid=%s", f.baseURL, sheetID, gid)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv,*/*;q=0.8")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch gid=%s: %w", gid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch gid=%s: unexpected status %s", gid, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body gid=%s: %w", gid, err)
	}
	return string(body), nil
}

// Result summarizes a completed sync run.
type Result struct {
	RunID     string
	ObjectKey string
	Days      int
	Entries   int
}

// Pipeline wires the fetcher, parser, publisher, sinks and notifier.
type Pipeline struct {
	cfg     Config
	engine  *scanner.Engine
	fetcher Fetcher
	pub     Publisher
	sinks   []Sink
	notify  Notifier
	log     *logrus.Logger
}

// New builds a pipeline with the default parsing engine. Sinks and the
// notifier are optional and attached separately.
func New(cfg Config, fetcher Fetcher, pub Publisher) *Pipeline {
	log := logrus.New()
	return &Pipeline{
		cfg:     cfg,
		engine:  scanner.New(),
		fetcher: fetcher,
		pub:     pub,
		log:     log,
	}
}

// SetLogger replaces the pipeline logger.
func (p *Pipeline) SetLogger(log *logrus.Logger) {
	if log != nil {
		p.log = log
	}
}

// AddSink attaches a storage sink. Sinks run in attach order after the
// publish succeeds.
func (p *Pipeline) AddSink(s Sink) {
	p.sinks = append(p.sinks, s)
}

// SetNotifier attaches the post-sync notifier.
func (p *Pipeline) SetNotifier(n Notifier) {
	p.notify = n
}

// Aggregate fetches and parses every configured tab, in order. Any fetch
// failure aborts the whole aggregate: a partial document must never be
// published.
func (p *Pipeline) Aggregate(ctx context.Context) ([]timetable.DayGroup, error) {
	groups := make([]timetable.DayGroup, 0, len(p.cfg.Tabs))
	for _, tab := range p.cfg.Tabs {
		text, err := p.fetcher.FetchTab(ctx, p.cfg.SheetID, tab.GID)
		if err != nil {
			return nil, fmt.Errorf("tab %s (gid=%s): %w", tab.Day, tab.GID, err)
		}

		entries := p.engine.Parse(text)
		if entries == nil {
			entries = []timetable.Entry{}
		}
		p.log.WithFields(logrus.Fields{
			"day":     tab.Day,
			"gid":     tab.GID,
			"entries": len(entries),
		}).Info("parsed tab")

		groups = append(groups, timetable.DayGroup{Day: tab.Day, Entries: entries})
	}
	return groups, nil
}

// Run executes one full sync.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	startedAt := time.Now().UTC()

	groups, err := p.Aggregate(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	key := p.cfg.ObjectKey
	if key == "" {
		key = DefaultObjectKey
	}

	if err := p.pub.Publish(ctx, key, body); err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}

	total := 0
	for _, g := range groups {
		total += len(g.Entries)
	}
	p.log.WithFields(logrus.Fields{
		"run_id":  runID,
		"key":     key,
		"days":    len(groups),
		"entries": total,
		"bytes":   len(body),
	}).Info("published document")

	for _, sink := range p.sinks {
		if err := sink.Store(ctx, runID, startedAt, groups); err != nil {
			return nil, fmt.Errorf("sink: %w", err)
		}
	}

	if p.notify != nil {
		if err := p.notify.Notify(runID, key, len(groups), total); err != nil {
			p.log.WithError(err).Warn("update notification failed")
		}
	}

	return &Result{RunID: runID, ObjectKey: key, Days: len(groups), Entries: total}, nil
}
