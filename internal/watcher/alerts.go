// Package watcher ingests incidents from outside the HTTP API: a poller
// that scrapes the DGMS safety-alert page for new PDF bulletins, and a
// filesystem watcher that picks up incident JSON dropped into an inbox
// directory.
package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/khanijo/minewatch/internal/store"
)

const (
	alertUserAgent   = "minewatch/1.0"
	alertContentID   = "skipmaincontent"
	maxAlertPageSize = 8 << 20
	maxAlertPDFSize  = 32 << 20
)

var alertCronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Extractor turns an alert PDF into the incident JSON object.
type Extractor interface {
	ExtractIncidentJSON(ctx context.Context, pdf []byte) ([]byte, error)
}

// Sink receives the incidents the watcher produces.
type Sink interface {
	InsertIncident(ctx context.Context, input store.InsertIncidentInput) (store.Incident, error)
}

// Broadcaster fans inserted incidents out to live subscribers.
type Broadcaster interface {
	Broadcast(incident store.Incident)
}

type AlertsConfig struct {
	PageURL      string
	StatePath    string
	CronExpr     string
	PollInterval time.Duration
	FetchPerSec  float64
	HTTPTimeout  time.Duration
}

// Alerts polls the safety-alert page, diffs the PDF links it finds
// against the persisted known list, and runs extraction on the new ones.
type Alerts struct {
	cfg       AlertsConfig
	sink      Sink
	extractor Extractor
	hub       Broadcaster
	logger    *slog.Logger
	client    *http.Client
	limiter   *rate.Limiter
	known     map[string]struct{}
	knownList []string
}

func NewAlerts(cfg AlertsConfig, sink Sink, extractor Extractor, hub Broadcaster, logger *slog.Logger) *Alerts {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Minute
	}
	if cfg.FetchPerSec <= 0 {
		cfg.FetchPerSec = 0.5
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 20 * time.Second
	}
	return &Alerts{
		cfg:       cfg,
		sink:      sink,
		extractor: extractor,
		hub:       hub,
		logger:    logger,
		client:    &http.Client{Timeout: cfg.HTTPTimeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.FetchPerSec), 1),
		known:     make(map[string]struct{}),
	}
}

func (a *Alerts) Start(ctx context.Context) error {
	if strings.TrimSpace(a.cfg.PageURL) == "" {
		a.logger.Info("alert watcher disabled, no page url configured")
		<-ctx.Done()
		return nil
	}
	a.loadKnown()
	a.logger.Info("alert watcher started",
		"url", a.cfg.PageURL,
		"known", len(a.knownList),
		"state_path", a.cfg.StatePath,
	)
	for {
		if err := a.pollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				a.logger.Info("alert watcher stopped")
				return nil
			}
			a.logger.Error("alert poll failed", "error", err)
		}
		delay := a.nextDelay(time.Now().UTC())
		select {
		case <-ctx.Done():
			a.logger.Info("alert watcher stopped")
			return nil
		case <-time.After(delay):
		}
	}
}

func (a *Alerts) nextDelay(now time.Time) time.Duration {
	expr := strings.Join(strings.Fields(a.cfg.CronExpr), " ")
	if expr != "" {
		spec, err := alertCronParser.Parse(expr)
		if err != nil {
			a.logger.Warn("invalid poll cron expression, using fixed interval", "cron", expr, "error", err)
		} else if delay := spec.Next(now).Sub(now); delay > 0 {
			return delay
		}
	}
	return a.cfg.PollInterval
}

func (a *Alerts) pollOnce(ctx context.Context) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	page, err := a.fetch(ctx, a.cfg.PageURL, maxAlertPageSize)
	if err != nil {
		return fmt.Errorf("fetch alert page: %w", err)
	}
	links, err := extractAlertLinks(page, a.cfg.PageURL)
	if err != nil {
		return fmt.Errorf("parse alert page: %w", err)
	}

	fresh := make([]string, 0, len(links))
	for name := range links {
		if _, seen := a.known[name]; !seen {
			fresh = append(fresh, name)
		}
	}
	if len(fresh) == 0 {
		a.logger.Debug("no new alerts", "found", len(links))
		return nil
	}
	sort.Strings(fresh)

	// Persist the names before processing so a failed extraction is not
	// retried on every poll.
	for _, name := range fresh {
		a.known[name] = struct{}{}
		a.knownList = append(a.knownList, name)
	}
	if err := a.saveKnown(); err != nil {
		a.logger.Error("save alert state failed", "error", err, "path", a.cfg.StatePath)
	}
	a.logger.Info("new safety alerts found", "count", len(fresh))

	for _, name := range fresh {
		if err := a.processAlert(ctx, name, links[name]); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Error("process alert failed", "alert", name, "url", links[name], "error", err)
		}
	}
	return nil
}

func (a *Alerts) processAlert(ctx context.Context, name, pdfURL string) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	pdf, err := a.fetch(ctx, pdfURL, maxAlertPDFSize)
	if err != nil {
		return fmt.Errorf("download pdf: %w", err)
	}
	raw, err := a.extractor.ExtractIncidentJSON(ctx, pdf)
	if err != nil {
		return fmt.Errorf("extract incident: %w", err)
	}
	var input store.InsertIncidentInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("decode extracted incident: %w", err)
	}
	incident, err := a.sink.InsertIncident(ctx, input)
	if err != nil {
		return fmt.Errorf("insert incident: %w", err)
	}
	if a.hub != nil {
		a.hub.Broadcast(incident)
	}
	a.logger.Info("alert ingested", "alert", name, "incident_id", incident.ID)
	return nil
}

func (a *Alerts) fetch(ctx context.Context, rawURL string, maxBytes int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", alertUserAgent)
	res, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	return io.ReadAll(io.LimitReader(res.Body, maxBytes))
}

// extractAlertLinks returns alert names mapped to resolved PDF URLs. The
// name is the URL-decoded basename without the .pdf suffix, lower-cased.
// Anchors are scoped to the main content element when the page has one.
func extractAlertLinks(page []byte, baseURL string) (map[string]string, error) {
	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	root := findElementByID(doc, alertContentID)
	if root == nil {
		root = doc
	}

	links := make(map[string]string)
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "a" {
			if href := strings.TrimSpace(attrValue(node, "href")); href != "" {
				if name, full, ok := resolveAlertLink(base, href); ok {
					links[name] = full
				}
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return links, nil
}

func resolveAlertLink(base *url.URL, href string) (name, full string, ok bool) {
	if !strings.HasSuffix(strings.ToLower(href), ".pdf") {
		return "", "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", "", false
	}
	resolved := base.ResolveReference(ref)
	basename := path.Base(resolved.Path)
	if basename == "." || basename == "/" {
		return "", "", false
	}
	decoded, err := url.PathUnescape(basename)
	if err != nil {
		decoded = basename
	}
	name = strings.TrimSuffix(strings.ToLower(decoded), ".pdf")
	if name == "" {
		return "", "", false
	}
	return name, resolved.String(), true
}

func findElementByID(node *html.Node, id string) *html.Node {
	if node.Type == html.ElementNode && attrValue(node, "id") == id {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findElementByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(node *html.Node, key string) string {
	for _, attr := range node.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func (a *Alerts) loadKnown() {
	if a.cfg.StatePath == "" {
		return
	}
	raw, err := os.ReadFile(a.cfg.StatePath)
	if err != nil {
		if !os.IsNotExist(err) {
			a.logger.Warn("read alert state failed", "error", err, "path", a.cfg.StatePath)
		}
		return
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		a.logger.Warn("alert state file is not a json list, starting empty", "path", a.cfg.StatePath)
		return
	}
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, seen := a.known[name]; seen {
			continue
		}
		a.known[name] = struct{}{}
		a.knownList = append(a.knownList, name)
	}
}

func (a *Alerts) saveKnown() error {
	if a.cfg.StatePath == "" {
		return nil
	}
	raw, err := json.MarshalIndent(a.knownList, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(a.cfg.StatePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(a.cfg.StatePath)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, a.cfg.StatePath)
}
