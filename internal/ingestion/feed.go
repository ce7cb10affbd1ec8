package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-safety-alerts/internal/config"
	"github.com/mr1hm/go-safety-alerts/internal/models"
	"github.com/mr1hm/go-safety-alerts/internal/observability"
)

var (
	ErrProviderUnavailable = errors.New("feed provider unavailable")
	ErrNoCredential        = errors.New("no feed credential configured")
)

const (
	resultCodeOK = "00"
	timeLayout   = "2006/01/02 15:04:05"
)

var kst = time.FixedZone("KST", 9*60*60)

type Source string

const (
	SourceLive      Source = "live"
	SourceCache     Source = "cache"
	SourceSynthetic Source = "synthetic"
)

// FetchResult always carries a non-empty record sequence. Err is set when the
// live request failed and the records came from the cache or the synthetic record.
type FetchResult struct {
	Records []models.RawDisasterRecord
	Source  Source
	Err     error
}

type feedEnvelope struct {
	Header *struct {
		ResultCode string `json:"resultCode"`
		ResultMsg  string `json:"resultMsg"`
	} `json:"header"`
	NumOfRows  int          `json:"numOfRows"`
	PageNo     int          `json:"pageNo"`
	TotalCount int          `json:"totalCount"`
	Body       *[]feedEntry `json:"body"`
}

type feedEntry struct {
	SN          flexString `json:"SN"`
	CreatedAt   string     `json:"CRT_DT"`
	Name        string     `json:"DST_SE_NM"`
	RegionCode  flexString `json:"RCPTN_RGN_CD"`
	RegionName  string     `json:"RCPTN_RGN_NM"`
	Message     string     `json:"MSG_CN"`
	EmergencyLv string     `json:"EMRG_STEP_NM"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// FeedClient talks to the public disaster message provider.
type FeedClient struct {
	http    *resty.Client
	url     string
	apiKey  string
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu    sync.RWMutex
	cache []models.RawDisasterRecord

	fallback atomic.Bool
}

type FeedOption func(*FeedClient)

func WithFeedClock(c clockwork.Clock) FeedOption {
	return func(f *FeedClient) { f.clock = c }
}

func NewFeedClient(cfg config.FeedConfig, metrics *observability.Metrics, opts ...FeedOption) *FeedClient {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	f := &FeedClient{
		http:    client,
		url:     cfg.URL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FeedClient) HasCredential() bool {
	return f.apiKey != ""
}

// EngageFallback switches FetchRecent to synthetic data for the rest of the process lifetime.
func (f *FeedClient) EngageFallback() {
	f.fallback.Store(true)
}

func (f *FeedClient) FallbackEngaged() bool {
	return f.fallback.Load()
}

// FetchLive performs the provider request with no fallback of any kind.
func (f *FeedClient) FetchLive(ctx context.Context, page, pageSize int) ([]models.RawDisasterRecord, error) {
	if !f.HasCredential() {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, ErrNoCredential)
	}
	if page < 1 {
		page = 1
	}

	start := f.clock.Now()
	var env feedEnvelope
	resp, err := f.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"serviceKey": f.apiKey,
			"pageNo":     strconv.Itoa(page),
			"numOfRows":  strconv.Itoa(pageSize),
			"returnType": "json",
		}).
		Get(f.url)
	f.metrics.FeedFetchDuration.Observe(f.clock.Since(start).Seconds())

	if err != nil {
		return nil, f.fail("request failed: %w", err)
	}
	if resp.IsError() {
		return nil, f.fail("unexpected status code: %d", resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, f.fail("error decoding response: %w", err)
	}
	if env.Header == nil || env.Body == nil {
		return nil, f.fail("malformed envelope: missing header or body")
	}
	if env.Header.ResultCode != resultCodeOK {
		return nil, f.fail("provider result %s: %s", env.Header.ResultCode, env.Header.ResultMsg)
	}

	records := make([]models.RawDisasterRecord, 0, len(*env.Body))
	for _, e := range *env.Body {
		records = append(records, e.toRecord())
	}
	return records, nil
}

// FetchRecent never fails. Without a credential or once fallback is engaged it
// serves the synthetic record. A failed live request is answered from the
// last successful first page when there is one.
func (f *FeedClient) FetchRecent(ctx context.Context, page, pageSize int) FetchResult {
	if !f.HasCredential() || f.FallbackEngaged() {
		return f.synthetic(nil)
	}

	records, err := f.FetchLive(ctx, page, pageSize)
	if err == nil {
		// Only the first page is the most recent sequence; browsing deeper pages
		// must not replace it.
		if page == 1 && len(records) > 0 {
			f.mu.Lock()
			f.cache = cloneRecords(records)
			f.mu.Unlock()
		}
		return FetchResult{Records: records, Source: SourceLive}
	}

	f.mu.RLock()
	cached := cloneRecords(f.cache)
	f.mu.RUnlock()
	if len(cached) > 0 {
		return FetchResult{Records: cached, Source: SourceCache, Err: err}
	}
	return f.synthetic(err)
}

func (f *FeedClient) synthetic(err error) FetchResult {
	return FetchResult{
		Records: []models.RawDisasterRecord{models.SyntheticRecord(f.clock.Now())},
		Source:  SourceSynthetic,
		Err:     err,
	}
}

func (f *FeedClient) fail(format string, args ...any) error {
	f.metrics.FeedFailures.Inc()
	return fmt.Errorf("%w: %w", ErrProviderUnavailable, fmt.Errorf(format, args...))
}

func (e feedEntry) toRecord() models.RawDisasterRecord {
	return models.RawDisasterRecord{
		SequenceID:    strings.TrimSpace(string(e.SN)),
		CreatedAt:     parseCreatedAt(e.CreatedAt),
		DisasterName:  strings.TrimSpace(e.Name),
		RegionCode:    strings.TrimSpace(string(e.RegionCode)),
		RegionName:    strings.TrimSpace(e.RegionName),
		Message:       strings.TrimSpace(e.Message),
		EmergencyStep: strings.TrimSpace(e.EmergencyLv),
	}
}

// parseCreatedAt returns the zero time for anything unparseable; such records are never fresh.
func parseCreatedAt(s string) time.Time {
	t, err := time.ParseInLocation(timeLayout, strings.TrimSpace(s), kst)
	if err != nil {
		return time.Time{}
	}
	return t
}

func cloneRecords(in []models.RawDisasterRecord) []models.RawDisasterRecord {
	if len(in) == 0 {
		return nil
	}
	return append([]models.RawDisasterRecord(nil), in...)
}
