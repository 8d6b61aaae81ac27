// Package voicevox is a client for the VOICEVOX engine's HTTP API. Synthesis
// is a two-step protocol: an audio query is built for a text and speaker,
// optionally adjusted, and then rendered to WAV bytes.
package voicevox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RetryableError marks engine responses worth retrying: the engine is busy
// or momentarily failing rather than rejecting the input.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("voicevox engine: status %d: %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether err is a transient engine failure.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// AudioQuery is the engine's synthesis parameter set. Fields not adjusted
// here round-trip untouched through Extra.
type AudioQuery struct {
	SpeedScale         float64                    `json:"speedScale"`
	PitchScale         float64                    `json:"pitchScale"`
	IntonationScale    float64                    `json:"intonationScale"`
	VolumeScale        float64                    `json:"volumeScale"`
	PrePhonemeLength   float64                    `json:"prePhonemeLength"`
	PostPhonemeLength  float64                    `json:"postPhonemeLength"`
	OutputSamplingRate int                        `json:"outputSamplingRate"`
	OutputStereo       bool                       `json:"outputStereo"`
	Extra              map[string]json.RawMessage `json:"-"`
}

// knownQueryFields are the keys the typed struct owns.
var knownQueryFields = map[string]bool{
	"speedScale": true, "pitchScale": true, "intonationScale": true,
	"volumeScale": true, "prePhonemeLength": true, "postPhonemeLength": true,
	"outputSamplingRate": true, "outputStereo": true,
}

// UnmarshalJSON keeps unknown engine fields so the query can be posted back
// without dropping accent phrase data.
func (q *AudioQuery) UnmarshalJSON(data []byte) error {
	type alias AudioQuery
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range raw {
		if knownQueryFields[k] {
			delete(raw, k)
		}
	}
	*q = AudioQuery(a)
	q.Extra = raw
	return nil
}

// MarshalJSON merges the typed fields back over the preserved extras.
func (q AudioQuery) MarshalJSON() ([]byte, error) {
	merged := make(map[string]json.RawMessage, len(q.Extra)+len(knownQueryFields))
	for k, v := range q.Extra {
		merged[k] = v
	}
	type alias AudioQuery
	typed, err := json.Marshal(alias(q))
	if err != nil {
		return nil, err
	}
	var typedMap map[string]json.RawMessage
	if err := json.Unmarshal(typed, &typedMap); err != nil {
		return nil, err
	}
	for k, v := range typedMap {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// Client communicates with one VOICEVOX engine instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	stats      *SynthStats
}

// NewClient builds a client for the engine at baseURL. The stats collector
// may be nil when latency tracking is not wanted.
func NewClient(baseURL string, timeout time.Duration, stats *SynthStats) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		stats: stats,
	}
}

// Version asks the engine for its version string, doubling as a liveness
// probe.
func (c *Client) Version(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/version", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("engine version: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp, "engine version")
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", fmt.Errorf("read version: %w", err)
	}
	return strings.Trim(strings.TrimSpace(string(body)), `"`), nil
}

// BuildQuery creates an audio query for text with the given speaker style.
func (c *Client) BuildQuery(ctx context.Context, text string, speaker int) (*AudioQuery, error) {
	u := fmt.Sprintf("%s/audio_query?text=%s&speaker=%d", c.baseURL, url.QueryEscape(text), speaker)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audio query: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "audio query")
	}

	var query AudioQuery
	if err := json.NewDecoder(resp.Body).Decode(&query); err != nil {
		return nil, fmt.Errorf("decode audio query: %w", err)
	}
	return &query, nil
}

// Synthesize renders an adjusted query to WAV bytes.
func (c *Client) Synthesize(ctx context.Context, query *AudioQuery, speaker int) ([]byte, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}
	u := fmt.Sprintf("%s/synthesis?speaker=%d", c.baseURL, speaker)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "synthesis")
	}

	wav, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesis body: %w", err)
	}
	if c.stats != nil {
		c.stats.Record(time.Since(start).Milliseconds())
	}
	return wav, nil
}

// SynthesizeText is the full two-step flow with the standard query
// adjustment applied.
func (c *Client) SynthesizeText(ctx context.Context, text string, speaker int, opts QueryOptions) ([]byte, error) {
	query, err := c.BuildQuery(ctx, text, speaker)
	if err != nil {
		return nil, err
	}
	AdjustQuery(query, text, opts)
	return c.Synthesize(ctx, query, speaker)
}

// QueryOptions are the synthesis parameters exposed to callers. Zero values
// select the engine defaults.
type QueryOptions struct {
	SpeedScale      float64
	PitchScale      float64
	IntonationScale float64
}

// Trailing pause lengths in seconds, longer after a full stop than after a
// comma so sentence boundaries are audible.
const (
	pauseAfterFullStop = 0.5
	pauseAfterComma    = 0.2
)

// AdjustQuery applies the caller options and sets the trailing pause from
// the chunk's final punctuation.
func AdjustQuery(query *AudioQuery, text string, opts QueryOptions) {
	if opts.SpeedScale > 0 {
		query.SpeedScale = opts.SpeedScale
	}
	if opts.PitchScale != 0 {
		query.PitchScale = opts.PitchScale
	}
	if opts.IntonationScale > 0 {
		query.IntonationScale = opts.IntonationScale
	}
	switch {
	case strings.HasSuffix(text, "。") || strings.HasSuffix(text, "！") || strings.HasSuffix(text, "？"):
		query.PostPhonemeLength = pauseAfterFullStop
	case strings.HasSuffix(text, "、"):
		query.PostPhonemeLength = pauseAfterComma
	}
}

// Stats returns the latency collector, which may be nil.
func (c *Client) Stats() *SynthStats {
	return c.stats
}

// Close releases any resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func statusError(resp *http.Response, op string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	msg := strings.TrimSpace(string(body))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{StatusCode: resp.StatusCode, Message: msg}
	}
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, msg)
}
