package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/healthwatch/inference/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// chunk splits samples into groups of at most size.
func chunk(samples []Sample, size int) [][]Sample {
	if size < 1 {
		size = 1
	}
	out := make([][]Sample, 0, (len(samples)+size-1)/size)
	for start := 0; start < len(samples); start += size {
		end := min(start+size, len(samples))
		out = append(out, samples[start:end])
	}
	return out
}

// submitSamples sends every sample with at most config.Workers requests in
// flight. Results keep the order of samples. Request failures are recorded
// per result; only context cancellation aborts the run.
func submitSamples(ctx context.Context, config *Config, samples []Sample, stats *Stats) ([]Result, error) {
	log := logger.Get()
	log.Info(ctx, "submitting samples",
		logger.Int("samples", len(samples)),
		logger.Int("workers", config.Workers),
		logger.Int("batchSize", config.BatchSize))

	client := newHTTPClient(config.Timeout)
	results := make([]Result, len(samples))
	groups := chunk(samples, config.BatchSize)

	var sent, done int64
	progress := time.NewTicker(progressInterval)
	defer progress.Stop()
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-progress.C:
				log.Info(ctx, "progress",
					logger.Int("completed", int(atomic.LoadInt64(&done))),
					logger.Int("total", len(samples)))
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(config.Workers, 1))

	offset := 0
	for _, group := range groups {
		start := offset
		offset += len(group)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			atomic.AddInt64(&sent, 1)
			var out []Result
			if config.BatchSize > 1 {
				out = submitBatch(gctx, client, config.predictURL()+"/batch", group)
			} else {
				out = []Result{submitSingle(gctx, client, config.predictURL(), group[0])}
			}
			copy(results[start:], out)
			atomic.AddInt64(&done, int64(len(group)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("submission aborted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("submission aborted: %w", err)
	}

	stats.RequestsSent = int(atomic.LoadInt64(&sent))
	for _, r := range results {
		if r.Prediction != nil {
			stats.Successful++
		} else {
			stats.Failed++
		}
	}

	log.Info(ctx, "submission completed",
		logger.Int("requests", stats.RequestsSent),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed))
	return results, nil
}

// submitSingle posts one sample to the predict endpoint.
func submitSingle(ctx context.Context, client *HTTPClient, url string, s Sample) Result {
	res := Result{Sample: s}
	resp, err := client.Post(ctx, url, s.body())
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.Status = resp.StatusCode

	body, err := readResponseBody(resp)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	if resp.StatusCode != StatusOK {
		res.Err = string(bytes.TrimSpace(body))
		return res
	}

	var p Prediction
	if err := json.Unmarshal(body, &p); err != nil {
		res.Err = err.Error()
		return res
	}
	res.Prediction = &p
	return res
}

// submitBatch posts a group of samples to the batch endpoint.
func submitBatch(ctx context.Context, client *HTTPClient, url string, group []Sample) []Result {
	out := make([]Result, len(group))
	req := batchBody{Items: make([]predictBody, len(group))}
	for i, s := range group {
		out[i].Sample = s
		req.Items[i] = s.body()
	}

	fail := func(status int, msg string) []Result {
		for i := range out {
			out[i].Status = status
			out[i].Err = msg
		}
		return out
	}

	resp, err := client.Post(ctx, url, req)
	if err != nil {
		return fail(0, err.Error())
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fail(resp.StatusCode, err.Error())
	}
	if resp.StatusCode != StatusOK {
		return fail(resp.StatusCode, string(bytes.TrimSpace(body)))
	}

	var reply batchReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return fail(resp.StatusCode, err.Error())
	}
	if len(reply.Results) != len(group) {
		return fail(resp.StatusCode, fmt.Sprintf("expected %d results, got %d", len(group), len(reply.Results)))
	}
	for i := range out {
		p := reply.Results[i]
		out[i].Status = resp.StatusCode
		out[i].Prediction = &p
	}
	return out
}
