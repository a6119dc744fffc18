package fetch

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/younsl/jj/internal/errs"
	"github.com/younsl/jj/internal/models"
)

// HTTPClient is the part of *http.Client the fetcher needs
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads instance documents and source archives
type Fetcher struct {
	client HTTPClient
	logger zerolog.Logger
}

// New creates a Fetcher. A nil client means http.DefaultClient.
func New(client HTTPClient, logger zerolog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, logger: logger}
}

// Instances downloads and decodes the instances.json document at url
func (f *Fetcher) Instances(ctx context.Context, url string) ([]models.InstanceRecord, error) {
	const op = "fetch.Instances"

	body, err := f.get(ctx, op, url)
	if err != nil {
		return nil, err
	}
	defer f.closeBody(body)

	start := time.Now()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errs.Errorf(errs.KindNetwork, op, "read %s: %w", url, err)
	}
	f.logger.Debug().
		Str("url", url).
		Str("size", humanize.Bytes(uint64(len(data)))).
		Dur("elapsed", time.Since(start)).
		Msg("Downloaded instance document")

	records, err := DecodeInstances(data)
	if err != nil {
		return nil, errs.E(errs.KindParse, op, err)
	}
	f.logger.Info().Int("instance_types", len(records)).Str("url", url).Msg("Fetched instance document")
	return records, nil
}

// get issues a GET and returns the body of a 2xx response
func (f *Fetcher) get(ctx context.Context, op, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Errorf(errs.KindNetwork, op, "create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errs.Errorf(errs.KindNetwork, op, "fetch %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.closeBody(resp.Body)
		return nil, errs.Errorf(errs.KindNetwork, op, "fetch %s: bad status: %s", url, resp.Status)
	}
	return resp.Body, nil
}

func (f *Fetcher) closeBody(body io.Closer) {
	if err := body.Close(); err != nil {
		f.logger.Warn().Err(err).Msg("Failed to close response body")
	}
}

// DecodeInstances parses an instances.json document: a JSON array of instance records
func DecodeInstances(data []byte) ([]models.InstanceRecord, error) {
	var records []models.InstanceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// LoadInstancesFile decodes a cached instances.json document from disk
func LoadInstancesFile(path string) ([]models.InstanceRecord, error) {
	const op = "fetch.LoadInstancesFile"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.E(errs.KindIO, op, err)
	}

	records, err := DecodeInstances(data)
	if err != nil {
		return nil, errs.Errorf(errs.KindParse, op, "decode %s: %w", path, err)
	}
	return records, nil
}
