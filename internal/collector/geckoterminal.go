package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"poolratio/internal/model"

	"github.com/tidwall/gjson"
)

// DefaultGeckoTerminalURL is the public GeckoTerminal API host.
const DefaultGeckoTerminalURL = "https://api.geckoterminal.com"

const maxErrorBody = 8 << 10

// GeckoTerminalFetcher implements Fetcher using the GeckoTerminal OHLCV endpoint.
type GeckoTerminalFetcher struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

// NewGeckoTerminalFetcher creates a new fetcher with optional proxy support.
func NewGeckoTerminalFetcher(baseURL, proxyURL string, timeout time.Duration) *GeckoTerminalFetcher {
	if baseURL == "" {
		baseURL = DefaultGeckoTerminalURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &GeckoTerminalFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *GeckoTerminalFetcher) Name() string { return "geckoterminal" }

// candlesURL builds /api/v2/networks/{network}/pools/{pool}/ohlcv/{resolution}?from=&to=.
func (f *GeckoTerminalFetcher) candlesURL(network, pool string, res model.Resolution, w model.Window) (string, error) {
	u, err := url.Parse(f.BaseURL)
	if err != nil {
		return "", err
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + fmt.Sprintf("/api/v2/networks/%s/pools/%s/ohlcv/%s",
		url.PathEscape(network), url.PathEscape(pool), res)

	q := u.Query()
	q.Set("from", strconv.FormatInt(w.Start, 10))
	q.Set("to", strconv.FormatInt(w.End, 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (f *GeckoTerminalFetcher) FetchCandles(ctx context.Context, network, pool string, res model.Resolution, w model.Window) ([]model.OHLCV, error) {
	endpoint, err := f.candlesURL(network, pool, res, w)
	if err != nil {
		return nil, &TransportError{Network: network, Pool: pool, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Network: network, Pool: pool, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Network: network, Pool: pool, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPStatusError{
			Network:    network,
			Pool:       pool,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Network: network, Pool: pool, Err: fmt.Errorf("read body: %w", err)}
	}

	bars, reason := ParseOHLCVList(body)
	if reason != "" {
		return nil, &MalformedResponseError{Network: network, Pool: pool, Reason: reason}
	}
	return bars, nil
}

// ParseOHLCVList extracts data.attributes.ohlcv_list from a GeckoTerminal response.
// A non-empty reason is returned when the body cannot yield at least one candle.
func ParseOHLCVList(body []byte) ([]model.OHLCV, string) {
	if !gjson.ValidBytes(body) {
		return nil, "invalid json"
	}
	root := gjson.ParseBytes(body)
	for _, key := range []string{"data", "data.attributes", "data.attributes.ohlcv_list"} {
		if !root.Get(key).Exists() {
			return nil, fmt.Sprintf("missing key %q", key)
		}
	}
	list := root.Get("data.attributes.ohlcv_list")
	if !list.IsArray() {
		return nil, "ohlcv_list is not an array"
	}

	rows := list.Array()
	if len(rows) == 0 {
		return nil, "empty ohlcv_list"
	}

	bars := make([]model.OHLCV, 0, len(rows))
	for i, row := range rows {
		fields := row.Array()
		if !row.IsArray() || len(fields) != 6 {
			return nil, fmt.Sprintf("ohlcv_list[%d]: expected [timestamp, open, high, low, close, volume]", i)
		}
		for j, v := range fields {
			if v.Type != gjson.Number {
				return nil, fmt.Sprintf("ohlcv_list[%d][%d]: not a number: %s", i, j, v.Raw)
			}
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(fields[0].Int(), 0).UTC(),
			Open:   fields[1].Float(),
			High:   fields[2].Float(),
			Low:    fields[3].Float(),
			Close:  fields[4].Float(),
			Volume: fields[5].Float(),
		})
	}
	return bars, ""
}
