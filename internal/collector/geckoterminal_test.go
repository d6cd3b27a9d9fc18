package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"poolratio/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePool = "0x87cadde19468283af8d610474ecbd19ed285f698"

var sampleWindow = model.Window{Start: 1714521600, End: 1717113600}

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *GeckoTerminalFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeckoTerminalFetcher(srv.URL, "", 5*time.Second)
}

func TestGeckoTerminal_RequestShapeAndParse(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v2/networks/base/pools/"+samplePool+"/ohlcv/day", r.URL.Path)
		require.Equal(t, "1714521600", r.URL.Query().Get("from"))
		require.Equal(t, "1717113600", r.URL.Query().Get("to"))
		_, _ = w.Write([]byte(`{"data":{"id":"x","type":"ohlcv_request_response","attributes":{"ohlcv_list":[
			[1717027200, 0.05, 0.06, 0.04, 0.055, 123456.7],
			[1716940800, 0.045, 0.05, 0.044, 0.05, 98765]
		]}}}`))
	})

	bars, err := f.FetchCandles(context.Background(), "base", samplePool, model.ResolutionDay, sampleWindow)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.True(t, bars[0].Time.Equal(time.Unix(1717027200, 0)))
	assert.Equal(t, time.UTC, bars[0].Time.Location())
	assert.Equal(t, 0.05, bars[0].Open)
	assert.Equal(t, 0.06, bars[0].High)
	assert.Equal(t, 0.04, bars[0].Low)
	assert.Equal(t, 0.055, bars[0].Close)
	assert.Equal(t, 123456.7, bars[0].Volume)
	// API order is preserved.
	assert.True(t, bars[1].Time.Before(bars[0].Time))
}

func TestGeckoTerminal_HourResolutionPath(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/networks/eth/pools/0xabc/ohlcv/hour", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"attributes":{"ohlcv_list":[[1717027200,1,1,1,1,1]]}}}`))
	})

	_, err := f.FetchCandles(context.Background(), "eth", "0xabc", model.ResolutionHour, sampleWindow)
	require.NoError(t, err)
}

func TestGeckoTerminal_HTTPStatusError(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	})

	_, err := f.FetchCandles(context.Background(), "base", samplePool, model.ResolutionDay, sampleWindow)
	var serr *HTTPStatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusInternalServerError, serr.StatusCode)
	assert.Equal(t, samplePool, serr.Pool)
	assert.Contains(t, err.Error(), samplePool)
	assert.Contains(t, serr.Body, "upstream exploded")
}

func TestGeckoTerminal_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := NewGeckoTerminalFetcher(url, "", time.Second)
	_, err := f.FetchCandles(context.Background(), "base", samplePool, model.ResolutionDay, sampleWindow)
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "base", terr.Network)
}

func TestGeckoTerminal_ContextCanceled(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.FetchCandles(ctx, "base", samplePool, model.ResolutionDay, sampleWindow)
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseOHLCVList_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "not json", body: `<html>`, want: "invalid json"},
		{name: "missing data", body: `{"errors":[]}`, want: `missing key "data"`},
		{name: "missing attributes", body: `{"data":{}}`, want: `missing key "data.attributes"`},
		{name: "missing list", body: `{"data":{"attributes":{}}}`, want: `missing key "data.attributes.ohlcv_list"`},
		{name: "list not array", body: `{"data":{"attributes":{"ohlcv_list":{}}}}`, want: "not an array"},
		{name: "empty list", body: `{"data":{"attributes":{"ohlcv_list":[]}}}`, want: "empty ohlcv_list"},
		{name: "short tuple", body: `{"data":{"attributes":{"ohlcv_list":[[1,2,3]]}}}`, want: "ohlcv_list[0]"},
		{name: "string field", body: `{"data":{"attributes":{"ohlcv_list":[[1,"2",3,4,5,6]]}}}`, want: "ohlcv_list[0][1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars, reason := ParseOHLCVList([]byte(tt.body))
			assert.Nil(t, bars)
			assert.Contains(t, reason, tt.want)
		})
	}
}

func TestGeckoTerminal_EmptyListIsMalformed(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"attributes":{"ohlcv_list":[]}}}`))
	})

	_, err := f.FetchCandles(context.Background(), "base", samplePool, model.ResolutionDay, sampleWindow)
	var merr *MalformedResponseError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, samplePool, merr.Pool)
}

func TestParseOHLCVList_Valid(t *testing.T) {
	t.Parallel()

	bars, reason := ParseOHLCVList([]byte(`{"data":{"attributes":{"ohlcv_list":[[1714608000,1,2,0.5,1.5,100]]}}}`))
	assert.Empty(t, reason)
	require.Len(t, bars, 1)
	assert.Equal(t, time.Unix(1714608000, 0).UTC(), bars[0].Time)
	assert.Equal(t, 1.5, bars[0].Close)
	assert.Equal(t, 100.0, bars[0].Volume)
}
