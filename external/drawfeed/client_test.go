package drawfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suwei8/lotto-ai4/internal/platform/logging"
	"github.com/suwei8/lotto-ai4/internal/usecase"
)

func newFeedServer(t *testing.T, status int, body string, seen *http.Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = *r.Clone(r.Context())
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPage(t *testing.T) {
	var seen http.Request
	srv := newFeedServer(t, http.StatusOK, `{"result":{
		"data":[
			{"issueNo":"25061","openTime":"2025-03-02 21:15:00","openResults":["0","5","9"]},
			{"issueNo":2025060,"openTime":"2025-03-01","openResults":"1,2,3"},
			{"issueNo":"2025030","redResults":[3,7,12],"blueResults":["09"]},
			{"issueNo":25001,"openTime":1735689600,"openResults":[4,4,8]}
		],
		"pagination":{"totalPage":"12"}
	}}`, &seen)

	client := NewClient(ClientConfig{BaseURL: srv.URL, UserAgent: "test-agent", Logger: logging.NewNop()})
	page, err := client.FetchPage(context.Background(), usecase.DrawPageQuery{LottoType: "102", PageSize: 5, Page: 2})
	require.NoError(t, err)

	assert.Equal(t, 12, page.TotalPage)
	require.Len(t, page.Items, 4)
	assert.Equal(t, "25061", page.Items[0].IssueNo)
	assert.Equal(t, []string{"0", "5", "9"}, page.Items[0].OpenResults)
	assert.Equal(t, "2025060", page.Items[1].IssueNo)
	assert.Equal(t, []string{"1", "2", "3"}, page.Items[1].OpenResults)
	assert.Equal(t, []string{"3", "7", "12"}, page.Items[2].RedResults)
	assert.Equal(t, []string{"09"}, page.Items[2].BlueResults)
	assert.Empty(t, page.Items[2].OpenTime)
	assert.Equal(t, "25001", page.Items[3].IssueNo)
	assert.Equal(t, "1735689600", page.Items[3].OpenTime)
	assert.Equal(t, []string{"4", "4", "8"}, page.Items[3].OpenResults)

	q := seen.URL.Query()
	assert.Equal(t, "102", q.Get("lottoType"))
	assert.Equal(t, "5", q.Get("pageSize"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "gameOpenList", q.Get("cat1"))
	assert.Equal(t, "json", q.Get("format"))
	assert.Equal(t, "test-agent", seen.UserAgent())
}

func TestFetchPage_Errors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"non 200":        {http.StatusBadGateway, `{}`},
		"missing result": {http.StatusOK, `{"status":{"code":0}}`},
		"not json":       {http.StatusOK, `<html>`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newFeedServer(t, tc.status, tc.body, nil)
			client := NewClient(ClientConfig{BaseURL: srv.URL, Logger: logging.NewNop()})
			_, err := client.FetchPage(context.Background(), usecase.DrawPageQuery{LottoType: "102", PageSize: 5, Page: 1})
			assert.Error(t, err)
		})
	}
}

func TestFetchPage_MissingTotalPageDefaultsToZero(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK, `{"result":{"data":[]}}`, nil)
	client := NewClient(ClientConfig{BaseURL: srv.URL, Logger: logging.NewNop()})

	page, err := client.FetchPage(context.Background(), usecase.DrawPageQuery{LottoType: "102", PageSize: 5, Page: 1})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.TotalPage)
}

func TestFetchPage_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1", Logger: logging.NewNop()})
	_, err := client.FetchPage(ctx, usecase.DrawPageQuery{LottoType: "102", PageSize: 5, Page: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
