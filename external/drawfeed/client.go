package drawfeed

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/suwei8/lotto-ai4/internal/platform/logging"
	"github.com/suwei8/lotto-ai4/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	DefaultBaseURL   = "https://mix.lottery.sina.com.cn/gateway/index/entry"
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Linux; Android 12) lotto-collector"
)

var fixedParams = [][2]string{
	{"format", "json"},
	{"__caller__", "wap"},
	{"__version__", "1.0.0"},
	{"__verno__", "10000"},
	{"cat1", "gameOpenList"},
	{"paginationType", "1"},
	{"dpc", "1"},
}

type ClientConfig struct {
	HTTPClient *fasthttp.Client
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	Logger     *logging.Logger
}

// Client reads the public paginated draw list.
type Client struct {
	httpClient *fasthttp.Client
	baseURL    string
	timeout    time.Duration
	userAgent  string
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "lotto-collector",
			MaxIdleConnDuration: 30 * time.Second,
		}
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		timeout:    timeout,
		userAgent:  userAgent,
		logger:     logger,
	}
}

type pageEnvelope struct {
	Result *pageResult `json:"result"`
}

type pageResult struct {
	Data       []pageItem `json:"data"`
	Pagination struct {
		TotalPage flexInt `json:"totalPage"`
	} `json:"pagination"`
}

type pageItem struct {
	IssueNo     flexString `json:"issueNo"`
	OpenTime    flexString `json:"openTime"`
	OpenResults resultList `json:"openResults"`
	RedResults  resultList `json:"redResults"`
	BlueResults resultList `json:"blueResults"`
}

// FetchPage requests one page of draws. A non-200 status, an undecodable body
// or a missing result block is an error.
func (c *Client) FetchPage(ctx context.Context, query usecase.DrawPageQuery) (usecase.DrawPage, error) {
	if err := ctx.Err(); err != nil {
		return usecase.DrawPage{}, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(c.userAgent)
	args := req.URI().QueryArgs()
	for _, kv := range fixedParams {
		args.Set(kv[0], kv[1])
	}
	args.Set("lottoType", query.LottoType)
	args.Set("pageSize", strconv.Itoa(query.PageSize))
	args.Set("page", strconv.Itoa(query.Page))

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if err := c.httpClient.DoTimeout(req, resp, timeout); err != nil {
		return usecase.DrawPage{}, crerr.Wrapf(err, "request draw page %d", query.Page)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return usecase.DrawPage{}, crerr.Newf("HTTP %d @ page %d", resp.StatusCode(), query.Page)
	}

	var env pageEnvelope
	if err := sonic.Unmarshal(resp.Body(), &env); err != nil {
		return usecase.DrawPage{}, crerr.Wrapf(err, "decode draw page %d", query.Page)
	}
	if env.Result == nil {
		return usecase.DrawPage{}, crerr.Newf("unexpected response structure @ page %d: %s", query.Page, abbreviate(resp.Body()))
	}

	out := usecase.DrawPage{
		Items:     make([]usecase.DrawItem, 0, len(env.Result.Data)),
		TotalPage: int(env.Result.Pagination.TotalPage),
	}
	for _, item := range env.Result.Data {
		out.Items = append(out.Items, usecase.DrawItem{
			IssueNo:     strings.TrimSpace(string(item.IssueNo)),
			OpenTime:    strings.TrimSpace(string(item.OpenTime)),
			OpenResults: item.OpenResults,
			RedResults:  item.RedResults,
			BlueResults: item.BlueResults,
		})
	}
	c.logger.DebugContext(ctx, "draw page fetched", "page", query.Page, "items", len(out.Items), "total_page", out.TotalPage)
	return out, nil
}

func abbreviate(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 200 {
		return string(raw[:200]) + "..."
	}
	return string(raw)
}
