package expertapi

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/suwei8/lotto-ai4/internal/platform/logging"
	"github.com/suwei8/lotto-ai4/internal/platform/resilience"
	"github.com/suwei8/lotto-ai4/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultUserAgent = "okhttp/4.12.0"
	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 8 << 20
	requestField     = "request"
)

var errAttemptFailed = crerr.New("expert api attempt failed")

type ClientConfig struct {
	HTTPClient      *http.Client
	Scheme          string
	PrimaryDomain   string
	SecondaryDomain string
	EndpointPath    string
	Token           string
	UserAgent       string
	AESKey          []byte
	AESIV           []byte
	Timeout         time.Duration
	Retry           resilience.RetryPolicy
	CircuitBreaker  resilience.CircuitBreakerConfig
	Logger          *logging.Logger
}

// Client talks to the encrypted expert gateway. Every action is tried on the
// primary domain, then the secondary, each with its own retry budget.
type Client struct {
	httpClient *http.Client
	scheme     string
	domains    []string
	path       string
	token      string
	userAgent  string
	timeout    time.Duration
	retry      resilience.RetryPolicy
	cipher     *Cipher
	breakers   *resilience.BreakerSet
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	sealer, err := NewCipher(cfg.AESKey, cfg.AESIV)
	if err != nil {
		return nil, err
	}

	domains := make([]string, 0, 2)
	for _, d := range []string{cfg.PrimaryDomain, cfg.SecondaryDomain} {
		if d = strings.TrimSpace(d); d != "" {
			domains = append(domains, d)
		}
	}
	if len(domains) == 0 {
		return nil, crerr.New("at least one expert api domain is required")
	}

	base := http.DefaultTransport
	httpClient := &http.Client{}
	if cfg.HTTPClient != nil {
		*httpClient = *cfg.HTTPClient
		if cfg.HTTPClient.Transport != nil {
			base = cfg.HTTPClient.Transport
		}
	}
	httpClient.Transport = otelhttp.NewTransport(base)

	scheme := strings.TrimSpace(cfg.Scheme)
	if scheme == "" {
		scheme = "https"
	}
	path := strings.TrimSpace(cfg.EndpointPath)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	onChange := func(name string, from, to resilience.CircuitState) {
		logger.Warn("expert api circuit breaker changed state", "domain", name, "from", from, "to", to)
	}

	return &Client{
		httpClient: httpClient,
		scheme:     scheme,
		domains:    domains,
		path:       path,
		token:      strings.TrimSpace(cfg.Token),
		userAgent:  userAgent,
		timeout:    timeout,
		retry:      cfg.Retry,
		cipher:     sealer,
		breakers:   resilience.NewBreakerSet(cfg.CircuitBreaker, onChange),
		logger:     logger,
	}, nil
}

// Send seals body for action, posts it with failover and decodes the
// response. Exhausted attempts return an error matching usecase.ErrTransport;
// a non-zero response code returns *usecase.UpstreamError.
func (c *Client) Send(ctx context.Context, action int, body any) (Envelope, error) {
	plaintext, err := buildEnvelope(action, c.token, body)
	if err != nil {
		return Envelope{}, err
	}
	form, contentType, err := multipartBody(c.cipher.Seal(plaintext))
	if err != nil {
		return Envelope{}, err
	}

	raw, err := c.postWithFailover(ctx, action, form, contentType)
	if err != nil {
		return Envelope{}, err
	}

	var env Envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: action %d: decode response: %v", usecase.ErrUpstream, action, err)
	}
	if env.Code == nil {
		return Envelope{}, &usecase.UpstreamError{Action: action, Code: -1, Message: "response has no code"}
	}
	if *env.Code != 0 {
		return Envelope{}, &usecase.UpstreamError{Action: action, Code: *env.Code, Message: env.Message}
	}
	return env, nil
}

func (c *Client) postWithFailover(ctx context.Context, action int, form []byte, contentType string) ([]byte, error) {
	attempts := c.retry.Attempts()

	var lastErr error
	// The jittered wait is owed after a failure and paid only before an
	// attempt the breaker actually lets through.
	waitOwed := false
	for _, domain := range c.domains {
		breaker := c.breakers.Get(domain)
		url := c.scheme + "://" + domain + c.path

		for attempt := 1; attempt <= attempts; attempt++ {
			if err := breaker.Allow(); err != nil {
				lastErr = crerr.Wrapf(err, "domain %s", domain)
				c.logger.WarnContext(ctx, "expert api domain skipped", "domain", domain, "action", action, "state", breaker.State())
				break
			}
			if waitOwed {
				if err := c.retry.Wait(ctx); err != nil {
					return nil, fmt.Errorf("%w: action %d: %w", usecase.ErrTransport, action, err)
				}
				waitOwed = false
			}

			raw, err := c.post(ctx, url, form, contentType)
			if err == nil {
				breaker.RecordSuccess()
				return raw, nil
			}
			breaker.RecordFailure()
			lastErr = err
			c.logger.WarnContext(ctx, "expert api attempt failed",
				"domain", domain,
				"action", action,
				"attempt", attempt,
				"error", err,
			)

			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("%w: action %d: %w", usecase.ErrTransport, action, ctxErr)
			}
			waitOwed = true
		}
	}

	if lastErr == nil {
		lastErr = errAttemptFailed
	}
	return nil, fmt.Errorf("%w: action %d failed on all domains: %w", usecase.ErrTransport, action, lastErr)
}

func (c *Client) post(ctx context.Context, url string, form []byte, contentType string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(form))
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrapf(stderrors.Join(errAttemptFailed, err), "post %s", url)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, crerr.Wrapf(stderrors.Join(errAttemptFailed, err), "read %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, crerr.Wrapf(errAttemptFailed, "HTTP %d from %s", resp.StatusCode, url)
	}
	return raw, nil
}

// multipartBody renders the single form field the gateway reads.
func multipartBody(sealed string) ([]byte, string, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	writer := multipart.NewWriter(buf)
	if err := writer.WriteField(requestField, sealed); err != nil {
		return nil, "", crerr.Wrap(err, "write multipart field")
	}
	if err := writer.Close(); err != nil {
		return nil, "", crerr.Wrap(err, "close multipart body")
	}
	return append([]byte(nil), buf.B...), writer.FormDataContentType(), nil
}
