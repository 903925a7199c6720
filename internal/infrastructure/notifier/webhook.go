package notifier

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/league-engine/internal/platform/dispatch"
	"github.com/riskibarqy/league-engine/internal/platform/logging"
	"github.com/riskibarqy/league-engine/internal/platform/resilience"
)

var errWebhookTransient = crerr.New("webhook transient failure")

type WebhookConfig struct {
	URL            string
	Secret         string
	Timeout        time.Duration
	Topics         []string
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookSink posts engine events as JSON to one HTTP endpoint. Delivery is
// best effort: failures are returned to the dispatcher, which only logs them.
type WebhookSink struct {
	client  *fasthttp.Client
	url     string
	secret  string
	timeout time.Duration
	topics  map[string]struct{}
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

func NewWebhookSink(cfg WebhookConfig, logger *logging.Logger) (*WebhookSink, error) {
	target, err := validateHTTPURL(cfg.URL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid WEBHOOK_URL")
	}
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var topics map[string]struct{}
	if len(cfg.Topics) > 0 {
		topics = make(map[string]struct{}, len(cfg.Topics))
		for _, topic := range cfg.Topics {
			if topic = strings.TrimSpace(topic); topic != "" {
				topics[topic] = struct{}{}
			}
		}
	}

	logger = logger.Named("webhook")
	breaker := resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker,
		resilience.WithStateChange(func(from, to resilience.CircuitState) {
			if to == resilience.CircuitStateOpen {
				logger.Warn("webhook circuit opened", "from", from, "url", target)
				return
			}
			logger.Info("webhook circuit state changed", "from", from, "to", to)
		}),
	)

	return &WebhookSink{
		client: &fasthttp.Client{
			Name:                "league-engine-webhook",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 30 * time.Second,
		},
		url:     target,
		secret:  strings.TrimSpace(cfg.Secret),
		timeout: timeout,
		topics:  topics,
		breaker: breaker,
		logger:  logger,
	}, nil
}

func (s *WebhookSink) Name() string {
	return "webhook"
}

func (s *WebhookSink) Deliver(ctx context.Context, msg dispatch.Message) error {
	if !s.accepts(msg.Topic) {
		return nil
	}

	body, err := sonic.Marshal(msg)
	if err != nil {
		return crerr.Wrap(err, "marshal webhook payload")
	}

	err = s.breaker.Do(func() error {
		return s.post(ctx, msg, body)
	}, isTransient)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		s.logger.WarnContext(ctx, "webhook circuit breaker rejected delivery", "topic", msg.Topic, "state", s.breaker.State())
		return fmt.Errorf("webhook is temporarily unavailable: %w", err)
	}
	return err
}

func (s *WebhookSink) post(ctx context.Context, msg dispatch.Message, body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("X-Event-Topic", msg.Topic)
	req.Header.Set("X-Event-ID", msg.ID)
	if s.secret != "" {
		req.Header.Set("Authorization", "Bearer "+s.secret)
	}
	req.SetBody(body)

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return fmt.Errorf("%w: %v", errWebhookTransient, context.DeadlineExceeded)
	}

	s.logger.DebugContext(ctx, "webhook delivery request", "topic", msg.Topic, "preview", requestPreview(s.url, msg, body))

	if err := s.client.DoTimeout(req, resp, timeout); err != nil {
		return fmt.Errorf("%w: post webhook topic=%s: %v", errWebhookTransient, msg.Topic, err)
	}

	status := resp.StatusCode()
	if status/100 != 2 {
		raw := truncate(string(resp.Body()), 512)
		if isRetryableStatus(status) {
			return fmt.Errorf("%w: post webhook status=%d topic=%s body=%s", errWebhookTransient, status, msg.Topic, raw)
		}
		return fmt.Errorf("post webhook status=%d topic=%s body=%s", status, msg.Topic, raw)
	}

	s.logger.InfoContext(ctx, "webhook delivered", "topic", msg.Topic, "key", msg.Key, "message_id", msg.ID)
	return nil
}

func (s *WebhookSink) accepts(topic string) bool {
	if len(s.topics) == 0 {
		return true
	}
	_, ok := s.topics[topic]
	return ok
}

func requestPreview(target string, msg dispatch.Message, body []byte) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("POST ")
	_, _ = buf.WriteString(target)
	_, _ = buf.WriteString(" topic=")
	_, _ = buf.WriteString(msg.Topic)
	_, _ = buf.WriteString(" key=")
	_, _ = buf.WriteString(msg.Key)
	_, _ = buf.WriteString(" body=")
	_, _ = buf.WriteString(truncate(string(body), 1024))
	return buf.String()
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return candidate, nil
}

func isTransient(err error) bool {
	return stderrors.Is(err, errWebhookTransient)
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusRequestTimeout ||
		status == fasthttp.StatusTooManyRequests ||
		status >= fasthttp.StatusInternalServerError
}

func truncate(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
