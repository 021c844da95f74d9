package ao3

import (
	"ao3-scraper/lib/restyutil"
	"ao3-scraper/lib/telemetry"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const DefaultBaseUrl = "https://archiveofourown.org"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// the archive answers a failed login with a 200 and this phrase in the page
const loginFailedPhrase = "Please try again"

type SessionOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// maximum requests per second, 0 disables rate limiting
	RequestsPerSecond float64
	// route requests through a transport with a browser-like tls fingerprint
	CloudflareBypass bool
	// defaults to 30 seconds
	Timeout time.Duration
	// defaults to telemetry.SlogAPI
	Telemetry telemetry.API
	// when set, every http exchange is dumped here while debug logging is on
	DumpOutput restyutil.InstrumentOutput
}

// Session is an http client with its own cookies. A session belongs to one
// identity, anonymous or logged in, and must not be used concurrently.
type Session struct {
	BaseUrl *url.URL
	Http    *resty.Client

	username string
	tel      telemetry.API
}

func NewSession(opts SessionOptions) (*Session, error) {
	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	tel = telemetry.NewScopedAPI("ao3_scraper", tel)

	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	parsedBaseUrl, err := url.Parse(baseUrl)
	if err != nil {
		tel.ReportBroken(report_session_new, fmt.Errorf("parse base url: %w", err), baseUrl)
		return nil, err
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(strings.TrimSuffix(baseUrl, "/"))
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeader("user-agent", userAgent)
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))
	httpClient.SetTimeout(timeout)

	if opts.RequestsPerSecond > 0 {
		// burst of 1 spaces every request out evenly
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tracerName+"/http", tel)
	restyutil.InstrumentClient(httpClient, opts.DumpOutput)

	return &Session{
		BaseUrl: parsedBaseUrl,
		Http:    httpClient,
		tel:     tel,
	}, nil
}

// Username is the logged in user, or "" for an anonymous session.
func (s *Session) Username() string {
	return s.username
}

func (s *Session) Authenticated() bool {
	return s.username != ""
}

func parseDocument(res *resty.Response) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

// get fetches endpoint and fails with a FetchError on any non-2xx status.
func (s *Session) get(ctx context.Context, endpoint string) (*resty.Response, error) {
	res, err := s.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		s.tel.ReportBroken(report_session_fetch, fmt.Errorf("fetch: %w", err), endpoint)
		return nil, err
	}
	if res.IsError() {
		return res, &FetchError{
			URL:    endpoint,
			Status: res.StatusCode(),
			Body:   res.String(),
		}
	}
	return res, nil
}

func (s *Session) getDocument(ctx context.Context, endpoint string) (*goquery.Document, error) {
	res, err := s.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	doc, err := parseDocument(res)
	if err != nil {
		s.tel.ReportBroken(report_session_fetch, fmt.Errorf("parse: %w", err), endpoint)
		return nil, err
	}
	return doc, nil
}

// Login signs the session in. On success every later request made through
// the session is made as username.
func (s *Session) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "session:Login")
	defer span.End()
	span.SetAttributes(attribute.String("username", username))

	loginError := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("ao3 scraper: login: %w", err)
	}

	doc, err := s.getDocument(ctx, "/")
	if err != nil {
		s.tel.ReportBroken(report_session_login, fmt.Errorf("front page: %w", err))
		return loginError(err)
	}

	token := doc.Find("input[name=authenticity_token]").First().AttrOr("value", "")
	if token == "" {
		err := &FieldNotFoundError{Field: "authenticity_token"}
		s.tel.ReportBroken(report_session_login, err)
		return loginError(err)
	}

	res, err := s.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"authenticity_token":     token,
			"user_session[login]":    username,
			"user_session[password]": password,
		}).
		Post("/user_sessions")
	if err != nil {
		s.tel.ReportBroken(report_session_login, fmt.Errorf("login request: %w", err))
		return loginError(err)
	}

	// rejected credentials come back with varying status codes, only the
	// page contents tell them apart from other failures
	if strings.Contains(res.String(), loginFailedPhrase) {
		s.tel.ReportWarning(report_session_login, "rejected credentials", username)
		return loginError(&AuthenticationError{Username: username})
	}
	// a successful login redirects, which is followed to a 200
	if res.StatusCode() >= http.StatusBadRequest {
		err := &FetchError{URL: "/user_sessions", Status: res.StatusCode(), Body: res.String()}
		s.tel.ReportBroken(report_session_login, err)
		return loginError(err)
	}

	s.username = username
	return nil
}
