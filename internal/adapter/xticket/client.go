// Package xticket talks to XTicket-style camping reservation servers. The
// endpoints are JSON-over-form-POST under /Web, with one unauthenticated HTML
// page used purely for its Date header.
package xticket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"openrun/config"
	"openrun/infras/otel"
	"openrun/internal/adapter"
	siteModel "openrun/internal/domains/site/model"
	"openrun/shared/constant"
)

const (
	pathMain         = "/web/main"
	pathLogin        = "/Web/Member/MemberLogin.json"
	pathAvailability = "/Web/Book/GetBookProduct010001.json"
	pathBook         = "/Web/Book/Book010001.json"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// product codes are group code (4) + seat code (4)
	productGroupCodeLen = 4

	otelAttrSite = "site"
)

type client struct {
	site   *siteModel.CampingSite
	config *config.Config
	otel   otel.Otel

	// bare is jar-less and used for unauthenticated calls only
	bare *http.Client
}

// envelope is the common response shape: exactly one of data / error is set.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type loginData struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	MemberNo string `json:"member_no"`
}

type productListData struct {
	BookProductList []productEntry `json:"bookProductList"`
}

type productEntry struct {
	ProductCode    string `json:"product_code"`
	ProductName    string `json:"product_name"`
	SelectYN       string `json:"select_yn"`
	SaleProductFee int    `json:"sale_product_fee"`
}

type bookData struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	ReservationNumber string `json:"reservation_number"`
	BookNo            string `json:"book_no"`
}

func (c *client) ServerTime(ctx context.Context) (serverTime time.Time, err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelAdapterScopeName, constant.OtelAdapterScopeName+".ServerTime")
	defer scope.End()
	defer scope.TraceIfError(err)

	mainURL := fmt.Sprintf("%s%s?shopEncode=%s", c.site.BaseURL, pathMain, url.QueryEscape(c.site.ShopEncode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mainURL, nil)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "building server time request")
	}
	req.Header.Set(constant.RequestHeaderUserAgent, userAgent)

	resp, err := c.bare.Do(req)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "fetching server time")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	dateHeader := resp.Header.Get("Date")
	if dateHeader == "" {
		return time.Time{}, errors.New("server response has no Date header")
	}

	serverTime, err = http.ParseTime(dateHeader)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parsing Date header %q", dateHeader)
	}

	return serverTime, nil
}

func (c *client) Login(ctx context.Context, accountID, username, password string) (session *adapter.Session, err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelAdapterScopeName, constant.OtelAdapterScopeName+".Login")
	defer scope.End()
	defer scope.TraceIfError(err)
	scope.SetAttributes(map[string]any{otelAttrSite: c.site.Name})

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating cookie jar")
	}

	now := time.Now()
	session = &adapter.Session{
		AccountID: accountID,
		Username:  username,
		Jar:       jar,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(c.config.Engine.SessionTTLMinutes) * time.Minute),
	}

	// visiting the main page first seeds the server-side session cookies
	if err = c.visitMain(ctx, session); err != nil {
		return nil, err
	}

	form := url.Values{
		"member_id":       {username},
		"member_password": {password},
		"shopCode":        {c.site.ShopCode},
	}

	var env envelope
	if err = c.postForm(ctx, session, pathLogin, form, &env); err != nil {
		return nil, err
	}

	if env.Error != nil {
		return nil, classifyError(env.Error.Message, adapter.ErrInvalidCredential)
	}

	var data loginData
	if err = json.Unmarshal(env.Data, &data); err != nil {
		return nil, errors.Wrap(err, "decoding login response")
	}

	if !data.Success {
		log.Warn().
			Str("site", c.site.Name).
			Str("username", username).
			Str("reason", data.Message).
			Msg("[XTicketLogin] rejected by remote server")

		return nil, errors.Wrap(adapter.ErrInvalidCredential, data.Message)
	}

	return session, nil
}

func (c *client) CheckAvailability(ctx context.Context, session *adapter.Session, targetDate string) (seats []adapter.Seat, err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelAdapterScopeName, constant.OtelAdapterScopeName+".CheckAvailability")
	defer scope.End()
	defer scope.TraceIfError(err)
	scope.SetAttributes(map[string]any{otelAttrSite: c.site.Name})

	dateStr := strings.ReplaceAll(targetDate, "-", "")

	form := url.Values{
		"start_date":    {dateStr},
		"end_date":      {dateStr},
		"book_days":     {"1"},
		"two_stay_days": {"0"},
		"shopCode":      {c.site.ShopCode},
	}

	var env envelope
	if err = c.postForm(ctx, session, pathAvailability, form, &env); err != nil {
		return nil, err
	}

	if env.Error != nil {
		return nil, classifyError(env.Error.Message, adapter.ErrSoldOut)
	}

	var data productListData
	if err = json.Unmarshal(env.Data, &data); err != nil {
		return nil, errors.Wrap(err, "decoding availability response")
	}

	seats = make([]adapter.Seat, 0, len(data.BookProductList))
	for _, entry := range data.BookProductList {
		seats = append(seats, adapter.Seat{
			ProductCode: entry.ProductCode,
			Name:        entry.ProductName,
			Available:   entry.SelectYN == "1" || entry.SaleProductFee > 0,
		})
	}

	return seats, nil
}

func (c *client) Book(ctx context.Context, session *adapter.Session, targetDate, productCode string) (booking *adapter.Booking, err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelAdapterScopeName, constant.OtelAdapterScopeName+".Book")
	defer scope.End()
	defer scope.TraceIfError(err)
	scope.SetAttributes(map[string]any{otelAttrSite: c.site.Name})

	dateStr := strings.ReplaceAll(targetDate, "-", "")

	groupCode := productCode
	if len(groupCode) > productGroupCodeLen {
		groupCode = groupCode[:productGroupCodeLen]
	}

	form := url.Values{
		"product_group_code": {groupCode},
		"play_date":          {dateStr},
		"product_code":       {productCode},
	}

	var env envelope
	if err = c.postForm(ctx, session, pathBook, form, &env); err != nil {
		return nil, err
	}

	if env.Error != nil {
		return nil, classifyError(env.Error.Message, adapter.ErrSoldOut)
	}

	var data bookData
	if err = json.Unmarshal(env.Data, &data); err != nil {
		return nil, errors.Wrap(err, "decoding booking response")
	}

	if !data.Success {
		return nil, classifyError(data.Message, adapter.ErrSoldOut)
	}

	reservationNumber := data.ReservationNumber
	if reservationNumber == "" {
		reservationNumber = data.BookNo
	}

	return &adapter.Booking{
		ReservationNumber: reservationNumber,
		ProductCode:       productCode,
		TargetDate:        targetDate,
	}, nil
}

func (c *client) visitMain(ctx context.Context, session *adapter.Session) error {
	mainURL := fmt.Sprintf("%s%s?shopEncode=%s", c.site.BaseURL, pathMain, url.QueryEscape(c.site.ShopEncode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mainURL, nil)
	if err != nil {
		return errors.Wrap(err, "building main page request")
	}
	req.Header.Set(constant.RequestHeaderUserAgent, userAgent)

	resp, err := c.sessionClient(session).Do(req)
	if err != nil {
		return errors.Wrap(err, "visiting main page")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

func (c *client) postForm(ctx context.Context, session *adapter.Session, path string, form url.Values, out *envelope) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.site.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrapf(err, "building request for %s", path)
	}

	req.Header.Set(constant.RequestHeaderUserAgent, userAgent)
	req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeFormURLEncoded)
	req.Header.Set("Accept", constant.ContentTypeJSON)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Origin", c.site.BaseURL)
	req.Header.Set("Referer", fmt.Sprintf("%s%s?shopEncode=%s", c.site.BaseURL, pathMain, url.QueryEscape(c.site.ShopEncode)))

	resp, err := c.sessionClient(session).Do(req)
	if err != nil {
		return errors.Wrapf(err, "calling %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "reading response from %s", path)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.Wrapf(adapter.ErrRateLimited, "%s returned %d", path, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return errors.Errorf("%s returned %d: %s", path, resp.StatusCode, truncate(string(body), 200))
	}

	if err = json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "decoding response from %s", path)
	}

	return nil
}

func (c *client) sessionClient(session *adapter.Session) *http.Client {
	return &http.Client{
		Jar:     session.Jar,
		Timeout: time.Duration(c.config.Engine.HTTPTimeoutSeconds) * time.Second,
	}
}

// classifyError folds the remote error message into one of the adapter
// sentinels. Messages are Korean on real deployments, so both the Korean
// phrases the server uses and their English equivalents are matched.
func classifyError(message string, fallback error) error {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "captcha") || strings.Contains(message, "자동입력"):
		return errors.Wrap(adapter.ErrCaptchaRequired, message)
	case strings.Contains(message, "로그인") || strings.Contains(lower, "login required") || strings.Contains(lower, "session"):
		return errors.Wrap(adapter.ErrSessionExpired, message)
	case strings.Contains(message, "매진") || strings.Contains(message, "마감") || strings.Contains(lower, "sold out"):
		return errors.Wrap(adapter.ErrSoldOut, message)
	case strings.Contains(message, "초과") || strings.Contains(lower, "too many"):
		return errors.Wrap(adapter.ErrRateLimited, message)
	}

	return errors.Wrap(fallback, message)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}

// New builds a Client for one camping site.
func New(site *siteModel.CampingSite, conf *config.Config, o otel.Otel) adapter.Client {
	return &client{
		site:   site,
		config: conf,
		otel:   o,
		bare: &http.Client{
			Timeout: time.Duration(conf.Engine.HTTPTimeoutSeconds) * time.Second,
		},
	}
}

type factory struct {
	config *config.Config
	otel   otel.Otel
}

func (f *factory) ForSite(site *siteModel.CampingSite) (adapter.Client, error) {
	switch site.SiteType {
	case siteModel.SiteTypeXTicket:
		return New(site, f.config, f.otel), nil
	default:
		return nil, errors.Errorf("unsupported site type %q", site.SiteType)
	}
}

// NewFactory returns the Factory covering every supported site type.
func NewFactory(conf *config.Config, o otel.Otel) adapter.Factory {
	return &factory{config: conf, otel: o}
}
