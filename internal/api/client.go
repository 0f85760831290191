// Package api implements the request/response gateways to the MetaMotivation
// backend. Every gateway is a single HTTP attempt: no retries, no caching.
// Failures come back as *Error with a classification code.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TokenSource supplies the bearer credential for authenticated calls.
// session.Store satisfies it.
type TokenSource interface {
	Load() (string, error)
}

// Client talks to the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        *zap.Logger
}

// NewClient creates a gateway client for baseURL. tokens may be nil when
// only the unauthenticated endpoints are used. A nil logger is replaced
// with a nop logger.
func NewClient(baseURL string, tokens TokenSource, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		log:        log,
	}
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// errorDetail decodes the backend's {"detail": ...} error body; detail may
// be a string or a validation object, so fall back to the raw body.
func errorDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	detail := strings.TrimSpace(string(body))
	if len(detail) > 200 {
		detail = detail[:200]
	}
	return detail
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("path", req.URL.Path), zap.Error(err))
		return nil, &Error{Code: CodeNetwork, Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Code: CodeNetwork, Detail: err.Error()}
	}

	c.log.Debug("request completed",
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classify(resp.StatusCode, errorDetail(body))
	}
	return body, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any, auth bool) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if auth {
		if c.tokens == nil {
			return &Error{Code: CodeUnauthorized, Detail: "no credential source"}
		}
		token, err := c.tokens.Load()
		if err != nil {
			return &Error{Code: CodeUnauthorized, Detail: err.Error()}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	respBody, err := c.do(req)
	if err != nil {
		return err
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &Error{Code: CodeNetwork, Detail: "malformed response: " + err.Error()}
		}
	}
	return nil
}

// Login exchanges credentials for a bearer token. The endpoint is
// form-encoded, unlike the rest of the API.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{
		"username": {email},
		"password": {password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(PathLogin),
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", &Error{Code: CodeNetwork, Detail: "malformed response: " + err.Error()}
	}
	if tok.AccessToken == "" {
		return "", &Error{Code: CodeRemote, Detail: "login response has no access token"}
	}
	return tok.AccessToken, nil
}

// Register creates an account. It does not authenticate; callers follow up
// with Login. The backend reports duplicate accounts as a 400 with an
// "already registered" detail, which is surfaced as CodeAlreadyRegistered.
func (c *Client) Register(ctx context.Context, email, password string) error {
	payload := registerRequest{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: password,
	}
	err := c.doJSON(ctx, http.MethodPost, PathRegister, payload, nil, false)
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Code == CodeBadRequest &&
		strings.Contains(strings.ToLower(apiErr.Detail), "already registered") {
		apiErr.Code = CodeAlreadyRegistered
	}
	return err
}

// SubmitCheckIn records today's motivation level. Levels outside [1,10]
// are rejected before any network call.
func (c *Client) SubmitCheckIn(ctx context.Context, level int) error {
	if level < 1 || level > 10 {
		return fmt.Errorf("motivation level %d out of range [1,10]", level)
	}
	return c.doJSON(ctx, http.MethodPost, PathCheckIn, checkInRequest{MotivationLevel: level}, nil, true)
}

// FetchQuestions returns the questionnaire items.
func (c *Client) FetchQuestions(ctx context.Context) ([]Question, error) {
	var questions []Question
	if err := c.doJSON(ctx, http.MethodGet, PathQuestions, nil, &questions, true); err != nil {
		return nil, err
	}
	return questions, nil
}

// SubmitAnswers sends a full questionnaire batch. Every value must already
// be validated into [1,7] by the caller; this is a final guard.
func (c *Client) SubmitAnswers(ctx context.Context, answers []Answer) error {
	if len(answers) == 0 {
		return fmt.Errorf("no answers to submit")
	}
	for _, a := range answers {
		if a.Value < 1 || a.Value > 7 {
			return fmt.Errorf("answer for question %d out of range [1,7]", a.QuestionID)
		}
	}
	return c.doJSON(ctx, http.MethodPost, PathAnswers, answersRequest{Answers: answers}, nil, true)
}

// MotivationHistory returns the ordered check-in records.
func (c *Client) MotivationHistory(ctx context.Context) ([]MotivationEntry, error) {
	var entries []MotivationEntry
	if err := c.doJSON(ctx, http.MethodGet, PathMotivationHistory, nil, &entries, true); err != nil {
		return nil, err
	}
	return entries, nil
}

// QuestionnaireSummary returns per-section average scores.
func (c *Client) QuestionnaireSummary(ctx context.Context) ([]SectionScore, error) {
	var sections []SectionScore
	if err := c.doJSON(ctx, http.MethodGet, PathQuestionnaireSummary, nil, &sections, true); err != nil {
		return nil, err
	}
	return sections, nil
}

// FetchDashboard issues the history and summary fetches concurrently and
// awaits both. One half failing leaves that half empty; the returned error
// is non-nil only when both fail.
func (c *Client) FetchDashboard(ctx context.Context) (Dashboard, error) {
	var (
		wg         sync.WaitGroup
		dash       Dashboard
		histErr    error
		summaryErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		dash.History, histErr = c.MotivationHistory(ctx)
	}()
	go func() {
		defer wg.Done()
		dash.Summary, summaryErr = c.QuestionnaireSummary(ctx)
	}()
	wg.Wait()

	if histErr != nil {
		c.log.Debug("motivation history unavailable", zap.Error(histErr))
	}
	if summaryErr != nil {
		c.log.Debug("questionnaire summary unavailable", zap.Error(summaryErr))
	}
	if histErr != nil && summaryErr != nil {
		// Unauthorized wins so the screen can route to login.
		if IsUnauthorized(histErr) || IsUnauthorized(summaryErr) {
			return dash, &Error{Code: CodeUnauthorized, Detail: "session expired"}
		}
		return dash, fmt.Errorf("dashboard unavailable: %w", histErr)
	}
	return dash, nil
}
