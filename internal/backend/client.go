// Package backend is the REST client for the CRM backend that owns client
// records. Every operation is a single request: no retries, no caching.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diewo77/go-crm-panel/httpx"
	"github.com/diewo77/go-crm-panel/internal/metrics"
	"github.com/diewo77/go-crm-panel/internal/models"
)

type Options struct {
	BaseURL string
	// Timeout of zero leaves the transport default in place.
	Timeout time.Duration
	Signer  RequestSigner
}

// Client talks to the CRM backend.
type Client struct {
	http    *resty.Client
	signer  RequestSigner
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func New(opts Options, logger *zap.Logger, m *metrics.Metrics) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Signer == nil {
		opts.Signer = NoopSigner{}
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	// Backend cookies must never be shared between operators.
	rc.SetCookieJar(nil)
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	return &Client{http: rc, signer: opts.Signer, logger: logger, metrics: m}
}

// envelope is the backend's success wrapper.
type envelope[T any] struct {
	Data T `json:"data"`
}

type call struct {
	op          string
	method      string
	path        string
	contentType string
	body        any
	result      any
}

func (c *Client) do(ctx context.Context, cl call) error {
	start := time.Now()
	reqID := httpx.RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	req := c.http.R().
		SetContext(ctx).
		SetHeader(httpx.RequestIDHeader, reqID)
	if cl.contentType != "" {
		req.SetHeader("Content-Type", cl.contentType)
	}
	if cl.body != nil {
		req.SetBody(cl.body)
	}
	if err := c.signer.Sign(ctx, req.Header); err != nil {
		return fmt.Errorf("%s: sign request: %w", cl.op, err)
	}

	resp, err := req.Execute(cl.method, cl.path)
	if err != nil {
		c.metrics.ObserveBackend(cl.op, "transport", time.Since(start))
		c.logger.Warn("backend request failed",
			zap.String("op", cl.op),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		return fmt.Errorf("%s: %w: %w", cl.op, ErrTransport, err)
	}

	if resp.IsError() {
		var eb errorBody
		_ = json.Unmarshal(resp.Body(), &eb)
		apiErr := newAPIError(cl.op, resp.StatusCode(), eb.Message)
		c.metrics.ObserveBackend(cl.op, "rejected", time.Since(start))
		c.logger.Info("backend rejected request",
			zap.String("op", cl.op),
			zap.String("request_id", reqID),
			zap.Int("status", apiErr.Status),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if cl.result != nil {
		if err := json.Unmarshal(resp.Body(), cl.result); err != nil {
			c.metrics.ObserveBackend(cl.op, "transport", time.Since(start))
			return fmt.Errorf("%s: decode response: %w: %w", cl.op, ErrTransport, err)
		}
	}
	c.metrics.ObserveBackend(cl.op, "ok", time.Since(start))
	c.logger.Debug("backend request",
		zap.String("op", cl.op),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func (c *Client) sendJSON(ctx context.Context, op, method, path string, body any) error {
	return c.do(ctx, call{op: op, method: method, path: path, contentType: "application/json", body: body})
}

func idPath(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

func (c *Client) ListClients(ctx context.Context) ([]models.Client, error) {
	var env envelope[[]models.Client]
	if err := c.do(ctx, call{op: "ListClients", method: http.MethodGet, path: "/api/clients", result: &env}); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	var env envelope[*models.Client]
	if err := c.do(ctx, call{op: "GetClient", method: http.MethodGet, path: idPath("/api/clientDetails/", id), result: &env}); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, newAPIError("GetClient", http.StatusNotFound, "")
	}
	return env.Data, nil
}

func (c *Client) AddClient(ctx context.Context, in models.NewClient) error {
	return c.sendJSON(ctx, "AddClient", http.MethodPost, "/api/addClients", in)
}

func (c *Client) DeleteClient(ctx context.Context, id int64) error {
	return c.do(ctx, call{op: "DeleteClient", method: http.MethodDelete, path: idPath("/api/delete/", id)})
}

// UpdateAbout sends the contact group as multipart form data. Multipart
// bodies cannot travel as PATCH to the backend, so the verb rides in a
// _method field on a POST.
func (c *Client) UpdateAbout(ctx context.Context, id int64, in models.AboutUpdate) error {
	form, err := aboutForm(in)
	if err != nil {
		return fmt.Errorf("UpdateAbout: encode form: %w", err)
	}
	return c.do(ctx, call{op: "UpdateAbout", method: http.MethodPost, path: idPath("/api/clients/", id), contentType: form.contentType, body: form.data})
}

func (c *Client) UpdateDemographic(ctx context.Context, id int64, in models.DemographicUpdate) error {
	return c.sendJSON(ctx, "UpdateDemographic", http.MethodPatch, idPath("/api/clientsDemographic/", id), in)
}

func (c *Client) UpdateBilling(ctx context.Context, id int64, in models.BillingUpdate) error {
	return c.sendJSON(ctx, "UpdateBilling", http.MethodPatch, idPath("/api/clientsBilling/", id), in)
}

func (c *Client) UpdateDetailsReference(ctx context.Context, id int64, in models.DetailsReferenceUpdate) error {
	return c.sendJSON(ctx, "UpdateDetailsReference", http.MethodPatch, idPath("/api/clientsDetailsReference/", id), in)
}

func (c *Client) UpdateSettings(ctx context.Context, id int64, in models.SettingsUpdate) error {
	return c.sendJSON(ctx, "UpdateSettings", http.MethodPatch, idPath("/api/clients/updateSettings/", id), in)
}

func (c *Client) UploadSharedFile(ctx context.Context, id int64, f models.FileUpload) error {
	form, err := sharedFileForm(f)
	if err != nil {
		return fmt.Errorf("UploadSharedFile: encode form: %w", err)
	}
	return c.do(ctx, call{op: "UploadSharedFile", method: http.MethodPost, path: idPath("/api/clients/sharedFiles/", id), contentType: form.contentType, body: form.data})
}

func (c *Client) ListSharedFiles(ctx context.Context, id int64) ([]models.SharedFile, error) {
	var env envelope[struct {
		SharedFiles []string `json:"shared_files"`
	}]
	if err := c.do(ctx, call{op: "ListSharedFiles", method: http.MethodGet, path: idPath("/api/clients/getSharedFiles/", id), result: &env}); err != nil {
		return nil, err
	}
	files := make([]models.SharedFile, 0, len(env.Data.SharedFiles))
	for _, u := range env.Data.SharedFiles {
		files = append(files, models.SharedFile{URL: u})
	}
	return files, nil
}
