// Package hindranceapi - HTTP клиент серверного API синхронизации для полевого клиента
package hindranceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/config"
	"github.com/hindrance-reporter/internal/domain"
)

const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

// APIError - сервер ответил не 2xx
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("hindrance API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("hindrance API error: status %d, %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsTransient - ошибку стоит повторить позже: сеть недоступна, таймаут или 5xx.
// Ошибки валидации и 404 повторять бессмысленно.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError || apiErr.StatusCode == http.StatusTooManyRequests
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// errorBody - формат ошибки сервера
type errorBody struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Errors map[string][]string `json:"errors"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// Client - клиент API от имени одного пользователя
type Client struct {
	httpClient *http.Client
	baseURL    string
	userID     string
	userRole   string
	logger     *zap.Logger
}

// NewClient создает клиент по настройкам пилота
func NewClient(cfg *config.PilotConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:  strings.TrimRight(cfg.APIURL, "/"),
		userID:   cfg.UserID,
		userRole: cfg.UserRole,
		logger:   logger,
	}
}

// SyncObject создает или обновляет объект в черновике. journeyID == nil - сервер сам выберет черновик.
func (c *Client) SyncObject(ctx context.Context, journeyID *uuid.UUID, obj domain.PlacedObject) (*domain.SyncResult, error) {
	query := url.Values{}
	if journeyID != nil {
		query.Set("journeyId", journeyID.String())
	}

	var result domain.SyncResult
	if err := c.do(ctx, http.MethodPost, "/sync-object", query, obj, &result); err != nil {
		return nil, err
	}

	c.logger.Debug("Object synced",
		zap.String("object_id", obj.ID.String()),
		zap.String("server_object_id", result.ObjectID.String()))

	return &result, nil
}

// FinalizeJourney отправляет сессию целиком и возвращает id отчета
func (c *Client) FinalizeJourney(ctx context.Context, journeyID uuid.UUID, req domain.FinalizeRequest) (uuid.UUID, error) {
	query := url.Values{}
	query.Set("journeyId", journeyID.String())

	var result struct {
		ReportID uuid.UUID `json:"reportId"`
	}
	if err := c.do(ctx, http.MethodPost, "/finalize-journey", query, req, &result); err != nil {
		return uuid.Nil, err
	}
	return result.ReportID, nil
}

// ObjectTypes - каталог типов и типы по умолчанию для каждого вида геометрии
type ObjectTypes struct {
	ObjectTypes     []*domain.HindranceType     `json:"objectTypes"`
	StandardTypeIDs map[domain.GeometryType]int `json:"standardTypeIds"`
}

// GetObjectTypes загружает каталог типов
func (c *Client) GetObjectTypes(ctx context.Context) (*ObjectTypes, error) {
	var resp envelope[ObjectTypes]
	if err := c.do(ctx, http.MethodGet, "/object-types", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetReport загружает отчет с объектами
func (c *Client) GetReport(ctx context.Context, reportID uuid.UUID) (*domain.Report, error) {
	var resp envelope[domain.Report]
	if err := c.do(ctx, http.MethodGet, "/reports/"+reportID.String(), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerUserID, c.userID)
	if c.userRole != "" {
		req.Header.Set(headerUserRole, c.userRole)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Hindrance API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Hindrance API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
		return apiErr
	}
	if body.Error != nil {
		apiErr.Code = body.Error.Code
		apiErr.Message = body.Error.Message
	}
	apiErr.Fields = body.Errors
	return apiErr
}
