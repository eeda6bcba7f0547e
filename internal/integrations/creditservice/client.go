package creditservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент для работы с CreditService (кредиты клиентов и флаг льготной отмены)
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента CreditService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GraceCancellationUsed возвращает true, если клиент уже использовал льготную отмену.
// Отсутствие записей о клиенте трактуется как "не использовал".
func (c *Client) GraceCancellationUsed(ctx context.Context, clientID int64) (bool, error) {
	url := fmt.Sprintf("%s/internal/clients/%d/grace-cancellation", c.baseURL, clientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return false, nil
	case http.StatusBadRequest:
		return false, fmt.Errorf("%w: invalid client ID format", ErrInvalidResponse)
	default:
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var status GraceStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return status.Used, nil
}

// GraceCancellationUsedWithGracefulDegradation возвращает флаг льготной отмены с graceful degradation.
// При недоступности CreditService возвращает false: клиент увидит стандартное сообщение
// о блокировке переноса, а не ошибку.
func (c *Client) GraceCancellationUsedWithGracefulDegradation(ctx context.Context, clientID int64) bool {
	used, err := c.GraceCancellationUsed(ctx, clientID)
	if err != nil {
		// Повышаем уровень логирования до ERROR, чтобы быстрее заметить проблему
		c.log.Error("CreditService unavailable, assuming grace not used for client_id=%d: %v", clientID, err)
		return false
	}

	return used
}

// UseGraceCancellation списывает единственную льготную отмену клиента
func (c *Client) UseGraceCancellation(ctx context.Context, clientID, bookingID int64) error {
	url := fmt.Sprintf("%s/internal/clients/%d/grace-cancellation", c.baseURL, clientID)

	body, err := json.Marshal(UseGraceRequest{BookingID: bookingID})
	if err != nil {
		return fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		c.log.Info("Grace cancellation used: client_id=%d, booking_id=%d", clientID, bookingID)
		return nil
	case http.StatusConflict:
		return ErrGraceAlreadyUsed
	case http.StatusNotFound:
		return ErrClientNotFound
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}
}
