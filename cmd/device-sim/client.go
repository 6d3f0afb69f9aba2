package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"foodia-handoff/domain"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// apiClient talks to the handoff API as one party of a transaction.
type apiClient struct {
	baseURL       string
	token         string
	transactionID string
	timeout       time.Duration
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *apiClient) url(path string) string {
	return strings.TrimRight(c.baseURL, "/") + "/api/v1/transactions/" + c.transactionID + path
}

func (c *apiClient) do(agent *fiber.Agent, op string) (*envelope, error) {
	agent.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	agent.Timeout(c.timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, domain.Transient(op, errors.Join(errs...))
	}

	var res envelope
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, domain.Transient(op, fmt.Errorf("status %d: %w", code, err))
	}
	switch {
	case code == fiber.StatusConflict:
		return nil, fmt.Errorf("%w: %s", domain.ErrTrackingInactive, res.Error)
	case code == fiber.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, res.Error)
	case code == fiber.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", domain.ErrNotTransactionParty, res.Error)
	case code >= 400:
		return nil, domain.Transient(op, fmt.Errorf("status %d: %s", code, res.Error))
	}
	return &res, nil
}

// Publish writes the caller's own location. It satisfies tracking.Sink.
func (c *apiClient) Publish(ctx context.Context, subject string, loc domain.Coordinate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	agent := fiber.Put(c.url("/location"))
	agent.JSON(fiber.Map{
		"lat":       loc.Lat,
		"lng":       loc.Lng,
		"timestamp": loc.Timestamp,
	})
	_, err := c.do(agent, "publish location")
	return err
}

// Status reads the transaction status for the publisher gate.
func (c *apiClient) Status(ctx context.Context) (domain.TransactionStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	res, err := c.do(fiber.Get(c.url("")), "read transaction")
	if err != nil {
		return "", err
	}
	var tx domain.Transaction
	if err := json.Unmarshal(res.Data, &tx); err != nil {
		return "", domain.Transient("read transaction", err)
	}
	return tx.Status, nil
}
