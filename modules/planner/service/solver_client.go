package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"schedule-compiler/core/config"
	"schedule-compiler/core/logger"
	"schedule-compiler/modules/planner/entity"
)

const solveDayPath = "/timeTable/admin/solve-day"

// SolverClient hands an assembled request to the external solver.
type SolverClient interface {
	Solve(ctx context.Context, req *entity.PlannerRequest) error
}

type HTTPSolverClient struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

func NewHTTPSolverClient(cfg config.SolverConfig, client *http.Client) *HTTPSolverClient {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPSolverClient{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		client:   client,
	}
}

// Solve posts the request. The solver answers asynchronously on the callback URL,
// so any 2xx counts as accepted.
func (c *HTTPSolverClient) Solve(ctx context.Context, req *entity.PlannerRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode solver request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+solveDayPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build solver request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.username, c.password)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("post %s: %w", solveDayPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("solver returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	logger.Info("SolverClient:Solve:Accepted",
		"singletonId", req.SingletonID,
		"hostId", req.HostID,
		"eventParts", len(req.EventParts),
		"timeslots", len(req.Timeslots),
	)
	return nil
}
