// Copyright 2025 The qsim Authors
// This file is part of the qsim library.
//
// The qsim library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The qsim library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the qsim library. If not, see <http://www.gnu.org/licenses/>.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/questlab/qsim/circuit"
	"github.com/questlab/qsim/quantum"
)

// RunRequest is the JSON body of a job submission.
type RunRequest struct {
	Circuit *circuit.Circuit `json:"circuit"`
	Shots   int              `json:"shots"`
	Seed    int64            `json:"seed,omitempty"`
}

// Remote submits circuits to a qsim job server. Failures are returned to the
// caller unchanged; the client never retries on its own.
type Remote struct {
	baseURL   string
	maxQubits int
	client    *http.Client
}

// NewRemote returns a client for the job server at baseURL.
func NewRemote(baseURL string) *Remote {
	return &Remote{
		baseURL:   strings.TrimRight(baseURL, "/"),
		maxQubits: quantum.MaxQubits,
		client:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// Name implements Backend.
func (r *Remote) Name() string { return "remote" }

// MaxQubits implements Backend.
func (r *Remote) MaxQubits() int { return r.maxQubits }

// IsSimulator implements Backend. The job server runs the local simulator.
func (r *Remote) IsSimulator() bool { return true }

// Run implements Backend.
func (r *Remote) Run(ctx context.Context, c *circuit.Circuit, opts RunOptions) (*Result, error) {
	if opts.Shots <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShots, opts.Shots)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid circuit: %w", err)
	}

	body, err := json.Marshal(RunRequest{Circuit: c, Shots: opts.Shots, Seed: opts.Seed})
	if err != nil {
		return nil, fmt.Errorf("encoding job request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/v1/jobs", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submitting job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("job server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding job result: %w", err)
	}
	result.Backend = r.Name()
	return &result, nil
}
