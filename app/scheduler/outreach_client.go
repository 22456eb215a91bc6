package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	businessflow "github.com/magnetlab/signal-pipeline/business_flow"
	"github.com/magnetlab/signal-pipeline/config"
)

// httpOutreachClient delivers qualified leads to the outreach service over
// its REST API.
type httpOutreachClient struct {
	cfg    config.OutreachConfig
	client *http.Client
}

func NewHTTPOutreachClient(cfg config.OutreachConfig) businessflow.OutreachClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpOutreachClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type outreachPushResponse struct {
	Accepted []struct {
		ProfileURL string `json:"profileUrl"`
	} `json:"accepted"`
	Rejected []struct {
		ProfileURL string `json:"profileUrl"`
		Reason     string `json:"reason"`
	} `json:"rejected"`
}

func (c *httpOutreachClient) PushLeads(ctx context.Context, workspaceID int64, leads []businessflow.OutboundLead) (*businessflow.PushOutcome, error) {
	if len(leads) == 0 {
		return &businessflow.PushOutcome{}, nil
	}

	payload := struct {
		WorkspaceID int64                      `json:"workspaceId"`
		Leads       []businessflow.OutboundLead `json:"leads"`
	}{
		WorkspaceID: workspaceID,
		Leads:       leads,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	reqURL := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/v1/leads/batch"

	retries := c.cfg.RetryCount
	if retries < 0 {
		retries = 0
	}
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json; charset=utf-8")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		var out outreachPushResponse
		func() {
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				lastErr = fmt.Errorf("outreach push http status: %d", resp.StatusCode)
				return
			}
			lastErr = json.NewDecoder(resp.Body).Decode(&out)
		}()
		if lastErr == nil {
			outcome := &businessflow.PushOutcome{
				AcceptedProfileURLs: make([]string, 0, len(out.Accepted)),
			}
			for _, a := range out.Accepted {
				outcome.AcceptedProfileURLs = append(outcome.AcceptedProfileURLs, a.ProfileURL)
			}
			return outcome, nil
		}
	}
	return nil, lastErr
}
