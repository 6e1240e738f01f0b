// internal/transport/agent.go
package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/model"
)

// AgentTransport sends the encoded document to a trusted local print agent
// over HTTP. The agent is expected to already be paired with the physical
// printer and to handle queuing on the operator's machine, which makes this
// the preferred path.
type AgentTransport struct {
	config *config.AgentConfig
	url    string
	client *http.Client
	logger *zap.Logger
}

// agentRequest is the payload schema the local agent accepts. The schema is
// owned by the agent; this side only needs to match it.
type agentRequest struct {
	Content   string  `json:"content"`
	DocType   string  `json:"docType"`
	Printer   string  `json:"printer,omitempty"`
	Host      *string `json:"host,omitempty"`
	Port      *int    `json:"port,omitempty"`
	VendorID  *string `json:"vendorId,omitempty"`
	ProductID *string `json:"productId,omitempty"`
}

type agentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// NewAgentTransport creates the local print-agent transport
func NewAgentTransport(cfg *config.AgentConfig, agentURL string, logger *zap.Logger) *AgentTransport {
	return &AgentTransport{
		config: cfg,
		url:    agentURL,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(zap.String("transport", model.TransportAgent)),
	}
}

// Name returns the transport identifier
func (t *AgentTransport) Name() string {
	return model.TransportAgent
}

// Send posts the job to the local agent and treats any non-success answer
// as failure
func (t *AgentTransport) Send(ctx context.Context, job *model.PrintJob) error {
	payload := agentRequest{
		Content:   base64.StdEncoding.EncodeToString(job.Payload),
		DocType:   string(job.DocType),
		Printer:   job.Profile.DisplayName,
		Host:      job.Profile.Host,
		Port:      job.Profile.Port,
		VendorID:  job.Profile.VendorID,
		ProductID: job.Profile.ProductID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal agent payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// Agent not running or not reachable on its well-known port
		return unavailable("local agent unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("local agent returned status %d", resp.StatusCode)
	}

	var agentResp agentResponse
	if err := json.NewDecoder(resp.Body).Decode(&agentResp); err != nil {
		return fmt.Errorf("failed to decode agent response: %w", err)
	}

	if !agentResp.Success {
		return fmt.Errorf("local agent rejected job: %s", agentResp.Message)
	}

	t.logger.Debug("Agent accepted print job",
		zap.String("job_id", job.JobID.String()),
		zap.Int("bytes", len(job.Payload)),
	)
	return nil
}
