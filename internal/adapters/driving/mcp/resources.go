package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for ledgersync resources.
	uriScheme = "ledgersync://"

	// recentSessions is how many sessions the sessions resource lists.
	recentSessions = 20
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "checkpoints",
		Name:        "checkpoints",
		Description: "Sync checkpoint of every entity type",
		MIMEType:    "application/json",
	}, s.handleCheckpointsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sessions",
		Name:        "sessions",
		Description: "Most recent sync sessions",
		MIMEType:    "application/json",
	}, s.handleSessionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}",
		Name:        "session-detail",
		Description: "A sync session with its per-entity logs",
		MIMEType:    "application/json",
	}, s.handleSessionResource)
}

// handleCheckpointsResource returns every checkpoint.
func (s *Server) handleCheckpointsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return jsonResource(req.Params.URI, []CheckpointOutput{})
	}

	checkpoints, err := s.checkpointOutputs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing checkpoints: %w", err)
	}
	return jsonResource(req.Params.URI, checkpoints)
}

type sessionInfo struct {
	ID                    string   `json:"id"`
	SessionType           string   `json:"session_type"`
	SyncScope             string   `json:"sync_scope"`
	Status                string   `json:"status"`
	TargetEntities        []string `json:"target_entities"`
	InitiatedBy           string   `json:"initiated_by,omitempty"`
	StartedAt             string   `json:"started_at"`
	CompletedAt           string   `json:"completed_at,omitempty"`
	TotalRecordsProcessed int      `json:"total_records_processed"`
	TotalAPICalls         int      `json:"total_api_calls"`
	SuccessRate           float64  `json:"success_rate"`
}

func toSessionInfo(s *domain.SyncSession) sessionInfo {
	targets := make([]string, len(s.TargetEntities))
	for i, e := range s.TargetEntities {
		targets[i] = string(e)
	}
	return sessionInfo{
		ID:                    s.ID,
		SessionType:           string(s.SessionType),
		SyncScope:             string(s.SyncScope),
		Status:                string(s.Status),
		TargetEntities:        targets,
		InitiatedBy:           s.InitiatedBy,
		StartedAt:             formatTime(s.StartedAt),
		CompletedAt:           formatTime(s.CompletedAt),
		TotalRecordsProcessed: s.TotalRecordsProcessed,
		TotalAPICalls:         s.TotalAPICalls,
		SuccessRate:           s.SuccessRate,
	}
}

// handleSessionsResource returns recent sessions.
func (s *Server) handleSessionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return jsonResource(req.Params.URI, []sessionInfo{})
	}

	sessions, err := s.ports.History.Sessions(ctx, recentSessions)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	infos := make([]sessionInfo, len(sessions))
	for i := range sessions {
		infos[i] = toSessionInfo(&sessions[i])
	}
	return jsonResource(req.Params.URI, infos)
}

// handleSessionResource returns one session and its logs.
func (s *Server) handleSessionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract sessionId from URI: ledgersync://sessions/{sessionId}
	sessionID := extractSessionID(req.Params.URI)
	if sessionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	detail, err := s.ports.History.Session(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	type logInfo struct {
		EntityType       string  `json:"entity_type"`
		SyncStatus       string  `json:"sync_status"`
		StartedAt        string  `json:"started_at"`
		CompletedAt      string  `json:"completed_at,omitempty"`
		DurationSeconds  float64 `json:"duration_seconds"`
		RecordsProcessed int     `json:"records_processed"`
		RecordsInserted  int     `json:"records_inserted"`
		RecordsUpdated   int     `json:"records_updated"`
		RecordsSkipped   int     `json:"records_skipped"`
		RecordsFailed    int     `json:"records_failed"`
		APICallsMade     int     `json:"api_calls_made"`
		ErrorMessage     string  `json:"error_message,omitempty"`
	}

	payload := struct {
		Session sessionInfo `json:"session"`
		Logs    []logInfo   `json:"logs"`
	}{
		Session: toSessionInfo(&detail.Session),
		Logs:    make([]logInfo, len(detail.Logs)),
	}
	for i := range detail.Logs {
		l := &detail.Logs[i]
		payload.Logs[i] = logInfo{
			EntityType:       string(l.EntityType),
			SyncStatus:       string(l.SyncStatus),
			StartedAt:        formatTime(l.StartedAt),
			CompletedAt:      formatTime(l.CompletedAt),
			DurationSeconds:  l.DurationSeconds,
			RecordsProcessed: l.RecordsProcessed,
			RecordsInserted:  l.RecordsInserted,
			RecordsUpdated:   l.RecordsUpdated,
			RecordsSkipped:   l.RecordsSkipped,
			RecordsFailed:    l.RecordsFailed,
			APICallsMade:     l.APICallsMade,
			ErrorMessage:     l.ErrorMessage,
		}
	}
	return jsonResource(req.Params.URI, payload)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSessionID extracts the session ID from a URI like ledgersync://sessions/{sessionId}.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "sessions/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
