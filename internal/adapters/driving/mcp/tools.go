package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

// ErrHistoryUnavailable is returned by tools that need sync history when none is wired.
var ErrHistoryUnavailable = errors.New("mcp: sync history is not available")

// ErrIntegrityUnavailable is returned by integrity_check when no checker is wired.
var ErrIntegrityUnavailable = errors.New("mcp: integrity checker is not available")

// SyncFullInput is the input schema for the sync_full tool.
type SyncFullInput struct {
	TenantID    string `json:"tenant_id,omitempty" jsonschema:"Xero tenant to sync (default: configured tenant)"`
	SessionType string `json:"session_type,omitempty" jsonschema:"manual, scheduled or initial (default manual)"`
}

// SyncEntitiesInput is the input schema for the sync_entities tool.
type SyncEntitiesInput struct {
	Entities      []string `json:"entities" jsonschema:"entity types to sync, e.g. invoices, contacts"`
	ForceFullSync bool     `json:"force_full_sync,omitempty" jsonschema:"ignore stored watermarks and pull everything"`
	TenantID      string   `json:"tenant_id,omitempty" jsonschema:"Xero tenant to sync (default: configured tenant)"`
}

// SyncOutput is the output schema for both sync tools.
type SyncOutput struct {
	SessionID               string         `json:"session_id"`
	Status                  string         `json:"status"`
	Success                 bool           `json:"success"`
	EntitiesProcessed       int            `json:"entities_processed"`
	TotalRecordsProcessed   int            `json:"total_records_processed"`
	TotalAPICalls           int            `json:"total_api_calls"`
	DurationSeconds         float64        `json:"duration_seconds"`
	SuccessRate             float64        `json:"success_rate"`
	Entities                []EntityOutput `json:"entities"`
	EntitiesWithMoreRecords []string       `json:"entities_with_more_records,omitempty"`
	Errors                  []string       `json:"errors,omitempty"`
}

// EntityOutput is the outcome of one entity type in a sync.
type EntityOutput struct {
	EntityType       string `json:"entity_type"`
	Success          bool   `json:"success"`
	Incremental      bool   `json:"incremental"`
	RecordsProcessed int    `json:"records_processed"`
	RecordsInserted  int    `json:"records_inserted"`
	RecordsUpdated   int    `json:"records_updated"`
	RecordsSkipped   int    `json:"records_skipped"`
	RecordsFailed    int    `json:"records_failed"`
	APICalls         int    `json:"api_calls"`
	RateLimitHits    int    `json:"rate_limit_hits"`
	HasMoreRecords   bool   `json:"has_more_records"`
	Error            string `json:"error,omitempty"`
}

// SyncStatusInput is the input schema for the sync_status tool.
type SyncStatusInput struct{}

// SyncStatusOutput is the output schema for the sync_status tool.
type SyncStatusOutput struct {
	Running           bool               `json:"running"`
	SessionID         string             `json:"session_id,omitempty"`
	CurrentEntity     string             `json:"current_entity,omitempty"`
	EntitiesCompleted int                `json:"entities_completed"`
	EntitiesTotal     int                `json:"entities_total"`
	RecordsProcessed  int                `json:"records_processed"`
	Checkpoints       []CheckpointOutput `json:"checkpoints,omitempty"`
}

// CheckpointOutput is one entity's checkpoint.
type CheckpointOutput struct {
	EntityType           string `json:"entity_type"`
	SyncStatus           string `json:"sync_status"`
	LastSuccessfulSyncAt string `json:"last_successful_sync_at,omitempty"`
	NextDueAt            string `json:"next_due_at,omitempty"`
	Overdue              bool   `json:"overdue"`
	HasMoreRecords       bool   `json:"has_more_records"`
	RecordsProcessed     int    `json:"records_processed"`
	TotalSyncCount       int    `json:"total_sync_count"`
	ErrorCount           int    `json:"error_count"`
}

// IntegrityInput is the input schema for the integrity_check tool.
type IntegrityInput struct{}

// IntegrityOutput is the output schema for the integrity_check tool.
type IntegrityOutput struct {
	Score    float64       `json:"score"`
	Passed   int           `json:"passed"`
	Warnings int           `json:"warnings"`
	Failed   int           `json:"failed"`
	Checks   []CheckOutput `json:"checks"`
}

// CheckOutput is one integrity check result.
type CheckOutput struct {
	CheckType       string `json:"check_type"`
	Category        string `json:"category"`
	Status          string `json:"status"`
	Message         string `json:"message"`
	RecordsAffected int    `json:"records_affected"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_full",
		Description: "Sync every Xero entity type into local staging, incrementally where possible",
	}, s.handleSyncFull)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_entities",
		Description: "Sync selected Xero entity types in dependency order",
	}, s.handleSyncEntities)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_status",
		Description: "Show the running sync, if any, and the checkpoint of every entity type",
	}, s.handleSyncStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "integrity_check",
		Description: "Run integrity checks over staged Xero data and return a scored report",
	}, s.handleIntegrityCheck)
}

// handleSyncFull handles the sync_full tool invocation.
func (s *Server) handleSyncFull(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SyncFullInput,
) (*mcp.CallToolResult, SyncOutput, error) {
	sessionType := domain.SessionType(input.SessionType)
	if sessionType == "" {
		sessionType = domain.SessionTypeManual
	}
	result, err := s.ports.Sync.PerformFullSync(ctx, s.ports.initiatedBy(), input.TenantID, sessionType)
	return syncResponse(result, err)
}

// handleSyncEntities handles the sync_entities tool invocation.
func (s *Server) handleSyncEntities(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SyncEntitiesInput,
) (*mcp.CallToolResult, SyncOutput, error) {
	entities := make([]domain.EntityType, 0, len(input.Entities))
	for _, name := range input.Entities {
		entities = append(entities, domain.ParseEntityType(name))
	}
	result, err := s.ports.Sync.SyncSpecificEntities(
		ctx, entities, s.ports.initiatedBy(), input.TenantID, input.ForceFullSync)
	return syncResponse(result, err)
}

// syncResponse reports a sealed session as output even when the run
// failed fatally, so the caller still learns the session id.
func syncResponse(result *domain.SyncResult, err error) (*mcp.CallToolResult, SyncOutput, error) {
	if result == nil {
		if err == nil {
			err = errors.New("sync returned no result")
		}
		return nil, SyncOutput{}, err
	}
	output := toSyncOutput(result)
	if err != nil {
		output.Errors = append(output.Errors, err.Error())
	}
	return nil, output, nil
}

func toSyncOutput(r *domain.SyncResult) SyncOutput {
	out := SyncOutput{
		SessionID:             r.SessionID,
		Status:                string(r.Status),
		Success:               r.Success,
		EntitiesProcessed:     r.EntitiesProcessed,
		TotalRecordsProcessed: r.TotalRecordsProcessed,
		TotalAPICalls:         r.TotalAPICalls,
		DurationSeconds:       r.TotalDuration.Seconds(),
		SuccessRate:           r.SuccessRate,
		Entities:              make([]EntityOutput, len(r.EntityResults)),
		Errors:                r.Errors,
	}
	for i := range r.EntityResults {
		e := &r.EntityResults[i]
		out.Entities[i] = EntityOutput{
			EntityType:       string(e.EntityType),
			Success:          e.Success,
			Incremental:      e.ModifiedSince != nil,
			RecordsProcessed: e.RecordsProcessed,
			RecordsInserted:  e.RecordsInserted,
			RecordsUpdated:   e.RecordsUpdated,
			RecordsSkipped:   e.RecordsSkipped,
			RecordsFailed:    e.RecordsFailed,
			APICalls:         e.APICalls,
			RateLimitHits:    e.RateLimitHits,
			HasMoreRecords:   e.HasMoreRecords,
			Error:            e.Error,
		}
	}
	for _, e := range r.EntitiesWithMoreRecords {
		out.EntitiesWithMoreRecords = append(out.EntitiesWithMoreRecords, string(e))
	}
	return out
}

// handleSyncStatus handles the sync_status tool invocation.
func (s *Server) handleSyncStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ SyncStatusInput,
) (*mcp.CallToolResult, SyncStatusOutput, error) {
	status, err := s.ports.Sync.Status(ctx)
	if err != nil {
		return nil, SyncStatusOutput{}, err
	}

	var output SyncStatusOutput
	if status != nil {
		output = SyncStatusOutput{
			Running:           status.Running,
			SessionID:         status.SessionID,
			CurrentEntity:     string(status.CurrentEntity),
			EntitiesCompleted: status.EntitiesCompleted,
			EntitiesTotal:     status.EntitiesTotal,
			RecordsProcessed:  status.RecordsProcessed,
		}
	}

	if s.ports.History != nil {
		checkpoints, err := s.checkpointOutputs(ctx)
		if err != nil {
			return nil, SyncStatusOutput{}, err
		}
		output.Checkpoints = checkpoints
	}

	return nil, output, nil
}

func (s *Server) checkpointOutputs(ctx context.Context) ([]CheckpointOutput, error) {
	if s.ports.History == nil {
		return nil, ErrHistoryUnavailable
	}
	checkpoints, err := s.ports.History.Checkpoints(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CheckpointOutput, len(checkpoints))
	for i := range checkpoints {
		cp := &checkpoints[i]
		out[i] = CheckpointOutput{
			EntityType:           string(cp.EntityType),
			SyncStatus:           string(cp.SyncStatus),
			LastSuccessfulSyncAt: formatTime(cp.LastSuccessfulSyncAt),
			NextDueAt:            formatTime(cp.NextDueAt),
			Overdue:              cp.Overdue,
			HasMoreRecords:       cp.HasMoreRecords,
			RecordsProcessed:     cp.RecordsProcessed,
			TotalSyncCount:       cp.TotalSyncCount,
			ErrorCount:           cp.ErrorCount,
		}
	}
	return out, nil
}

// handleIntegrityCheck handles the integrity_check tool invocation.
func (s *Server) handleIntegrityCheck(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ IntegrityInput,
) (*mcp.CallToolResult, IntegrityOutput, error) {
	if s.ports.Integrity == nil {
		return nil, IntegrityOutput{}, ErrIntegrityUnavailable
	}

	report, err := s.ports.Integrity.Run(ctx)
	if err != nil {
		return nil, IntegrityOutput{}, err
	}

	output := IntegrityOutput{
		Score:    report.Score,
		Passed:   report.CountByStatus(domain.CheckPassed),
		Warnings: report.CountByStatus(domain.CheckWarning),
		Failed:   report.CountByStatus(domain.CheckFailed),
		Checks:   make([]CheckOutput, len(report.Checks)),
	}
	for i, c := range report.Checks {
		output.Checks[i] = CheckOutput{
			CheckType:       c.CheckType,
			Category:        string(c.Category),
			Status:          string(c.Status),
			Message:         c.Message,
			RecordsAffected: c.RecordsAffected,
		}
	}
	return nil, output, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
