package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgersync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ledgersync/internal/connectors/xero"
	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

// contactServer serves Contacts the way Xero pages them: records modified at
// or after the If-Modified-Since second, ascending, one page per request.
type contactServer struct {
	updated []time.Time

	mu    stdsync.Mutex
	pages []string
}

func (s *contactServer) requestedPages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pages...)
}

func (s *contactServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer","expires_in":1800}`))
	})
	mux.HandleFunc("/connections", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"tenantId":"tenant-1","tenantType":"ORGANISATION","tenantName":"Demo"}]`))
	})
	mux.HandleFunc("/api.xro/2.0/Contacts", func(w http.ResponseWriter, r *http.Request) {
		var since time.Time
		if h := r.Header.Get("If-Modified-Since"); h != "" {
			var err error
			since, err = time.Parse("2006-01-02T15:04:05", h)
			assert.NoError(t, err)
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
		s.mu.Lock()
		s.pages = append(s.pages, r.URL.Query().Get("page"))
		s.mu.Unlock()

		type contact struct {
			ContactID      string `json:"ContactID"`
			Name           string `json:"Name"`
			UpdatedDateUTC string `json:"UpdatedDateUTC"`
		}
		var matched []contact
		for i, at := range s.updated {
			if at.Before(since) {
				continue
			}
			matched = append(matched, contact{
				ContactID:      fmt.Sprintf("contact-%03d", i),
				Name:           fmt.Sprintf("Contact %d", i),
				UpdatedDateUTC: fmt.Sprintf("/Date(%d+0000)/", at.UnixMilli()),
			})
		}
		start := min((page-1)*size, len(matched))
		end := min(start+size, len(matched))

		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]any{"Contacts": matched[start:end]}))
	})
	return mux
}

func TestEntitySyncer_BulkChangesWithinOneSecondAreFullyStaged(t *testing.T) {
	bulk := time.Date(2024, 5, 1, 10, 0, 0, 123_000_000, time.UTC)
	later := bulk.Add(time.Hour)

	srv := &contactServer{}
	for range 150 {
		srv.updated = append(srv.updated, bulk)
	}
	srv.updated = append(srv.updated, later)

	server := httptest.NewServer(srv.handler(t))
	t.Cleanup(server.Close)

	ctx := context.Background()
	source := xero.New(ctx, xero.Config{
		ClientID:          "client",
		ClientSecret:      "secret",
		BaseURL:           server.URL,
		TokenURL:          server.URL + "/token",
		RequestsPerMinute: 600000,
		MaxRetries:        1,
	})
	require.NoError(t, source.Connect(ctx, ""))

	checkpoints := memory.NewCheckpointStore()
	sessions := memory.NewSessionStore()
	staging := memory.NewStagingStore()
	syncer := NewEntitySyncer(source, checkpoints, sessions, staging)
	syncer.now = func() time.Time { return testNow }
	for _, id := range []string{"session-1", "session-2"} {
		require.NoError(t, sessions.CreateSession(ctx, &domain.SyncSession{
			ID: id, SessionType: domain.SessionTypeManual, Status: domain.SessionStatusRunning, StartedAt: testNow,
		}))
	}

	cfg, ok := NewDefaultEntityRegistry().Get(domain.EntityContacts)
	require.True(t, ok)
	require.Equal(t, 100, cfg.BatchSize)

	first := syncer.Sync(ctx, "session-1", "test", cfg, false)
	require.True(t, first.Success)
	assert.Equal(t, 100, first.RecordsInserted)
	assert.True(t, first.HasMoreRecords)

	cp, err := checkpoints.Get(ctx, domain.EntityContacts)
	require.NoError(t, err)
	assert.Equal(t, 2, cp.NextPage)

	second := syncer.Sync(ctx, "session-2", "test", cfg, false)
	require.True(t, second.Success)
	require.NotNil(t, second.ModifiedSince)
	assert.Equal(t, 2, second.Page)
	assert.Equal(t, 51, second.RecordsInserted)
	assert.False(t, second.HasMoreRecords)

	n, err := staging.Count(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 151, n)
	assert.Equal(t, []string{"1", "2"}, srv.requestedPages())

	cp, err = checkpoints.Get(ctx, domain.EntityContacts)
	require.NoError(t, err)
	assert.False(t, cp.HasMoreRecords)
	assert.Zero(t, cp.NextPage)
	assert.Equal(t, later, cp.LastUpdatedUTC)
}
