package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
	"github.com/onurcolak/wa-inbound-service/pkg/queue"
	"github.com/onurcolak/wa-inbound-service/pkg/response"
)

func TestListClaims_PassesFilterAndPagination(t *testing.T) {
	c, rec := newJSONContext(http.MethodGet, "/api/v1/claims?status=failed&page=2&pageSize=5", "")
	ops := &fakeOps{claims: []domain.ProcessingClaim{{WaAccountID: "acc-1", WaMessageID: "wamid.1", Status: domain.ClaimFailed}}}

	if err := NewOpsHandler(ops).ListClaims(c); err != nil {
		t.Fatalf("ListClaims returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ops.gotStatus == nil || *ops.gotStatus != domain.ClaimFailed {
		t.Errorf("expected failed filter, got %v", ops.gotStatus)
	}
	if ops.gotPage != 2 || ops.gotPageSize != 5 {
		t.Errorf("expected page 2 size 5, got %d/%d", ops.gotPage, ops.gotPageSize)
	}

	var resp response.PaginatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	if resp.TotalCount != 1 || resp.Page != 2 {
		t.Errorf("unexpected pagination %+v", resp)
	}
}

func TestListClaims_BadInput(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"unknown status", "status=stuck"},
		{"bad page", "page=0"},
		{"page size too large", "pageSize=101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONContext(http.MethodGet, "/api/v1/claims?"+tt.query, "")

			if err := NewOpsHandler(&fakeOps{}).ListClaims(c); err != nil {
				t.Fatalf("ListClaims returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestGetClaim_NotFound(t *testing.T) {
	c, rec := newJSONContext(http.MethodGet, "/", "")
	c.SetPath("/api/v1/claims/:accountId/:messageId")
	c.SetParamNames("accountId", "messageId")
	c.SetParamValues("acc-1", "wamid.404")

	if err := NewOpsHandler(&fakeOps{}).GetClaim(c); err != nil {
		t.Fatalf("GetClaim returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestGetClaimStats_IncludesTotal(t *testing.T) {
	c, rec := newJSONContext(http.MethodGet, "/api/v1/claims/stats", "")
	ops := &fakeOps{stats: domain.ClaimStats{Processing: 1, Done: 5, Failed: 2}}

	if err := NewOpsHandler(ops).GetClaimStats(c); err != nil {
		t.Fatalf("GetClaimStats returned error: %v", err)
	}

	var resp struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	if resp.Data["total"] != 8 || resp.Data["done"] != 5 {
		t.Errorf("unexpected stats %v", resp.Data)
	}
}

func TestRetryJob(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"requeued", nil, http.StatusOK},
		{"not failed", fmt.Errorf("failed job x: %w", queue.ErrJobNotFound), http.StatusNotFound},
		{"redis error", fmt.Errorf("failed to retry job: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONContext(http.MethodPost, "/", "")
			c.SetPath("/api/v1/jobs/:id/retry")
			c.SetParamNames("id")
			c.SetParamValues("acc-1:wamid.1")

			ops := &fakeOps{err: tt.err, retried: &queue.JobInfo{ID: "acc-1:wamid.1", State: "waiting"}}
			if err := NewOpsHandler(ops).RetryJob(c); err != nil {
				t.Fatalf("RetryJob returned error: %v", err)
			}

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if ops.gotRetryID != "acc-1:wamid.1" {
				t.Errorf("expected job id to be forwarded, got %q", ops.gotRetryID)
			}
		})
	}
}

func TestListFailedJobs_DefaultPagination(t *testing.T) {
	c, rec := newJSONContext(http.MethodGet, "/api/v1/jobs/failed", "")
	ops := &fakeOps{failedJobs: []queue.JobInfo{{ID: "a:b", State: "failed"}}}

	if err := NewOpsHandler(ops).ListFailedJobs(c); err != nil {
		t.Fatalf("ListFailedJobs returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ops.gotPage != 1 || ops.gotPageSize != 20 {
		t.Errorf("expected defaults 1/20, got %d/%d", ops.gotPage, ops.gotPageSize)
	}
}
