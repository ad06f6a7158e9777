package handlers

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
	"github.com/onurcolak/wa-inbound-service/internal/service"
	"github.com/onurcolak/wa-inbound-service/internal/worker"
	"github.com/onurcolak/wa-inbound-service/pkg/queue"
	validatorpkg "github.com/onurcolak/wa-inbound-service/pkg/validator"
)

func newJSONContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = validatorpkg.New()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

type fakeIngestor struct {
	outcome service.Outcome
	err     error

	gotBody      string
	gotSignature string
}

func (f *fakeIngestor) Ingest(ctx context.Context, rawBody []byte, signatureHeader string) (service.Outcome, error) {
	f.gotBody = string(rawBody)
	f.gotSignature = signatureHeader
	return f.outcome, f.err
}

type fakeSender struct {
	result *service.SendResult
	err    error
	calls  []service.SendInput
}

func (f *fakeSender) Send(ctx context.Context, in service.SendInput) (*service.SendResult, error) {
	f.calls = append(f.calls, in)
	return f.result, f.err
}

type fakeOps struct {
	claims     []domain.ProcessingClaim
	claim      *domain.ProcessingClaim
	stats      domain.ClaimStats
	counts     queue.Counts
	failedJobs []queue.JobInfo
	retried    *queue.JobInfo
	err        error

	gotStatus   *domain.ClaimStatus
	gotPage     int
	gotPageSize int
	gotRetryID  string
}

func (f *fakeOps) ListClaims(ctx context.Context, status *domain.ClaimStatus, page, pageSize int) ([]domain.ProcessingClaim, int64, error) {
	f.gotStatus, f.gotPage, f.gotPageSize = status, page, pageSize
	return f.claims, int64(len(f.claims)), f.err
}

func (f *fakeOps) GetClaim(ctx context.Context, waAccountID, waMessageID string) (*domain.ProcessingClaim, error) {
	return f.claim, f.err
}

func (f *fakeOps) ClaimStats(ctx context.Context) (domain.ClaimStats, error) {
	return f.stats, f.err
}

func (f *fakeOps) JobCounts(ctx context.Context) (queue.Counts, error) {
	return f.counts, f.err
}

func (f *fakeOps) ListFailedJobs(ctx context.Context, page, pageSize int) ([]queue.JobInfo, int64, error) {
	f.gotPage, f.gotPageSize = page, pageSize
	return f.failedJobs, int64(len(f.failedJobs)), f.err
}

func (f *fakeOps) RetryJob(ctx context.Context, id string) (*queue.JobInfo, error) {
	f.gotRetryID = id
	return f.retried, f.err
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) error        { return f.err }
func (f fakePinger) PingContext(ctx context.Context) error { return f.err }

type fakePool struct {
	running bool
	starts  int
	stops   int
}

func (f *fakePool) Start(ctx context.Context) error {
	f.starts++
	f.running = true
	return nil
}

func (f *fakePool) Stop() error {
	f.stops++
	f.running = false
	return nil
}

func (f *fakePool) IsRunning() bool { return f.running }

func (f *fakePool) GetStatus() worker.PoolStatus {
	return worker.PoolStatus{Running: f.running, Queue: "wa_inbound"}
}
