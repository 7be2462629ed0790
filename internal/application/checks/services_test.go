package checks

import (
	"context"
	"errors"
	"sync"
	"testing"

	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
)

type memJournal struct {
	mu      sync.Mutex
	records []*domain.RunRecord
	err     error
}

func (j *memJournal) Append(_ context.Context, r *domain.RunRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.records = append(j.records, r)
	return nil
}

func (j *memJournal) ListByCheck(_ context.Context, id domain.CheckID, limit int) ([]*domain.RunRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []*domain.RunRecord
	for i := len(j.records) - 1; i >= 0 && len(out) < limit; i-- {
		if j.records[i].CheckID == id {
			out = append(out, j.records[i])
		}
	}
	return out, nil
}

type memArchive struct {
	reports []*domain.BatchReport
	err     error
}

func (a *memArchive) Put(_ context.Context, r *domain.BatchReport) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.reports = append(a.reports, r)
	return "mem://" + r.BatchID, nil
}

func TestServiceRunAllJournalsAndArchives(t *testing.T) {
	t.Parallel()

	reg, runner, _ := newTestRunner(t, abcOracle(), Options{})
	journal := &memJournal{}
	archive := &memArchive{}
	svc := NewService(reg, runner, journal, archive, domain.DefaultFeatures())

	res, err := svc.RunAll(context.Background())
	if err != nil {
		t.Fatalf("run all: %v", err)
	}
	if res.ReportURL != "mem://"+res.Report.BatchID {
		t.Fatalf("unexpected report url %q", res.ReportURL)
	}
	if len(archive.reports) != 1 || len(archive.reports[0].Entries) != 3 {
		t.Fatalf("expected one archived report with 3 entries")
	}
	if len(journal.records) != 3 {
		t.Fatalf("expected 3 journal rows, got %d", len(journal.records))
	}
	for _, rec := range journal.records {
		if rec.BatchID != res.Report.BatchID || rec.ID == "" {
			t.Fatalf("journal row missing ids: %+v", rec)
		}
	}

	hist, err := svc.History(context.Background(), "B", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 || hist[0].Status != domain.StatusFailed {
		t.Fatalf("unexpected history for B: %+v", hist)
	}
}

func TestServiceArchiveFailureKeepsBatchResult(t *testing.T) {
	t.Parallel()

	reg, runner, _ := newTestRunner(t, abcOracle(), Options{})
	svc := NewService(reg, runner, &memJournal{err: errors.New("db down")}, &memArchive{err: errors.New("bucket gone")}, nil)

	res, err := svc.RunAll(context.Background())
	if err != nil {
		t.Fatalf("adapter failures must not fail the batch: %v", err)
	}
	if res.ReportURL != "" || res.Report == nil {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestServiceHistoryWithoutJournal(t *testing.T) {
	t.Parallel()

	reg, runner, _ := newTestRunner(t, abcOracle(), Options{})
	svc := NewService(reg, runner, nil, nil, nil)

	hist, err := svc.History(context.Background(), "A", 5)
	if err != nil || len(hist) != 0 {
		t.Fatalf("expected empty history, got %v %v", hist, err)
	}
	if _, err := svc.History(context.Background(), "nope", 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Get("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewRunRecordFromOracleFailure(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{errs: map[domain.CheckID]error{"A": errors.New("timeout")}}
	_, runner, _ := newTestRunner(t, oracle, Options{})
	var rec *domain.RunRecord
	runner.OnSettle(func(s domain.Settlement) { rec = NewRunRecord(s) })

	_, _ = runner.RunOne(context.Background(), "A")
	if rec == nil {
		t.Fatalf("no settlement recorded")
	}
	if rec.Status != domain.StatusFailed || rec.OracleError == "" || rec.Message != UnavailableMessage {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.DurationMS < 0 {
		t.Fatalf("negative duration")
	}
}
