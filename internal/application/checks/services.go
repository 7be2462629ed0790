package checks

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
)

const journalTimeout = 5 * time.Second

// Service implements use-cases untuk dashboard
// Journal and Archive are optional; a nil port is skipped.
type Service struct {
	Registry *Registry
	Runner   *Runner
	Journal  domain.Journal
	Archive  domain.ReportArchive
	Features []domain.Feature
}

// NewService wires the journal into the runner's settle hook.
func NewService(reg *Registry, runner *Runner, journal domain.Journal, archive domain.ReportArchive, features []domain.Feature) *Service {
	s := &Service{
		Registry: reg,
		Runner:   runner,
		Journal:  journal,
		Archive:  archive,
		Features: features,
	}
	if journal != nil {
		runner.OnSettle(s.record)
	}
	return s
}

//
// ==== USE CASES ====
//

// BatchResult hasil RunAll untuk HTTP/CLI
type BatchResult struct {
	Report    *domain.BatchReport `json:"report"`
	ReportURL string              `json:"report_url,omitempty"`
}

func (s *Service) List() []domain.Entry {
	return s.Registry.List()
}

// Get ambil 1 check by id
func (s *Service) Get(id domain.CheckID) (domain.Entry, error) {
	def, err := s.Registry.Definition(id)
	if err != nil {
		return domain.Entry{}, err
	}
	st, err := s.Registry.Get(id)
	if err != nil {
		return domain.Entry{}, err
	}
	return domain.Entry{Definition: def, State: st}, nil
}

func (s *Service) RunOne(ctx context.Context, id domain.CheckID) (domain.Verdict, error) {
	return s.Runner.RunOne(ctx, id)
}

// RunAll jalankan semua check berurutan → upload report
func (s *Service) RunAll(ctx context.Context) (BatchResult, error) {
	report, err := s.Runner.RunBatch(ctx)
	if report == nil {
		return BatchResult{}, err
	}
	res := BatchResult{Report: report}
	if s.Archive != nil {
		// archive failures never change the batch outcome
		url, aerr := s.Archive.Put(context.WithoutCancel(ctx), report)
		if aerr != nil {
			log.Printf("report archive failed: batch=%s err=%v", report.BatchID, aerr)
		} else {
			res.ReportURL = url
		}
	}
	return res, err
}

func (s *Service) Session() (domain.Session, bool) {
	return s.Runner.Active()
}

// History ambil N run terakhir untuk satu check
func (s *Service) History(ctx context.Context, id domain.CheckID, limit int) ([]*domain.RunRecord, error) {
	if _, err := s.Registry.Definition(id); err != nil {
		return nil, err
	}
	if s.Journal == nil {
		return []*domain.RunRecord{}, nil
	}
	return s.Journal.ListByCheck(ctx, id, limit)
}

func (s *Service) ListFeatures() []domain.Feature {
	out := make([]domain.Feature, len(s.Features))
	copy(out, s.Features)
	return out
}

func (s *Service) record(st domain.Settlement) {
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	rec := NewRunRecord(st)
	if err := s.Journal.Append(ctx, rec); err != nil {
		log.Printf("journal append failed: check=%s run=%s err=%v", rec.CheckID, rec.ID, err)
	}
}

// NewRunRecord builds the journal row for a settled run.
func NewRunRecord(st domain.Settlement) *domain.RunRecord {
	rec := &domain.RunRecord{
		ID:         uuid.NewString(),
		BatchID:    st.BatchID,
		CheckID:    st.Definition.ID,
		Status:     st.State.Status,
		Message:    st.Verdict.Message,
		Details:    append([]string{}, st.Verdict.Details...),
		StartedAt:  st.StartedAt,
		FinishedAt: st.FinishedAt,
		DurationMS: st.FinishedAt.Sub(st.StartedAt).Milliseconds(),
	}
	if st.Err != nil {
		rec.OracleError = st.Err.Error()
	}
	return rec
}
