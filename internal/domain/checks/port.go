package checks

import "context"

// Oracle port: evaluates one check.
type Oracle interface {
	Probe(ctx context.Context, id CheckID) (Verdict, error)
}

// OracleFunc adapts a plain function to Oracle.
type OracleFunc func(ctx context.Context, id CheckID) (Verdict, error)

func (f OracleFunc) Probe(ctx context.Context, id CheckID) (Verdict, error) { return f(ctx, id) }

// Notifier port: fire-and-forget sink for user-facing messages.
type Notifier interface {
	Notify(kind NotificationKind, message string)
}

type NotifierFunc func(kind NotificationKind, message string)

func (f NotifierFunc) Notify(kind NotificationKind, message string) { f(kind, message) }

// Journal port (append-only history of settled runs)
type Journal interface {
	Append(ctx context.Context, r *RunRecord) error
	ListByCheck(ctx context.Context, id CheckID, limit int) ([]*RunRecord, error)
}

// ReportArchive port (penyimpanan laporan batch)
type ReportArchive interface {
	Put(ctx context.Context, r *BatchReport) (string, error)
}
