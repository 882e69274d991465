// Package journal records operation invoked reports in SQLite.
//
// A Journal is a sco.ReportSink. Every invocation state transition becomes
// one row, so the full history of an operation or a single transaction can
// be queried after the fact:
//
//	j, err := journal.Open("/var/lib/sdc/journal.db")
//	engine, err := sco.NewEngine(m, sco.FanOut{j, other}, cfg)
//	...
//	entries, err := j.ByOperation(ctx, "op.set.numeric", 20)
package journal
