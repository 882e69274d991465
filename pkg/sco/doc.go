// Package sco executes remote control operations against an MDIB.
//
// A Registry binds Operation values to operation descriptors of the MDIB and
// checks incoming requests. Accepted requests are queued on an Engine, whose
// single worker runs the operation's Effect and reports each invocation as
// WAIT, START and one terminal state to a ReportSink.
//
//	engine, _ := sco.NewEngine(m, sink, sco.DefaultConfig())
//	reg, _ := sco.NewRegistry(ctx, m, engine, sco.DefaultConfig())
//	_ = reg.RegisterOperation(ctx, sco.NewOperation(sco.KindSetValue, "op0", "numeric0",
//	    sco.WithEffect(setNumeric)), "")
//	_ = engine.Start()
//	info, err := reg.HandleRequest(ctx, sco.Request{
//	    OperationHandle: "op0",
//	    Kind:            sco.KindSetValue,
//	    Argument:        42.0,
//	})
//
// Requests for unknown operations, or naming the wrong kind, are answered
// synchronously with transaction id 0 and never produce reports.
package sco
