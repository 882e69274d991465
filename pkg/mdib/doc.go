// Package mdib holds the medical device information base of a provider:
// the descriptor tree, the states of every descriptor and the MDIB version.
//
// All changes go through Transaction. A transaction works on copies of the
// entities it touches and commits them atomically: the MDIB version grows by
// exactly one per non-empty commit, changed descriptors and states get their
// version counters bumped and commit observers receive the changes grouped
// by report category.
//
//	res, err := m.Transaction(ctx, func(tx *mdib.Transaction) error {
//	    st, err := tx.State("numeric.ch0.vmd0")
//	    if err != nil {
//	        return err
//	    }
//	    st.(*model.NumericMetricState).MetricValue = ...
//	    return nil
//	})
//
// Readers (Descriptor, State, ContextStates, ...) return copies and may be
// called concurrently with transactions. They must not be called from inside
// a transaction function; use the Transaction methods instead.
package mdib
