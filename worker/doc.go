// Package worker runs a function over many inputs on a fixed number of
// goroutines.
//
// Pool is the streaming form: submit jobs, read one result per job from
// Results, and Close when done submitting. Batch wraps a Pool for the
// common case of a slice in and an ordered slice out:
//
//	b := worker.NewBatch(func(ctx context.Context, ref string) (*Entry, error) {
//	    return lookup(ctx, ref)
//	}, 4)
//	res := b.Run(ctx, refs)
//	for i, r := range res.Results {
//	    if r.Error != nil {
//	        // refs[i] failed
//	    }
//	}
package worker
