package vocabgen

import "context"

// Stage names a step of the generation pipeline.
type Stage string

const (
	StageLoad     Stage = "load"
	StageClassify Stage = "classify"
	StageRender   Stage = "render"
	StageWrite    Stage = "write"
	StageCheck    Stage = "check"
)

// StageFunc runs one stage. Count is the number of items the stage
// produced: descriptors loaded, classified or rendered, files written.
type StageFunc func(ctx context.Context) (count int, err error)

// StageInterceptor is a hook that wraps the execution of every stage.
//
//	func timing(ctx context.Context, stage vocabgen.Stage, next vocabgen.StageFunc) (int, error) {
//	    start := time.Now()
//	    n, err := next(ctx)
//	    log.Printf("%s took %v", stage, time.Since(start))
//	    return n, err
//	}
//
// Interceptors can observe or replace the result of a stage, or stop the
// run by returning an error without calling next.
type StageInterceptor func(ctx context.Context, stage Stage, next StageFunc) (int, error)

// chainInterceptors combines multiple interceptors into a single one.
// The first interceptor in the slice is the outer-most one (runs first).
func chainInterceptors(interceptors []StageInterceptor) StageInterceptor {
	if len(interceptors) == 0 {
		return nil
	}
	if len(interceptors) == 1 {
		return interceptors[0]
	}
	return func(ctx context.Context, stage Stage, next StageFunc) (int, error) {
		// Chain: i[0] -> i[1] -> ... -> next
		chain := next
		for i := len(interceptors) - 1; i >= 0; i-- {
			current := interceptors[i]
			inner := chain
			chain = func(ctx context.Context) (int, error) {
				return current(ctx, stage, inner)
			}
		}
		return chain(ctx)
	}
}

type runIDKey struct{}

// RunID returns the identifier of the generation run ctx belongs to, or ""
// outside a run.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

func withRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}
