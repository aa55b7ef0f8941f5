package worker_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/flps/internal/adapters/mq/queue"
	"github.com/okian/flps/internal/adapters/mq/worker"
	"github.com/okian/flps/internal/domain/model"
	"github.com/okian/flps/internal/domain/score"
	logging "github.com/okian/flps/pkg/logger"
)

type fakeEvaluator struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func newFakeEvaluator() *fakeEvaluator {
	return &fakeEvaluator{fail: make(map[string]error)}
}

func (f *fakeEvaluator) Evaluate(in model.RaiderInput, _ time.Time) (model.FlpsBreakdown, error) {
	f.mu.Lock()
	f.calls = append(f.calls, in.ID)
	err := f.fail[in.ID]
	f.mu.Unlock()
	if err != nil {
		return model.FlpsBreakdown{}, err
	}
	return model.FlpsBreakdown{RaiderID: in.ID, Eligible: in.ID != "benched", Ineligibility: ineligibility(in.ID)}, nil
}

func ineligibility(id string) []model.Reason {
	if id == "benched" {
		return []model.Reason{model.ReasonLowAttendance}
	}
	return nil
}

func (f *fakeEvaluator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func collect(t *testing.T, replies <-chan queue.Outcome, n int) map[int]queue.Outcome {
	t.Helper()
	out := make(map[int]queue.Outcome, n)
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case o := <-replies:
			out[o.Index] = o
		case <-timeout:
			t.Fatalf("timed out after %d of %d outcomes", len(out), n)
		}
	}
	return out
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		eval := newFakeEvaluator()
		w := worker.NewInMemoryWorker(q, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		replies := make(chan queue.Outcome, 4)
		now := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)

		convey.Convey("When a job is evaluated", func() {
			err := q.Enqueue(ctx, queue.Job{Index: 0, Input: model.RaiderInput{ID: "r1"}, Now: now, Evaluator: eval, Reply: replies})
			convey.So(err, convey.ShouldBeNil)

			got := collect(t, replies, 1)

			convey.Convey("Then the breakdown is replied with its index", func() {
				convey.So(got[0].Err, convey.ShouldBeNil)
				convey.So(got[0].RaiderID, convey.ShouldEqual, "r1")
				convey.So(got[0].Breakdown.RaiderID, convey.ShouldEqual, "r1")
			})
		})

		convey.Convey("When evaluation fails", func() {
			eval.fail["r2"] = score.MissingBaseline("spec baseline output", "no simulation")
			err := q.Enqueue(ctx, queue.Job{Index: 3, Input: model.RaiderInput{ID: "r2"}, Now: now, Evaluator: eval, Reply: replies})
			convey.So(err, convey.ShouldBeNil)

			got := collect(t, replies, 1)

			convey.Convey("Then the error is replied, not swallowed", func() {
				convey.So(score.IsMissingBaseline(got[3].Err), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the batch was aborted", func() {
			abort := make(chan struct{})
			close(abort)
			err := q.Enqueue(ctx, queue.Job{Index: 1, Input: model.RaiderInput{ID: "r3"}, Now: now, Evaluator: eval, Abort: abort, Reply: replies})
			convey.So(err, convey.ShouldBeNil)

			got := collect(t, replies, 1)

			convey.Convey("Then the job is skipped", func() {
				convey.So(errors.Is(got[1].Err, worker.ErrAborted), convey.ShouldBeTrue)
				convey.So(eval.callCount(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer shutdownCancel()

			convey.Convey("Then it stops gracefully and a second call is harmless", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a started worker pool", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		eval := newFakeEvaluator()
		pool := worker.NewPool(4, q)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When a batch larger than the queue is submitted", func() {
			const n = 64
			replies := make(chan queue.Outcome, n)
			ids := make([]string, n)
			for i := range ids {
				ids[i] = "raider-" + string(rune('a'+i%26)) + string(rune('a'+i/26))
			}
			ids[5] = "benched"
			go func() {
				for i, id := range ids {
					_ = q.Enqueue(ctx, queue.Job{Index: i, Input: model.RaiderInput{ID: id}, Evaluator: eval, Reply: replies})
				}
			}()

			got := collect(t, replies, n)

			convey.Convey("Then every job gets exactly one outcome at its index", func() {
				convey.So(len(got), convey.ShouldEqual, n)
				for i, id := range ids {
					convey.So(got[i].RaiderID, convey.ShouldEqual, id)
				}
				convey.So(got[5].Breakdown.Eligible, convey.ShouldBeFalse)
				convey.So(eval.callCount(), convey.ShouldEqual, n)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			convey.Convey("Then the queue is closed and workers exit", func() {
				convey.So(pool.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When shutting down with jobs still queued", func() {
			const n = 12
			replies := make(chan queue.Outcome, n)
			for i := 0; i < n; i++ {
				convey.So(q.TryEnqueue(queue.Job{Index: i, Input: model.RaiderInput{ID: "raider-" + strconv.Itoa(i)}, Evaluator: eval, Reply: replies}), convey.ShouldBeNil)
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()
			convey.So(pool.Shutdown(shutdownCtx), convey.ShouldBeNil)

			convey.Convey("Then every accepted job is replied to before the workers exit", func() {
				convey.So(len(replies), convey.ShouldEqual, n)
				got := collect(t, replies, n)
				for i := 0; i < n; i++ {
					convey.So(got[i].RaiderID, convey.ShouldEqual, "raider-"+strconv.Itoa(i))
				}
			})
		})
	})

	convey.Convey("Given a pool with a non-positive worker count", t, func() {
		pool := worker.NewPool(0, queue.NewInMemoryQueue())

		convey.Convey("Then one worker per CPU is created", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
