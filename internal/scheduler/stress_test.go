package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/academiaplan/internal/model"
)

func TestEngineStressConcurrentEdits(t *testing.T) {
	f := setupFixture(t, true, 168)
	engine := NewEngine(f.sweeper.Sweep, 4096,
		WithInterval(time.Millisecond),
		WithClock(func() time.Time { return sweepNow }),
	)
	engine.Start()

	const workers = 8
	const perWorker = 50
	total := workers * perWorker
	due := model.DateOf(sweepNow).AddDays(2)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		w := w
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				task, err := f.tasks.Add(context.Background(), model.Draft{
					Title:   fmt.Sprintf("w%d-%d", w, i),
					Subject: "Stress",
					DueDate: due,
				})
				if err != nil {
					t.Errorf("add failed: %v", err)
					return
				}
				if i%3 == 0 {
					if _, err := f.tasks.SetStatus(context.Background(), task.ID, model.StatusInProgress); err != nil {
						t.Errorf("set status failed: %v", err)
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(f.recorder.Sent()) >= total {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	engine.Stop()

	sent := f.recorder.Sent()
	if len(sent) != total {
		t.Fatalf("unexpected notification count: got=%d want=%d", len(sent), total)
	}
	seen := make(map[string]bool, total)
	for _, n := range sent {
		if seen[n.Body] {
			t.Fatalf("duplicate reminder: %s", n.Body)
		}
		seen[n.Body] = true
	}
	for _, task := range f.tasks.List() {
		if !task.Notified {
			t.Fatalf("task %s not marked notified", task.ID)
		}
	}
}
