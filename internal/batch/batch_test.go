package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func files(sizes ...int64) []File {
	out := make([]File, len(sizes))
	for i, size := range sizes {
		out[i] = File{Path: fmt.Sprintf("game/%02d.rpyc", i), Size: size}
	}
	return out
}

func TestWorkers(t *testing.T) {
	type tc struct {
		cfg  Config
		n    int
		want int
	}

	tests := map[string]tc{
		"single process":      {cfg: Config{Processes: 1}, n: 100, want: 1},
		"below threshold":     {cfg: Config{Processes: 8}, n: 4, want: 1},
		"custom threshold":    {cfg: Config{Processes: 8, MinParallel: 2}, n: 3, want: 3},
		"capped by processes": {cfg: Config{Processes: 3}, n: 50, want: 3},
		"capped by files":     {cfg: Config{Processes: 16}, n: 6, want: 6},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Workers(tt.cfg, tt.n); got != tt.want {
				t.Errorf("Workers() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunOrder(t *testing.T) {
	type tc struct {
		cfg  Config
		want []string
	}

	in := []File{
		{Path: "game/b.rpyc", Size: 10},
		{Path: "game/c.rpyc", Size: 30},
		{Path: "game/a.rpyc", Size: 20},
	}

	tests := map[string]tc{
		"sequential goes by path": {
			cfg:  Config{Processes: 1},
			want: []string{"game/a.rpyc", "game/b.rpyc", "game/c.rpyc"},
		},
		"parallel starts largest first": {
			cfg:  Config{Processes: 2, MinParallel: 1},
			want: []string{"game/c.rpyc", "game/a.rpyc", "game/b.rpyc"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := Run(context.Background(), in, tt.cfg, func(File) Result {
				return Result{Status: Success}
			})
			if len(s.Results) != len(tt.want) {
				t.Fatalf("got %d results, want %d", len(s.Results), len(tt.want))
			}
			for i, r := range s.Results {
				if r.File.Path != tt.want[i] {
					t.Errorf("Results[%d] = %s, want %s", i, r.File.Path, tt.want[i])
				}
			}
		})
	}
}

func TestRunIsFailIndependent(t *testing.T) {
	in := files(5, 4, 3, 2, 1, 0)
	statuses := map[string]Status{
		"game/00.rpyc": Failed,
		"game/02.rpyc": Skipped,
		"game/04.rpyc": Malformed,
	}

	var ran atomic.Int32
	s := Run(context.Background(), in, Config{Processes: 3}, func(f File) Result {
		ran.Add(1)
		if f.Path == "game/05.rpyc" {
			panic("boom")
		}
		st, ok := statuses[f.Path]
		if !ok {
			return Result{Status: Success}
		}
		return Result{Status: st, Err: errors.New(st.String())}
	})

	if ran.Load() != int32(len(in)) {
		t.Errorf("ran %d jobs, want %d", ran.Load(), len(in))
	}
	if s.Success != 2 || s.Failed != 2 || s.Skipped != 1 || s.Malformed != 1 {
		t.Errorf("Summary = %+v", s)
	}
	if s.Total() != len(in) {
		t.Errorf("Total() = %d, want %d", s.Total(), len(in))
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	var (
		mu      sync.Mutex
		running int
		peak    int
	)
	release := make(chan struct{})
	started := make(chan struct{}, 20)

	go func() {
		// let the pool fill before releasing anyone
		for range 2 {
			<-started
		}
		close(release)
	}()

	s := Run(context.Background(), files(make([]int64, 20)...), Config{Processes: 2}, func(File) Result {
		mu.Lock()
		running++
		peak = max(peak, running)
		mu.Unlock()

		started <- struct{}{}
		<-release

		mu.Lock()
		running--
		mu.Unlock()
		return Result{Status: Success}
	})

	if s.Success != 20 {
		t.Fatalf("Success = %d, want 20", s.Success)
	}
	if peak > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", peak)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := Run(ctx, files(1, 2), Config{Processes: 1}, func(File) Result {
		t.Error("work called after cancel")
		return Result{Status: Success}
	})
	if s.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", s.Skipped)
	}
}

func TestSummaryString(t *testing.T) {
	type tc struct {
		s    Summary
		want string
	}

	tests := map[string]tc{
		"all good": {
			s:    Summary{Success: 3},
			want: "Decompilation of 3 script files successful",
		},
		"one file": {
			s:    Summary{Success: 1},
			want: "Decompilation of 1 script file successful",
		},
		"everything": {
			s:    Summary{Success: 2, Failed: 1, Skipped: 4, Malformed: 1},
			want: "Decompilation of 2 script files successful, 1 failed, 4 skipped, 1 malformed",
		},
		"only failures": {
			s:    Summary{Failed: 2},
			want: "Decompilation of 0 script files successful, 2 failed",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.s.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
