// Package shutdown runs registered cleanup hooks, in priority order, when the
// harness is interrupted mid-batch. The runner registers a hook that kills
// in-flight child processes; sandboxes register their removal.
package shutdown

import (
	"container/heap"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/flanksource/commons/logger"
)

const (
	PriorityProcesses = 0 // kill children before anything else
	PriorityDefault   = 100
	PrioritySandboxes = 200
)

type Hook struct {
	label    string
	priority int
	fn       func()
	index    int // for heap interface
}

type hookHeap []*Hook

func (h hookHeap) Len() int           { return len(h) }
func (h hookHeap) Less(i, j int) bool { return h[i].priority < h[j].priority }
func (h hookHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *hookHeap) Push(x any) {
	item := x.(*Hook)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *hookHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[0 : n-1]
	return item
}

var (
	hooks    hookHeap
	hooksMux sync.Mutex
	once     sync.Once
)

func AddHook(label string, fn func()) {
	AddHookWithPriority(label, PriorityDefault, fn)
}

func AddHookWithPriority(label string, priority int, fn func()) {
	hooksMux.Lock()
	defer hooksMux.Unlock()
	heap.Push(&hooks, &Hook{label: label, priority: priority, fn: fn})
}

func Shutdown() {
	hooksMux.Lock()
	defer hooksMux.Unlock()

	for hooks.Len() > 0 {
		hook := heap.Pop(&hooks).(*Hook)
		logger.Debugf("executing shutdown hook: %s (priority=%d)", hook.label, hook.priority)

		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("panic in shutdown hook %s: %v", hook.label, r)
				}
			}()
			hook.fn()
		}()
	}
}

// Intercept installs the signal handler for a batch run: the first
// SIGINT/SIGTERM runs the hooks and exits, a second one forces an immediate
// exit.
func Intercept() {
	once.Do(func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		go func() {
			sig := <-sigChan
			_, _ = fmt.Fprintf(os.Stderr, "\nReceived %s - cleaning up...\n", sig)

			go func() {
				<-sigChan
				_, _ = fmt.Fprintf(os.Stderr, "\nForce exit\n")
				os.Exit(1)
			}()

			Shutdown()
			os.Exit(130)
		}()
	})
}
