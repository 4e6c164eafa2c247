package runner

import (
	"os"
	"sync"

	"github.com/flanksource/commons/logger"
	"github.com/shirou/gopsutil/v3/process"
)

var (
	activeMu sync.Mutex
	active   = map[int]*os.Process{}
)

func track(p *os.Process) {
	activeMu.Lock()
	defer activeMu.Unlock()
	active[p.Pid] = p
}

func untrack(p *os.Process) {
	activeMu.Lock()
	defer activeMu.Unlock()
	delete(active, p.Pid)
}

// KillActive force-terminates every child the runner still has in flight.
// Wired as a shutdown hook so an interrupted batch does not leave orphans.
func KillActive() {
	activeMu.Lock()
	pids := make([]int, 0, len(active))
	for pid := range active {
		pids = append(pids, pid)
	}
	activeMu.Unlock()

	for _, pid := range pids {
		logger.Debugf("killing in-flight process %d", pid)
		KillTree(pid)
	}
}

// KillTree force-terminates pid and its descendants, deepest first. Killing
// only the direct child leaves grandchildren holding the output pipe open,
// and the capture readers would never see EOF.
func KillTree(pid int) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return
	}
	killTree(proc)
}

func killTree(proc *process.Process) {
	children, err := proc.Children()
	if err == nil {
		for _, child := range children {
			killTree(child)
		}
	}
	_ = proc.Kill()
}
