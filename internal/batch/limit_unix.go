//go:build unix

package batch

import "golang.org/x/sys/unix"

// filesPerWorker is what one job holds open: its input, its output and
// the debug log, with room to spare.
const filesPerWorker = 4

// maxWorkers caps the pool so it stays inside the open file limit.
func maxWorkers() int {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return 0
	}
	n := int(min(rl.Cur/filesPerWorker, 1<<20))
	if n < 1 {
		return 1
	}
	return n
}
