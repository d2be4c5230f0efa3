//go:build !unix

package batch

func maxWorkers() int {
	return 0
}
