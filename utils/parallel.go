package utils

import (
	"context"
	"math"
	"runtime"
	"sync"

	"go.viam.com/utils"
)

// ParallelFactor controls the default level of parallelization. This might be
// useful to set in tests where too much parallelism actually slows tests down
// in aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
}

type (
	// BeforeParallelGroupWorkFunc executes before any work starts with the calculated group size.
	BeforeParallelGroupWorkFunc func(numGroups int)
	// MemberWorkFunc runs for each work item (member) of a group.
	MemberWorkFunc func(memberNum, workNum int)
	// GroupWorkDoneFunc runs when a single group's work is done; helpful for merge stages.
	GroupWorkDoneFunc func()
	// GroupWorkFunc runs to determine what work members should do, if any.
	GroupWorkFunc func(groupNum, groupSize, from, to int) (MemberWorkFunc, GroupWorkDoneFunc)
)

// GroupWorkParallel parallelizes the given size of work over numGroups workers.
// A numGroups of zero or less uses ParallelFactor. Work items are assigned to
// groups in contiguous ranges so that group outputs can be merged in group
// order.
func GroupWorkParallel(ctx context.Context, totalSize, numGroups int, before BeforeParallelGroupWorkFunc, groupWork GroupWorkFunc) error {
	if numGroups <= 0 {
		numGroups = ParallelFactor
	}
	if numGroups > totalSize {
		numGroups = MaxInt(totalSize, 1)
	}
	extra := 0
	if totalSize > numGroups {
		extra = totalSize % numGroups
	}
	groupSize := int(math.Floor(float64(totalSize) / float64(numGroups)))

	before(numGroups)

	var wait sync.WaitGroup
	wait.Add(numGroups)
	for groupNum := 0; groupNum < numGroups; groupNum++ {
		groupNumCopy := groupNum
		utils.PanicCapturingGo(func() {
			defer wait.Done()
			groupNum := groupNumCopy

			thisGroupSize := groupSize
			thisExtra := 0
			if groupNum == (numGroups - 1) {
				thisExtra = extra
				thisGroupSize += thisExtra
			}
			from := groupSize * groupNum
			to := (groupSize * (groupNum + 1)) + thisExtra
			memberWork, groupWorkDone := groupWork(groupNum, thisGroupSize, from, to)
			if memberWork != nil {
				memberNum := 0
				for workNum := from; workNum < to; workNum++ {
					memberWork(memberNum, workNum)
					memberNum++
				}
			}
			if groupWorkDone != nil {
				groupWorkDone()
			}
		})
	}
	wait.Wait()
	return ctx.Err()
}
