package smsprite

import (
	"context"
	"sort"
	"sync"

	"github.com/bodgit/smsprite/pose"
	"github.com/bodgit/smsprite/rom"
	"github.com/bodgit/smsprite/samus"
)

// DefaultWorkers is the number of poses decoded concurrently by Import
const DefaultWorkers = 10

type extracted struct {
	id    int
	table *pose.Table
}

func (l *Library) generatePoses(ctx context.Context, ids []int) (<-chan int, <-chan error, error) {
	out := make(chan int)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for _, id := range ids {
			select {
			case out <- id:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, errc, nil
}

func (l *Library) poseWorker(ctx context.Context, cancel context.CancelFunc, img *rom.Image, in <-chan int) (<-chan extracted, <-chan error, error) {
	out := make(chan extracted)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for id := range in {
			// Each pose decodes into its own table so frame indices
			// are only renumbered once, when merging
			t := pose.NewTable()
			p, err := samus.BuildPose(img, id, samus.Name(id), t)
			if err != nil {
				errc <- err
				cancel()
				return
			}

			l.logger.Printf("Decoded pose 0x%02X \"%s\" with %d frames\n", id, p.Name, p.Len())

			select {
			case out <- extracted{id: id, table: t}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func mergeResults(cs ...<-chan extracted) <-chan extracted {
	var wg sync.WaitGroup
	out := make(chan extracted)
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan extracted) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Extract decodes the poses ids from img using the given number of
// concurrent workers. The result holds the poses merged in id order so the
// frame numbering does not depend on scheduling.
func (l *Library) Extract(ctx context.Context, img *rom.Image, ids []int, workers int) (*pose.Table, error) {
	if workers < 1 {
		workers = 1
	}

	parent := ctx
	ctx, cancelFunc := context.WithCancel(parent)
	defer cancelFunc()

	var errcList []<-chan error
	var outList []<-chan extracted

	in, errc, err := l.generatePoses(ctx, ids)
	if err != nil {
		return nil, err
	}
	errcList = append(errcList, errc)

	for i := 0; i < workers; i++ {
		out, errc, err := l.poseWorker(ctx, cancelFunc, img, in)
		if err != nil {
			return nil, err
		}
		outList = append(outList, out)
		errcList = append(errcList, errc)
	}

	results := make(map[int]*pose.Table, len(ids))
	for r := range mergeResults(outList...) {
		results[r.id] = r.table
	}

	if err := waitForPipeline(errcList...); err != nil {
		return nil, err
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}

	order := make([]int, 0, len(results))
	for id := range results {
		order = append(order, id)
	}
	sort.Ints(order)

	t := pose.NewTable()
	for _, id := range order {
		if err := t.Merge(results[id]); err != nil {
			return nil, err
		}
	}

	return t, nil
}
