package gapr

import "sync"

// ComputeProximityParallel computes the same matrix as ComputeProximity using
// multiple goroutines. numWorkers controls the degree of parallelism; if
// <= 1, it falls back to the single-threaded ComputeProximity.
//
// Rows are split across workers in contiguous ranges; each worker computes
// the entries above the diagonal for its rows and mirrors them, so every cell
// has exactly one writer and no synchronization is needed. The result is
// bitwise identical to ComputeProximity.
func ComputeProximityParallel(data [][]float64, proxType ProximityType, side Side, missing bool, numWorkers int) ([]float64, int, error) {
	if numWorkers <= 1 {
		return ComputeProximity(data, proxType, side, missing)
	}

	pair, err := proximityFunc(proxType)
	if err != nil {
		return nil, 0, err
	}
	items, n, p, err := orientItems(data, side)
	if err != nil {
		return nil, 0, err
	}
	if err := checkProximityData(items, p, proxType, missing); err != nil {
		return nil, 0, err
	}

	result := make([]float64, n*n)
	diagZero := proxType.IsDistance()

	var wg sync.WaitGroup
	rowsPerWorker := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > n {
			endRow = n
		}
		if startRow >= n {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fillProximity(result, items, n, p, pair, diagZero, start, end)
		}(startRow, endRow)
	}

	wg.Wait()
	return result, n, nil
}
