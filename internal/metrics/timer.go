package metrics

import "time"

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDB records the elapsed time of a repository operation.
//
//	timer := metrics.StartTimer()
//	defer metrics.ObserveDB("product_find_by_id", timer)
func ObserveDB(operation string, t *Timer) {
	DBQueryDuration.WithLabelValues(operation).Observe(t.Duration().Seconds())
}
