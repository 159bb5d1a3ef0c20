package history

import (
	"fmt"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Stats summarizes case duration percentiles across recorded sessions.
type Stats struct {
	Samples int64
	Min     time.Duration
	Max     time.Duration
	Mean    time.Duration
	P50     time.Duration
	P95     time.Duration
	P99     time.Duration
}

// maxTrackableMs bounds the histogram at one hour per case.
const maxTrackableMs = 3600 * 1000

// DurationStats aggregates run durations. With a case id it covers that
// case across sessions; with the empty string it covers every recorded
// case. Skipped cases are excluded.
func (s *Store) DurationStats(caseID string) (*Stats, error) {
	query := `SELECT duration_ms FROM case_results WHERE status != 'skipped'`
	args := []any{}
	if caseID != "" {
		query += ` AND case_id = ?`
		args = append(args, caseID)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	h := hdrhistogram.New(1, maxTrackableMs, 3)
	for rows.Next() {
		var ms int64
		if err := rows.Scan(&ms); err != nil {
			return nil, err
		}
		if ms < 1 {
			ms = 1
		}
		if ms > maxTrackableMs {
			ms = maxTrackableMs
		}
		_ = h.RecordValue(ms)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if h.TotalCount() == 0 {
		return nil, fmt.Errorf("no recorded runs")
	}

	ms := func(v int64) time.Duration { return time.Duration(v) * time.Millisecond }
	return &Stats{
		Samples: h.TotalCount(),
		Min:     ms(h.Min()),
		Max:     ms(h.Max()),
		Mean:    time.Duration(h.Mean() * float64(time.Millisecond)),
		P50:     ms(h.ValueAtQuantile(50)),
		P95:     ms(h.ValueAtQuantile(95)),
		P99:     ms(h.ValueAtQuantile(99)),
	}, nil
}
