package listing

import "github.com/matthewbaird/opsconsole/internal/record"

// Counts is the status aggregate of a collection. ByStatus has an entry for
// every known status, zero included; records with an unknown status count
// only toward Total.
type Counts struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// Aggregate counts records per known status in one pass.
func Aggregate[V Viewable](records []V, statuses []string) Counts {
	c := Counts{ByStatus: make(map[string]int, len(statuses))}
	for _, s := range statuses {
		c.ByStatus[record.NormalizeStatus(s)] = 0
	}
	for _, r := range records {
		c.Total++
		code := record.NormalizeStatus(r.StatusCode())
		if _, ok := c.ByStatus[code]; ok {
			c.ByStatus[code]++
		}
	}
	return c
}

// Bucketed is the sum of all per-status counts.
func (c Counts) Bucketed() int {
	n := 0
	for _, v := range c.ByStatus {
		n += v
	}
	return n
}
