package evolution

import "time"

// buildChart emits one point per calendar month from the month of start to
// the month of end. Each employee contributes its latest score as of the
// bucket, starting with the bucket of its first scored session.
func buildChart(employees []EmployeeAggregate, start, end time.Time) []ChartPoint {
	first := monthStart(start)
	last := monthStart(end)

	var points []ChartPoint
	for bucket := first; !bucket.After(last); bucket = bucket.AddDate(0, 1, 0) {
		next := bucket.AddDate(0, 1, 0)
		point := ChartPoint{Date: bucket.Format(dateLayout), NewHires: []string{}}
		var sum float64
		landed := false
		for _, e := range employees {
			if len(e.history) == 0 || !e.history[0].At.Before(next) {
				continue
			}
			var latest float64
			for _, p := range e.history {
				if !p.At.Before(next) {
					break
				}
				latest = p.Score
				if !p.At.Before(bucket) {
					landed = true
				}
			}
			if !e.history[0].At.Before(bucket) {
				point.NewHires = append(point.NewHires, e.Name)
			}
			sum += latest
			point.Count++
		}
		if point.Count > 0 {
			avg := round1(sum / float64(point.Count))
			point.AvgScore = &avg
			point.IsCarryOver = !landed
		}
		points = append(points, point)
	}
	return points
}
