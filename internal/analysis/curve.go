package analysis

import "fmt"

// CurvePoint is one sample of the load-addition → curtailment-rate curve.
type CurvePoint struct {
	LoadMW float64
	Rate   float64
}

// CurtailmentCurve samples the curtailment rate at evenly spaced load
// additions between 0 and maxLoadFrac × max seasonal peak. Used by chart
// export to show how quickly curtailment grows with added load.
func (a *Analyzer) CurtailmentCurve(ba string, maxLoadFrac float64, points int) ([]CurvePoint, error) {
	cache, ok := a.cache[ba]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBA, ba)
	}
	if maxLoadFrac <= 0 {
		maxLoadFrac = 0.3
	}
	if points < 2 {
		points = 50
	}

	maxLoad := maxLoadFrac * cache.peaks.Max()
	step := maxLoad / float64(points-1)

	curve := make([]CurvePoint, 0, points)
	for i := 0; i < points; i++ {
		load := step * float64(i)
		curve = append(curve, CurvePoint{LoadMW: load, Rate: cache.curtailmentRate(load)})
	}
	return curve, nil
}
