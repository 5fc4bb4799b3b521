package indicators

// SMA calculates the Simple Moving Average of values over period.
// The first period-1 entries are NaN.
func SMA(values []float64, period int) ([]float64, error) {
	if err := checkPeriod("SMA", period); err != nil {
		return nil, err
	}

	out := nanSlice(len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out, nil
}

// EMA calculates the Exponential Moving Average of values with
// alpha = 2/(period+1), seeded with the first value so every entry is
// defined (no warmup gap).
func EMA(values []float64, period int) ([]float64, error) {
	if err := checkPeriod("EMA", period); err != nil {
		return nil, err
	}

	out := make([]float64, len(values))
	alpha := 2.0 / float64(period+1)
	for i, v := range values {
		if i == 0 {
			out[i] = v
			continue
		}
		out[i] = alpha*v + (1.0-alpha)*out[i-1]
	}
	return out, nil
}
