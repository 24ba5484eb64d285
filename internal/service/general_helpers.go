package service

import "math"

const (
	moneyPrecision = 100
	unitPrecision  = 10000
)

// roundMoney rounds a monetary value to two decimal places.
func roundMoney(value float64) float64 {
	return math.Round(value*moneyPrecision) / moneyPrecision
}

// roundUnits rounds a unit count to four decimal places, the granularity
// mutual-fund registrars allot units at.
func roundUnits(value float64) float64 {
	return math.Round(value*unitPrecision) / unitPrecision
}
