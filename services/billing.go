package services

import (
	"fmt"
	"math"
	"time"
)

type OverHourPolicy string

const (
	// OverHourBanded bills whole hours at the hourly rate plus the band
	// price of the leftover minutes.
	OverHourBanded OverHourPolicy = "banded"
	// OverHourProportional bills ceil(minutes/60 × hourly rate).
	OverHourProportional OverHourPolicy = "proportional"
)

func ParseOverHourPolicy(s string) (OverHourPolicy, error) {
	switch OverHourPolicy(s) {
	case OverHourBanded, OverHourProportional:
		return OverHourPolicy(s), nil
	case "":
		return OverHourBanded, nil
	}
	return "", fmt.Errorf("unknown over-hour billing policy %q", s)
}

// Band prices are quoted at referenceRate and scale with the hourly rate.
const referenceRate = 100.0

var bands = []struct {
	upTo   int
	amount float64
}{
	{5, 15}, {10, 20}, {15, 25}, {20, 30}, {25, 40}, {30, 50},
	{35, 60}, {40, 70}, {45, 75}, {50, 80}, {55, 90}, {60, 100},
}

// Billing is the pure cost calculator applied when a session ends.
type Billing struct {
	Policy OverHourPolicy
}

// BilledMinutes rounds elapsed time up to whole minutes.
func BilledMinutes(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	m := int(elapsed / time.Minute)
	if elapsed%time.Minute != 0 {
		m++
	}
	return m
}

func bandCost(minutes int, hourlyRate float64) float64 {
	if minutes <= 0 {
		return 0
	}
	for _, b := range bands {
		if minutes <= b.upTo {
			return b.amount * hourlyRate / referenceRate
		}
	}
	return hourlyRate
}

// Cost prices an open-ended session of the given billed minutes.
func (b Billing) Cost(minutes int, hourlyRate float64) float64 {
	if minutes <= 0 {
		return 0
	}
	if minutes <= 60 {
		return bandCost(minutes, hourlyRate)
	}
	if b.Policy == OverHourProportional {
		return math.Ceil(float64(minutes) / 60 * hourlyRate)
	}
	hours := minutes / 60
	return float64(hours)*hourlyRate + bandCost(minutes%60, hourlyRate)
}

// FixedCost prices a fixed-duration session.
func (b Billing) FixedCost(hours, hourlyRate float64) float64 {
	if hours <= 0 {
		return 0
	}
	return hours * hourlyRate
}

// Settle subtracts the prepaid deductible, floors at zero and rounds to a
// whole currency unit.
func Settle(cost, deductible float64) float64 {
	return math.Round(math.Max(0, cost-deductible))
}
