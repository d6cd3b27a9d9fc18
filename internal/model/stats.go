package model

// RatioStats summarizes the relative price over the fetched window.
type RatioStats struct {
	Current  float64
	High     float64
	Low      float64
	Position float64 // 0.0 ~ 1.0
	Samples  int
}
