// Package model provides the contracts and data structures shared by the pipeline package and its options.
// It defines the capabilities a step may expose (fit, transform, resample, predict), the row bookkeeping
// recorded at prediction time, and the hooks a pipeline option receives while the pipeline is fitted.
package model
