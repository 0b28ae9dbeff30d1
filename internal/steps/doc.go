// Package steps holds small reference estimators used to exercise the pipeline: a scaler, row filters,
// an over-sampler and two final estimators. They are simple and deterministic.
package steps
