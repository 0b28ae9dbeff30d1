// Package pipeline provides a machine learning pipeline whose intermediate steps may resample the data.
//
// A pipeline is an ordered list of named steps. Every step but the last is either a transformer, which maps
// features to features, or a resampler, which returns new features and labels and may change the number of
// rows. The last step is the final estimator. Fitting runs the steps one after the other and feeds the output
// of each step to the next one. Resamplers only change the training data, unless they also implement
// model.RowFilter, in which case they remove rows at prediction time as well and the pipeline records which
// rows of the input were kept and which were dropped as outliers.
//
// Fitted steps can be cached in a memory.Memory. A step that was already fitted with the same hyper-parameters
// on the same data is then loaded instead of being fitted again.
//
// A pipeline is synchronous and must not be fitted or used for prediction from several goroutines at once.
package pipeline
