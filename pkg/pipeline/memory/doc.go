// Package memory provides the caching locations used by the pipeline to avoid refitting a step
// that was already fitted with the same hyper-parameters on the same data.
//
// A Memory stores entries made of the step output (features and labels) and the fitted step. The in-process
// memory keeps the fitted step itself, while the directory and Redis memories persist the step state through
// encoding.BinaryMarshaler. Cache wraps a Memory so that concurrent pipelines sharing it compute each key once.
package memory
