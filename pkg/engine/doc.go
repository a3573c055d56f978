// Package engine defines the decision-engine contract and the HTTP
// client used to reach a remote engine.
//
// The engine is the only component that ever sees the raw request
// text. Its verdict carries classification signals, confidences and an
// optional repaired output; everything downstream (normalization,
// evidence, metrics) works from the verdict alone and scrubs whatever
// it persists.
package engine
