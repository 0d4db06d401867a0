// Package trace implements the historical difference store behind the group
// operator. A Compact is one logical time's worth of (key, value, weight)
// differences in a columnar, per-key-grouped, value-sorted layout. A Trace
// owns every Compact ever installed and keeps, per key, an append-only chain
// of (time, slice) entries addressed by small integer offsets. From that
// history it answers which future times might need reprocessing for a key
// and produces merged, weight-coalesced iterators over a key's accumulated
// collection as of any time.
//
// Traces are append-only: entries are never revised, and Compact storage is
// reclaimed only when the whole trace is torn down with its operator.
package trace
