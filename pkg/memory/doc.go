// Package memory is the assistant's memory and retrieval core.
//
// A Memory owns four collections loaded from a storage.Driver:
//
//	history         append-only conversation turns
//	facts           ordered key/value facts
//	localKnowledge  canned answers keyed by lowercase query
//	biography       nested profile tree
//
// From these it derives UnifiedKnowledge (sentences built from facts and the
// biography) and a QACache (normalized question to most recent answer). All
// mutation goes through Append and SetFact, which keep the derived state in
// step and persist history and facts.
//
// Loading never fails: a missing or malformed collection is replaced with an
// empty default and a warning is logged. Saving never fails from the caller's
// point of view either; write errors are logged and the in-memory state is
// left as it was after the mutation.
package memory
