// Package state persists what previous builds produced so unchanged pages can be
// skipped. SQLiteStore keeps the record on disk between runs and MemoryStore keeps it
// for the lifetime of one process, which is what the preview server needs.
package state
