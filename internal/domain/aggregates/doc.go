// Package aggregates defines the knowledge-base write boundaries.
//
// Every contract here owns its transaction: a write either commits every row it
// touches or none of them. Cascading deletes are spelled out child-first inside
// that transaction instead of being left to ORM relationship traversal.
package aggregates
