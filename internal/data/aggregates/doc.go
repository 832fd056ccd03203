// Package aggregates implements the knowledge-base aggregate contracts.
//
// Each write composes table-level repos from internal/data/repos inside one
// transaction, so a project, upload or chunk batch is either written (or
// removed) completely or not at all. Errors leave this package as
// *domain/aggregates.Error.
package aggregates
