// Package aggregates owns transaction boundaries for writes that must land
// together. Implementations compose table-level repos from
// internal/data/repos.
package aggregates
