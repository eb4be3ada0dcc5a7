// Package repository defines persistence contracts. Implementations live in subpackages (postgres).
// Lookups of missing rows return sql.ErrNoRows unchanged so the service layer can translate them.
package repository

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
