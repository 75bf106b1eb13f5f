// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: Base persistence model (BaseModel) shared by all tables
// - jsonb.go: JSONB column helpers for embedded line collections
// - ledger.go: Ledger models (supplier, statement, payable, invoice,
//   payment request, payment voucher and their relation tables)
package models
