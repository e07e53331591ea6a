// Package remote implements the vault's repositories over the credvault
// StoreService gRPC API, so a vault can keep its ciphertext on a shared
// server instead of a local database.
//
// # Overview
//
// Dial opens a connection and returns a Client whose Entries, MasterKeys and
// AccessLog methods satisfy the entries, masterkeys and accesslog repository
// interfaces. Every call carries the configured access token in the
// access_token metadata key; the server resolves the principal from it and
// ignores principal ids sent in request bodies.
//
// # Error Handling
//
// gRPC statuses are mapped back to the common sentinels with rpc.FromStatus,
// so callers match common.ErrorNotFound, common.ErrorUnauthorized or
// common.ErrTokenExpired with errors.Is exactly as they would for a local
// store.
//
// The remote store has no transactions: vault.Store.Tx stays nil and a
// password change writes entries one by one after resealing them in memory.
package remote
