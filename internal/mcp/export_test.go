package mcp

// SeedStore exposes the query fixture to external tests.
var SeedStore = seedStore
