package domain

// Portal roles forwarded by the gateway. Authentication itself happens
// upstream; the core only scopes queries and guards admin operations.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)
