package globals

// Context keys
type ContextKey string

const EmailKey ContextKey = "email"
const NameKey ContextKey = "name"
