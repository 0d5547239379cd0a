package config

type Storage struct{}

var _ StorageConfig = Storage{}

// GetRedisAddr returns the Redis address for the credential store. Empty
// selects the in-memory store.
func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "")
}

// GetCustomerDBPath returns the SQLite file backing the customer registry.
// Empty selects the in-memory repository.
func (Storage) GetCustomerDBPath() string {
	return GetEnv("CUSTOMER_DB_PATH", "")
}
