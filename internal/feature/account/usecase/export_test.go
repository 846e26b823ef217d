package usecase

// NewMemoryUserRepository exposes the in-memory repository to the external test package.
func NewMemoryUserRepository() UserRepository {
	return newMemoryUserRepository()
}
