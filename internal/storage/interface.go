package storage

// ArtifactStore defines the contract for archiving rendered report artifacts
type ArtifactStore interface {
	Store(name string, data []byte) (string, error)
	Retrieve(name string) ([]byte, error)
	List(prefix string) ([]string, error)
	Delete(name string) error
}
