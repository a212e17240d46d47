package model

// RepositoryLanguages carries the result of one language fetch through
// the fan-out channel, keyed by the repository qualified name.
type RepositoryLanguages struct {
	FullName  string
	Languages map[string]int
}
