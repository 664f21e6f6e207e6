package domain

// KeyPrefix namespaces every key this service writes to Redis.
const KeyPrefix = "kindred:"

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model            string
	Dimensions       int
	DistanceMetric   string
	Algorithm        string
	QueryInstruction string
}

// DefaultVectorConfig returns the default configuration for OpenAI-compatible providers.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:          "text-embedding-3-small",
		Dimensions:     1536,
		DistanceMetric: "cosine",
		Algorithm:      "hnsw",
	}
}
