package mongo

// Config holds MongoDB connection settings
type Config struct {
	// URI is the MongoDB connection string (e.g., mongodb://localhost:27017)
	URI string

	// Database is the database name holding all collections
	Database string
}

// DefaultConfig returns sensible defaults for MongoDB configuration
func DefaultConfig() Config {
	return Config{
		URI:      "mongodb://localhost:27017",
		Database: "tablequeue",
	}
}
